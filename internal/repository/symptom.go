package repository

import (
	"context"
	"fmt"
	"net/url"

	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
	"github.com/JonnyWalker81/healthjournal/backend/pkg/supabase"
)

type symptomRepository struct {
	client *supabase.Client
}

// NewSymptomRepository creates a new symptom repository
func NewSymptomRepository(client *supabase.Client) SymptomRepository {
	return &symptomRepository{client: client}
}

func (r *symptomRepository) GetByUserID(ctx context.Context, userID string) ([]models.Symptom, error) {
	query := url.Values{}
	query.Set("user_id", fmt.Sprintf("eq.%s", userID))
	query.Set("select", "*")
	query.Set("order", "name.asc")

	var symptoms []models.Symptom
	if err := r.client.QueryInto(ctx, "symptoms", query, "", &symptoms); err != nil {
		return nil, fmt.Errorf("failed to get symptoms: %w", err)
	}

	return symptoms, nil
}
