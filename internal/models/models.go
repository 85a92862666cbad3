package models

import "time"

// DailyLog is one journal entry as stored by the app. A user normally has one
// log per calendar day, but nothing prevents several; the analytics layer
// collapses them into one bucket per day.
type DailyLog struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	Date            time.Time      `json:"date"`
	Mood            *float64       `json:"mood,omitempty"`          // 1-10
	Energy          *float64       `json:"energy,omitempty"`        // 1-10
	Stress          *float64       `json:"stress,omitempty"`        // 1-10
	Anxiety         *float64       `json:"anxiety,omitempty"`       // 1-10
	Pain            *float64       `json:"pain,omitempty"`          // 0-10
	SleepHours      *float64       `json:"sleep_hours,omitempty"`   // hours
	SleepQuality    *float64       `json:"sleep_quality,omitempty"` // 1-10
	Steps           *float64       `json:"steps,omitempty"`
	WaterIntake     *float64       `json:"water_intake,omitempty"` // glasses
	ExerciseMinutes *float64       `json:"exercise_minutes,omitempty"`
	Exercised       *bool          `json:"exercised,omitempty"`
	MedicationTaken *bool          `json:"medication_taken,omitempty"`
	Weather         *string        `json:"weather,omitempty"`
	Symptoms        []SymptomEntry `json:"symptoms,omitempty"`
	Notes           *string        `json:"notes,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// SymptomEntry records one user-defined symptom on a daily log
type SymptomEntry struct {
	SymptomID string  `json:"symptom_id"`
	Severity  float64 `json:"severity"` // 0-10
}

// Symptom is a user-defined symptom the user can track
type Symptom struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// DailyFlag is one day's outcome for a boolean predicate (streak input)
type DailyFlag struct {
	Date  time.Time `json:"date"`
	Value bool      `json:"value"`
}
