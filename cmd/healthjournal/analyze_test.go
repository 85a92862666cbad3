package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
)

func writeExport(t *testing.T, days int) string {
	t.Helper()
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	rows := make([]string, 0, days)
	for i := 0; i < days; i++ {
		rows = append(rows, fmt.Sprintf(
			`{"id":"l%d","user_id":"u1","date":"%s","mood":%d,"sleep_hours":%.1f,"exercised":%t,"symptoms":[{"symptom_id":"s1","severity":%d}]}`,
			i, start.AddDate(0, 0, i).Format("2006-01-02"), 4+i%5, 6+float64(i%5)*0.5, i%2 == 0, i%3,
		))
	}

	path := filepath.Join(t.TempDir(), "logs.json")
	require.NoError(t, os.WriteFile(path, []byte("["+strings.Join(rows, ",")+"]"), 0o600))
	return path
}

func TestAnalyzeCommandJSON(t *testing.T) {
	input := writeExport(t, 21)
	symptoms := filepath.Join(t.TempDir(), "symptoms.json")
	require.NoError(t, os.WriteFile(symptoms, []byte(`[{"id":"s1","name":"Headache"}]`), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"analyze", "--input", input, "--symptoms", symptoms, "--format", "json", "--limit", "3"})
	require.NoError(t, rootCmd.Execute())

	var report models.AnalysisReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, 21, report.TotalDays)
	assert.Contains(t, report.Statistics, "mood")
	assert.Contains(t, report.Statistics, "symptom:s1")
	assert.NotEmpty(t, report.Correlations)
	assert.LessOrEqual(t, len(report.Insights), 3)
}

func TestAnalyzeCommandMissingFile(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"analyze", "--input", filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, rootCmd.Execute())
}

func TestAnalyzePeriod(t *testing.T) {
	period, err := analyzePeriod("", "")
	require.NoError(t, err)
	assert.True(t, period.IsZero())

	period, err = analyzePeriod("2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, 31, period.Days())

	_, err = analyzePeriod("2024-03-01", "")
	assert.Error(t, err)

	_, err = analyzePeriod("2024-03-31", "2024-03-01")
	assert.Error(t, err)

	_, err = analyzePeriod("March", "2024-03-01")
	assert.Error(t, err)
}
