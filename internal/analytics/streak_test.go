package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
)

func flagsOf(values ...bool) []models.DailyFlag {
	flags := make([]models.DailyFlag, len(values))
	for i, v := range values {
		flags[i] = models.DailyFlag{Date: dayN(i), Value: v}
	}
	return flags
}

func TestCalculateStreak(t *testing.T) {
	engine := NewStreakEngine()
	flags := flagsOf(true, true, true, false, true, true)

	tests := []struct {
		name        string
		flags       []models.DailyFlag
		asOf        int
		wantCurrent int
		wantLongest int
		wantActive  bool
	}{
		{name: "active today", flags: flags, asOf: 5, wantCurrent: 2, wantLongest: 3, wantActive: true},
		{name: "today not logged yet", flags: flags, asOf: 6, wantCurrent: 2, wantLongest: 3, wantActive: false},
		{name: "lapsed", flags: flags, asOf: 8, wantCurrent: 0, wantLongest: 3, wantActive: false},
		{name: "broken today", flags: flagsOf(true, true, false), asOf: 2, wantCurrent: 0, wantLongest: 2, wantActive: false},
		{name: "future days ignored", flags: flags, asOf: 2, wantCurrent: 3, wantLongest: 3, wantActive: true},
		{name: "empty", flags: nil, asOf: 0, wantCurrent: 0, wantLongest: 0, wantActive: false},
		{name: "all false", flags: flagsOf(false, false), asOf: 1, wantCurrent: 0, wantLongest: 0, wantActive: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.CalculateStreak("exercise", tt.flags, dayN(tt.asOf))
			assert.Equal(t, "exercise", got.StreakKind)
			assert.Equal(t, tt.wantCurrent, got.CurrentStreak)
			assert.Equal(t, tt.wantLongest, got.LongestStreak)
			assert.Equal(t, tt.wantActive, got.IsActive)
			assert.LessOrEqual(t, got.CurrentStreak, got.LongestStreak)
		})
	}
}

func TestCalculateStreakMissingDayBreaksRun(t *testing.T) {
	engine := NewStreakEngine()
	flags := []models.DailyFlag{
		{Date: dayN(0), Value: true},
		{Date: dayN(1), Value: true},
		{Date: dayN(3), Value: true},
	}

	got := engine.CalculateStreak("logging", flags, dayN(3))
	assert.Equal(t, 1, got.CurrentStreak)
	assert.Equal(t, 2, got.LongestStreak)
	assert.True(t, got.IsActive)
}

func TestCalculateStreakDuplicateDays(t *testing.T) {
	engine := NewStreakEngine()
	flags := []models.DailyFlag{
		{Date: dayN(0), Value: true},
		{Date: dayN(1), Value: false},
		{Date: dayN(1).Add(9 * time.Hour), Value: true},
	}

	got := engine.CalculateStreak("medication", flags, dayN(1))
	assert.Equal(t, 2, got.CurrentStreak)
	assert.True(t, got.IsActive)
}

func TestFlagsFromSeries(t *testing.T) {
	flags := FlagsFromSeries(seriesOf("sleep_hours", day0, 6.5, 7, 8), AtLeast(7))
	assert.Equal(t, []bool{false, true, true}, []bool{flags[0].Value, flags[1].Value, flags[2].Value})
}

func TestStreakPersonalBest(t *testing.T) {
	assert.True(t, StreakPersonalBest(models.StreakResult{CurrentStreak: 4, LongestStreak: 4}))
	assert.False(t, StreakPersonalBest(models.StreakResult{CurrentStreak: 2, LongestStreak: 4}))
	assert.False(t, StreakPersonalBest(models.StreakResult{}))
}
