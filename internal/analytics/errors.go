package analytics

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInsufficientData matches any InsufficientDataError via errors.Is
	ErrInsufficientData = errors.New("insufficient data")
	// ErrCalculation matches any CalculationError via errors.Is
	ErrCalculation = errors.New("calculation error")
	// ErrUnknownMetric indicates a series key outside the metric table
	ErrUnknownMetric = errors.New("unknown metric")
)

// InsufficientDataError is returned when fewer than the required aligned
// points exist. The caller should ask the user to keep tracking.
type InsufficientDataError struct {
	Required int
	Actual   int
	Metrics  []string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: need at least %d shared days, got %d",
		strings.Join(e.Metrics, " vs "), e.Required, e.Actual)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// CalculationError is returned for degenerate numeric input that would
// otherwise produce NaN or Inf, such as a series with zero variance.
type CalculationError struct {
	Reason string
	Metric string
}

func (e *CalculationError) Error() string {
	if e.Metric != "" {
		return fmt.Sprintf("calculation error for %s: %s", e.Metric, e.Reason)
	}
	return "calculation error: " + e.Reason
}

func (e *CalculationError) Is(target error) bool {
	return target == ErrCalculation
}
