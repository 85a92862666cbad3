package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/JonnyWalker81/healthjournal/backend/internal/analytics"
	"github.com/JonnyWalker81/healthjournal/backend/internal/logger"
	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
	"github.com/JonnyWalker81/healthjournal/backend/internal/output"
	"github.com/JonnyWalker81/healthjournal/backend/internal/repository"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze an exported log file",
	Long: `Run the full analysis offline over a JSON export of daily logs and print
statistics, correlations, the health score, streaks and insights.`,
	Example: `  healthjournal analyze --input logs.json
  healthjournal analyze --input logs.json --symptoms symptoms.json --limit 5 --format json`,
	RunE: runAnalyze,
}

var (
	analyzeInput        string
	analyzeSymptoms     string
	analyzeLimit        int
	analyzeFormat       string
	analyzeStart        string
	analyzeEnd          string
	analyzeCorrelations int
	analyzeNoProgress   bool
	analyzeNoColor      bool
	analyzeMinSamples   int
	analyzeSignificance float64
)

func init() {
	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeInput, "input", "i", "", "JSON array of daily logs (required)")
	f.StringVar(&analyzeSymptoms, "symptoms", "", "JSON array of symptom definitions")
	f.IntVarP(&analyzeLimit, "limit", "n", analytics.DefaultMaxInsights, "Maximum insights to show")
	f.StringVarP(&analyzeFormat, "format", "f", "text", "Output format: text or json")
	f.StringVar(&analyzeStart, "start", "", "First day to analyze (YYYY-MM-DD)")
	f.StringVar(&analyzeEnd, "end", "", "Last day to analyze (YYYY-MM-DD)")
	f.IntVar(&analyzeCorrelations, "correlations", 10, "Maximum correlations to show in text output (0 for all)")
	f.BoolVar(&analyzeNoProgress, "no-progress", false, "Hide the progress bar")
	f.BoolVar(&analyzeNoColor, "no-color", false, "Disable colored output")
	f.IntVar(&analyzeMinSamples, "min-samples", analytics.DefaultMinimumSampleSize, "Fewest shared days a correlation needs")
	f.Float64Var(&analyzeSignificance, "significance", analytics.DefaultSignificanceLevel, "p-value cutoff for significant correlations")

	_ = analyzeCmd.MarkFlagRequired("input")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := logger.New(logger.Config{
		Level:  logger.ParseLevel(valueOr(logLevel, "warn")),
		Format: valueOr(logFormat, "text"),
		Output: os.Stderr,
	})
	ctx := logger.WithLogger(cmd.Context(), log)

	logs, err := readLogs(analyzeInput)
	if err != nil {
		return err
	}
	symptoms, err := readSymptoms(analyzeSymptoms)
	if err != nil {
		return err
	}

	period, err := analyzePeriod(analyzeStart, analyzeEnd)
	if err != nil {
		return err
	}

	cfg := analytics.DefaultConfig()
	cfg.MinimumSampleSize = analyzeMinSamples
	cfg.SignificanceLevel = analyzeSignificance

	format := output.ParseFormat(analyzeFormat)
	opts := analytics.AnalyzeOptions{Period: period, MaxInsights: analyzeLimit}

	var tracker *output.Tracker
	if !analyzeNoProgress && format == output.FormatText {
		opts.OnScanStart = func(total int) {
			tracker = output.NewTracker(os.Stderr, "Correlating metrics", total)
		}
		opts.OnPairDone = func() {
			if tracker != nil {
				tracker.Tick()
			}
		}
	}

	started := time.Now()
	report, err := analytics.NewPipeline(cfg).Analyze(ctx, logs, symptoms, opts)
	if tracker != nil {
		tracker.Finish()
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	logger.Ctx(ctx).Info("analysis complete",
		logger.Int("logs", len(logs)),
		logger.Int("days", report.TotalDays),
		logger.Int("correlations", len(report.Correlations)),
		logger.Duration("duration", time.Since(started)),
	)

	if len(logs) == 0 {
		color.Yellow("No logs found in %s", analyzeInput)
	}

	return output.RenderReport(cmd.OutOrStdout(), report, output.Options{
		Format:          format,
		Colored:         !analyzeNoColor && !color.NoColor,
		MaxCorrelations: analyzeCorrelations,
	})
}

func readLogs(path string) ([]models.DailyLog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read logs: %w", err)
	}
	logs, err := repository.DecodeDailyLogs(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return logs, nil
}

func readSymptoms(path string) ([]models.Symptom, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read symptoms: %w", err)
	}
	var symptoms []models.Symptom
	if err := json.Unmarshal(data, &symptoms); err != nil {
		return nil, fmt.Errorf("%s: failed to decode symptoms: %w", path, err)
	}
	return symptoms, nil
}

// analyzePeriod returns the zero range (the full span of the logs) unless
// both ends are given
func analyzePeriod(start, end string) (models.DateRange, error) {
	if start == "" && end == "" {
		return models.DateRange{}, nil
	}
	if start == "" || end == "" {
		return models.DateRange{}, fmt.Errorf("--start and --end must be used together")
	}

	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("invalid --start: %w", err)
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("invalid --end: %w", err)
	}
	if e.Before(s) {
		return models.DateRange{}, fmt.Errorf("--end must not be before --start")
	}
	return models.NewDateRange(s, e), nil
}

func valueOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
