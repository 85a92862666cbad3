// Package output renders analysis reports for the command line.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/shopspring/decimal"

	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
)

// Format represents an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat converts a string to Format, defaulting to text.
func ParseFormat(s string) Format {
	if strings.EqualFold(s, "json") {
		return FormatJSON
	}
	return FormatText
}

// Options controls report rendering
type Options struct {
	Format  Format
	Colored bool
	// MaxCorrelations limits the correlation table; 0 shows all
	MaxCorrelations int
}

// RenderReport writes report to w in the requested format
func RenderReport(w io.Writer, report *models.AnalysisReport, opts Options) error {
	if opts.Format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	p := printer{w: w, colored: opts.Colored}
	p.summary(report)
	p.statistics(report.Statistics)
	p.correlations(report.Correlations, opts.MaxCorrelations)
	p.streaks(report.Streaks)
	p.insights(report.Insights)
	return nil
}

type printer struct {
	w       io.Writer
	colored bool
}

func (p printer) title(s string) {
	if p.colored {
		color.New(color.Bold).Fprintln(p.w, s)
	} else {
		fmt.Fprintln(p.w, s)
	}
	fmt.Fprintln(p.w, strings.Repeat("=", len(s)))
}

func (p printer) paint(c *color.Color, s string) string {
	if !p.colored {
		return s
	}
	return c.Sprint(s)
}

func (p printer) summary(r *models.AnalysisReport) {
	p.title("Health Journal Analysis")
	if !r.Period.IsZero() {
		fmt.Fprintf(p.w, "Period: %s to %s (%d logged days)\n",
			r.Period.Start.Format("2006-01-02"), r.Period.End.Format("2006-01-02"), r.TotalDays)
	}

	hs := r.HealthScore
	scoreColor := color.New(color.FgGreen)
	switch {
	case hs.OverallScore < 40:
		scoreColor = color.New(color.FgRed)
	case hs.OverallScore < 60:
		scoreColor = color.New(color.FgYellow)
	}
	score := p.paint(scoreColor, fmt.Sprintf("%s (%s)", fixed(hs.OverallScore, 1), hs.Grade))
	fmt.Fprintf(p.w, "Health score: %s, %s\n\n", score, p.trend(hs.Trend))
}

func (p printer) trend(t models.ScoreTrend) string {
	switch t {
	case models.ScoreImproving:
		return p.paint(color.New(color.FgGreen), "improving")
	case models.ScoreDeclining:
		return p.paint(color.New(color.FgRed), "declining")
	default:
		return "stable"
	}
}

func (p printer) statistics(stats map[string]models.ChartStatistics) {
	if len(stats) == 0 {
		return
	}
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		s := stats[k]
		change := fixed(s.ChangePercentage, 1) + "%"
		switch s.TrendDirection {
		case models.TrendIncreasing:
			change = p.paint(color.New(color.FgGreen), "+"+change)
		case models.TrendDecreasing:
			change = p.paint(color.New(color.FgRed), change)
		}
		rows = append(rows, []string{
			k, fixed(s.Mean, 2), fixed(s.Min, 1), fixed(s.Max, 1),
			string(s.TrendDirection), change, fmt.Sprint(s.SampleSize),
		})
	}
	p.table("Statistics", []string{"Metric", "Mean", "Min", "Max", "Trend", "Change", "Days"}, rows)
}

func (p printer) correlations(results []models.CorrelationResult, limit int) {
	if len(results) == 0 {
		return
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		sig := "no"
		if r.IsSignificant {
			sig = p.paint(color.New(color.FgGreen), "yes")
		}
		rows = append(rows, []string{
			r.PrimaryMetric, r.SecondaryMetric, fixed(r.Coefficient, 2),
			r.StrengthLabel + " " + strings.ToLower(r.DirectionLabel),
			fixed(r.PValue, 3), sig, fmt.Sprint(r.MatchedPointCount),
		})
	}
	p.table("Correlations", []string{"Primary", "Secondary", "r", "Strength", "p", "Significant", "Days"}, rows)
}

func (p printer) streaks(streaks []models.StreakResult) {
	if len(streaks) == 0 {
		return
	}
	rows := make([][]string, 0, len(streaks))
	for _, s := range streaks {
		active := "no"
		if s.IsActive {
			active = p.paint(color.New(color.FgGreen), "yes")
		}
		rows = append(rows, []string{s.StreakKind, fmt.Sprint(s.CurrentStreak), fmt.Sprint(s.LongestStreak), active})
	}
	p.table("Streaks", []string{"Streak", "Current", "Longest", "Active"}, rows)
}

func (p printer) insights(insights []models.HealthInsight) {
	p.title("Insights")
	if len(insights) == 0 {
		fmt.Fprintln(p.w, "No insights yet. Keep tracking!")
		return
	}
	for i, insight := range insights {
		fmt.Fprintf(p.w, "%d. [%s] %s\n", i+1, p.priority(insight.Priority), insight.Title)
		fmt.Fprintf(p.w, "   %s\n", insight.Description)
		if insight.IsActionable && insight.ActionableText != "" {
			fmt.Fprintf(p.w, "   -> %s\n", insight.ActionableText)
		}
	}
	fmt.Fprintln(p.w)
}

func (p printer) priority(pr models.Priority) string {
	label := strings.ToUpper(string(pr))
	switch pr {
	case models.PriorityCritical:
		return p.paint(color.New(color.FgRed, color.Bold), label)
	case models.PriorityHigh:
		return p.paint(color.New(color.FgRed), label)
	case models.PriorityMedium:
		return p.paint(color.New(color.FgYellow), label)
	default:
		return label
	}
}

func (p printer) table(title string, headers []string, rows [][]string) {
	p.title(title)

	table := tablewriter.NewTable(p.w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{
				Separators: tw.Separators{BetweenColumns: tw.Off},
			},
		}),
	)

	table.Header(headers)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
	fmt.Fprintln(p.w)
}

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}
