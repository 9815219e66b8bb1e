package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/qolstats-cli/internal/utils"
)

// CategoryTable is one category's averages across all states.
type CategoryTable struct {
	Name    string        `json:"name" yaml:"name"`
	Metrics []MetricSpec  `json:"metrics" yaml:"metrics"`
	Rows    []CategoryRow `json:"rows" yaml:"rows"`
}

// Report bundles everything one run computes.
type Report struct {
	RunID        string          `json:"run_id" yaml:"run_id"`
	GeneratedAt  time.Time       `json:"generated_at" yaml:"generated_at"`
	Sources      []string        `json:"sources" yaml:"sources"`
	Stats        LoadStats       `json:"stats" yaml:"stats"`
	Unemployment []StateRate     `json:"unemployment" yaml:"unemployment"`
	Highest      *StateRate      `json:"highest,omitempty" yaml:"highest,omitempty"`
	Lowest       *StateRate      `json:"lowest,omitempty" yaml:"lowest,omitempty"`
	Categories   []CategoryTable `json:"categories" yaml:"categories"`
	Happiness    []StateScore    `json:"happiness,omitempty" yaml:"happiness,omitempty"`
	Correlation  *Correlation    `json:"correlation,omitempty" yaml:"correlation,omitempty"`
	Warnings     []string        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// BuildReport runs every query. A nil clock means the real clock.
// Categories or happiness data whose columns are absent are skipped with a
// warning instead of failing the whole report.
func BuildReport(svc *Service, clock clockwork.Clock) (*Report, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	ds := svc.Dataset()
	r := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: clock.Now().UTC(),
		Sources:     []string{ds.States.Name, ds.Counties.Name},
		Stats:       ds.Stats,
	}
	if len(ds.Stats.UnknownStates) > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("unrecognized state codes in county data: %s", strings.Join(ds.Stats.UnknownStates, ", ")))
	}

	var err error
	if r.Unemployment, err = svc.RankedUnemployment(); err != nil {
		return nil, fmt.Errorf("unemployment: %w", err)
	}
	// Unknown codes in the county table make the extremes undefined; report
	// that instead of aborting.
	if hi, ok, err := svc.StateWithHighestUnemployment(); err != nil {
		r.Warnings = append(r.Warnings, fmt.Sprintf("highest unemployment: %v", err))
	} else if ok {
		r.Highest = &hi
	}
	if lo, ok, err := svc.StateWithLowestUnemployment(); err != nil {
		r.Warnings = append(r.Warnings, fmt.Sprintf("lowest unemployment: %v", err))
	} else if ok {
		r.Lowest = &lo
	}

	for _, c := range Categories() {
		rows, err := svc.ComputeCategoryAverages(c.Metrics)
		if err != nil {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %v", c.Name, err))
			continue
		}
		r.Categories = append(r.Categories, CategoryTable{Name: c.Name, Metrics: c.Metrics, Rows: rows})
	}

	if scores, err := svc.AllHappinessScores(); err != nil {
		r.Warnings = append(r.Warnings, fmt.Sprintf("happiness: %v", err))
	} else {
		r.Happiness = scores
		corr, err := svc.UnemploymentHappinessCorrelation()
		if err != nil {
			r.Warnings = append(r.Warnings, fmt.Sprintf("correlation: %v", err))
		} else {
			r.Correlation = &corr
		}
	}
	return r, nil
}

// JSON renders the report as indented JSON.
func (r *Report) JSON() ([]byte, error) { return utils.PrettyJSON(r) }

// YAML renders the report as YAML.
func (r *Report) YAML() ([]byte, error) {
	b, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return b, nil
}

// Markdown renders a compact, human-readable report.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[QUALITY OF LIFE REPORT]\n")
	b.WriteString(fmt.Sprintf("Run: %s\n", r.RunID))
	b.WriteString(fmt.Sprintf("Generated: %s\n", r.GeneratedAt.Format(time.RFC3339)))
	if len(r.Sources) > 0 {
		b.WriteString(fmt.Sprintf("Sources: %s\n", strings.Join(r.Sources, ", ")))
	}
	b.WriteString(fmt.Sprintf("States: %d rows; Counties: %d rows", r.Stats.StateRows, r.Stats.CountyRows))
	if r.Stats.DroppedRows > 0 {
		b.WriteString(fmt.Sprintf(" (dropped %d)", r.Stats.DroppedRows))
	}
	b.WriteString("\n")
	if r.Stats.FilledUnemployment > 0 {
		b.WriteString(fmt.Sprintf("Unemployment filled: %d cells with mean %s\n", r.Stats.FilledUnemployment, FormatRate(r.Stats.UnemploymentFill.Float)))
	}
	b.WriteString("\n")

	b.WriteString(RatesMarkdown(r.Unemployment))
	b.WriteString("\n")

	b.WriteString(ExtremesMarkdown(r.Highest, r.Lowest))
	b.WriteString("\n")

	for _, c := range r.Categories {
		b.WriteString(CategoryMarkdown(c.Name, c.Metrics, c.Rows))
		b.WriteString("\n")
	}

	if len(r.Happiness) > 0 {
		b.WriteString(ScoresMarkdown("HAPPINESS", r.Happiness))
		b.WriteString("\n")
	}

	if r.Correlation != nil {
		b.WriteString("[CORRELATION]\n")
		b.WriteString(CorrelationLine(*r.Correlation))
		b.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		b.WriteString("[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- " + w + "\n")
		}
	}
	return b.String()
}

// ExtremesMarkdown renders the highest and lowest unemployment states.
func ExtremesMarkdown(hi, lo *StateRate) string {
	return "[EXTREMES]\n" + extremeLine("Highest", hi) + extremeLine("Lowest", lo)
}

func extremeLine(label string, sr *StateRate) string {
	if sr == nil {
		return fmt.Sprintf("- %s: n/a\n", label)
	}
	return fmt.Sprintf("- %s: %s (%s) %s\n", label, sr.State, sr.Code, FormatRate(sr.Rate))
}

// FormatRate prints a fraction as a percentage, e.g. 0.0523 -> "5.23%".
func FormatRate(f float64) string { return fmt.Sprintf("%.2f%%", f*100) }

// FormatMetric prints a metric value; currency gets a '$' and digit grouping.
func FormatMetric(f float64, dollar bool) string {
	if dollar {
		return message.NewPrinter(language.English).Sprintf("$%.0f", f)
	}
	return fmt.Sprintf("%.4g", f)
}

// RatesMarkdown renders an unemployment table.
func RatesMarkdown(rates []StateRate) string {
	var b strings.Builder
	b.WriteString("[UNEMPLOYMENT]\n")
	if len(rates) == 0 {
		b.WriteString("(no data)\n")
		return b.String()
	}
	b.WriteString("| State | Code | Rate |\n|---|---|---|\n")
	for _, r := range rates {
		b.WriteString(fmt.Sprintf("| %s | %s | %s |\n", safeVal(r.State), r.Code, FormatRate(r.Rate)))
	}
	return b.String()
}

// CategoryMarkdown renders ragged category rows; metrics a state has no
// data for show as "–".
func CategoryMarkdown(name string, metrics []MetricSpec, rows []CategoryRow) string {
	var b strings.Builder
	b.WriteString("[" + strings.ToUpper(name) + "]\n")
	b.WriteString("| State |")
	for _, m := range metrics {
		b.WriteString(" " + safeVal(m.Column) + " |")
	}
	b.WriteString("\n|---|")
	for range metrics {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString("| " + safeVal(row.State) + " |")
		for _, m := range metrics {
			if v, ok := row.Values[m.Column]; ok {
				b.WriteString(" " + FormatMetric(v, m.Dollar) + " |")
			} else {
				b.WriteString(" – |")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ScoresMarkdown renders state-table scores under the given heading.
func ScoresMarkdown(heading string, scores []StateScore) string {
	var b strings.Builder
	b.WriteString("[" + heading + "]\n")
	b.WriteString("| State | Score |\n|---|---|\n")
	for _, s := range scores {
		b.WriteString(fmt.Sprintf("| %s | %.2f |\n", safeVal(s.State), s.Score))
	}
	return b.String()
}

// ComparisonMarkdown renders quality-of-life sub-scores as "raw (normalized)".
func ComparisonMarkdown(cmp []QualityComparison) string {
	var b strings.Builder
	b.WriteString("[QUALITY OF LIFE]\n| Score |")
	for _, c := range cmp {
		b.WriteString(" " + safeVal(c.State) + " |")
	}
	b.WriteString("\n|---|")
	for range cmp {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for _, col := range QualityOfLifeColumns {
		b.WriteString("| " + col + " |")
		for _, c := range cmp {
			v, ok := c.Scores[col]
			if !ok {
				b.WriteString(" – |")
				continue
			}
			b.WriteString(fmt.Sprintf(" %.2f (%.2f) |", v, c.Normalized[col]))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// CorrelationLine renders a correlation summary line.
func CorrelationLine(c Correlation) string {
	if r, ok := c.R.Get(); ok {
		return fmt.Sprintf("unemployment ~ happiness: r=%.3f (n=%d)\n", r, c.N)
	}
	return fmt.Sprintf("unemployment ~ happiness: n/a (n=%d)\n", c.N)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
