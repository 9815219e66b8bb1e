package analysis

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/qolstats-cli/internal/states"
)

// ErrNoStateRow is returned when a valid state has no row in the state table.
var ErrNoStateRow = errors.New("state not present in state table")

// MetricSpec names a county-table column and how to convert it.
type MetricSpec struct {
	Column string `json:"column" yaml:"column"`
	Dollar bool   `json:"dollar" yaml:"dollar"`
}

// Category groups metrics that are reported together.
type Category struct {
	Name    string
	Metrics []MetricSpec
}

var (
	Economy = Category{Name: "economy", Metrics: []MetricSpec{
		{Column: "Cost of Living", Dollar: true},
		{Column: "2022 Median Income", Dollar: true},
	}}
	Health = Category{Name: "health", Metrics: []MetricSpec{
		{Column: "WaterQualityVPV"},
		{Column: "%CvgCityPark"},
	}}
	Safety = Category{Name: "safety", Metrics: []MetricSpec{
		{Column: "2016 Crime Rate"},
	}}
)

// Categories lists the predefined categories in report order.
func Categories() []Category { return []Category{Economy, Health, Safety} }

// CategoryByName resolves "economy", "health" or "safety" (any case).
func CategoryByName(name string) (Category, error) {
	for _, c := range Categories() {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return c, nil
		}
	}
	return Category{}, fmt.Errorf("unknown category %q (use economy, health or safety)", name)
}

// QualityOfLifeColumns are the state-table sub-scores used for comparisons.
var QualityOfLifeColumns = []string{
	"QualityOfLifeTotalScore",
	"QualityOfLifeAffordability",
	"QualityOfLifeEconomy",
	"QualityOfLifeEducationAndHealth",
	"QualityOfLifeSafety",
}

// StateRate is a state's weighted rate, as a fraction (0.05 = 5%).
type StateRate struct {
	Code  string  `json:"code" yaml:"code"`
	State string  `json:"state" yaml:"state"`
	Rate  float64 `json:"rate" yaml:"rate"`
}

// CategoryRow holds one state's category averages. Values only contains
// metrics that had data, so rows of different states may differ in shape.
type CategoryRow struct {
	Code   string             `json:"code" yaml:"code"`
	State  string             `json:"state" yaml:"state"`
	Values map[string]float64 `json:"values" yaml:"values"`
}

// StateScore is a score read from the state table.
type StateScore struct {
	State string  `json:"state" yaml:"state"`
	Score float64 `json:"score" yaml:"score"`
}

// QualityComparison holds raw and min-max normalized quality-of-life scores
// for one state. Normalization spans every state-table row.
type QualityComparison struct {
	State      string             `json:"state" yaml:"state"`
	Scores     map[string]float64 `json:"scores" yaml:"scores"`
	Normalized map[string]float64 `json:"normalized" yaml:"normalized"`
}

// Correlation is a Pearson coefficient over N paired states.
type Correlation struct {
	R Value `json:"r" yaml:"r"`
	N int   `json:"n" yaml:"n"`
}

// Service answers the per-state questions the CLI and reports ask.
type Service struct {
	engine *Engine
	ds     *Dataset
	logger *slog.Logger
}

// NewService wraps an engine.
func NewService(engine *Engine) *Service {
	return &Service{engine: engine, ds: engine.Dataset(), logger: engine.logger}
}

// Dataset returns the underlying dataset.
func (s *Service) Dataset() *Dataset { return s.ds }

// Engine returns the underlying engine.
func (s *Service) Engine() *Engine { return s.engine }

// WeightedUnemployment is the weighted unemployment rate of one state.
func (s *Service) WeightedUnemployment(code string) (Value, error) {
	return s.engine.WeightedAverage(code, s.ds.opt.UnemploymentColumn, false)
}

// AllWeightedUnemployment returns every state with data, in table order.
// States without data are omitted.
func (s *Service) AllWeightedUnemployment() ([]StateRate, error) {
	var out []StateRate
	for _, st := range states.All() {
		v, err := s.WeightedUnemployment(st.Code)
		if err != nil {
			return nil, fmt.Errorf("unemployment for %s: %w", st.Code, err)
		}
		if rate, ok := v.Get(); ok {
			out = append(out, StateRate{Code: st.Code, State: st.Name, Rate: rate})
		}
	}
	return out, nil
}

// RankedUnemployment is AllWeightedUnemployment sorted by rate, highest first.
func (s *Service) RankedUnemployment() ([]StateRate, error) {
	rates, err := s.AllWeightedUnemployment()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rates, func(i, j int) bool { return rates[i].Rate > rates[j].Rate })
	return rates, nil
}

// StateWithHighestUnemployment scans the county table's states in first-seen
// order. A rate must be strictly above the running maximum, which starts at 0,
// so ties keep the earlier state. ok is false when no state qualified.
func (s *Service) StateWithHighestUnemployment() (StateRate, bool, error) {
	return s.extreme(0, func(rate, best float64) bool { return rate > best })
}

// StateWithLowestUnemployment mirrors StateWithHighestUnemployment with a
// running minimum that starts at 100.
func (s *Service) StateWithLowestUnemployment() (StateRate, bool, error) {
	return s.extreme(100, func(rate, best float64) bool { return rate < best })
}

func (s *Service) extreme(seed float64, better func(rate, best float64) bool) (StateRate, bool, error) {
	best := seed
	var bestCode string
	for _, code := range s.ds.StateCodesInOrder() {
		v, err := s.WeightedUnemployment(code)
		if err != nil {
			return StateRate{}, false, err
		}
		rate, ok := v.Get()
		// A zero rate is treated like no data.
		if !ok || rate == 0 {
			continue
		}
		if better(rate, best) {
			best = rate
			bestCode = code
		}
	}
	if bestCode == "" {
		return StateRate{}, false, nil
	}
	name, _ := states.Name(bestCode)
	return StateRate{Code: bestCode, State: name, Rate: best}, true, nil
}

// ComputeCategoryAverages returns one row per state, in table order, with
// the weighted average of each metric that had data. Metrics without data
// are omitted from the row rather than stored as zero.
func (s *Service) ComputeCategoryAverages(metrics []MetricSpec) ([]CategoryRow, error) {
	out := make([]CategoryRow, 0, states.Count)
	for _, st := range states.All() {
		row := CategoryRow{Code: st.Code, State: st.Name, Values: map[string]float64{}}
		for _, m := range metrics {
			v, err := s.engine.WeightedAverage(st.Code, m.Column, m.Dollar)
			if err != nil {
				return nil, fmt.Errorf("%s for %s: %w", m.Column, st.Code, err)
			}
			if f, ok := v.Get(); ok {
				row.Values[m.Column] = f
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// HappinessScore reads the state's happiness score from the state table.
// A state without a row or with an unusable score is Missing.
func (s *Service) HappinessScore(code string) (Value, error) {
	name, err := states.Name(code)
	if err != nil {
		return Missing(), err
	}
	col, err := s.ds.States.Column(s.ds.opt.HappinessColumn)
	if err != nil {
		return Missing(), err
	}
	row, ok := s.ds.StateRow(name)
	if !ok {
		s.logger.Info("no state-table row", "state", name)
		return Missing(), nil
	}
	return Normalize(row[col]), nil
}

// AllHappinessScores returns the happiness score of every state-table row in
// file order. Rows with an unusable score are skipped.
func (s *Service) AllHappinessScores() ([]StateScore, error) {
	col, err := s.ds.States.Column(s.ds.opt.HappinessColumn)
	if err != nil {
		return nil, err
	}
	var out []StateScore
	for i, row := range s.ds.States.Rows {
		v, ok := Normalize(row[col]).Get()
		if !ok {
			s.logger.Warn("skipping unusable happiness score",
				"line", s.ds.States.Lines[i], "value", row[col])
			continue
		}
		out = append(out, StateScore{State: strings.TrimSpace(row[s.ds.nameCol]), Score: v})
	}
	return out, nil
}

// CompareQualityOfLife returns the quality-of-life sub-scores of the named
// states. Names are matched case-insensitively against the fixed table.
func (s *Service) CompareQualityOfLife(names []string) ([]QualityComparison, error) {
	cols := make([]int, len(QualityOfLifeColumns))
	for i, c := range QualityOfLifeColumns {
		idx, err := s.ds.States.Column(c)
		if err != nil {
			return nil, err
		}
		cols[i] = idx
	}

	lo := make([]float64, len(cols))
	hi := make([]float64, len(cols))
	for i := range cols {
		lo[i], hi[i] = math.Inf(1), math.Inf(-1)
	}
	for _, row := range s.ds.States.Rows {
		for i, c := range cols {
			if v, ok := Normalize(row[c]).Get(); ok {
				lo[i] = math.Min(lo[i], v)
				hi[i] = math.Max(hi[i], v)
			}
		}
	}

	out := make([]QualityComparison, 0, len(names))
	for _, n := range names {
		code, err := states.CodeForName(states.TitleName(n))
		if err != nil {
			return nil, err
		}
		canonical, _ := states.Name(code)
		row, ok := s.ds.StateRow(canonical)
		if !ok {
			return nil, fmt.Errorf("%s: %w", canonical, ErrNoStateRow)
		}
		qc := QualityComparison{State: canonical, Scores: map[string]float64{}, Normalized: map[string]float64{}}
		for i, c := range cols {
			v, ok := Normalize(row[c]).Get()
			if !ok {
				continue
			}
			name := QualityOfLifeColumns[i]
			qc.Scores[name] = v
			if span := hi[i] - lo[i]; span > 0 {
				qc.Normalized[name] = (v - lo[i]) / span
			} else {
				qc.Normalized[name] = 0
			}
		}
		out = append(out, qc)
	}
	return out, nil
}

// UnemploymentHappinessCorrelation pairs each state's weighted unemployment
// with its happiness score by state name and returns Pearson's r. Fewer than
// two pairs, or zero variance, leave R Missing.
func (s *Service) UnemploymentHappinessCorrelation() (Correlation, error) {
	rates, err := s.AllWeightedUnemployment()
	if err != nil {
		return Correlation{}, err
	}
	var sx, sy, sxx, syy, sxy, n float64
	for _, r := range rates {
		h, err := s.HappinessScore(r.Code)
		if err != nil {
			return Correlation{}, err
		}
		y, ok := h.Get()
		if !ok {
			continue
		}
		x := r.Rate
		n++
		sx += x
		sy += y
		sxx += x * x
		syy += y * y
		sxy += x * y
	}
	c := Correlation{N: int(n)}
	if n < 2 {
		return c, nil
	}
	denom := math.Sqrt((n*sxx - sx*sx) * (n*syy - sy*sy))
	if denom == 0 || math.IsNaN(denom) {
		return c, nil
	}
	r := (n*sxy - sx*sy) / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	c.R = Some(r)
	return c, nil
}
