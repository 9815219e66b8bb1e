package analysis

import (
	"log/slog"

	"github.com/KaramelBytes/qolstats-cli/internal/observability"
	"github.com/KaramelBytes/qolstats-cli/internal/states"
)

// Aggregate is the outcome of one weighted average together with the
// counts behind it.
type Aggregate struct {
	Value Value `json:"value" yaml:"value"`
	// Counties is the number of county rows for the state.
	Counties int `json:"counties" yaml:"counties"`
	// MissingCells counts counties whose metric cell normalized to Missing.
	MissingCells int `json:"missing_cells" yaml:"missing_cells"`
	// Population is the denominator: every county row's population,
	// including rows with a missing metric.
	Population int64 `json:"population" yaml:"population"`
}

// Engine computes population-weighted metric averages over a Dataset.
type Engine struct {
	ds      *Dataset
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewEngine returns an engine over ds. It borrows the dataset's logger and metrics.
func NewEngine(ds *Dataset) *Engine {
	opt := ds.Options()
	logger := opt.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{ds: ds, logger: logger, metrics: opt.Metrics}
}

// Dataset returns the dataset the engine reads.
func (e *Engine) Dataset() *Dataset { return e.ds }

// WeightedAverage returns the population-weighted mean of metric over the
// counties of the state with the given code. isDollar selects the currency
// conversion path.
//
// An unknown code is an *states.InvalidCodeError and an unknown metric a
// *ColumnError. No county rows, zero total population, or no usable cell at
// all yield Missing.
func (e *Engine) WeightedAverage(code, metric string, isDollar bool) (Value, error) {
	agg, err := e.Aggregate(code, metric, isDollar)
	if err != nil {
		return Missing(), err
	}
	return agg.Value, nil
}

// Aggregate is WeightedAverage with the supporting counts.
//
// Counties whose cell is Missing are left out of the weighted sum but their
// population still counts toward the total, so the average is pulled toward
// zero when a state has gaps. Aggregate.MissingCells reports how many.
func (e *Engine) Aggregate(code, metric string, isDollar bool) (Aggregate, error) {
	if !states.Valid(code) {
		return Aggregate{}, &states.InvalidCodeError{Code: code}
	}
	col, err := e.ds.Counties.Column(metric)
	if err != nil {
		return Aggregate{}, err
	}

	rows := e.ds.CountyRows(code)
	if len(rows) == 0 {
		e.metrics.ObserveAverage("no_rows")
		return Aggregate{}, nil
	}

	path := "plain"
	if isDollar {
		path = "dollar"
	}
	agg := Aggregate{Counties: len(rows)}
	var sum float64
	var contributing int
	for _, i := range rows {
		pop := e.ds.Population(i)
		agg.Population += pop

		raw := e.ds.Counties.Rows[i][col]
		v, err := NormalizeCell(raw, isDollar)
		if err != nil {
			e.metrics.ObserveCell(path, "invalid")
			e.logger.Warn("unparseable metric cell treated as missing",
				"state", code, "metric", metric, "line", e.ds.Counties.Lines[i], "error", err)
		}
		f, ok := v.Get()
		if !ok {
			if err == nil {
				e.metrics.ObserveCell(path, "missing")
			}
			agg.MissingCells++
			continue
		}
		e.metrics.ObserveCell(path, "value")
		sum += float64(pop) * f
		contributing++
	}

	if agg.Population == 0 || contributing == 0 {
		e.metrics.ObserveAverage("missing")
		return agg, nil
	}
	agg.Value = Some(sum / float64(agg.Population))
	e.metrics.ObserveAverage("value")
	return agg, nil
}
