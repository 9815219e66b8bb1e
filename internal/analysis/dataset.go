package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/qolstats-cli/internal/observability"
	"github.com/KaramelBytes/qolstats-cli/internal/states"
)

// ErrUnknownColumn is matched by every ColumnError.
var ErrUnknownColumn = errors.New("unknown column")

// ColumnError reports a column that a table does not have.
type ColumnError struct {
	Table  string
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s: column %q not found", e.Table, e.Column)
}

func (e *ColumnError) Is(target error) bool { return target == ErrUnknownColumn }

// Table is a CSV file held in memory as strings. Rows are padded to the
// header width.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
	// Lines holds the 1-based source line of each row, for diagnostics.
	Lines []int
	index map[string]int
}

// Column returns the index of the named column. Names are matched exactly
// after trimming, as headers are trimmed on read.
func (t *Table) Column(name string) (int, error) {
	if i, ok := t.index[name]; ok {
		return i, nil
	}
	return -1, &ColumnError{Table: t.Name, Column: name}
}

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len is the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// ReadTable reads a CSV (or TSV, by extension) file.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ParseTable(filepath.Base(path), f, sniffDelimiter(path))
}

// ParseTable reads CSV content from r. A zero delim means ','.
func ParseTable(name string, r io.Reader, delim rune) (*Table, error) {
	if delim == 0 {
		delim = ','
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty file, header row required", name)
		}
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}
	t := &Table{Name: name, Header: make([]string, len(header)), index: make(map[string]int, len(header))}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		t.Header[i] = h
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: read row: %w", name, err)
		}
		line, _ := cr.FieldPos(0)
		row := make([]string, len(t.Header))
		copy(row, rec)
		t.Rows = append(t.Rows, row)
		t.Lines = append(t.Lines, line)
	}
	return t, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// LoadOptions names the columns the dataset relies on.
type LoadOptions struct {
	// County table.
	StateColumn        string
	PopulationColumn   string
	UnemploymentColumn string
	// State table.
	StateNameColumn string
	HappinessColumn string

	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// DefaultLoadOptions returns the column names used by the published survey files.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		StateColumn:        "LSTATE",
		PopulationColumn:   "2022 Population",
		UnemploymentColumn: "Unemployment",
		StateNameColumn:    "state",
		HappinessColumn:    "HappiestStatesTotalHappinessScore",
	}
}

// LoadStats summarizes the one-time cleanup.
type LoadStats struct {
	StateRows          int      `json:"state_rows" yaml:"state_rows"`
	CountyRows         int      `json:"county_rows" yaml:"county_rows"`
	DroppedRows        int      `json:"dropped_rows" yaml:"dropped_rows"`
	FilledUnemployment int      `json:"filled_unemployment" yaml:"filled_unemployment"`
	UnemploymentFill   Value    `json:"unemployment_fill" yaml:"unemployment_fill"`
	UnknownStates      []string `json:"unknown_states,omitempty" yaml:"unknown_states,omitempty"`
}

// Dataset is the cleaned pair of tables. It is read-only after construction.
type Dataset struct {
	States   *Table
	Counties *Table
	Stats    LoadStats

	opt        LoadOptions
	stateCol   int
	unempCol   int
	nameCol    int
	population []int64
	byState    map[string][]int
	codeOrder  []string
	stateRow   map[string]int
}

// Load reads both CSV files and cleans the county table.
func Load(statePath, countyPath string, opt LoadOptions) (*Dataset, error) {
	st, err := ReadTable(statePath)
	if err != nil {
		return nil, fmt.Errorf("load state data: %w", err)
	}
	ct, err := ReadTable(countyPath)
	if err != nil {
		return nil, fmt.Errorf("load county data: %w", err)
	}
	return NewDataset(st, ct, opt)
}

// NewDataset validates the required columns and cleans the county table in
// place: empty unemployment cells are filled with the column mean, then rows
// with an unparseable population are dropped.
func NewDataset(stateTbl, countyTbl *Table, opt LoadOptions) (*Dataset, error) {
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	d := &Dataset{States: stateTbl, Counties: countyTbl, opt: opt}

	var err error
	if d.nameCol, err = stateTbl.Column(opt.StateNameColumn); err != nil {
		return nil, err
	}
	if d.stateCol, err = countyTbl.Column(opt.StateColumn); err != nil {
		return nil, err
	}
	popCol, err := countyTbl.Column(opt.PopulationColumn)
	if err != nil {
		return nil, err
	}
	if d.unempCol, err = countyTbl.Column(opt.UnemploymentColumn); err != nil {
		return nil, err
	}

	d.fillUnemployment()
	d.parsePopulation(popCol)
	d.indexCounties()
	d.indexStates()

	d.Stats.StateRows = stateTbl.Len()
	d.Stats.CountyRows = countyTbl.Len()
	opt.Metrics.ObserveLoad("state", d.Stats.StateRows, 0, 0)
	opt.Metrics.ObserveLoad("county", d.Stats.CountyRows, d.Stats.DroppedRows, d.Stats.FilledUnemployment)
	opt.Logger.Debug("dataset loaded",
		"state_table", stateTbl.Name, "state_rows", d.Stats.StateRows,
		"county_table", countyTbl.Name, "county_rows", d.Stats.CountyRows,
		"dropped", d.Stats.DroppedRows, "filled_unemployment", d.Stats.FilledUnemployment)
	return d, nil
}

// fillUnemployment replaces empty cells with the mean of the normalized
// present values across every loaded county. The mean is computed once.
func (d *Dataset) fillUnemployment() {
	var sum float64
	var n int
	var empty []int
	for i, row := range d.Counties.Rows {
		cell := row[d.unempCol]
		if strings.TrimSpace(cell) == "" {
			empty = append(empty, i)
			continue
		}
		if v, ok := Normalize(cell).Get(); ok {
			sum += v
			n++
		}
	}
	if len(empty) == 0 || n == 0 {
		return
	}
	mean := sum / float64(n)
	fill := strconv.FormatFloat(mean, 'g', -1, 64)
	for _, i := range empty {
		d.Counties.Rows[i][d.unempCol] = fill
	}
	d.Stats.FilledUnemployment = len(empty)
	d.Stats.UnemploymentFill = Some(mean)
	d.opt.Logger.Info("filled empty unemployment cells with column mean",
		"cells", len(empty), "mean", mean)
}

// parsePopulation rewrites the population column as plain integers and
// drops rows that cannot be parsed.
func (d *Dataset) parsePopulation(col int) {
	t := d.Counties
	rows := t.Rows[:0]
	lines := t.Lines[:0]
	pops := make([]int64, 0, len(t.Rows))
	for i, row := range t.Rows {
		p, ok := parsePopulation(row[col])
		if !ok {
			d.Stats.DroppedRows++
			d.opt.Logger.Warn("dropping county row with unparseable population",
				"line", t.Lines[i], "value", row[col])
			continue
		}
		row[col] = strconv.FormatInt(p, 10)
		rows = append(rows, row)
		lines = append(lines, t.Lines[i])
		pops = append(pops, p)
	}
	t.Rows = rows
	t.Lines = lines
	d.population = pops
}

func parsePopulation(raw string) (int64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	f, ok := parseFinite(s)
	if !ok || f < 0 || f > math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func (d *Dataset) indexCounties() {
	d.byState = make(map[string][]int)
	var unknown []string
	for i, row := range d.Counties.Rows {
		code := strings.TrimSpace(row[d.stateCol])
		if _, seen := d.byState[code]; !seen {
			d.codeOrder = append(d.codeOrder, code)
			if !states.Valid(code) {
				unknown = append(unknown, code)
			}
		}
		d.byState[code] = append(d.byState[code], i)
	}
	if len(unknown) > 0 {
		d.Stats.UnknownStates = unknown
		d.opt.Logger.Warn("county table contains unrecognized state codes", "codes", unknown)
	}
}

func (d *Dataset) indexStates() {
	d.stateRow = make(map[string]int, d.States.Len())
	for i, row := range d.States.Rows {
		name := strings.TrimSpace(row[d.nameCol])
		if _, dup := d.stateRow[name]; !dup {
			d.stateRow[name] = i
		}
	}
}

// Options returns the options the dataset was built with.
func (d *Dataset) Options() LoadOptions { return d.opt }

// StateCodesInOrder lists the distinct county-table state codes in the order
// they first appear.
func (d *Dataset) StateCodesInOrder() []string {
	out := make([]string, len(d.codeOrder))
	copy(out, d.codeOrder)
	return out
}

// CountyRows returns the county row indexes for code. The slice must not be modified.
func (d *Dataset) CountyRows(code string) []int { return d.byState[code] }

// Population returns the cleaned population of county row i.
func (d *Dataset) Population(i int) int64 { return d.population[i] }

// StateRow returns the state-table row for a canonical state name.
func (d *Dataset) StateRow(name string) ([]string, bool) {
	i, ok := d.stateRow[name]
	if !ok {
		return nil, false
	}
	return d.States.Rows[i], true
}
