package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/qolstats-cli/internal/observability"
)

func TestParseTable(t *testing.T) {
	in := "\ufeff a , b ,c\n1,2\n4,5,6,7\n"
	tbl, err := ParseTable("x.csv", strings.NewReader(in), 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, tbl.Header)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"1", "2", ""}, tbl.Rows[0], "short rows are padded")
	assert.Equal(t, []string{"4", "5", "6"}, tbl.Rows[1], "long rows are cut to the header")
	assert.Equal(t, []int{2, 3}, tbl.Lines)

	i, err := tbl.Column("b")
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	_, err = tbl.Column("missing")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = ParseTable("empty.csv", strings.NewReader(""), ',')
	assert.Error(t, err)
}

func TestReadTable_TSV(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "data.tsv")
	require.NoError(t, os.WriteFile(p, []byte("state\tscore\nTexas\t1,5\n"), 0o644))

	tbl, err := ReadTable(p)
	require.NoError(t, err)
	assert.Equal(t, "data.tsv", tbl.Name)
	assert.Equal(t, []string{"Texas", "1,5"}, tbl.Rows[0])
}

func TestNewDataset_Cleanup(t *testing.T) {
	m := observability.NewMetrics()
	ds := newTestDataset(t, stateCSV, countyCSV, m)

	assert.Equal(t, 4, ds.Stats.StateRows)
	assert.Equal(t, 6, ds.Stats.CountyRows)
	assert.Equal(t, 1, ds.Stats.DroppedRows)
	assert.Equal(t, 1, ds.Stats.FilledUnemployment)
	require.True(t, ds.Stats.UnemploymentFill.Valid)
	assert.InDelta(t, 0.05, ds.Stats.UnemploymentFill.Float, 1e-12)
	assert.Empty(t, ds.Stats.UnknownStates)

	// Echo (WY) was dropped, so WY never shows up.
	assert.Equal(t, []string{"CA", "TX", "NV", "VT", "ND"}, ds.StateCodesInOrder())
	assert.Empty(t, ds.CountyRows("WY"))

	popCol, err := ds.Counties.Column("2022 Population")
	require.NoError(t, err)
	ca := ds.CountyRows("CA")
	require.Len(t, ca, 2)
	assert.Equal(t, int64(1000), ds.Population(ca[0]))
	assert.Equal(t, int64(3000), ds.Population(ca[1]))
	assert.Equal(t, "1000", ds.Counties.Rows[ca[0]][popCol])

	unCol, err := ds.Counties.Column("Unemployment")
	require.NoError(t, err)
	vt := ds.CountyRows("VT")
	require.Len(t, vt, 1)
	v := Normalize(ds.Counties.Rows[vt[0]][unCol])
	require.True(t, v.Valid)
	assert.InDelta(t, 0.05, v.Float, 1e-12)
	assert.Equal(t, 7, ds.Counties.Lines[vt[0]], "source line survives the drop")

	assert.Equal(t, 6.0, testutil.ToFloat64(m.RowsLoaded.WithLabelValues("county")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.RowsLoaded.WithLabelValues("state")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RowsDropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UnemploymentFilled))
}

func TestNewDataset_NoFillWithoutValues(t *testing.T) {
	counties := "LSTATE,2022 Population,Unemployment\nCA,10,\nCA,20,-1\n"
	ds := newTestDataset(t, stateCSV, counties, nil)
	assert.Equal(t, 0, ds.Stats.FilledUnemployment)
	assert.True(t, ds.Stats.UnemploymentFill.IsMissing())
}

func TestNewDataset_PopulationParsing(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{"1,234", 1234, true},
		{" 12,345,678 ", 12345678, true},
		{"0", 0, true},
		{"250.0", 250, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"-5", 0, false},
	}
	for _, tt := range tests {
		got, ok := parsePopulation(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestNewDataset_RequiredColumns(t *testing.T) {
	tests := []struct {
		name     string
		states   string
		counties string
		column   string
	}{
		{"state name", "name\nTexas\n", "LSTATE,2022 Population,Unemployment\n", "state"},
		{"state code", stateCSV, "ST,2022 Population,Unemployment\n", "LSTATE"},
		{"population", stateCSV, "LSTATE,Population,Unemployment\n", "2022 Population"},
		{"unemployment", stateCSV, "LSTATE,2022 Population\n", "Unemployment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := ParseTable("states.csv", strings.NewReader(tt.states), ',')
			require.NoError(t, err)
			ct, err := ParseTable("counties.csv", strings.NewReader(tt.counties), ',')
			require.NoError(t, err)

			_, err = NewDataset(st, ct, testOptions(nil))
			require.ErrorIs(t, err, ErrUnknownColumn)
			var ce *ColumnError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.column, ce.Column)
		})
	}
}

func TestNewDataset_UnknownStates(t *testing.T) {
	counties := "LSTATE,2022 Population,Unemployment\nPR,10,5%\nCA,10,5%\nPR,5,4%\nGU,1,1%\n"
	ds := newTestDataset(t, stateCSV, counties, nil)
	assert.Equal(t, []string{"PR", "GU"}, ds.Stats.UnknownStates)
	assert.Equal(t, []string{"PR", "CA", "GU"}, ds.StateCodesInOrder())
}

func TestLoad_FromFiles(t *testing.T) {
	dir := t.TempDir()
	sp := filepath.Join(dir, "qualityoflifescores.csv")
	cp := filepath.Join(dir, "QOL_County_Level.csv")
	require.NoError(t, os.WriteFile(sp, []byte(stateCSV), 0o644))
	require.NoError(t, os.WriteFile(cp, []byte(countyCSV), 0o644))

	ds, err := Load(sp, cp, testOptions(nil))
	require.NoError(t, err)
	assert.Equal(t, "qualityoflifescores.csv", ds.States.Name)
	assert.Equal(t, "QOL_County_Level.csv", ds.Counties.Name)
	assert.Equal(t, 6, ds.Counties.Len())

	_, err = Load(filepath.Join(dir, "nope.csv"), cp, testOptions(nil))
	assert.Error(t, err)
}
