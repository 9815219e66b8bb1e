package observability

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	NewLogger("info", "json", &buf).Info("loaded", "rows", 3)
	assert.Contains(t, buf.String(), `"msg":"loaded"`)
	assert.Contains(t, buf.String(), `"rows":3`)

	buf.Reset()
	NewLogger("warn", "text", &buf).Info("hidden")
	assert.Empty(t, buf.String())

	NewLogger("warn", "text", &buf).Warn("shown", "state", "CA")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "state=CA")
}

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics()
	m.ObserveCell("plain", "value")
	m.ObserveCell("plain", "invalid")
	m.ObserveCell("plain", "invalid")
	m.ObserveAverage("missing")
	m.ObserveLoad("county", 10, 2, 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CellsNormalized.WithLabelValues("plain", "value")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CellsNormalized.WithLabelValues("plain", "invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WeightedAverages.WithLabelValues("missing")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.RowsLoaded.WithLabelValues("county")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RowsDropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UnemploymentFilled))

	// A second instance has its own registry.
	other := NewMetrics()
	assert.Equal(t, 0.0, testutil.ToFloat64(other.RowsDropped))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCell("dollar", "value")
		m.ObserveAverage("value")
		m.ObserveLoad("state", 1, 0, 0)
	})
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.ObserveAverage("value")
	path := filepath.Join(t.TempDir(), "qolstats.prom")
	require.NoError(t, m.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)
	assert.True(t, strings.Contains(out, `qolstats_weighted_averages_total{outcome="value"} 1`), out)
}
