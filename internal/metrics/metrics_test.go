package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.TossedInbound()
	m.TossedInbound()
	m.TossedOutbound()
	m.Skip("tossed")
	m.Abandon()
	m.ObserveRun(time.Second, nil)
	m.ObserveRun(time.Second, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Tossed.WithLabelValues("inbound")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Tossed.WithLabelValues("outbound")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Skipped.WithLabelValues("tossed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Abandoned))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("error")))
	assert.Positive(t, testutil.ToFloat64(m.LastRun))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.TossedInbound()
	m.TossedOutbound()
	m.Skip("excluded")
	m.Abandon()
	m.ObserveRun(0, nil)
	require.NoError(t, m.WriteTextfile("/nonexistent/x.prom"))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.TossedInbound()

	path := filepath.Join(t.TempDir(), "fdbridge.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `fdbridge_messages_tossed_total{direction="inbound"} 1`), string(data))
}
