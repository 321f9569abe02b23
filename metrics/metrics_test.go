// metrics_test.go
package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	r := NewRecorder()

	r.Observe("depth")()
	r.Observe("depth")()
	done := r.Observe("ancestor")
	done()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.queries.WithLabelValues("depth")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.queries.WithLabelValues("ancestor")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.duration))
}

func TestWriteFile(t *testing.T) {
	r := NewRecorder()
	r.Observe("find")()

	path := filepath.Join(t.TempDir(), "bloodline.prom")
	require.NoError(t, r.WriteFile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `bloodline_queries_total{op="find"} 1`)
	assert.Contains(t, string(b), "bloodline_query_duration_seconds_count")

	assert.Error(t, r.WriteFile(filepath.Join(t.TempDir(), "missing", "bloodline.prom")))
}
