package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Records(t *testing.T) {
	r := NewRegistry()

	r.RecordPage("zomato", 10, 2)
	r.RecordPage("zomato", 5, 0)
	r.RecordRun("zomato", "done", 3*time.Second)
	r.RecordStored("zomato", 7, time.Unix(1700000000, 0))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.PagesFetched.WithLabelValues("zomato")))
	assert.Equal(t, 15.0, testutil.ToFloat64(r.OrdersFetched.WithLabelValues("zomato")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.OrdersRejected.WithLabelValues("zomato")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.SyncRuns.WithLabelValues("zomato", "done")))
	assert.Equal(t, 7.0, testutil.ToFloat64(r.OrdersAdded.WithLabelValues("zomato")))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(r.LastSync.WithLabelValues("zomato")))
}

func TestRegistry_NilIsNoop(t *testing.T) {
	var r *Registry

	assert.NotPanics(t, func() {
		r.RecordPage("swiggy", 1, 1)
		r.RecordRun("swiggy", "failed", time.Second)
		r.RecordStored("swiggy", 1, time.Now())
	})
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.RecordPage("swiggy", 3, 0)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `foodtracker_pages_fetched_total{platform="swiggy"} 1`)
}
