package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/nabha/offline"
)

func TestSyncMetrics(t *testing.T) {
	m := NewSyncMetrics()

	m.Saved(offline.EntryProgress, offline.Queued)
	m.Saved(offline.EntryProgress, offline.Queued)
	m.Saved(offline.EntryAssignmentSubmission, offline.Delivered)
	m.Replayed(offline.EntryProgress)
	m.DrainFinished(1, nil)
	m.DrainFinished(0, errors.New("503"))
	m.SetOnline(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.saves.WithLabelValues("progress", "queued")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.saves.WithLabelValues("assignment_submission", "delivered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.replayed.WithLabelValues("progress")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.drains.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.drains.WithLabelValues("aborted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.online))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `nabha_sync_saves_total{delivery="queued",type="progress"} 2`)
}
