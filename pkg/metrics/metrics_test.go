package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Counters(t *testing.T) {
	m := NewManager()

	m.FrameProcessed()
	m.FrameProcessed()
	m.FrameWithoutDetection()
	m.InferenceFailed()
	m.ObserveInference(5 * time.Millisecond)
	m.VideoProcessed("geometry", "ok", time.Second)
	m.HTTPRequest("/api/Upload", "POST", "200", 2*time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.framesProcessed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.framesNoDetection))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inferenceFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.videosProcessed.WithLabelValues("geometry", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/Upload", "POST", "200")))

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "soccer_coach_pipeline_frames_processed_total")
	assert.Contains(t, names, "soccer_coach_http_requests_total")
}

func TestManager_Nil(t *testing.T) {
	var m *Manager
	assert.NotPanics(t, func() {
		m.FrameProcessed()
		m.FrameWithoutDetection()
		m.InferenceFailed()
		m.ObserveInference(time.Millisecond)
		m.VideoProcessed("synthetic", "error", time.Second)
		m.HTTPRequest("/", "GET", "200", time.Millisecond)
		_ = m.Registry()
	})
}

func TestManagers_AreIndependent(t *testing.T) {
	a := NewManager()
	b := NewManager(WithNamespace("other"))

	a.FrameProcessed()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.framesProcessed))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.framesProcessed))
}
