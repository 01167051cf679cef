package pose

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func newFrame(t *testing.T, rows, cols int) gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { m.Close() })
	return m
}

func quietLogger() logrus.FieldLogger {
	l, _ := test.NewNullLogger()
	return l
}

func TestRemoteSource_Infer(t *testing.T) {
	var gotType string
	var gotBody int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = len(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"landmarks":[{"name":"left_knee","x":0.4,"y":0.7,"visibility":0.9},{"name":"","x":0.1,"y":0.1}]}`)
	}))
	defer srv.Close()

	src, err := NewRemoteSource(RemoteConfig{URL: srv.URL}, quietLogger())
	require.NoError(t, err)
	defer src.Close()

	f, err := src.Infer(context.Background(), newFrame(t, 16, 16))

	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "image/jpeg", gotType)
	assert.Greater(t, gotBody, 0)
	require.Len(t, f.Landmarks, 1)
	assert.Equal(t, Landmark{Name: LeftKnee, X: 0.4, Y: 0.7, Visibility: 0.9}, f.Landmarks[0])
}

func TestRemoteSource_NoDetection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"landmarks":[]}`)
	}))
	defer srv.Close()

	src, err := NewRemoteSource(RemoteConfig{URL: srv.URL}, quietLogger())
	require.NoError(t, err)

	f, err := src.Infer(context.Background(), newFrame(t, 8, 8))
	assert.NoError(t, err)
	assert.Nil(t, f)
}

func TestRemoteSource_Failures(t *testing.T) {
	t.Run("bad status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		src, err := NewRemoteSource(RemoteConfig{URL: srv.URL}, quietLogger())
		require.NoError(t, err)

		_, err = src.Infer(context.Background(), newFrame(t, 8, 8))
		assert.ErrorIs(t, err, ErrInferenceUnavailable)
	})

	t.Run("bad body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `not json`)
		}))
		defer srv.Close()

		src, err := NewRemoteSource(RemoteConfig{URL: srv.URL}, quietLogger())
		require.NoError(t, err)

		_, err = src.Infer(context.Background(), newFrame(t, 8, 8))
		assert.ErrorIs(t, err, ErrInferenceUnavailable)
	})

	t.Run("empty frame", func(t *testing.T) {
		src, err := NewRemoteSource(RemoteConfig{URL: "http://127.0.0.1:1"}, quietLogger())
		require.NoError(t, err)

		empty := gocv.NewMat()
		defer empty.Close()
		_, err = src.Infer(context.Background(), empty)
		assert.ErrorIs(t, err, ErrInferenceUnavailable)
	})
}

func TestRemoteSource_BreakerOpens(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	src, err := NewRemoteSource(RemoteConfig{
		URL:          srv.URL,
		MinRequests:  3,
		FailureRatio: 0.5,
		OpenTimeout:  time.Minute,
	}, quietLogger())
	require.NoError(t, err)

	frame := newFrame(t, 8, 8)
	for i := 0; i < 6; i++ {
		_, err := src.Infer(context.Background(), frame)
		assert.ErrorIs(t, err, ErrInferenceUnavailable)
	}

	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestRemoteSource_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"landmarks":[]}`)
	}))
	defer srv.Close()

	src, err := NewRemoteSource(RemoteConfig{URL: srv.URL, RatePerSecond: 0.001, Burst: 1}, quietLogger())
	require.NoError(t, err)

	//first call consumes the burst
	_, err = src.Infer(context.Background(), newFrame(t, 8, 8))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Infer(ctx, newFrame(t, 8, 8))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRemoteSource_RequiresURL(t *testing.T) {
	_, err := NewRemoteSource(RemoteConfig{}, nil)
	assert.Error(t, err)
}
