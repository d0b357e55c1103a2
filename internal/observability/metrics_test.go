package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmdmdm-nz/connmon/internal/connectivity"
	"github.com/dmdmdm-nz/connmon/internal/connectivity/connectivitytest"
)

func TestTrackerCollector_Starts(t *testing.T) {
	c, err := NewTrackerCollector(prometheus.NewRegistry())
	require.NoError(t, err)

	assert.Equal(t, 0.0, testutil.ToFloat64(c.Connected))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Classification.WithLabelValues("uninitialized")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.Classification.WithLabelValues("wifi")))
}

func TestTrackerCollector_Observe(t *testing.T) {
	c, err := NewTrackerCollector(prometheus.NewRegistry())
	require.NoError(t, err)

	c.ObserveClassification(connectivity.Disconnected, connectivity.Cellular)
	c.ObserveNotification(connectivity.DirectionConnected)
	c.ObserveSuppressed(connectivity.DirectionConnected)
	c.ObserveSuppressed(connectivity.DirectionConnected)
	c.SetListeners(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Connected))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Classification.WithLabelValues("cellular")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Transitions.WithLabelValues("disconnected", "cellular")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Notifications.WithLabelValues("connected")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Suppressed.WithLabelValues("connected")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.Listeners))
}

func TestTrackerCollector_NilSafe(t *testing.T) {
	var c *TrackerCollector
	require.NotPanics(t, func() {
		c.ObserveClassification(connectivity.Disconnected, connectivity.Wifi)
		c.ObserveNotification(connectivity.DirectionConnected)
		c.ObserveSuppressed(connectivity.DirectionDisconnected)
		c.SetListeners(1)
	})
}

func TestTrackerCollector_ReRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewTrackerCollector(reg)
	require.NoError(t, err)
	second, err := NewTrackerCollector(reg)
	require.NoError(t, err)

	second.SetListeners(2)
	assert.Equal(t, 2.0, testutil.ToFloat64(first.Listeners))
}

func TestTrackerCollector_WithTracker(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewTrackerCollector(reg)
	require.NoError(t, err)

	src := connectivitytest.NewSource()
	watching := src.Watching()
	tracker := connectivity.New(src, connectivity.WithRecorder(c))
	require.NoError(t, tracker.Initialize(context.Background()))
	defer tracker.Close()
	<-watching

	_, err = tracker.Listen(nil, nil)
	require.NoError(t, err)
	src.SetAndSignal(connectivitytest.WifiNetwork())

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Connected))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Listeners))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Transitions.WithLabelValues("disconnected", "wifi")))

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `connmon_classification{classification="wifi"} 1`)
}
