package metrics

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cabinbuild/cabin/src/core"
)

const verySlow = 10 * time.Hour // ticker period long enough to never fire during a test

func newTestServer(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestNoMetricsUntilRecorded(t *testing.T) {
	srv, _ := newTestServer(t)
	r := initMetrics(srv.URL, verySlow, time.Second)
	assert.Equal(t, 0, r.errors)
	assert.Equal(t, 0, r.pushes)
	r.stop()
	assert.Equal(t, 0, r.errors, "stop should not push when nothing was recorded")
}

func TestRecordConfigurePushesOnStop(t *testing.T) {
	srv, hits := newTestServer(t)
	r := initMetrics(srv.URL, verySlow, time.Second)
	r.recordConfigure(10*time.Millisecond, 3, true)
	r.stop()
	assert.Equal(t, 0, r.errors)
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))
}

func TestRecordConfigureFailureLabel(t *testing.T) {
	srv, _ := newTestServer(t)
	r := initMetrics(srv.URL, verySlow, time.Second)
	r.recordConfigure(time.Millisecond, 0, false)
	c, err := r.configureCounter.GetMetricWithLabelValues("false")
	assert.NoError(t, err)
	assert.NotNil(t, c)
}

func TestPushFailureIncrementsErrors(t *testing.T) {
	r := initMetrics("http://127.0.0.1:1", verySlow, 50*time.Millisecond)
	r.recordConfigure(time.Millisecond, 1, true)
	r.stop()
	assert.Equal(t, 1, r.errors)
}

func TestInitFromConfigNoop(t *testing.T) {
	m = nil
	InitFromConfig(core.ProjectContext{})
	assert.Nil(t, m)
	RecordConfigure(time.Second, 1, true) // must not panic
	Stop()                                // must not panic
}

func TestInitFromConfigWiresSingleton(t *testing.T) {
	srv, _ := newTestServer(t)
	m = nil
	InitFromConfig(core.ProjectContext{Metrics: core.MetricsConfig{PushGatewayURL: srv.URL, PushFrequency: verySlow}})
	assert.NotNil(t, m)
	RecordConfigure(time.Millisecond, 2, true)
	Stop()
}
