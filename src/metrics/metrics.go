// Package metrics optionally pushes configure-pass metrics to a Prometheus
// push gateway. cabin runs as a short-lived process, so like the teacher it
// pushed to rather than waiting to be scraped.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"gopkg.in/op/go-logging.v1"

	"github.com/cabinbuild/cabin/src/core"
)

var log = logging.MustGetLogger("metrics")

// maxErrors is the number of consecutive push failures after which reporting
// gives up for the remainder of the process.
const maxErrors = 3

const (
	defaultPushFrequency = 10 * time.Second
	defaultPushTimeout   = 5 * time.Second
)

var buckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0}

type metrics struct {
	url        string
	ticker     *time.Ticker
	timeout    time.Duration
	cancelled  bool
	newMetrics bool
	errors     int
	pushes     int

	configureHistogram *prometheus.HistogramVec
	configureCounter   *prometheus.CounterVec
	compileUnitCounter prometheus.Counter
	registry           *prometheus.Registry
}

// m is the singleton metrics instance; nil when metrics aren't configured.
var m *metrics

// InitFromConfig sets up metrics reporting if ctx.Metrics.PushGatewayURL is
// set. It is a no-op otherwise, matching the teacher's stub fallback for
// builds without metrics configured.
func InitFromConfig(ctx core.ProjectContext) {
	if ctx.Metrics.PushGatewayURL == "" {
		return
	}
	frequency := ctx.Metrics.PushFrequency
	if frequency <= 0 {
		frequency = defaultPushFrequency
	}
	timeout := ctx.Metrics.PushTimeout
	if timeout <= 0 {
		timeout = defaultPushTimeout
	}
	m = initMetrics(ctx.Metrics.PushGatewayURL, frequency, timeout)
}

func initMetrics(url string, frequency, timeout time.Duration) *metrics {
	r := &metrics{
		url:      url,
		ticker:   time.NewTicker(frequency),
		timeout:  timeout,
		registry: prometheus.NewRegistry(),
	}

	r.configureHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cabin_configure_duration_seconds",
		Help:    "Duration of ConfigureBuild passes",
		Buckets: buckets,
	}, []string{"success"})

	r.configureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cabin_configure_runs_total",
		Help: "Count of ConfigureBuild passes by outcome",
	}, []string{"success"})

	r.compileUnitCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cabin_compile_units_discovered_total",
		Help: "Count of compile units discovered across all ConfigureBuild passes",
	})

	r.registry.MustRegister(r.configureHistogram, r.configureCounter, r.compileUnitCounter)

	go r.keepPushing()
	return r
}

// RecordConfigure records one ConfigureBuild pass: its duration, how many
// compile units it discovered, and whether it succeeded. A no-op when
// metrics aren't configured.
func RecordConfigure(duration time.Duration, compileUnits int, success bool) {
	if m != nil {
		m.recordConfigure(duration, compileUnits, success)
	}
}

func (r *metrics) recordConfigure(duration time.Duration, compileUnits int, success bool) {
	r.configureHistogram.WithLabelValues(boolLabel(success)).Observe(duration.Seconds())
	r.configureCounter.WithLabelValues(boolLabel(success)).Inc()
	r.compileUnitCounter.Add(float64(compileUnits))
	r.newMetrics = true
}

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// Stop shuts down metrics reporting and flushes any unsent metrics. A no-op
// when metrics aren't configured.
func Stop() {
	if m != nil {
		m.stop()
	}
}

func (r *metrics) stop() {
	r.ticker.Stop()
	if !r.cancelled {
		r.errors = r.pushMetrics()
	}
}

func (r *metrics) keepPushing() {
	for range r.ticker.C {
		r.errors = r.pushMetrics()
		if r.errors >= maxErrors {
			log.Warning("Metrics push failing repeatedly, giving up")
			r.cancelled = true
			return
		}
	}
}

func (r *metrics) pushMetrics() int {
	if !r.newMetrics {
		return r.errors
	}
	r.newMetrics = false
	start := time.Now()
	err := deadline(func() error {
		return push.New(r.url, "cabin").Gatherer(r.registry).Push()
	}, r.timeout)
	if err != nil {
		log.Warning("Could not push metrics to %s: %s", r.url, err)
		r.newMetrics = true
		return r.errors + 1
	}
	r.pushes++
	log.Debug("Pushed metrics (push #%d) in %s", r.pushes, time.Since(start))
	return 0
}

func deadline(f func() error, timeout time.Duration) error {
	c := make(chan error, 1)
	go func() { c <- f() }()
	select {
	case err := <-c:
		return err
	case <-time.After(timeout):
		return errTimeout
	}
}

var errTimeout = &timeoutError{}

type timeoutError struct{}

func (*timeoutError) Error() string { return "metrics push timed out" }
