// Package metrics constructs the Prometheus collectors for the ledger and
// the web api.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered for the service.
type Metrics struct {
	gatherer      prometheus.Gatherer
	height        prometheus.Gauge
	difficulty    prometheus.Gauge
	emaBlockTime  prometheus.Gauge
	blockDuration prometheus.Histogram
	txInBlock     prometheus.Histogram
	minerWins     *prometheus.CounterVec
	requests      *prometheus.CounterVec
	errors        prometheus.Counter
	panics        prometheus.Counter
}

// New registers the collectors with a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		height: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cuneos_ledger_height",
			Help: "Number of blocks on the chain including genesis",
		}),
		difficulty: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cuneos_ledger_difficulty",
			Help: "Current continuous mining difficulty",
		}),
		emaBlockTime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cuneos_ledger_ema_block_time_seconds",
			Help: "Exponential moving average of block mining time",
		}),
		blockDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cuneos_ledger_block_duration_seconds",
			Help:    "Time spent mining each block",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		txInBlock: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cuneos_ledger_tx_in_block",
			Help:    "Number of transactions in each block",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
		minerWins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cuneos_ledger_miner_blocks_total",
			Help: "Blocks produced per miner",
		}, []string{"miner"}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cuneos_web_requests_total",
			Help: "Requests handled by the web api",
		}, []string{"status"}),
		errors: factory.NewCounter(prometheus.CounterOpts{
			Name: "cuneos_web_errors_total",
			Help: "Requests that returned an error",
		}),
		panics: factory.NewCounter(prometheus.CounterOpts{
			Name: "cuneos_web_panics_total",
			Help: "Requests that panicked",
		}),
	}
}

// Block captures the state of the ledger after a block is mined.
type Block struct {
	Miner      string
	Height     int
	Txs        int
	Duration   time.Duration
	Difficulty float64
	EMA        time.Duration
}

// RecordBlock updates the ledger collectors.
func (m *Metrics) RecordBlock(b Block) {
	m.height.Set(float64(b.Height))
	m.difficulty.Set(b.Difficulty)
	m.emaBlockTime.Set(b.EMA.Seconds())
	m.blockDuration.Observe(b.Duration.Seconds())
	m.txInBlock.Observe(float64(b.Txs))
	m.minerWins.WithLabelValues(b.Miner).Inc()
}

// SetLedger sets the ledger gauges without recording a block.
func (m *Metrics) SetLedger(height int, difficulty float64) {
	m.height.Set(float64(height))
	m.difficulty.Set(difficulty)
}

// RecordRequest counts a handled request by status code.
func (m *Metrics) RecordRequest(status int) {
	m.requests.WithLabelValues(strconv.Itoa(status)).Inc()
}

// AddError counts a request that returned an error.
func (m *Metrics) AddError() {
	m.errors.Inc()
}

// AddPanic counts a request that panicked.
func (m *Metrics) AddPanic() {
	m.panics.Inc()
}

// Handler returns the handler that exposes the collectors.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
