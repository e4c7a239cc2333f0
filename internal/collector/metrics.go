package collector

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once
	mc   *MetricsCollector
)

type MetricsCollector struct {
	runsStarted       *prometheus.CounterVec // block runs started, by mode
	runsFinished      *prometheus.CounterVec // block runs finished, by mode and terminal status
	runDuration       *prometheus.GaugeVec   // duration of the last finished run
	blockedUsers      *prometheus.CounterVec // users successfully processed, by mode
	blockErrors       prometheus.Counter     // per-user failures after retries
	favoritersFetched prometheus.Counter     // favoriters resolved across runs
	sortsTotal        *prometheus.CounterVec // sort invocations, by strategy
	profileCacheHits  *prometheus.CounterVec // profile cache lookups, by result
}

func GetMetricsCollector() (*MetricsCollector, error) {
	if mc == nil {
		return nil, fmt.Errorf("MetricsCollector not initialized")
	}
	return mc, nil
}

// NewMetricsCollector - Initialize Prometheus metrics here
func NewMetricsCollector() *MetricsCollector {
	once.Do(func() {
		_mc := &MetricsCollector{
			runsStarted: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "sozblock_block_runs_started_total",
				Help: "Total number of block runs started, by mode.",
			}, []string{"mode"}),

			runsFinished: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "sozblock_block_runs_total",
				Help: "Total number of finished block runs, by mode and terminal status.",
			}, []string{"mode", "status"}),

			runDuration: promauto.NewGaugeVec(prometheus.GaugeOpts{
				Name: "sozblock_run_duration_seconds",
				Help: "Duration of the last finished block run in seconds.",
			}, []string{"mode"}),

			blockedUsers: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "sozblock_blocked_users_total",
				Help: "Total number of users processed successfully, by mode.",
			}, []string{"mode"}),

			blockErrors: promauto.NewCounter(prometheus.CounterOpts{
				Name: "sozblock_block_errors_total",
				Help: "Total number of per-user failures after retries were exhausted.",
			}),

			favoritersFetched: promauto.NewCounter(prometheus.CounterOpts{
				Name: "sozblock_favoriters_fetched_total",
				Help: "Total number of favoriters resolved across all runs.",
			}),

			sortsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "sozblock_sorts_total",
				Help: "Total number of sort invocations, by strategy.",
			}, []string{"strategy"}),

			profileCacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "sozblock_profile_cache_lookups_total",
				Help: "Profile cache lookups, by result (hit, miss, bloom_skip).",
			}, []string{"result"}),
		}

		// After _mc is fully ready, set the global mc
		mc = _mc
	})

	return mc
}

// SetRunStarted records a freshly started run and its mode.
func (mc *MetricsCollector) SetRunStarted(mode string) {
	mc.runsStarted.With(prometheus.Labels{"mode": mode}).Inc()
	mc.runDuration.With(prometheus.Labels{"mode": mode}).Set(0)
}

// SetRunFinished records the terminal status and duration of a run.
func (mc *MetricsCollector) SetRunFinished(mode, status string, duration time.Duration) {
	mc.runsFinished.With(prometheus.Labels{"mode": mode, "status": status}).Inc()
	mc.runDuration.With(prometheus.Labels{"mode": mode}).Set(duration.Seconds())
}

func (mc *MetricsCollector) IncrementBlockedUsers(mode string) {
	mc.blockedUsers.With(prometheus.Labels{"mode": mode}).Inc()
}

func (mc *MetricsCollector) IncrementBlockErrors() {
	mc.blockErrors.Inc()
}

func (mc *MetricsCollector) AddFavoritersFetched(count int) {
	mc.favoritersFetched.Add(float64(count))
}

func (mc *MetricsCollector) IncrementSorts(strategy string) {
	mc.sortsTotal.With(prometheus.Labels{"strategy": strategy}).Inc()
}

// IncrementProfileCache records one cache lookup outcome: hit, miss or
// bloom_skip (filter said the key cannot exist, badger never touched).
func (mc *MetricsCollector) IncrementProfileCache(result string) {
	mc.profileCacheHits.With(prometheus.Labels{"result": result}).Inc()
}
