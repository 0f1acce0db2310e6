// Package metrics wires the engine's runtime counters into prometheus,
// the way purpleidea-mgmt/prometheus does for its resource state: a
// struct of pre-built collectors, registered once against a caller
// -supplied registerer rather than the global default, so a process
// embedding this engine alongside other prometheus-instrumented code
// does not collide with it on registration.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/flowgraph/dagflow/internal/errwrap"
)

// Collectors groups every instrument a job's router can report against.
// A nil *Collectors is valid everywhere it is used — every method is a
// no-op on a nil receiver — so callers that don't want metrics can pass
// nil instead of threading an enabled/disabled flag through Options.
type Collectors struct {
	packetsSent      *prometheus.CounterVec
	packetsDeferred  *prometheus.CounterVec
	reserveDepth     *prometheus.GaugeVec
	quiescenceEvents prometheus.Counter
	workersActive    prometheus.Gauge
}

// New builds and registers a fresh set of collectors against reg. Use a
// *prometheus.Registry (or prometheus.DefaultRegisterer) the caller
// already owns; New does not reach for the global registry itself.
func New(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		packetsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dagflow_packets_sent_total",
			Help: "Packets dispatched between lanes, by sending lane.",
		}, []string{"lane"}),
		packetsDeferred: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dagflow_packets_deferred_total",
			Help: "Packets moved to a worker's deferred-retry queue, by lane.",
		}, []string{"lane"}),
		reserveDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dagflow_reserve_depth",
			Help: "Packets currently held in a job's packet reserve.",
		}, []string{"job"}),
		quiescenceEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dagflow_quiescence_events_total",
			Help: "Number of times a job's crew reached simultaneous quiescence.",
		}),
		workersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dagflow_workers_active",
			Help: "Number of crew workers currently running across all jobs.",
		}),
	}
	collectors := []prometheus.Collector{
		c.packetsSent, c.packetsDeferred, c.reserveDepth,
		c.quiescenceEvents, c.workersActive,
	}
	for _, coll := range collectors {
		if err := reg.Register(coll); err != nil {
			return nil, errwrap.Wrapf(err, "registering dagflow metric")
		}
	}
	return c, nil
}

func laneLabel(lane int) string { return strconv.Itoa(lane) }

// Sent records n packets dispatched out of lane.
func (c *Collectors) Sent(lane, n int) {
	if c == nil || n == 0 {
		return
	}
	c.packetsSent.WithLabelValues(laneLabel(lane)).Add(float64(n))
}

// Deferred records n packets moved onto lane's deferred-retry queue.
func (c *Collectors) Deferred(lane, n int) {
	if c == nil || n == 0 {
		return
	}
	c.packetsDeferred.WithLabelValues(laneLabel(lane)).Add(float64(n))
}

// ReserveDepth sets the current reserve depth for the job identified by
// jobID (a uuid.UUID's String, kept untyped here so metrics does not
// need to import the router/uuid packages).
func (c *Collectors) ReserveDepth(jobID string, depth int) {
	if c == nil {
		return
	}
	c.reserveDepth.WithLabelValues(jobID).Set(float64(depth))
}

// Quiesced records one crew reaching simultaneous quiescence.
func (c *Collectors) Quiesced() {
	if c == nil {
		return
	}
	c.quiescenceEvents.Inc()
}

// WorkerStarted/WorkerStopped track the process-wide active worker
// gauge, mirroring router.Router's own running-count increment/decrement
// around a worker suspending or waking.
func (c *Collectors) WorkerStarted() {
	if c == nil {
		return
	}
	c.workersActive.Inc()
}

func (c *Collectors) WorkerStopped() {
	if c == nil {
		return
	}
	c.workersActive.Dec()
}
