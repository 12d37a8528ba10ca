// Package backpressure implements admission control for analysis requests:
// capacity-bounded admits, FIFO priority-lane queueing, and an error-rate
// circuit breaker that halves effective capacity while downstream backends
// are failing.
package backpressure

import (
	"sync"
	"time"

	"encore.dev/rlog"

	"encore.app/analysis/model"
)

// DecisionKind is the outcome of an admission check.
type DecisionKind string

const (
	DecisionAdmit  DecisionKind = "admit"
	DecisionQueue  DecisionKind = "queue"
	DecisionReject DecisionKind = "reject"
)

// Decision is the controller's answer for one request. A queued decision
// carries the ticket the caller must wait on.
type Decision struct {
	Kind     DecisionKind
	Position int
	Reason   model.FailureKind
	Ticket   *Ticket
}

type ticketState int

const (
	ticketWaiting ticketState = iota
	ticketPromoted
	ticketAbandoned
)

// Ticket is a queued request's place in line. The ready channel closes when
// the controller promotes the ticket to in-flight.
type Ticket struct {
	priority model.Priority
	ready    chan struct{}
	state    ticketState // guarded by the controller mutex
}

// Ready returns the promotion signal channel.
func (t *Ticket) Ready() <-chan struct{} { return t.ready }

// Config bounds the controller. Zero values fall back to safe defaults.
type Config struct {
	Capacity           int
	QueueBound         int
	ErrorRateThreshold float64
	ErrorWindow        int
	DegradedCooldown   time.Duration
}

func (c Config) withDefaults() Config {
	if c.Capacity <= 0 {
		c.Capacity = 8
	}
	if c.QueueBound <= 0 {
		c.QueueBound = 64
	}
	if c.ErrorRateThreshold <= 0 {
		c.ErrorRateThreshold = 0.5
	}
	if c.ErrorWindow <= 0 {
		c.ErrorWindow = 32
	}
	if c.DegradedCooldown <= 0 {
		c.DegradedCooldown = 30 * time.Second
	}
	return c
}

// Controller issues admit/queue/reject decisions against configured capacity.
// All transitions happen under one mutex with short critical sections; no
// dispatch work ever runs while it is held.
type Controller struct {
	cfg  Config
	load *LoadState

	mu          sync.Mutex
	inFlight    int
	interactive []*Ticket
	batch       []*Ticket

	degraded  bool
	lastAbove time.Time

	now func() time.Time
}

// NewController builds a controller around an injectable load state.
func NewController(cfg Config, load *LoadState) *Controller {
	cfg = cfg.withDefaults()
	if load == nil {
		load = NewLoadState(cfg.ErrorWindow)
	}
	return &Controller{cfg: cfg, load: load, now: time.Now}
}

// Admit decides whether a request runs now, waits in its priority lane, or is
// rejected. The decision and its load-state bookkeeping are atomic with
// respect to concurrent callers.
func (c *Controller) Admit(req *model.AnalysisRequest) Decision {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight < c.effectiveCapacityLocked() {
		c.inFlight++
		c.load.inFlight.Store(int64(c.inFlight))
		c.load.totalAdmitted.Add(1)
		return Decision{Kind: DecisionAdmit}
	}

	if len(c.interactive)+len(c.batch) < c.cfg.QueueBound {
		t := &Ticket{priority: req.Priority, ready: make(chan struct{})}
		var position int
		if req.Priority == model.PriorityInteractive {
			c.interactive = append(c.interactive, t)
			position = len(c.interactive)
		} else {
			c.batch = append(c.batch, t)
			position = len(c.interactive) + len(c.batch)
		}
		c.load.queuedCounter(req.Priority).Add(1)
		return Decision{Kind: DecisionQueue, Position: position, Ticket: t}
	}

	c.load.totalRejected.Add(1)
	return Decision{Kind: DecisionReject, Reason: model.FailureCapacityExceeded}
}

// Complete releases one in-flight slot, records the outcome in the rolling
// window, re-evaluates the degraded gate, and promotes queued work.
func (c *Controller) Complete(failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight > 0 {
		c.inFlight--
	}
	c.load.inFlight.Store(int64(c.inFlight))
	c.load.totalCompleted.Add(1)
	if failed {
		c.load.totalFailed.Add(1)
	}

	rate := c.load.RecordOutcome(failed)
	c.updateDegradedLocked(rate)
	c.promoteLocked()
}

// Abandon removes a still-waiting ticket from its lane, typically on
// queue-wait timeout or caller cancellation. It returns false when the
// ticket was already promoted, in which case the caller owns an in-flight
// slot and must run (or Complete) as admitted.
func (c *Controller) Abandon(t *Ticket) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.state != ticketWaiting {
		return false
	}
	t.state = ticketAbandoned
	if t.priority == model.PriorityInteractive {
		c.interactive = removeTicket(c.interactive, t)
	} else {
		c.batch = removeTicket(c.batch, t)
	}
	c.load.queuedCounter(t.priority).Add(-1)
	c.load.totalRejected.Add(1)
	return true
}

// Snapshot returns the live load view used by the load endpoint and the
// bookkeeping cache mirror.
func (c *Controller) Snapshot() model.LoadSnapshot {
	c.mu.Lock()
	capacity := c.cfg.Capacity
	effective := c.effectiveCapacityLocked()
	degraded := c.degraded
	c.mu.Unlock()
	return c.load.Snapshot(capacity, effective, degraded)
}

// Degraded reports whether the circuit breaker is currently engaged.
func (c *Controller) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.degraded
}

func (c *Controller) effectiveCapacityLocked() int {
	if !c.degraded {
		return c.cfg.Capacity
	}
	half := c.cfg.Capacity / 2
	if half < 1 {
		half = 1
	}
	return half
}

func (c *Controller) updateDegradedLocked(rate float64) {
	now := c.now()
	if rate > c.cfg.ErrorRateThreshold {
		c.lastAbove = now
		if !c.degraded {
			c.degraded = true
			rlog.Warn("entering degraded mode, halving effective capacity",
				"error_rate", rate, "threshold", c.cfg.ErrorRateThreshold)
		}
		return
	}
	if c.degraded && now.Sub(c.lastAbove) >= c.cfg.DegradedCooldown {
		c.degraded = false
		rlog.Info("error rate recovered, restoring full capacity",
			"error_rate", rate, "capacity", c.cfg.Capacity)
	}
}

// promoteLocked moves queue heads into freed slots, interactive lane first,
// FIFO within each lane.
func (c *Controller) promoteLocked() {
	for c.inFlight < c.effectiveCapacityLocked() {
		var t *Ticket
		switch {
		case len(c.interactive) > 0:
			t = c.interactive[0]
			c.interactive = c.interactive[1:]
		case len(c.batch) > 0:
			t = c.batch[0]
			c.batch = c.batch[1:]
		default:
			return
		}
		t.state = ticketPromoted
		c.inFlight++
		c.load.inFlight.Store(int64(c.inFlight))
		c.load.queuedCounter(t.priority).Add(-1)
		c.load.totalAdmitted.Add(1)
		close(t.ready)
	}
}

func removeTicket(lane []*Ticket, t *Ticket) []*Ticket {
	for i, cand := range lane {
		if cand == t {
			return append(lane[:i], lane[i+1:]...)
		}
	}
	return lane
}
