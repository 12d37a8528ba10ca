package run

import (
	"sync"

	"encore.app/analysis/model"
)

// LineageCollector buffers dispatch-attempt events per request until the
// request reaches a terminal state, at which point they are drained into the
// audit trail. It is the dispatcher's LineageSink.
type LineageCollector struct {
	mu     sync.Mutex
	events map[string][]model.LineageEvent
}

// NewLineageCollector creates an empty collector.
func NewLineageCollector() *LineageCollector {
	return &LineageCollector{events: make(map[string][]model.LineageEvent)}
}

// RecordLineage buffers one dispatch attempt. Never blocks on I/O.
func (c *LineageCollector) RecordLineage(ev model.LineageEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events[ev.RequestID] = append(c.events[ev.RequestID], ev)
}

// Drain removes and returns all buffered events for a request.
func (c *LineageCollector) Drain(requestID string) []model.LineageEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	evs := c.events[requestID]
	delete(c.events, requestID)
	return evs
}
