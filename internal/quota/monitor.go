// Package quota observes aggregate storage consumption and classifies it.
package quota

import (
	"context"
	"sync"

	"github.com/ncharlet/bibliart/internal/logger"
	"github.com/ncharlet/bibliart/internal/models"
)

// Threshold fractions of the quota.
const (
	warnAt     = 0.80
	criticalAt = 0.95
)

// EventLevel classifies a threshold crossing.
type EventLevel int

const (
	EventWarning EventLevel = iota + 1
	EventCritical
)

func (l EventLevel) String() string {
	switch l {
	case EventWarning:
		return "warning"
	case EventCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Event is a threshold crossing observed by Check.
type Event struct {
	Level EventLevel        `json:"level"`
	Usage models.QuotaUsage `json:"usage"`
}

// UsageFunc reports current consumption. An error means the platform
// cannot report usage and the monitor stays inert.
type UsageFunc func() (models.QuotaUsage, error)

// Monitor evaluates storage usage after every successful collection write.
type Monitor struct {
	usage   UsageFunc
	onEvent func(Event)

	mu   sync.Mutex
	last *Event

	log *logger.Logger
}

// New creates a Monitor. onEvent may be nil.
func New(usage UsageFunc, onEvent func(Event)) *Monitor {
	return &Monitor{
		usage:   usage,
		onEvent: onEvent,
		log:     logger.Default().WithPrefix("quota"),
	}
}

// Estimate returns the current usage/limit pair.
func (m *Monitor) Estimate() (models.QuotaUsage, error) {
	return m.usage()
}

// Check classifies current usage and emits at most one event. It returns
// the event, or nil when below every threshold or when the monitor is
// inert (no limit configured, or usage unreadable).
func (m *Monitor) Check(ctx context.Context) *Event {
	log := logger.FromContext(ctx).WithPrefix("quota")

	usage, err := m.usage()
	if err != nil {
		log.Debug("usage unavailable, monitor inert: %v", err)
		return nil
	}
	if usage.QuotaBytes <= 0 {
		return nil
	}

	frac := float64(usage.UsedBytes) / float64(usage.QuotaBytes)
	var ev *Event
	switch {
	case frac >= criticalAt:
		ev = &Event{Level: EventCritical, Usage: usage}
	case frac >= warnAt:
		ev = &Event{Level: EventWarning, Usage: usage}
	default:
		m.setLast(nil)
		return nil
	}

	log.Warn("storage %s: %d of %d bytes used (%.0f%%)", ev.Level, usage.UsedBytes, usage.QuotaBytes, frac*100)
	m.setLast(ev)
	if m.onEvent != nil {
		m.onEvent(*ev)
	}
	return ev
}

// LastEvent returns the most recent threshold event, or nil when usage was
// last seen below every threshold.
func (m *Monitor) LastEvent() *Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return nil
	}
	ev := *m.last
	return &ev
}

func (m *Monitor) setLast(ev *Event) {
	m.mu.Lock()
	m.last = ev
	m.mu.Unlock()
}
