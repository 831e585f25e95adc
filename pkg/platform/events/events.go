// Package events publishes contractor-change events so downstream
// collaborators (audit trail, dashboards) can react to reconciliations.
// Events are emitted after a successful persist and are best-effort:
// publish failures never fail the reconciliation that produced them.
package events

import (
	"context"
	"sync"
	"time"
)

// Action names what happened to a contractor record.
type Action string

const (
	ActionContractorCreated   Action = "contractor_created"
	ActionContractorRefreshed Action = "contractor_refreshed"
)

// Event is the transport-agnostic change notification.
type Event struct {
	Action    Action    `json:"action"`
	CompanyID string    `json:"company_id"`
	Outcome   string    `json:"outcome"`
	Indicator string    `json:"indicator"`
	At        time.Time `json:"at"`
}

// Publisher fans an event out to wherever it needs to go.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// MemoryPublisher collects events in memory; the default for tests and
// broker-less deployments.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryPublisher creates an empty in-memory publisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns a snapshot of everything published so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}
