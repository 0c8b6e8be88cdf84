// Package events publishes store lifecycle events for downstream
// consumers (reporting, alerting). Publishing is best-effort: failures
// are logged and never surfaced to the mutating caller.
package events

import "context"

// Topics emitted by the service.
const (
	TopicCaseStageChanged = "case_stage_changed"
	TopicTelemetrySynced  = "telemetry_synced"
)

// CaseStageChanged is emitted after every logged stage transition.
type CaseStageChanged struct {
	CaseID string `json:"caseId"`
	Stage  string `json:"stage"`
	At     string `json:"at"`
}

// TelemetrySynced is emitted after a successful provider sync.
type TelemetrySynced struct {
	Trucks   int    `json:"trucks"`
	IDSource string `json:"idSource"`
	At       string `json:"at"`
}

// Publisher delivers an event to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
}

// Nop discards all events. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(ctx context.Context, topic string, event any) error { return nil }
