package models

// DomainEvent is published to the event exchange after a state change.
type DomainEvent struct {
	Name    string         `json:"name"`
	ActorID string         `json:"actor_id,omitempty"`
	Subject string         `json:"subject_id"`
	Data    map[string]any `json:"data,omitempty"`
}
