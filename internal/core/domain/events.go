package domain

import "github.com/google/uuid"

// EventType identifies live fleet feed events.
type EventType string

const (
	EventTechPosition EventType = "TECH_POSITION"
	EventJobAssigned  EventType = "JOB_ASSIGNED"
)

// Event is a message on the live fleet feed, scoped to one account so the
// hub only delivers it to that account's dispatch-map clients.
type Event struct {
	Type      EventType   `json:"type"`
	AccountID uuid.UUID   `json:"accountId"`
	Payload   interface{} `json:"payload,omitempty"`
}

// TechPositionPayload is the payload of a TECH_POSITION event.
type TechPositionPayload struct {
	TechID    uuid.UUID `json:"techId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

// JobAssignedPayload is the payload of a JOB_ASSIGNED event.
type JobAssignedPayload struct {
	JobID    uuid.UUID `json:"jobId"`
	TechID   uuid.UUID `json:"techId"`
	TechName string    `json:"techName"`
	Score    int       `json:"score"`
}
