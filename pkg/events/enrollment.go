// Package events defines enrollment event payloads shared with downstream consumers.
package events

import "time"

// Event types carried in the event_type header of every enrollment record.
const (
	EventParticipantSignedUp = "participant.signed_up"
	EventParticipantRemoved  = "participant.removed"
)

// ParticipantSignedUp is emitted after an email is enrolled in an activity.
type ParticipantSignedUp struct {
	Activity   string    `json:"activity"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ParticipantRemoved is emitted after an email is dropped from an activity.
type ParticipantRemoved struct {
	Activity   string    `json:"activity"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}
