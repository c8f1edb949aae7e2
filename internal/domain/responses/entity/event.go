package entity

import "time"

// Direction indicates whether a message was received or sent
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// MessageEvent represents a single message observed on a platform.
// Events are immutable once ingested; only the Excluded flag may be
// toggled later (e.g. when a participant is marked as spam), which
// affects future matching but never deletes existing windows.
type MessageEvent struct {
	ID             string    `json:"id"`
	AccountID      string    `json:"account_id"`
	ConversationID string    `json:"conversation_id"`
	Platform       string    `json:"platform"`
	Timestamp      time.Time `json:"timestamp"`
	Direction      Direction `json:"direction"`
	ParticipantID  string    `json:"participant_id"`
	Excluded       bool      `json:"excluded"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsInbound reports whether the event was received from a participant
func (e MessageEvent) IsInbound() bool {
	return e.Direction == DirectionInbound
}

// ValidateDirection checks that a direction value is one of the known constants
func ValidateDirection(d Direction) error {
	if d != DirectionInbound && d != DirectionOutbound {
		return ErrInvalidDirection
	}
	return nil
}
