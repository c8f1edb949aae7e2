package entity

import "time"

// MatchMethod is the signal used to pair an inbound message with its reply
type MatchMethod string

const (
	MatchMethodMessageID    MatchMethod = "message-id"
	MatchMethodThreadID     MatchMethod = "thread-id"
	MatchMethodReferences   MatchMethod = "references"
	MatchMethodSubjectMatch MatchMethod = "subject-match"
	MatchMethodTimeWindow   MatchMethod = "time-window"
)

// ResponseWindow is a matched inbound→outbound pair with computed latency.
// Created once at match time and never mutated afterward. An inbound event
// owns at most one window; the database enforces this with a unique index
// on inbound_event_id.
type ResponseWindow struct {
	ID                  string      `json:"id"`
	AccountID           string      `json:"account_id"`
	ConversationID      string      `json:"conversation_id"`
	Platform            string      `json:"platform"`
	InboundEventID      string      `json:"inbound_event_id"`
	OutboundEventID     string      `json:"outbound_event_id"`
	ParticipantID       string      `json:"participant_id"`
	InboundAt           time.Time   `json:"inbound_at"`
	LatencySeconds      float64     `json:"latency_seconds"`
	Confidence          float64     `json:"confidence"`
	Method              MatchMethod `json:"method"`
	DayOfWeek           int         `json:"day_of_week"` // 0=Sunday, 6=Saturday
	HourOfDay           int         `json:"hour_of_day"` // 0-23
	IsWorkingHours      bool        `json:"is_working_hours"`
	IsValidForAnalytics bool        `json:"is_valid_for_analytics"`
	CreatedAt           time.Time   `json:"created_at"`
}

// Confidence maps a response latency to the heuristic likelihood that the
// outbound message is a true reply to the inbound it was paired with.
// The longer the gap, the more likely the pairing is coincidental.
func Confidence(latencySeconds float64) float64 {
	hours := latencySeconds / 3600
	switch {
	case hours < 24:
		return 1.0
	case hours < 48:
		return 0.8
	case hours < 72:
		return 0.6
	default:
		return 0.4
	}
}
