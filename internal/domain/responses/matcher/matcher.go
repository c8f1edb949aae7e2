// Package matcher pairs inbound messages with the outbound replies that
// answer them. It is a pure forward scan over one conversation's event
// stream; persistence and uniqueness enforcement live in the dao layer.
package matcher

import (
	"time"

	"github.com/google/uuid"

	"github.com/markoalleno/response-time-sub001/internal/domain/responses/entity"
)

// Matcher builds response windows from a conversation's event stream.
// It holds only configuration and is safe for concurrent use.
type Matcher struct {
	settings entity.Settings
	loc      *time.Location
}

// New creates a matcher for the given analytics settings
func New(settings entity.Settings) *Matcher {
	return &Matcher{
		settings: settings,
		loc:      settings.Location(),
	}
}

// Match scans events (pre-sorted ascending by timestamp, excluded events
// removed) and returns the response windows they produce. matched holds the
// inbound event IDs that already own a window; re-running Match over an
// unchanged stream with the previously returned IDs in matched yields no
// new windows.
//
// Only the most recent unanswered inbound counts: a newer inbound replaces
// the pending one, and the superseded inbound never produces a window. This
// mirrors how a reader treats only the latest message as awaiting a reply.
func (m *Matcher) Match(events []entity.MessageEvent, matched map[string]bool) []entity.ResponseWindow {
	var windows []entity.ResponseWindow
	var pending *entity.MessageEvent

	windowSeconds := m.settings.MatchingWindowSeconds()

	for i := range events {
		ev := &events[i]
		if ev.IsInbound() {
			pending = ev
			continue
		}

		if pending == nil {
			continue
		}

		latency := ev.Timestamp.Sub(pending.Timestamp).Seconds()
		if latency > 0 && latency < windowSeconds && !matched[pending.ID] {
			w := m.buildWindow(pending, ev, latency)
			windows = append(windows, w)
			matched[pending.ID] = true
		}

		// An outbound always consumes the pending slot, matched or not.
		pending = nil
	}

	return windows
}

func (m *Matcher) buildWindow(inbound, outbound *entity.MessageEvent, latency float64) entity.ResponseWindow {
	local := inbound.Timestamp.In(m.loc)
	confidence := entity.Confidence(latency)

	return entity.ResponseWindow{
		ID:                  uuid.New().String(),
		AccountID:           inbound.AccountID,
		ConversationID:      inbound.ConversationID,
		Platform:            inbound.Platform,
		InboundEventID:      inbound.ID,
		OutboundEventID:     outbound.ID,
		ParticipantID:       inbound.ParticipantID,
		InboundAt:           inbound.Timestamp,
		LatencySeconds:      latency,
		Confidence:          confidence,
		Method:              entity.MatchMethodTimeWindow,
		DayOfWeek:           int(local.Weekday()),
		HourOfDay:           local.Hour(),
		IsWorkingHours:      m.settings.IsWorkingTime(local),
		IsValidForAnalytics: confidence >= m.settings.ConfidenceThreshold,
		CreatedAt:           time.Now().UTC(),
	}
}
