package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/markoalleno/response-time-sub001/internal/domain/responses/entity"
)

// WindowPostgres implements response window storage for PostgreSQL.
// The message_response_windows table carries a unique index on
// inbound_event_id, which makes the check-then-insert atomic even when
// two match passes run concurrently against the same account.
type WindowPostgres struct {
	pool *pgxpool.Pool
}

// NewWindowPostgres creates a new PostgreSQL window repository
func NewWindowPostgres(pool *pgxpool.Pool) *WindowPostgres {
	return &WindowPostgres{pool: pool}
}

// InsertBatch stores freshly matched windows. Conflicts on the inbound
// event are silently skipped: the first writer wins and the window is
// never mutated afterward.
func (r *WindowPostgres) InsertBatch(ctx context.Context, windows []entity.ResponseWindow) error {
	if len(windows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO message_response_windows (
			id, account_id, conversation_id, platform, inbound_event_id,
			outbound_event_id, participant_id, inbound_at, latency_seconds,
			confidence, method, day_of_week, hour_of_day, is_working_hours,
			is_valid_for_analytics, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (inbound_event_id) DO NOTHING
	`

	for _, w := range windows {
		batch.Queue(query,
			w.ID,
			w.AccountID,
			w.ConversationID,
			w.Platform,
			w.InboundEventID,
			w.OutboundEventID,
			w.ParticipantID,
			w.InboundAt,
			w.LatencySeconds,
			w.Confidence,
			w.Method,
			w.DayOfWeek,
			w.HourOfDay,
			w.IsWorkingHours,
			w.IsValidForAnalytics,
			w.CreatedAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range windows {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("executing window batch insert: %w", err)
		}
	}

	return nil
}

// HasWindow answers whether an inbound event already owns a window
func (r *WindowPostgres) HasWindow(ctx context.Context, inboundEventID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM message_response_windows WHERE inbound_event_id = $1)",
		inboundEventID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking window ownership: %w", err)
	}
	return exists, nil
}

// MatchedInboundIDs returns the inbound event IDs in a conversation that
// already own a window, used to seed the matcher's ownership set.
func (r *WindowPostgres) MatchedInboundIDs(ctx context.Context, conversationID string) (map[string]bool, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT inbound_event_id FROM message_response_windows WHERE conversation_id = $1",
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying matched inbound ids: %w", err)
	}
	defer rows.Close()

	matched := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning inbound id: %w", err)
		}
		matched[id] = true
	}

	return matched, nil
}

// GetByAccount returns an account's windows since the cutoff, optionally
// restricted to one platform. since covers the previous period too, so
// callers load one snapshot and let the pure analytics layer slice it.
func (r *WindowPostgres) GetByAccount(ctx context.Context, accountID, platform string, since time.Time) ([]entity.ResponseWindow, error) {
	query := `
		SELECT id, account_id, conversation_id, platform, inbound_event_id,
		       outbound_event_id, participant_id, inbound_at, latency_seconds,
		       confidence, method, day_of_week, hour_of_day, is_working_hours,
		       is_valid_for_analytics, created_at
		FROM message_response_windows
		WHERE account_id = $1
		  AND inbound_at >= $2
		  AND ($3 = '' OR platform = $3)
		ORDER BY inbound_at ASC
	`

	rows, err := r.pool.Query(ctx, query, accountID, since, platform)
	if err != nil {
		return nil, fmt.Errorf("querying windows: %w", err)
	}
	defer rows.Close()

	var windows []entity.ResponseWindow
	for rows.Next() {
		var w entity.ResponseWindow
		err := rows.Scan(
			&w.ID,
			&w.AccountID,
			&w.ConversationID,
			&w.Platform,
			&w.InboundEventID,
			&w.OutboundEventID,
			&w.ParticipantID,
			&w.InboundAt,
			&w.LatencySeconds,
			&w.Confidence,
			&w.Method,
			&w.DayOfWeek,
			&w.HourOfDay,
			&w.IsWorkingHours,
			&w.IsValidForAnalytics,
			&w.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning window row: %w", err)
		}
		windows = append(windows, w)
	}

	return windows, nil
}

// Count returns the total window count for an account
func (r *WindowPostgres) Count(ctx context.Context, accountID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM message_response_windows WHERE account_id = $1",
		accountID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting windows: %w", err)
	}
	return count, nil
}
