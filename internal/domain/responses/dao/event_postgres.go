package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/markoalleno/response-time-sub001/internal/domain/responses/entity"
)

// EventPostgres implements message event storage for PostgreSQL
type EventPostgres struct {
	pool *pgxpool.Pool
}

// NewEventPostgres creates a new PostgreSQL event repository
func NewEventPostgres(pool *pgxpool.Pool) *EventPostgres {
	return &EventPostgres{pool: pool}
}

// Upsert inserts or updates a message event
func (r *EventPostgres) Upsert(ctx context.Context, ev *entity.MessageEvent) error {
	query := `
		INSERT INTO message_events (
			id, account_id, conversation_id, platform, timestamp,
			direction, participant_id, excluded, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			excluded = EXCLUDED.excluded
	`

	_, err := r.pool.Exec(ctx, query,
		ev.ID,
		ev.AccountID,
		ev.ConversationID,
		ev.Platform,
		ev.Timestamp,
		ev.Direction,
		ev.ParticipantID,
		ev.Excluded,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("upserting event: %w", err)
	}

	return nil
}

// UpsertBatch inserts or updates multiple message events
func (r *EventPostgres) UpsertBatch(ctx context.Context, events []entity.MessageEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO message_events (
			id, account_id, conversation_id, platform, timestamp,
			direction, participant_id, excluded, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			excluded = EXCLUDED.excluded
	`

	now := time.Now()
	for _, ev := range events {
		batch.Queue(query,
			ev.ID,
			ev.AccountID,
			ev.ConversationID,
			ev.Platform,
			ev.Timestamp,
			ev.Direction,
			ev.ParticipantID,
			ev.Excluded,
			now,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range events {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("executing batch upsert: %w", err)
		}
	}

	return nil
}

// GetConversationEvents returns a conversation's events sorted ascending by
// timestamp with excluded events removed, ready for the matcher.
func (r *EventPostgres) GetConversationEvents(ctx context.Context, conversationID string) ([]entity.MessageEvent, error) {
	query := `
		SELECT id, account_id, conversation_id, platform, timestamp,
		       direction, participant_id, excluded, created_at
		FROM message_events
		WHERE conversation_id = $1
		  AND NOT excluded
		ORDER BY timestamp ASC
	`

	rows, err := r.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("querying conversation events: %w", err)
	}
	defer rows.Close()

	var events []entity.MessageEvent
	for rows.Next() {
		var ev entity.MessageEvent
		err := rows.Scan(
			&ev.ID,
			&ev.AccountID,
			&ev.ConversationID,
			&ev.Platform,
			&ev.Timestamp,
			&ev.Direction,
			&ev.ParticipantID,
			&ev.Excluded,
			&ev.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		events = append(events, ev)
	}

	return events, nil
}

// ListConversations returns the distinct conversation IDs for an account
func (r *EventPostgres) ListConversations(ctx context.Context, accountID string) ([]string, error) {
	query := `
		SELECT DISTINCT conversation_id
		FROM message_events
		WHERE account_id = $1
	`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning conversation id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// SetParticipantExcluded toggles the excluded flag on all of a participant's
// events for an account. Existing windows are untouched; the flag only
// affects future matching.
func (r *EventPostgres) SetParticipantExcluded(ctx context.Context, accountID, participantID string, excluded bool) (int64, error) {
	query := `
		UPDATE message_events
		SET excluded = $3
		WHERE account_id = $1 AND participant_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, accountID, participantID, excluded)
	if err != nil {
		return 0, fmt.Errorf("updating participant exclusion: %w", err)
	}
	return tag.RowsAffected(), nil
}
