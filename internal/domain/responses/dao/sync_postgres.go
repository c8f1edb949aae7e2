package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountSyncStatus tracks ingestion progress for an account. Cursor is
// the opaque checkpoint returned by the platform, allowing incremental
// resumption from the last successfully processed page.
type AccountSyncStatus struct {
	AccountID    string
	LastSyncedAt time.Time
	Cursor       string
	SyncComplete bool
	RetryCount   int
	Failed       bool
	LastError    string
}

// AccountSyncPostgres implements account sync checkpoint storage
type AccountSyncPostgres struct {
	pool *pgxpool.Pool
}

// NewAccountSyncPostgres creates a new account sync status repository
func NewAccountSyncPostgres(pool *pgxpool.Pool) *AccountSyncPostgres {
	return &AccountSyncPostgres{pool: pool}
}

// GetSyncStatus retrieves sync status for an account, nil when never synced
func (r *AccountSyncPostgres) GetSyncStatus(ctx context.Context, accountID string) (*AccountSyncStatus, error) {
	query := `
		SELECT account_id, last_synced_at, cursor, sync_complete, retry_count, failed, last_error
		FROM account_sync_status
		WHERE account_id = $1
	`

	var status AccountSyncStatus
	var cursor, lastError *string

	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&status.AccountID,
		&status.LastSyncedAt,
		&cursor,
		&status.SyncComplete,
		&status.RetryCount,
		&status.Failed,
		&lastError,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting account sync status: %w", err)
	}

	if cursor != nil {
		status.Cursor = *cursor
	}
	if lastError != nil {
		status.LastError = *lastError
	}

	return &status, nil
}

// UpdateSyncStatus updates or inserts sync status for an account
func (r *AccountSyncPostgres) UpdateSyncStatus(ctx context.Context, status *AccountSyncStatus) error {
	query := `
		INSERT INTO account_sync_status (account_id, last_synced_at, cursor, sync_complete, retry_count, failed, last_error)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (account_id) DO UPDATE SET
			last_synced_at = EXCLUDED.last_synced_at,
			cursor = EXCLUDED.cursor,
			sync_complete = EXCLUDED.sync_complete,
			retry_count = EXCLUDED.retry_count,
			failed = EXCLUDED.failed,
			last_error = EXCLUDED.last_error
	`

	var cursor *string
	if status.Cursor != "" {
		cursor = &status.Cursor
	}
	var lastError *string
	if status.LastError != "" {
		lastError = &status.LastError
	}

	_, err := r.pool.Exec(ctx, query,
		status.AccountID,
		status.LastSyncedAt,
		cursor,
		status.SyncComplete,
		status.RetryCount,
		status.Failed,
		lastError,
	)
	if err != nil {
		return fmt.Errorf("updating account sync status: %w", err)
	}

	return nil
}

// GetAccountsNeedingSync returns accounts whose last sync is older than
// the threshold, oldest first. Accounts marked failed are excluded until
// their retry count is reset.
func (r *AccountSyncPostgres) GetAccountsNeedingSync(ctx context.Context, olderThan time.Duration, limit int) ([]string, error) {
	query := `
		SELECT a.id::text
		FROM accounts a
		LEFT JOIN account_sync_status s ON a.id = s.account_id
		WHERE (s.account_id IS NULL OR s.last_synced_at < $1)
		  AND (s.failed IS NOT TRUE)
		ORDER BY COALESCE(s.last_synced_at, '1970-01-01'::timestamp) ASC
		LIMIT $2
	`

	threshold := time.Now().Add(-olderThan)
	rows, err := r.pool.Query(ctx, query, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("getting accounts needing sync: %w", err)
	}
	defer rows.Close()

	var accountIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning account id: %w", err)
		}
		accountIDs = append(accountIDs, id)
	}

	return accountIDs, nil
}

// IncrementRetryCount bumps the retry counter after a failed sync and
// marks the account failed once maxRetries is reached.
func (r *AccountSyncPostgres) IncrementRetryCount(ctx context.Context, accountID string, lastError string, maxRetries int) error {
	query := `
		INSERT INTO account_sync_status (account_id, last_synced_at, retry_count, failed, last_error)
		VALUES ($1, $2, 1, false, $3)
		ON CONFLICT (account_id) DO UPDATE SET
			retry_count = account_sync_status.retry_count + 1,
			failed = account_sync_status.retry_count + 1 >= $4,
			last_error = EXCLUDED.last_error
	`

	_, err := r.pool.Exec(ctx, query, accountID, time.Now(), lastError, maxRetries)
	if err != nil {
		return fmt.Errorf("incrementing retry count: %w", err)
	}
	return nil
}

// ResetRetryCount clears the retry counter after a successful sync
func (r *AccountSyncPostgres) ResetRetryCount(ctx context.Context, accountID string) error {
	query := `
		UPDATE account_sync_status
		SET retry_count = 0, failed = false, last_error = NULL
		WHERE account_id = $1
	`

	_, err := r.pool.Exec(ctx, query, accountID)
	if err != nil {
		return fmt.Errorf("resetting retry count: %w", err)
	}
	return nil
}
