package dao

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/markoalleno/response-time-sub001/internal/domain/responses/entity"
)

// AccountPostgres resolves platform credentials for connected accounts
type AccountPostgres struct {
	pool *pgxpool.Pool
}

// NewAccountPostgres creates a new account repository
func NewAccountPostgres(pool *pgxpool.Pool) *AccountPostgres {
	return &AccountPostgres{pool: pool}
}

// GetAccessToken returns the stored access token for an account
func (r *AccountPostgres) GetAccessToken(ctx context.Context, accountID string) (string, error) {
	query := `
		SELECT access_token
		FROM accounts
		WHERE id::text = $1
	`

	var token string
	err := r.pool.QueryRow(ctx, query, accountID).Scan(&token)
	if err == pgx.ErrNoRows {
		return "", entity.ErrAccountNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting access token: %w", err)
	}

	return token, nil
}
