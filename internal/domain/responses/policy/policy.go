package policy

import (
	"context"
	"fmt"

	"github.com/markoalleno/response-time-sub001/internal/domain/responses/entity"
	"github.com/markoalleno/response-time-sub001/internal/domain/responses/service"
)

// AccountProvider resolves credentials for an account
type AccountProvider interface {
	GetAccessToken(ctx context.Context, accountID string) (string, error)
}

// ResponseService defines the interface for the response analytics service
type ResponseService interface {
	SyncAccount(ctx context.Context, in service.SyncAccountInput) error
	SyncAccounts(ctx context.Context, accounts []service.AccountCredentials, onProgress func(service.SyncProgress)) error
	GetMetrics(ctx context.Context, in service.AnalyticsInput) (*entity.ResponseMetrics, error)
	GetScore(ctx context.Context, in service.AnalyticsInput) (*entity.ResponseScore, error)
	GetInsights(ctx context.Context, in service.AnalyticsInput) ([]entity.Insight, error)
	GetWindows(ctx context.Context, in service.GetWindowsInput) (*service.GetWindowsOutput, error)
	ExcludeParticipant(ctx context.Context, in service.ExcludeParticipantInput) (int64, error)
	ArchiveSnapshot(ctx context.Context, in service.AnalyticsInput) (string, error)
}

// Policy handles response analytics operations with account authorization
type Policy struct {
	svc      ResponseService
	accounts AccountProvider
}

// New creates a new responses policy
func New(svc ResponseService, accounts AccountProvider) *Policy {
	return &Policy{
		svc:      svc,
		accounts: accounts,
	}
}

// AnalyticsInput represents input for an analytics query
type AnalyticsInput struct {
	AccountID string
	Platform  string
	TimeRange entity.TimeRange
}

// GetMetrics returns percentile/trend statistics for an account's period
func (p *Policy) GetMetrics(ctx context.Context, in AnalyticsInput) (*entity.ResponseMetrics, error) {
	return p.svc.GetMetrics(ctx, service.AnalyticsInput{
		AccountID: in.AccountID,
		Platform:  in.Platform,
		TimeRange: in.TimeRange,
	})
}

// GetScore returns the composite response score for an account's period
func (p *Policy) GetScore(ctx context.Context, in AnalyticsInput) (*entity.ResponseScore, error) {
	return p.svc.GetScore(ctx, service.AnalyticsInput{
		AccountID: in.AccountID,
		Platform:  in.Platform,
		TimeRange: in.TimeRange,
	})
}

// GetInsights returns the ranked insight list for an account's period
func (p *Policy) GetInsights(ctx context.Context, in AnalyticsInput) ([]entity.Insight, error) {
	return p.svc.GetInsights(ctx, service.AnalyticsInput{
		AccountID: in.AccountID,
		Platform:  in.Platform,
		TimeRange: in.TimeRange,
	})
}

// GetWindowsInput represents input for listing windows
type GetWindowsInput struct {
	AccountID string
	Platform  string
	TimeRange entity.TimeRange
	Limit     int
	Offset    int
}

// GetWindows lists the period's response windows
func (p *Policy) GetWindows(ctx context.Context, in GetWindowsInput) (*service.GetWindowsOutput, error) {
	return p.svc.GetWindows(ctx, service.GetWindowsInput{
		AccountID: in.AccountID,
		Platform:  in.Platform,
		TimeRange: in.TimeRange,
		Limit:     in.Limit,
		Offset:    in.Offset,
	})
}

// SyncInput represents input for triggering a sync
type SyncInput struct {
	AccountID string
}

// Sync resolves the account's credentials and triggers ingestion
func (p *Policy) Sync(ctx context.Context, in SyncInput) error {
	accessToken, err := p.accounts.GetAccessToken(ctx, in.AccountID)
	if err != nil {
		return fmt.Errorf("getting access token: %w", err)
	}

	return p.svc.SyncAccount(ctx, service.SyncAccountInput{
		AccountID:   in.AccountID,
		AccessToken: accessToken,
	})
}

// SyncBatch syncs several accounts, isolating per-account failures
func (p *Policy) SyncBatch(ctx context.Context, accountIDs []string, onProgress func(service.SyncProgress)) error {
	accounts := make([]service.AccountCredentials, 0, len(accountIDs))
	for _, id := range accountIDs {
		token, err := p.accounts.GetAccessToken(ctx, id)
		if err != nil {
			// Credential failures are part of the per-account isolation
			// contract: record and keep going.
			accounts = append(accounts, service.AccountCredentials{AccountID: id})
			continue
		}
		accounts = append(accounts, service.AccountCredentials{AccountID: id, AccessToken: token})
	}
	return p.svc.SyncAccounts(ctx, accounts, onProgress)
}

// ExcludeParticipantInput represents input for toggling exclusion
type ExcludeParticipantInput struct {
	AccountID     string
	ParticipantID string
	Excluded      bool
}

// ExcludeParticipant marks a participant's events excluded from matching
func (p *Policy) ExcludeParticipant(ctx context.Context, in ExcludeParticipantInput) (int64, error) {
	return p.svc.ExcludeParticipant(ctx, service.ExcludeParticipantInput{
		AccountID:     in.AccountID,
		ParticipantID: in.ParticipantID,
		Excluded:      in.Excluded,
	})
}

// ArchiveSnapshot stores the period's metrics and score in the archive
func (p *Policy) ArchiveSnapshot(ctx context.Context, in AnalyticsInput) (string, error) {
	return p.svc.ArchiveSnapshot(ctx, service.AnalyticsInput{
		AccountID: in.AccountID,
		Platform:  in.Platform,
		TimeRange: in.TimeRange,
	})
}
