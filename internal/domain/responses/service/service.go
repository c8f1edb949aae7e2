package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/markoalleno/response-time-sub001/internal/domain/responses/analytics"
	"github.com/markoalleno/response-time-sub001/internal/domain/responses/dao"
	"github.com/markoalleno/response-time-sub001/internal/domain/responses/entity"
	"github.com/markoalleno/response-time-sub001/internal/domain/responses/matcher"
)

// PlatformClient defines the ingestion collaborator: it pages message
// events for an account from an opaque checkpoint cursor.
type PlatformClient interface {
	GetEvents(ctx context.Context, in GetEventsInput) (*GetEventsResult, error)
}

// EventRepository defines message event storage
type EventRepository interface {
	Upsert(ctx context.Context, ev *entity.MessageEvent) error
	UpsertBatch(ctx context.Context, events []entity.MessageEvent) error
	GetConversationEvents(ctx context.Context, conversationID string) ([]entity.MessageEvent, error)
	ListConversations(ctx context.Context, accountID string) ([]string, error)
	SetParticipantExcluded(ctx context.Context, accountID, participantID string, excluded bool) (int64, error)
}

// WindowRepository defines response window storage. InsertBatch must be
// idempotent per inbound event; the unique constraint on inbound_event_id
// is the backstop against concurrent match passes.
type WindowRepository interface {
	InsertBatch(ctx context.Context, windows []entity.ResponseWindow) error
	MatchedInboundIDs(ctx context.Context, conversationID string) (map[string]bool, error)
	GetByAccount(ctx context.Context, accountID, platform string, since time.Time) ([]entity.ResponseWindow, error)
	Count(ctx context.Context, accountID string) (int64, error)
}

// SyncRepository defines per-account sync checkpoint storage
type SyncRepository interface {
	GetSyncStatus(ctx context.Context, accountID string) (*dao.AccountSyncStatus, error)
	UpdateSyncStatus(ctx context.Context, status *dao.AccountSyncStatus) error
	GetAccountsNeedingSync(ctx context.Context, olderThan time.Duration, limit int) ([]string, error)
	IncrementRetryCount(ctx context.Context, accountID string, lastError string, maxRetries int) error
	ResetRetryCount(ctx context.Context, accountID string) error
}

// SnapshotArchiver stores analytics snapshots outside the hot store
type SnapshotArchiver interface {
	ArchiveSnapshot(ctx context.Context, accountID string, snapshot any) (string, error)
}

// GetEventsInput represents input for fetching a page of events
type GetEventsInput struct {
	AccountID   string
	AccessToken string
	Cursor      string
	Limit       int
}

// GetEventsResult is one page of events from the platform
type GetEventsResult struct {
	Events     []entity.MessageEvent
	NextCursor string
	HasMore    bool
}

// SyncError aggregates per-account sync failures. Successful accounts
// keep their data; only the listed accounts failed.
type SyncError struct {
	Failures map[string]error
}

func (e *SyncError) Error() string {
	ids := make([]string, 0, len(e.Failures))
	for id := range e.Failures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return fmt.Sprintf("sync failed for %d account(s): %s", len(ids), strings.Join(ids, ", "))
}

// Unwrap exposes the per-account errors to errors.Is/As
func (e *SyncError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, err := range e.Failures {
		errs = append(errs, err)
	}
	return errs
}

// FailedAccounts returns the failed account IDs in stable order
func (e *SyncError) FailedAccounts() []string {
	ids := make([]string, 0, len(e.Failures))
	for id := range e.Failures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Service handles response analytics business logic
type Service struct {
	platform   PlatformClient
	eventRepo  EventRepository
	windowRepo WindowRepository
	syncRepo   SyncRepository
	archiver   SnapshotArchiver
	settings   entity.Settings
	maxRetries int
}

// New creates a response analytics service
func New(
	platform PlatformClient,
	eventRepo EventRepository,
	windowRepo WindowRepository,
	syncRepo SyncRepository,
	settings entity.Settings,
) *Service {
	return &Service{
		platform:   platform,
		eventRepo:  eventRepo,
		windowRepo: windowRepo,
		syncRepo:   syncRepo,
		settings:   settings,
		maxRetries: 5,
	}
}

// WithArchiver attaches an optional snapshot archiver
func (s *Service) WithArchiver(archiver SnapshotArchiver) *Service {
	s.archiver = archiver
	return s
}

// SyncAccountInput represents input for syncing one account
type SyncAccountInput struct {
	AccountID   string
	AccessToken string
}

// SyncAccount ingests new events for an account from its checkpoint and
// re-runs the matcher over every touched conversation.
func (s *Service) SyncAccount(ctx context.Context, in SyncAccountInput) error {
	if s.eventRepo == nil || s.windowRepo == nil {
		return entity.ErrRepositoryRequired
	}

	cursor := ""
	if s.syncRepo != nil {
		status, err := s.syncRepo.GetSyncStatus(ctx, in.AccountID)
		if err != nil {
			return fmt.Errorf("getting sync status: %w", err)
		}
		if status != nil {
			cursor = status.Cursor
		}
	}

	touched := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result, err := s.platform.GetEvents(ctx, GetEventsInput{
			AccountID:   in.AccountID,
			AccessToken: in.AccessToken,
			Cursor:      cursor,
			Limit:       100,
		})
		if err != nil {
			return fmt.Errorf("fetching events: %w", err)
		}

		if len(result.Events) > 0 {
			events := make([]entity.MessageEvent, len(result.Events))
			copy(events, result.Events)
			for i := range events {
				events[i].AccountID = in.AccountID
			}
			if err := s.eventRepo.UpsertBatch(ctx, events); err != nil {
				return fmt.Errorf("saving events: %w", err)
			}
			for _, ev := range events {
				touched[ev.ConversationID] = true
			}
		}

		if !result.HasMore || result.NextCursor == "" {
			cursor = result.NextCursor
			break
		}
		cursor = result.NextCursor
	}

	for conversationID := range touched {
		if err := s.MatchConversation(ctx, conversationID); err != nil {
			return fmt.Errorf("matching conversation %s: %w", conversationID, err)
		}
	}

	if s.syncRepo != nil {
		if err := s.syncRepo.UpdateSyncStatus(ctx, &dao.AccountSyncStatus{
			AccountID:    in.AccountID,
			LastSyncedAt: time.Now(),
			Cursor:       cursor,
			SyncComplete: true,
		}); err != nil {
			return fmt.Errorf("updating sync status: %w", err)
		}
		if err := s.syncRepo.ResetRetryCount(ctx, in.AccountID); err != nil {
			return fmt.Errorf("resetting retry count: %w", err)
		}
	}

	return nil
}

// AccountCredentials pairs an account with its access token for batch sync
type AccountCredentials struct {
	AccountID   string
	AccessToken string
}

// SyncProgress reports monotonically increasing completion during a batch sync
type SyncProgress struct {
	Completed int
	Total     int
	AccountID string
	Err       error
}

// SyncAccounts syncs a batch of accounts sequentially, isolating failures:
// one account's error never blocks or rolls back another's already-matched
// data. Progress is reported per completed account when onProgress is
// non-nil. A partial failure is surfaced as a *SyncError listing the failed
// accounts while every successful account's data is preserved.
func (s *Service) SyncAccounts(ctx context.Context, accounts []AccountCredentials, onProgress func(SyncProgress)) error {
	failures := make(map[string]error)

	for i, acct := range accounts {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := s.SyncAccount(ctx, SyncAccountInput{
			AccountID:   acct.AccountID,
			AccessToken: acct.AccessToken,
		})
		if err != nil {
			failures[acct.AccountID] = err
			if s.syncRepo != nil {
				_ = s.syncRepo.IncrementRetryCount(ctx, acct.AccountID, err.Error(), s.maxRetries)
			}
		}

		if onProgress != nil {
			onProgress(SyncProgress{
				Completed: i + 1,
				Total:     len(accounts),
				AccountID: acct.AccountID,
				Err:       err,
			})
		}
	}

	if len(failures) > 0 {
		return &SyncError{Failures: failures}
	}
	return nil
}

// MatchConversation re-runs the matcher over one conversation. It loads
// the conversation's ordered, non-excluded events and the set of inbound
// events that already own windows, so repeated runs over an unchanged
// history insert nothing.
func (s *Service) MatchConversation(ctx context.Context, conversationID string) error {
	if s.eventRepo == nil || s.windowRepo == nil {
		return entity.ErrRepositoryRequired
	}

	events, err := s.eventRepo.GetConversationEvents(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("loading events: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	matched, err := s.windowRepo.MatchedInboundIDs(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("loading matched inbound ids: %w", err)
	}

	m := matcher.New(s.settings)
	windows := m.Match(events, matched)
	if len(windows) == 0 {
		return nil
	}

	if err := s.windowRepo.InsertBatch(ctx, windows); err != nil {
		return fmt.Errorf("saving windows: %w", err)
	}
	return nil
}

// RematchAccount re-runs the matcher over every conversation of an account
func (s *Service) RematchAccount(ctx context.Context, accountID string) error {
	conversations, err := s.eventRepo.ListConversations(ctx, accountID)
	if err != nil {
		return fmt.Errorf("listing conversations: %w", err)
	}
	for _, id := range conversations {
		if err := s.MatchConversation(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// AnalyticsInput selects the window set for an analytics computation
type AnalyticsInput struct {
	AccountID string
	Platform  string
	TimeRange entity.TimeRange
}

// loadWindows fetches one snapshot covering the current and previous
// periods; the pure analytics functions slice it from there.
func (s *Service) loadWindows(ctx context.Context, in AnalyticsInput, now time.Time) ([]entity.ResponseWindow, error) {
	if s.windowRepo == nil {
		return nil, entity.ErrRepositoryRequired
	}
	loc := s.settings.Location()
	prevStart, _ := in.TimeRange.PreviousPeriod(now, loc)
	return s.windowRepo.GetByAccount(ctx, in.AccountID, in.Platform, prevStart)
}

// GetMetrics computes percentile/trend statistics for the period
func (s *Service) GetMetrics(ctx context.Context, in AnalyticsInput) (*entity.ResponseMetrics, error) {
	now := time.Now()
	windows, err := s.loadWindows(ctx, in, now)
	if err != nil {
		return nil, fmt.Errorf("loading windows: %w", err)
	}
	metrics := analytics.ComputeMetrics(windows, in.Platform, in.TimeRange, now, s.settings)
	return &metrics, nil
}

// GetScore computes the composite response performance score
func (s *Service) GetScore(ctx context.Context, in AnalyticsInput) (*entity.ResponseScore, error) {
	now := time.Now()
	windows, err := s.loadWindows(ctx, in, now)
	if err != nil {
		return nil, fmt.Errorf("loading windows: %w", err)
	}
	score := analytics.ComputeScore(windows, in.Platform, in.TimeRange, now, s.settings)
	return &score, nil
}

// GetInsights mines the period's window set for patterns and anomalies
func (s *Service) GetInsights(ctx context.Context, in AnalyticsInput) ([]entity.Insight, error) {
	now := time.Now()
	windows, err := s.loadWindows(ctx, in, now)
	if err != nil {
		return nil, fmt.Errorf("loading windows: %w", err)
	}
	return analytics.ComputeInsights(windows, in.Platform, in.TimeRange, now, s.settings), nil
}

// GetWindowsInput represents input for listing response windows
type GetWindowsInput struct {
	AccountID string
	Platform  string
	TimeRange entity.TimeRange
	Limit     int
	Offset    int
}

// GetWindowsOutput represents a page of response windows
type GetWindowsOutput struct {
	Windows []entity.ResponseWindow
	Total   int64
	HasMore bool
}

// GetWindows lists the period's valid windows, newest first
func (s *Service) GetWindows(ctx context.Context, in GetWindowsInput) (*GetWindowsOutput, error) {
	now := time.Now()
	loc := s.settings.Location()
	all, err := s.windowRepo.GetByAccount(ctx, in.AccountID, in.Platform, in.TimeRange.Start(now, loc))
	if err != nil {
		return nil, fmt.Errorf("loading windows: %w", err)
	}

	valid := analytics.FilterWindows(all, in.Platform, in.TimeRange.Start(now, loc), time.Time{})
	sort.Slice(valid, func(i, j int) bool { return valid[i].InboundAt.After(valid[j].InboundAt) })

	limit := in.Limit
	if limit <= 0 {
		limit = 50
	}
	start := in.Offset
	if start > len(valid) {
		start = len(valid)
	}
	end := start + limit
	if end > len(valid) {
		end = len(valid)
	}

	return &GetWindowsOutput{
		Windows: valid[start:end],
		Total:   int64(len(valid)),
		HasMore: end < len(valid),
	}, nil
}

// ExcludeParticipantInput represents input for toggling participant exclusion
type ExcludeParticipantInput struct {
	AccountID     string
	ParticipantID string
	Excluded      bool
}

// ExcludeParticipant toggles the excluded flag on a participant's events.
// Past windows stay; only future matching is affected.
func (s *Service) ExcludeParticipant(ctx context.Context, in ExcludeParticipantInput) (int64, error) {
	if s.eventRepo == nil {
		return 0, entity.ErrRepositoryRequired
	}
	return s.eventRepo.SetParticipantExcluded(ctx, in.AccountID, in.ParticipantID, in.Excluded)
}

// snapshot is the JSON document written to the archive
type snapshot struct {
	AccountID string                 `json:"account_id"`
	TimeRange entity.TimeRange       `json:"time_range"`
	TakenAt   time.Time              `json:"taken_at"`
	Metrics   entity.ResponseMetrics `json:"metrics"`
	Score     entity.ResponseScore   `json:"score"`
}

// ArchiveSnapshot computes the period's metrics and score and stores them
// in the long-term archive, returning the object key.
func (s *Service) ArchiveSnapshot(ctx context.Context, in AnalyticsInput) (string, error) {
	if s.archiver == nil {
		return "", entity.ErrRepositoryRequired
	}

	metrics, err := s.GetMetrics(ctx, in)
	if err != nil {
		return "", err
	}
	score, err := s.GetScore(ctx, in)
	if err != nil {
		return "", err
	}

	key, err := s.archiver.ArchiveSnapshot(ctx, in.AccountID, snapshot{
		AccountID: in.AccountID,
		TimeRange: in.TimeRange,
		TakenAt:   time.Now().UTC(),
		Metrics:   *metrics,
		Score:     *score,
	})
	if err != nil {
		return "", fmt.Errorf("archiving snapshot: %w", err)
	}
	return key, nil
}

// GetAccountsNeedingSync returns accounts due for a background sync
func (s *Service) GetAccountsNeedingSync(ctx context.Context, olderThan time.Duration, limit int) ([]string, error) {
	if s.syncRepo == nil {
		return nil, entity.ErrRepositoryRequired
	}
	return s.syncRepo.GetAccountsNeedingSync(ctx, olderThan, limit)
}
