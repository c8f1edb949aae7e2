package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/markoalleno/response-time-sub001/internal/domain/responses/service"
)

// ResponseSyncer defines the interface for syncing accounts
type ResponseSyncer interface {
	SyncAccounts(ctx context.Context, accounts []service.AccountCredentials, onProgress func(service.SyncProgress)) error
	GetAccountsNeedingSync(ctx context.Context, olderThan time.Duration, limit int) ([]string, error)
}

// AccountProvider resolves credentials for an account
type AccountProvider interface {
	GetAccessToken(ctx context.Context, accountID string) (string, error)
}

// Scheduler periodically ingests new message events for stale accounts
type Scheduler struct {
	syncer          ResponseSyncer
	accountProvider AccountProvider
	interval        time.Duration
	syncAge         time.Duration // how old sync status can be before refreshing
	batchSize       int           // how many accounts to sync per run
	logger          *slog.Logger
	stopCh          chan struct{}
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	running         bool
	mu              sync.Mutex
}

// Config holds configuration for the sync scheduler
type Config struct {
	Interval  time.Duration
	SyncAge   time.Duration
	BatchSize int
}

// New creates a new sync scheduler
func New(
	syncer ResponseSyncer,
	accountProvider AccountProvider,
	cfg Config,
	logger *slog.Logger,
) *Scheduler {
	if cfg.Interval == 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.SyncAge == 0 {
		cfg.SyncAge = 30 * time.Minute
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 5
	}

	return &Scheduler{
		syncer:          syncer,
		accountProvider: accountProvider,
		interval:        cfg.Interval,
		syncAge:         cfg.SyncAge,
		batchSize:       cfg.BatchSize,
		logger:          logger,
		stopCh:          make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.logger.Info("response sync scheduler started", "interval", s.interval, "sync_age", s.syncAge)

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop stops the scheduler and cancels in-flight syncs
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info("response sync scheduler stopped")
}

// run is the main scheduler loop
func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Short delay on start to let the app initialize.
	select {
	case <-time.After(15 * time.Second):
		s.process(ctx)
	case <-s.stopCh:
		return
	case <-ctx.Done():
		return
	}

	for {
		select {
		case <-ticker.C:
			s.process(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// process syncs the accounts whose data has gone stale
func (s *Scheduler) process(ctx context.Context) {
	accountIDs, err := s.syncer.GetAccountsNeedingSync(ctx, s.syncAge, s.batchSize)
	if err != nil {
		s.logger.Error("failed to get accounts needing sync", "error", err)
		return
	}

	if len(accountIDs) == 0 {
		s.logger.Debug("no accounts need sync")
		return
	}

	s.logger.Info("syncing accounts", "count", len(accountIDs))

	accounts := make([]service.AccountCredentials, 0, len(accountIDs))
	for _, id := range accountIDs {
		token, err := s.accountProvider.GetAccessToken(ctx, id)
		if err != nil {
			s.logger.Error("failed to resolve credentials", "account_id", id, "error", err)
			continue
		}
		accounts = append(accounts, service.AccountCredentials{AccountID: id, AccessToken: token})
	}

	err = s.syncer.SyncAccounts(ctx, accounts, func(p service.SyncProgress) {
		if p.Err != nil {
			s.logger.Error("account sync failed", "account_id", p.AccountID, "error", p.Err)
			return
		}
		s.logger.Debug("account synced", "account_id", p.AccountID, "progress", p.Completed, "total", p.Total)
	})
	if err != nil {
		// Partial failure: successful accounts kept their data.
		s.logger.Warn("sync batch finished with failures", "error", err)
	}
}
