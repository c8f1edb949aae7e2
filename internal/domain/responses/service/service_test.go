package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/markoalleno/response-time-sub001/internal/domain/responses/dao"
	"github.com/markoalleno/response-time-sub001/internal/domain/responses/entity"
)

// fakePlatform serves canned event pages per account
type fakePlatform struct {
	events map[string][]entity.MessageEvent
	errs   map[string]error
	calls  int
}

func (f *fakePlatform) GetEvents(ctx context.Context, in GetEventsInput) (*GetEventsResult, error) {
	f.calls++
	if err := f.errs[in.AccountID]; err != nil {
		return nil, err
	}
	// Single page; a second call from the same cursor returns nothing.
	if in.Cursor != "" {
		return &GetEventsResult{}, nil
	}
	return &GetEventsResult{
		Events:     f.events[in.AccountID],
		NextCursor: "cursor-" + in.AccountID,
		HasMore:    false,
	}, nil
}

// fakeEventRepo stores events in memory keyed by conversation
type fakeEventRepo struct {
	byConversation map[string][]entity.MessageEvent
	excludedCalls  int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byConversation: map[string][]entity.MessageEvent{}}
}

func (f *fakeEventRepo) Upsert(ctx context.Context, ev *entity.MessageEvent) error {
	return f.UpsertBatch(ctx, []entity.MessageEvent{*ev})
}

func (f *fakeEventRepo) UpsertBatch(ctx context.Context, events []entity.MessageEvent) error {
	for _, ev := range events {
		f.byConversation[ev.ConversationID] = append(f.byConversation[ev.ConversationID], ev)
	}
	return nil
}

func (f *fakeEventRepo) GetConversationEvents(ctx context.Context, conversationID string) ([]entity.MessageEvent, error) {
	events := append([]entity.MessageEvent(nil), f.byConversation[conversationID]...)
	sort.Slice(events, func(i, j int) bool { return events[i].Timestamp.Before(events[j].Timestamp) })
	return events, nil
}

func (f *fakeEventRepo) ListConversations(ctx context.Context, accountID string) ([]string, error) {
	var ids []string
	for id, events := range f.byConversation {
		for _, ev := range events {
			if ev.AccountID == accountID {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeEventRepo) SetParticipantExcluded(ctx context.Context, accountID, participantID string, excluded bool) (int64, error) {
	f.excludedCalls++
	var n int64
	for id, events := range f.byConversation {
		for i := range events {
			if events[i].AccountID == accountID && events[i].ParticipantID == participantID {
				events[i].Excluded = excluded
				n++
			}
		}
		f.byConversation[id] = events
	}
	return n, nil
}

// fakeWindowRepo enforces the one-window-per-inbound rule in memory
type fakeWindowRepo struct {
	windows []entity.ResponseWindow
}

func (f *fakeWindowRepo) InsertBatch(ctx context.Context, windows []entity.ResponseWindow) error {
	owned := map[string]bool{}
	for _, w := range f.windows {
		owned[w.InboundEventID] = true
	}
	for _, w := range windows {
		if owned[w.InboundEventID] {
			continue
		}
		f.windows = append(f.windows, w)
		owned[w.InboundEventID] = true
	}
	return nil
}

func (f *fakeWindowRepo) MatchedInboundIDs(ctx context.Context, conversationID string) (map[string]bool, error) {
	ids := map[string]bool{}
	for _, w := range f.windows {
		if w.ConversationID == conversationID {
			ids[w.InboundEventID] = true
		}
	}
	return ids, nil
}

func (f *fakeWindowRepo) GetByAccount(ctx context.Context, accountID, platform string, since time.Time) ([]entity.ResponseWindow, error) {
	var out []entity.ResponseWindow
	for _, w := range f.windows {
		if w.AccountID != accountID {
			continue
		}
		if platform != "" && w.Platform != platform {
			continue
		}
		if w.InboundAt.Before(since) {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

func (f *fakeWindowRepo) Count(ctx context.Context, accountID string) (int64, error) {
	var n int64
	for _, w := range f.windows {
		if w.AccountID == accountID {
			n++
		}
	}
	return n, nil
}

// fakeSyncRepo keeps checkpoints in memory
type fakeSyncRepo struct {
	statuses map[string]*dao.AccountSyncStatus
	retries  map[string]int
}

func newFakeSyncRepo() *fakeSyncRepo {
	return &fakeSyncRepo{
		statuses: map[string]*dao.AccountSyncStatus{},
		retries:  map[string]int{},
	}
}

func (f *fakeSyncRepo) GetSyncStatus(ctx context.Context, accountID string) (*dao.AccountSyncStatus, error) {
	return f.statuses[accountID], nil
}

func (f *fakeSyncRepo) UpdateSyncStatus(ctx context.Context, status *dao.AccountSyncStatus) error {
	f.statuses[status.AccountID] = status
	return nil
}

func (f *fakeSyncRepo) GetAccountsNeedingSync(ctx context.Context, olderThan time.Duration, limit int) ([]string, error) {
	return nil, nil
}

func (f *fakeSyncRepo) IncrementRetryCount(ctx context.Context, accountID string, lastError string, maxRetries int) error {
	f.retries[accountID]++
	return nil
}

func (f *fakeSyncRepo) ResetRetryCount(ctx context.Context, accountID string) error {
	f.retries[accountID] = 0
	return nil
}

var syncT0 = time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

func conversationEvents(accountID, conversationID string) []entity.MessageEvent {
	return []entity.MessageEvent{
		{
			ID:             accountID + "-in-1",
			AccountID:      accountID,
			ConversationID: conversationID,
			Platform:       "telegram",
			Timestamp:      syncT0,
			Direction:      entity.DirectionInbound,
			ParticipantID:  "p-1",
		},
		{
			ID:             accountID + "-out-1",
			AccountID:      accountID,
			ConversationID: conversationID,
			Platform:       "telegram",
			Timestamp:      syncT0.Add(20 * time.Minute),
			Direction:      entity.DirectionOutbound,
		},
	}
}

func newTestService(platform *fakePlatform) (*Service, *fakeEventRepo, *fakeWindowRepo, *fakeSyncRepo) {
	eventRepo := newFakeEventRepo()
	windowRepo := &fakeWindowRepo{}
	syncRepo := newFakeSyncRepo()
	svc := New(platform, eventRepo, windowRepo, syncRepo, entity.DefaultSettings())
	return svc, eventRepo, windowRepo, syncRepo
}

func TestSyncAccountMatchesAndCheckpoints(t *testing.T) {
	platform := &fakePlatform{
		events: map[string][]entity.MessageEvent{
			"acc-1": conversationEvents("acc-1", "conv-1"),
		},
	}
	svc, _, windowRepo, syncRepo := newTestService(platform)

	err := svc.SyncAccount(context.Background(), SyncAccountInput{AccountID: "acc-1", AccessToken: "tok"})
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	if len(windowRepo.windows) != 1 {
		t.Fatalf("got %d windows, want 1", len(windowRepo.windows))
	}
	w := windowRepo.windows[0]
	if w.LatencySeconds != 1200 {
		t.Errorf("latency = %v, want 1200", w.LatencySeconds)
	}
	if w.AccountID != "acc-1" {
		t.Errorf("account = %s, want acc-1", w.AccountID)
	}

	status := syncRepo.statuses["acc-1"]
	if status == nil {
		t.Fatal("sync status not recorded")
	}
	if status.Cursor != "cursor-acc-1" {
		t.Errorf("cursor = %q, want cursor-acc-1", status.Cursor)
	}
	if !status.SyncComplete {
		t.Error("sync should be marked complete")
	}
}

func TestSyncAccountsIsolatesFailures(t *testing.T) {
	platform := &fakePlatform{
		events: map[string][]entity.MessageEvent{
			"good-1": conversationEvents("good-1", "conv-1"),
			"good-2": conversationEvents("good-2", "conv-2"),
		},
		errs: map[string]error{
			"bad-1": errors.New("token expired"),
		},
	}
	svc, _, windowRepo, syncRepo := newTestService(platform)

	accounts := []AccountCredentials{
		{AccountID: "good-1", AccessToken: "t1"},
		{AccountID: "bad-1", AccessToken: "t2"},
		{AccountID: "good-2", AccessToken: "t3"},
	}

	var progress []SyncProgress
	err := svc.SyncAccounts(context.Background(), accounts, func(p SyncProgress) {
		progress = append(progress, p)
	})

	var syncErr *SyncError
	if !errors.As(err, &syncErr) {
		t.Fatalf("error = %v, want *SyncError", err)
	}
	failed := syncErr.FailedAccounts()
	if len(failed) != 1 || failed[0] != "bad-1" {
		t.Errorf("failed accounts = %v, want [bad-1]", failed)
	}

	// Successful accounts kept their matched data.
	if len(windowRepo.windows) != 2 {
		t.Errorf("got %d windows, want 2 from the successful accounts", len(windowRepo.windows))
	}
	if syncRepo.retries["bad-1"] != 1 {
		t.Errorf("retry count for bad-1 = %d, want 1", syncRepo.retries["bad-1"])
	}
	if syncRepo.retries["good-1"] != 0 {
		t.Errorf("retry count for good-1 = %d, want 0", syncRepo.retries["good-1"])
	}

	if len(progress) != 3 {
		t.Fatalf("got %d progress reports, want 3", len(progress))
	}
	for i, p := range progress {
		if p.Completed != i+1 || p.Total != 3 {
			t.Errorf("progress[%d] = %d/%d, want %d/3", i, p.Completed, p.Total, i+1)
		}
	}
	if progress[1].Err == nil {
		t.Error("progress for bad-1 should carry its error")
	}
}

func TestMatchConversationIdempotent(t *testing.T) {
	platform := &fakePlatform{}
	svc, eventRepo, windowRepo, _ := newTestService(platform)

	if err := eventRepo.UpsertBatch(context.Background(), conversationEvents("acc-1", "conv-1")); err != nil {
		t.Fatal(err)
	}

	if err := svc.MatchConversation(context.Background(), "conv-1"); err != nil {
		t.Fatalf("first match: %v", err)
	}
	if err := svc.MatchConversation(context.Background(), "conv-1"); err != nil {
		t.Fatalf("second match: %v", err)
	}

	if len(windowRepo.windows) != 1 {
		t.Errorf("got %d windows after repeated matching, want 1", len(windowRepo.windows))
	}
}

func TestGetMetricsFromService(t *testing.T) {
	platform := &fakePlatform{}
	svc, _, windowRepo, _ := newTestService(platform)

	now := time.Now()
	for i, latency := range []float64{10, 20, 30, 40, 50} {
		windowRepo.windows = append(windowRepo.windows, entity.ResponseWindow{
			ID:                  string(rune('a' + i)),
			AccountID:           "acc-1",
			InboundEventID:      string(rune('a' + i)),
			InboundAt:           now.Add(-time.Duration(i+1) * time.Hour),
			LatencySeconds:      latency,
			Confidence:          1.0,
			IsValidForAnalytics: true,
		})
	}

	metrics, err := svc.GetMetrics(context.Background(), AnalyticsInput{
		AccountID: "acc-1",
		TimeRange: entity.TimeRangeWeek,
	})
	if err != nil {
		t.Fatalf("metrics failed: %v", err)
	}
	if metrics.SampleCount != 5 {
		t.Errorf("sample count = %d, want 5", metrics.SampleCount)
	}
	if metrics.MedianSeconds != 30 {
		t.Errorf("median = %v, want 30", metrics.MedianSeconds)
	}
}

func TestGetWindowsPagination(t *testing.T) {
	platform := &fakePlatform{}
	svc, _, windowRepo, _ := newTestService(platform)

	now := time.Now()
	for i := 0; i < 7; i++ {
		windowRepo.windows = append(windowRepo.windows, entity.ResponseWindow{
			ID:                  string(rune('a' + i)),
			AccountID:           "acc-1",
			InboundEventID:      string(rune('a' + i)),
			InboundAt:           now.Add(-time.Duration(i+1) * time.Hour),
			LatencySeconds:      100,
			Confidence:          1.0,
			IsValidForAnalytics: true,
		})
	}

	out, err := svc.GetWindows(context.Background(), GetWindowsInput{
		AccountID: "acc-1",
		TimeRange: entity.TimeRangeWeek,
		Limit:     3,
	})
	if err != nil {
		t.Fatalf("get windows failed: %v", err)
	}
	if out.Total != 7 {
		t.Errorf("total = %d, want 7", out.Total)
	}
	if len(out.Windows) != 3 {
		t.Fatalf("page size = %d, want 3", len(out.Windows))
	}
	if !out.HasMore {
		t.Error("expected has_more on the first page")
	}
	for i := 1; i < len(out.Windows); i++ {
		if out.Windows[i].InboundAt.After(out.Windows[i-1].InboundAt) {
			t.Fatal("windows must be ordered newest first")
		}
	}

	last, err := svc.GetWindows(context.Background(), GetWindowsInput{
		AccountID: "acc-1",
		TimeRange: entity.TimeRangeWeek,
		Limit:     3,
		Offset:    6,
	})
	if err != nil {
		t.Fatalf("get last page failed: %v", err)
	}
	if len(last.Windows) != 1 || last.HasMore {
		t.Errorf("last page = %d windows, has_more=%v; want 1, false", len(last.Windows), last.HasMore)
	}
}

func TestExcludeParticipant(t *testing.T) {
	platform := &fakePlatform{}
	svc, eventRepo, _, _ := newTestService(platform)

	if err := eventRepo.UpsertBatch(context.Background(), conversationEvents("acc-1", "conv-1")); err != nil {
		t.Fatal(err)
	}

	n, err := svc.ExcludeParticipant(context.Background(), ExcludeParticipantInput{
		AccountID:     "acc-1",
		ParticipantID: "p-1",
		Excluded:      true,
	})
	if err != nil {
		t.Fatalf("exclude failed: %v", err)
	}
	if n != 1 {
		t.Errorf("updated %d events, want 1", n)
	}
}

// fakeArchiver records the snapshots it receives
type fakeArchiver struct {
	keys []string
}

func (f *fakeArchiver) ArchiveSnapshot(ctx context.Context, accountID string, snapshot any) (string, error) {
	key := "snapshots/" + accountID + "/test.json"
	f.keys = append(f.keys, key)
	return key, nil
}

func TestArchiveSnapshot(t *testing.T) {
	platform := &fakePlatform{}
	svc, _, _, _ := newTestService(platform)

	archiver := &fakeArchiver{}
	svc = svc.WithArchiver(archiver)

	key, err := svc.ArchiveSnapshot(context.Background(), AnalyticsInput{
		AccountID: "acc-1",
		TimeRange: entity.TimeRangeWeek,
	})
	if err != nil {
		t.Fatalf("archive failed: %v", err)
	}
	if key != "snapshots/acc-1/test.json" {
		t.Errorf("key = %q", key)
	}
	if len(archiver.keys) != 1 {
		t.Errorf("archiver called %d times, want 1", len(archiver.keys))
	}
}

func TestSyncErrorMessage(t *testing.T) {
	err := &SyncError{Failures: map[string]error{
		"acc-2": errors.New("boom"),
		"acc-1": errors.New("bang"),
	}}

	want := "sync failed for 2 account(s): acc-1, acc-2"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
