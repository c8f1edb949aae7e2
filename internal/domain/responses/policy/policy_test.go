package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/markoalleno/response-time-sub001/internal/domain/responses/entity"
	"github.com/markoalleno/response-time-sub001/internal/domain/responses/service"
)

type fakeAccounts struct {
	tokens map[string]string
}

func (f *fakeAccounts) GetAccessToken(ctx context.Context, accountID string) (string, error) {
	token, ok := f.tokens[accountID]
	if !ok {
		return "", entity.ErrAccountNotFound
	}
	return token, nil
}

type fakeService struct {
	ResponseService
	syncInputs  []service.SyncAccountInput
	batchInputs []service.AccountCredentials
}

func (f *fakeService) SyncAccount(ctx context.Context, in service.SyncAccountInput) error {
	f.syncInputs = append(f.syncInputs, in)
	return nil
}

func (f *fakeService) SyncAccounts(ctx context.Context, accounts []service.AccountCredentials, onProgress func(service.SyncProgress)) error {
	f.batchInputs = append(f.batchInputs, accounts...)
	return nil
}

func TestSyncResolvesToken(t *testing.T) {
	svc := &fakeService{}
	p := New(svc, &fakeAccounts{tokens: map[string]string{"acc-1": "tok-1"}})

	if err := p.Sync(context.Background(), SyncInput{AccountID: "acc-1"}); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	if len(svc.syncInputs) != 1 {
		t.Fatalf("service called %d times, want 1", len(svc.syncInputs))
	}
	if svc.syncInputs[0].AccessToken != "tok-1" {
		t.Errorf("token = %q, want tok-1", svc.syncInputs[0].AccessToken)
	}
}

func TestSyncUnknownAccount(t *testing.T) {
	svc := &fakeService{}
	p := New(svc, &fakeAccounts{tokens: map[string]string{}})

	err := p.Sync(context.Background(), SyncInput{AccountID: "missing"})
	if !errors.Is(err, entity.ErrAccountNotFound) {
		t.Fatalf("error = %v, want ErrAccountNotFound", err)
	}
	if len(svc.syncInputs) != 0 {
		t.Error("service must not be called without credentials")
	}
}

func TestSyncBatchContinuesOnCredentialFailure(t *testing.T) {
	svc := &fakeService{}
	p := New(svc, &fakeAccounts{tokens: map[string]string{"acc-1": "tok-1"}})

	err := p.SyncBatch(context.Background(), []string{"acc-1", "missing"}, nil)
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}

	if len(svc.batchInputs) != 2 {
		t.Fatalf("got %d accounts in batch, want 2", len(svc.batchInputs))
	}
	if svc.batchInputs[0].AccessToken != "tok-1" {
		t.Errorf("first token = %q, want tok-1", svc.batchInputs[0].AccessToken)
	}
	if svc.batchInputs[1].AccessToken != "" {
		t.Error("account without credentials must pass through with an empty token")
	}
}
