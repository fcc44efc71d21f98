package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wqam/backend/internal/model"
	"github.com/wqam/backend/internal/repository"
)

// memStore is an in-memory AccountStore. Emails are assumed to arrive
// already normalized, matching what the services and the MySQL repo do.
type memStore struct {
	mu     sync.Mutex
	byID   map[uint64]*model.Account
	nextID uint64
}

func newMemStore() *memStore {
	return &memStore{byID: map[uint64]*model.Account{}}
}

func (s *memStore) Create(ctx context.Context, a *model.Account) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Email == a.Email {
			return 0, repository.ErrEmailExists
		}
	}
	s.nextID++
	a.ID = s.nextID
	cp := *a
	s.byID[a.ID] = &cp
	return a.ID, nil
}

func (s *memStore) FindByEmail(ctx context.Context, email string) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.byID {
		if a.Email == email {
			return *a, nil
		}
	}
	return model.Account{}, repository.ErrNotFound
}

func (s *memStore) FindByID(ctx context.Context, id uint64) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.byID[id]; ok {
		return *a, nil
	}
	return model.Account{}, repository.ErrNotFound
}

func (s *memStore) UpdateStatus(ctx context.Context, id uint64, status string) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return model.Account{}, repository.ErrNotFound
	}
	a.Status = status
	return *a, nil
}

func (s *memStore) ListByStatus(ctx context.Context, status string) ([]model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Account
	for id := uint64(1); id <= s.nextID; id++ {
		if a, ok := s.byID[id]; ok && a.Status == status {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *memStore) EnsureAdmin(ctx context.Context, a *model.Account) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Role == model.RoleAdmin {
			return false, nil
		}
	}
	s.nextID++
	a.ID = s.nextID
	cp := *a
	s.byID[a.ID] = &cp
	return true, nil
}

// mutate adjusts a stored account in place, simulating an external process
// changing the record behind the service's back.
func (s *memStore) mutate(id uint64, fn func(*model.Account)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.byID[id]; ok {
		fn(a)
	}
}

func (s *memStore) delete(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}

type notifyCall struct {
	address, subject, body string
}

// recordingNotifier captures notifications on a channel so tests can wait
// for the fire-and-forget goroutine.
type recordingNotifier struct {
	calls chan notifyCall
	err   error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{calls: make(chan notifyCall, 16)}
}

func (n *recordingNotifier) Notify(ctx context.Context, address, subject, body string) error {
	n.calls <- notifyCall{address: address, subject: subject, body: body}
	return n.err
}

func (n *recordingNotifier) wait(t *testing.T) notifyCall {
	t.Helper()
	select {
	case c := <-n.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for notification")
		return notifyCall{}
	}
}

func newAccountService(t *testing.T, store AccountStore, n Notifier) *AccountService {
	t.Helper()
	return NewAccountService(store, n, nil, 4 /* bcrypt.MinCost */, zap.NewNop())
}
