// Package memory is an in-process store used in development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"tracker/internal/core"
	"tracker/internal/store"
)

type Store struct {
	mu           sync.Mutex
	transactions []core.Transaction
	budgets      []core.Budget
	users        []core.User
	syncState    map[int64]string
	nextTxID     int64
	nextBudgetID int64
	nextUserID   int64
}

var _ store.Store = (*Store)(nil)

const (
	syncPending = "pending"
	syncDone    = "synced"
	syncFailed  = "error"
)

func New() *Store {
	return &Store{syncState: make(map[int64]string)}
}

// Seed loads transactions in one go, assigning ids in slice order.
func (s *Store) Seed(txns ...core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range txns {
		s.nextTxID++
		t.ID = s.nextTxID
		s.transactions = append(s.transactions, t)
		s.syncState[t.ID] = syncPending
	}
}

func (s *Store) ListTransactions(_ context.Context, q store.TransactionQuery) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		if q.Matches(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date.Time) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.txIndex(id); i >= 0 {
		return s.transactions[i], nil
	}
	return core.Transaction{}, store.ErrNotFound
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTxID++
	t.ID = s.nextTxID
	s.transactions = append(s.transactions, t)
	s.syncState[t.ID] = syncPending
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.txIndex(t.ID)
	if i < 0 {
		return core.Transaction{}, store.ErrNotFound
	}
	s.transactions[i] = t
	s.syncState[t.ID] = syncPending
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.txIndex(id)
	if i < 0 {
		return store.ErrNotFound
	}
	s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
	delete(s.syncState, id)
	return nil
}

// PendingSync returns pending transactions in id order.
func (s *Store) PendingSync(_ context.Context, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if s.syncState[t.ID] != syncPending {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) MarkSynced(_ context.Context, id int64) error {
	return s.markSync(id, syncDone)
}

func (s *Store) MarkSyncError(_ context.Context, id int64) error {
	return s.markSync(id, syncFailed)
}

func (s *Store) markSync(id int64, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.syncState[id]; !ok {
		return store.ErrNotFound
	}
	s.syncState[id] = state
	return nil
}

func (s *Store) txIndex(id int64) int {
	for i, t := range s.transactions {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) FindBudget(_ context.Context, category, month string) (*core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// budgets are kept in creation order
	for _, b := range s.budgets {
		if b.Category == category && b.Month == month {
			found := b
			return &found, nil
		}
	}
	return nil, nil
}

func (s *Store) ListBudgets(_ context.Context, month string) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Budget, 0, len(s.budgets))
	for _, b := range s.budgets {
		if month == "" || b.Month == month {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBudgetID++
	b.ID = s.nextBudgetID
	s.budgets = append(s.budgets, b)
	return b, nil
}

func (s *Store) UpdateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.budgets {
		if s.budgets[i].ID == b.ID {
			s.budgets[i] = b
			return b, nil
		}
	}
	return core.Budget{}, store.ErrNotFound
}

func (s *Store) DeleteBudget(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.budgets {
		if s.budgets[i].ID == id {
			s.budgets = append(s.budgets[:i], s.budgets[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return core.User{}, store.ErrConflict
		}
	}
	s.nextUserID++
	u.ID = s.nextUserID
	s.users = append(s.users, u)
	return u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return core.User{}, store.ErrNotFound
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
