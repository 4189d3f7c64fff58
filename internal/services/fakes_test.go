package services

import (
	"context"
	"errors"
	"sync"

	"tracker/internal/amqp"
	"tracker/internal/core"
	"tracker/internal/store"
	"tracker/internal/store/memory"
)

type fakePublisher struct {
	mu     sync.Mutex
	syncs  []int64
	alerts []*amqp.BudgetAlertMessage
	err    error
}

func (p *fakePublisher) PublishTransactionSync(_ context.Context, id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.syncs = append(p.syncs, id)
	return nil
}

func (p *fakePublisher) PublishBudgetAlert(_ context.Context, msg *amqp.BudgetAlertMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.alerts = append(p.alerts, msg)
	return nil
}

// brokenReads wraps a memory store and fails every listing.
type brokenReads struct {
	*memory.Store
}

var errStoreDown = errors.New("store down")

func (b brokenReads) ListTransactions(context.Context, store.TransactionQuery) ([]core.Transaction, error) {
	return nil, errStoreDown
}

func tx(typ core.TxType, cents int64, category string, y, m, d int) core.Transaction {
	return core.Transaction{Type: typ, Amount: core.Money{Cents: cents}, Category: category, Date: core.NewDate(y, m, d)}
}
