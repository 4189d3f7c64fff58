package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tracker/internal/amqp"
	"tracker/internal/core"
	"tracker/internal/log"
	sheetsmem "tracker/internal/sheets/memory"
	"tracker/internal/store/memory"
)

func tx(typ core.TxType, cents int64, category string, y, m, d int) core.Transaction {
	return core.Transaction{Type: typ, Amount: core.Money{Cents: cents}, Category: category, Date: core.NewDate(y, m, d)}
}

func TestSyncWorker_HandleSyncMessage(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	created, _ := st.CreateTransaction(ctx, tx(core.Expense, 1250, "Food", 2024, 3, 14))
	out := sheetsmem.New()
	w := NewSyncWorker(st, out, 10, log.Discard())

	if err := w.HandleSyncMessage(ctx, amqp.NewTransactionSyncMessage(created.ID)); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}
	if rows := out.Rows(); len(rows) != 1 || rows[0].ID != created.ID {
		t.Fatalf("expected row for %d, got %+v", created.ID, rows)
	}
	if pending, _ := st.PendingSync(ctx, 0); len(pending) != 0 {
		t.Fatalf("expected nothing pending, got %+v", pending)
	}

	// deleted before the worker saw it
	if err := w.HandleSyncMessage(ctx, amqp.NewTransactionSyncMessage(999)); err != nil {
		t.Fatalf("missing transaction should be skipped, got %v", err)
	}
}

func TestSyncWorker_AppendFailureMarksError(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	created, _ := st.CreateTransaction(ctx, tx(core.Expense, 100, "Food", 2024, 3, 1))
	out := sheetsmem.New()
	out.FailWith = errors.New("quota exceeded")
	w := NewSyncWorker(st, out, 10, log.Discard())

	if err := w.HandleSyncMessage(ctx, amqp.NewTransactionSyncMessage(created.ID)); err == nil {
		t.Fatal("expected an error so the message is requeued")
	}
	if pending, _ := st.PendingSync(ctx, 0); len(pending) != 0 {
		t.Fatalf("failed transaction should leave the pending set, got %+v", pending)
	}
}

func TestSyncWorker_StartupSyncCheck(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	st.Seed(
		tx(core.Expense, 100, "Food", 2024, 3, 1),
		tx(core.Income, 5000, "Salary", 2024, 3, 1),
		tx(core.Expense, 300, "Rent", 2024, 3, 2),
	)
	_ = st.MarkSynced(ctx, 2)
	out := sheetsmem.New()

	if err := NewSyncWorker(st, out, 10, log.Discard()).StartupSyncCheck(ctx); err != nil {
		t.Fatalf("StartupSyncCheck: %v", err)
	}
	rows := out.Rows()
	if len(rows) != 2 || rows[0].ID != 1 || rows[1].ID != 3 {
		t.Fatalf("expected ids 1 and 3 exported in order, got %+v", rows)
	}
}

type recordingNotifier struct {
	got []*amqp.BudgetAlertMessage
	err error
}

func (n *recordingNotifier) NotifyBudgetExceeded(_ context.Context, msg *amqp.BudgetAlertMessage) error {
	n.got = append(n.got, msg)
	return n.err
}

func TestAlertWorker_HandleAlert(t *testing.T) {
	msg := amqp.NewBudgetAlertMessage("Food", "2024-03", 100, 200)

	n := &recordingNotifier{}
	if err := NewAlertWorker(n, log.Discard()).HandleAlert(context.Background(), msg); err != nil {
		t.Fatalf("HandleAlert: %v", err)
	}
	if len(n.got) != 1 || n.got[0].Category != "Food" {
		t.Fatalf("notifier got %+v", n.got)
	}

	failing := &recordingNotifier{err: errors.New("smtp down")}
	if err := NewAlertWorker(failing, log.Discard()).HandleAlert(context.Background(), msg); err == nil {
		t.Fatal("expected notifier error to propagate")
	}

	if err := NewAlertWorker(nil, log.Discard()).HandleAlert(context.Background(), msg); err != nil {
		t.Fatalf("log-only worker should not fail, got %v", err)
	}
}

type recordingPublisher struct {
	mu  sync.Mutex
	got []*amqp.BudgetAlertMessage
	err error
}

func (p *recordingPublisher) PublishBudgetAlert(_ context.Context, msg *amqp.BudgetAlertMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.got = append(p.got, msg)
	return nil
}

func TestBudgetMonitor_Check(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	st.Seed(
		tx(core.Expense, 30000, "Food", 2024, 2, 10),
		tx(core.Expense, 32000, "Food", 2024, 2, 29),
		tx(core.Expense, 50000, "Rent", 2024, 2, 1),
		tx(core.Expense, 99900, "Food", 2024, 3, 1), // next month
		tx(core.Income, 99900, "Food", 2024, 2, 5),  // not an expense
	)
	for _, b := range []core.Budget{
		{Category: "Food", Amount: core.Money{Cents: 50000}, Month: "2024-02"},
		{Category: "Rent", Amount: core.Money{Cents: 50000}, Month: "2024-02"},
		{Category: "Food", Amount: core.Money{Cents: 100}, Month: "2024-03"},
	} {
		if _, err := st.CreateBudget(ctx, b); err != nil {
			t.Fatal(err)
		}
	}

	pub := &recordingPublisher{}
	m := NewBudgetMonitor(st, pub, log.Discard())
	m.now = func() time.Time { return time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC) }

	n, err := m.Check(ctx)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if n != 1 || len(pub.got) != 1 {
		t.Fatalf("expected one alert, got %d: %+v", n, pub.got)
	}
	alert := pub.got[0]
	if alert.Category != "Food" || alert.Month != "2024-02" || alert.SpentCents != 62000 || alert.OverageCents != 12000 {
		t.Fatalf("unexpected alert %+v", alert)
	}
}

func TestBudgetMonitor_PublishFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	st.Seed(tx(core.Expense, 200, "Food", 2024, 2, 10))
	st.CreateBudget(ctx, core.Budget{Category: "Food", Amount: core.Money{Cents: 100}, Month: "2024-02"})

	m := NewBudgetMonitor(st, &recordingPublisher{err: errors.New("broker down")}, log.Discard())
	m.now = func() time.Time { return time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC) }

	n, err := m.Check(ctx)
	if err != nil || n != 0 {
		t.Fatalf("Check = %d, %v; want 0, nil", n, err)
	}
}

func TestBudgetMonitor_InProcessDelivery(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	st.Seed(tx(core.Expense, 200, "Food", 2024, 2, 10))
	st.CreateBudget(ctx, core.Budget{Category: "Food", Amount: core.Money{Cents: 100}, Month: "2024-02"})

	n := &recordingNotifier{}
	m := NewBudgetMonitor(st, NewAlertWorker(n, log.Discard()), log.Discard())
	m.now = func() time.Time { return time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC) }

	if got, err := m.Check(ctx); err != nil || got != 1 {
		t.Fatalf("Check = %d, %v", got, err)
	}
	if len(n.got) != 1 || n.got[0].OverageCents != 100 {
		t.Fatalf("notifier got %+v", n.got)
	}
}

func TestBudgetMonitor_StartRejectsBadSchedule(t *testing.T) {
	m := NewBudgetMonitor(memory.New(), &recordingPublisher{}, log.Discard())
	if err := m.Start("not a schedule"); err == nil {
		t.Fatal("expected schedule error")
	}
	if err := m.Start("@every 1h"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	m.Stop()
}
