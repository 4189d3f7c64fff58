package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tracker/internal/core"
	"tracker/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ store.Store = (*SQLiteRepository)(nil)

// dsn adds the connection pragmas every handle needs.
func dsn(dbPath string) string {
	return dbPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn(dbPath)); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, q store.TransactionQuery) ([]core.Transaction, error) {
	params := ListTransactionsParams{
		Type:     string(q.Type),
		Category: q.Category,
	}
	if q.From != nil {
		params.DateFrom = q.From.String()
	}
	if q.To != nil {
		params.DateTo = q.To.String()
	}

	rows, err := r.queries.ListTransactions(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := row.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return row.toCore()
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	row, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		Type:        string(t.Type),
		AmountCents: t.Amount.Cents,
		Category:    t.Category,
		Date:        t.Date.String(),
		Notes:       t.Notes,
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return row.toCore()
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	n, err := r.queries.UpdateTransaction(ctx, UpdateTransactionParams{
		ID:          t.ID,
		Type:        string(t.Type),
		AmountCents: t.Amount.Cents,
		Category:    t.Category,
		Date:        t.Date.String(),
		Notes:       t.Notes,
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	if n == 0 {
		return core.Transaction{}, store.ErrNotFound
	}
	return t, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// PendingSync returns transactions that still have to reach the spreadsheet.
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	rows, err := r.queries.ListPendingSync(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list pending sync: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := row.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if err := r.queries.MarkTransactionSynced(ctx, id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if err := r.queries.MarkTransactionSyncError(ctx, id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) FindBudget(ctx context.Context, category, month string) (*core.Budget, error) {
	row, err := r.queries.FindBudget(ctx, category, month)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find budget %s/%s: %w", category, month, err)
	}
	b := row.toCore()
	return &b, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, month string) ([]core.Budget, error) {
	rows, err := r.queries.ListBudgets(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	out := make([]core.Budget, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toCore())
	}
	return out, nil
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	row, err := r.queries.CreateBudget(ctx, b.Category, b.Amount.Cents, b.Month)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	return row.toCore(), nil
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	n, err := r.queries.UpdateBudget(ctx, Budget{
		ID:          b.ID,
		Category:    b.Category,
		AmountCents: b.Amount.Cents,
		Month:       b.Month,
	})
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget %d: %w", b.ID, err)
	}
	if n == 0 {
		return core.Budget{}, store.ErrNotFound
	}
	return b, nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteBudget(ctx, id)
	if err != nil {
		return fmt.Errorf("delete budget %d: %w", id, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	row, err := r.queries.CreateUser(ctx, u.Username, u.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, store.ErrConflict
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	return core.User{ID: row.ID, Username: row.Username, PasswordHash: row.PasswordHash}, nil
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	row, err := r.queries.GetUserByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, store.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return core.User{ID: row.ID, Username: row.Username, PasswordHash: row.PasswordHash}, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (t Transaction) toCore() (core.Transaction, error) {
	d, err := core.ParseDate(t.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d has malformed date %q: %w", t.ID, t.Date, err)
	}
	return core.Transaction{
		ID:       t.ID,
		Type:     core.TxType(t.Type),
		Amount:   core.Money{Cents: t.AmountCents},
		Category: t.Category,
		Date:     d,
		Notes:    t.Notes,
	}, nil
}

func (b Budget) toCore() core.Budget {
	return core.Budget{
		ID:       b.ID,
		Category: b.Category,
		Amount:   core.Money{Cents: b.AmountCents},
		Month:    b.Month,
	}
}
