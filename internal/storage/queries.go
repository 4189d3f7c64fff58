package storage

import (
	"context"
	"database/sql"
	"strings"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the SQL statements of the repository.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Transaction is a row of the transactions table.
type Transaction struct {
	ID          int64
	Type        string
	AmountCents int64
	Category    string
	Date        string
	Notes       string
	SyncStatus  string
}

const transactionColumns = `id, type, amount_cents, category, date, notes, sync_status`

func scanTransaction(row interface{ Scan(...any) error }) (Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.Type, &t.AmountCents, &t.Category, &t.Date, &t.Notes, &t.SyncStatus)
	return t, err
}

type ListTransactionsParams struct {
	Type     string
	Category string
	DateFrom string
	DateTo   string
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]Transaction, error) {
	var (
		where []string
		args  []any
	)
	if arg.Type != "" {
		where = append(where, "type = ?")
		args = append(args, arg.Type)
	}
	if arg.Category != "" {
		where = append(where, "category = ?")
		args = append(args, arg.Category)
	}
	if arg.DateFrom != "" {
		where = append(where, "date >= ?")
		args = append(args, arg.DateFrom)
	}
	if arg.DateTo != "" {
		where = append(where, "date <= ?")
		args = append(args, arg.DateTo)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const getTransaction = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id))
}

type CreateTransactionParams struct {
	Type        string
	AmountCents int64
	Category    string
	Date        string
	Notes       string
}

const createTransaction = `INSERT INTO transactions (type, amount_cents, category, date, notes)
VALUES (?, ?, ?, ?, ?)
RETURNING ` + transactionColumns

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction, arg.Type, arg.AmountCents, arg.Category, arg.Date, arg.Notes)
	return scanTransaction(row)
}

type UpdateTransactionParams struct {
	ID          int64
	Type        string
	AmountCents int64
	Category    string
	Date        string
	Notes       string
}

// An edited row has to be exported again.
const updateTransaction = `UPDATE transactions
SET type = ?, amount_cents = ?, category = ?, date = ?, notes = ?,
    sync_status = 'pending', updated_at = CURRENT_TIMESTAMP
WHERE id = ?`

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransaction, arg.Type, arg.AmountCents, arg.Category, arg.Date, arg.Notes, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listPendingSync = `SELECT ` + transactionColumns + ` FROM transactions
WHERE sync_status = 'pending'
ORDER BY id
LIMIT ?`

func (q *Queries) ListPendingSync(ctx context.Context, limit int64) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listPendingSync, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (q *Queries) MarkTransactionSynced(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = 'synced', synced_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}

func (q *Queries) MarkTransactionSyncError(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `UPDATE transactions SET sync_status = 'error' WHERE id = ?`, id)
	return err
}

// Budget is a row of the budgets table.
type Budget struct {
	ID          int64
	Category    string
	AmountCents int64
	Month       string
}

const budgetColumns = `id, category, amount_cents, month`

func scanBudget(row interface{ Scan(...any) error }) (Budget, error) {
	var b Budget
	err := row.Scan(&b.ID, &b.Category, &b.AmountCents, &b.Month)
	return b, err
}

const findBudget = `SELECT ` + budgetColumns + ` FROM budgets
WHERE category = ? AND month = ?
ORDER BY id
LIMIT 1`

func (q *Queries) FindBudget(ctx context.Context, category, month string) (Budget, error) {
	return scanBudget(q.db.QueryRowContext(ctx, findBudget, category, month))
}

func (q *Queries) ListBudgets(ctx context.Context, month string) ([]Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets`
	var args []any
	if month != "" {
		query += ` WHERE month = ?`
		args = append(args, month)
	}
	query += ` ORDER BY id`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

const createBudget = `INSERT INTO budgets (category, amount_cents, month)
VALUES (?, ?, ?)
RETURNING ` + budgetColumns

func (q *Queries) CreateBudget(ctx context.Context, category string, amountCents int64, month string) (Budget, error) {
	return scanBudget(q.db.QueryRowContext(ctx, createBudget, category, amountCents, month))
}

const updateBudget = `UPDATE budgets
SET category = ?, amount_cents = ?, month = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`

func (q *Queries) UpdateBudget(ctx context.Context, arg Budget) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateBudget, arg.Category, arg.AmountCents, arg.Month, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeleteBudget(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// User is a row of the users table.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
}

func (q *Queries) CreateUser(ctx context.Context, username, passwordHash string) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?) RETURNING id, username, password_hash`,
		username, passwordHash,
	).Scan(&u.ID, &u.Username, &u.PasswordHash)
	return u, err
}

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash)
	return u, err
}
