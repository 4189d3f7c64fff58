package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TxType = "Income"
	Expense TxType = "Expense"
)

// NotAvailable is reported by insights that have no data to work on.
const NotAvailable = "N/A"

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

type (
	TxType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID       int64  `json:"id"`
		Type     TxType `json:"type"`
		Amount   Money  `json:"amount"`
		Category string `json:"category"`
		Date     Date   `json:"date"`
		Notes    string `json:"notes"`
	}

	// Budget is a monthly spending cap for a single category.
	Budget struct {
		ID       int64  `json:"id"`
		Category string `json:"category"`
		Amount   Money  `json:"amount"`
		Month    string `json:"month"` // YYYY-MM
	}

	User struct {
		ID           int64  `json:"id"`
		Username     string `json:"username"`
		PasswordHash string `json:"-"`
	}
)

var (
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidMonth    = errors.New("invalid month")
	ErrEmptyCategory   = errors.New("empty category")
	ErrNotesTooLong    = errors.New("notes too long (max 500 characters)")
	ErrEmptyUsername   = errors.New("empty username")
	ErrPasswordTooWeak = errors.New("password must be at least 6 characters")
)

// ParseTxType accepts the two transaction types case-insensitively.
func ParseTxType(s string) (TxType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	}
	return "", ErrInvalidType
}

func (t TxType) Validate() error {
	if t != Income && t != Expense {
		return ErrInvalidType
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date. A full RFC 3339 timestamp is
// accepted too and truncated to its date part.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) && s[len(dateLayout)] == 'T' {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// String returns the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON emits the calendar date only, without a time part.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// MonthKey returns the YYYY-MM bucket the date belongs to.
func (d Date) MonthKey() string {
	return d.Format(monthLayout)
}

// Before reports whether d is an earlier calendar day than o.
func (d Date) Before(o Date) bool {
	return d.String() < o.String()
}

// After reports whether d is a later calendar day than o.
func (d Date) After(o Date) bool {
	return d.String() > o.String()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(t.Notes) > 500 {
		return ErrNotesTooLong
	}
	return nil
}

// IsExpense is a convenience for the budget checks.
func (t Transaction) IsExpense() bool {
	return t.Type == Expense
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if _, err := ParseMonth(b.Month); err != nil {
		return err
	}
	return nil
}

// ParseMonth validates a YYYY-MM key and returns the first day of that month.
func ParseMonth(month string) (Date, error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(month))
	if err != nil {
		return Date{}, ErrInvalidMonth
	}
	return Date{Time: t}, nil
}

// ValidateCredentials checks the shape of a registration request.
func ValidateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return ErrEmptyUsername
	}
	if len(password) < 6 {
		return ErrPasswordTooWeak
	}
	return nil
}
