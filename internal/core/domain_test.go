package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2024, 2, 29), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-03-15", "2024-03-15", true},
		{" 2024-02-29 ", "2024-02-29", true},
		{"2024-03-15T10:30:00.000Z", "2024-03-15", true},
		{"2023-02-29", "", false},
		{"15/03/2024", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		if !tc.ok {
			if !errors.Is(err, ErrInvalidDate) {
				t.Fatalf("%q expected ErrInvalidDate, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || d.String() != tc.want {
			t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, d, err)
		}
	}
}

func TestDateMarshalJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2024, 3, 5))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2024-03-05"` {
		t.Fatalf("unexpected json %s", b)
	}
}

func TestParseTxType(t *testing.T) {
	for _, in := range []string{"Income", "income", " INCOME "} {
		if got, err := ParseTxType(in); err != nil || got != Income {
			t.Fatalf("%q: got %q err=%v", in, got, err)
		}
	}
	if got, err := ParseTxType("expense"); err != nil || got != Expense {
		t.Fatalf("expense: got %q err=%v", got, err)
	}
	if _, err := ParseTxType("transfer"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -5}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Type:     Expense,
		Amount:   Money{Cents: 100},
		Category: "Food",
		Date:     NewDate(2025, 1, 1),
		Notes:    "lunch",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		tx   Transaction
		want error
	}{
		{Transaction{Type: "Other", Amount: Money{Cents: 1}, Category: "c", Date: NewDate(2025, 1, 1)}, ErrInvalidType},
		{Transaction{Type: Income, Amount: Money{Cents: 0}, Category: "c", Date: NewDate(2025, 1, 1)}, ErrInvalidAmount},
		{Transaction{Type: Income, Amount: Money{Cents: 1}, Category: "  ", Date: NewDate(2025, 1, 1)}, ErrEmptyCategory},
		{Transaction{Type: Income, Amount: Money{Cents: 1}, Category: "c", Date: NewDate(2025, 1, 1), Notes: strings.Repeat("x", 501)}, ErrNotesTooLong},
	}
	for i, tc := range bads {
		if err := tc.tx.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}

	zeroDate := good
	zeroDate.Date = Date{}
	if err := zeroDate.Validate(); err == nil {
		t.Fatalf("expected error for zero date")
	}
}

func TestBudgetValidate(t *testing.T) {
	good := Budget{Category: "Food", Amount: Money{Cents: 50000}, Month: "2024-03"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		b    Budget
		want error
	}{
		{Budget{Category: "", Amount: Money{Cents: 1}, Month: "2024-03"}, ErrEmptyCategory},
		{Budget{Category: "Food", Amount: Money{Cents: 0}, Month: "2024-03"}, ErrInvalidAmount},
		{Budget{Category: "Food", Amount: Money{Cents: 1}, Month: "2024-13"}, ErrInvalidMonth},
		{Budget{Category: "Food", Amount: Money{Cents: 1}, Month: "March"}, ErrInvalidMonth},
	}
	for i, tc := range cases {
		if err := tc.b.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestValidateCredentials(t *testing.T) {
	if err := ValidateCredentials("alice", "secret1"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := ValidateCredentials(" ", "secret1"); !errors.Is(err, ErrEmptyUsername) {
		t.Fatalf("expected ErrEmptyUsername, got %v", err)
	}
	if err := ValidateCredentials("alice", "123"); !errors.Is(err, ErrPasswordTooWeak) {
		t.Fatalf("expected ErrPasswordTooWeak, got %v", err)
	}
}
