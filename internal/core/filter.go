package core

import (
	"strings"
)

// FilterInput carries raw search parameters as they arrive from a query
// string or CLI flags.
type FilterInput struct {
	DateFrom  string
	DateTo    string
	Category  string
	AmountMin string
	AmountMax string
}

// Filter is a parsed set of search predicates. Nil fields are not applied.
type Filter struct {
	From      *Date
	To        *Date
	Category  string // lower-cased substring
	AmountMin *Money
	AmountMax *Money
}

// ParseFilter turns raw inputs into predicates. Empty or malformed values
// are treated as not supplied.
func ParseFilter(in FilterInput) Filter {
	var f Filter
	if d, err := ParseDate(in.DateFrom); err == nil {
		f.From = &d
	}
	if d, err := ParseDate(in.DateTo); err == nil {
		f.To = &d
	}
	f.Category = strings.ToLower(strings.TrimSpace(in.Category))
	if c, ok := parseLenientCents(in.AmountMin); ok {
		f.AmountMin = &Money{Cents: c}
	}
	if c, ok := parseLenientCents(in.AmountMax); ok {
		f.AmountMax = &Money{Cents: c}
	}
	return f
}

// IsEmpty reports whether no predicate is active.
func (f Filter) IsEmpty() bool {
	return f.From == nil && f.To == nil && f.Category == "" &&
		f.AmountMin == nil && f.AmountMax == nil
}

// Match reports whether a single transaction satisfies every active predicate.
func (f Filter) Match(t Transaction) bool {
	if f.From != nil && t.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && t.Date.After(*f.To) {
		return false
	}
	if f.Category != "" && !strings.Contains(strings.ToLower(t.Category), f.Category) {
		return false
	}
	if f.AmountMin != nil && t.Amount.Cents < f.AmountMin.Cents {
		return false
	}
	if f.AmountMax != nil && t.Amount.Cents > f.AmountMax.Cents {
		return false
	}
	return true
}

// Apply returns the matching transactions in their original order. With no
// active predicate the input slice is returned as is.
func (f Filter) Apply(txns []Transaction) []Transaction {
	if f.IsEmpty() {
		return txns
	}
	out := make([]Transaction, 0, len(txns))
	for _, t := range txns {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Categories lists the distinct categories in first-seen order.
func Categories(txns []Transaction) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, t := range txns {
		if _, ok := seen[t.Category]; ok {
			continue
		}
		seen[t.Category] = struct{}{}
		out = append(out, t.Category)
	}
	return out
}
