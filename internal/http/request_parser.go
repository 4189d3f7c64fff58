// Package http serves the tracker's JSON API.
//
// This file implements utilities for parsing and validating HTTP request data.
// Bodies may be JSON or form-encoded; both go through RequestBodyParser.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"tracker/internal/core"
)

// maxBodyBytes bounds request bodies; notes are capped at 500 characters.
const maxBodyBytes = 64 << 10

var errMalformedBody = errors.New("malformed request body")

// RequestBodyParser handles different content types for request body parsing.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once and stores it for parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data. Any failure wraps
// errMalformedBody.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errMalformedBody, p.err)
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(p.contentType, "application/json") || p.body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = fmt.Errorf("%w: %v", errMalformedBody, err)
			return p.err
		}
		return nil
	}

	var err error
	p.formData, err = url.ParseQuery(string(p.body))
	if err != nil {
		p.err = fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// GetRaw returns a value without trimming. Passwords must round-trip
// byte for byte.
func (p *RequestBodyParser) GetRaw(key string) string {
	if p.jsonData != nil {
		if s, ok := p.jsonData[key].(string); ok {
			return s
		}
		return ""
	}
	return p.formData.Get(key)
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput trims whitespace and drops control characters except tab,
// newline and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// ParseTransaction reads {type, amount, category, date, notes}. Field errors
// are the core sentinels so they map to 422.
func ParseTransaction(r *http.Request) (core.Transaction, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return core.Transaction{}, err
	}

	typ, err := core.ParseTxType(p.Get("type"))
	if err != nil {
		return core.Transaction{}, err
	}
	cents, err := core.ParseDecimalToCents(p.Get("amount"))
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(p.Get("date"))
	if err != nil {
		return core.Transaction{}, err
	}

	return core.Transaction{
		Type:     typ,
		Amount:   core.Money{Cents: cents},
		Category: p.Get("category"),
		Date:     date,
		Notes:    p.Get("notes"),
	}, nil
}

// ParseBudget reads {category, amount, month}.
func ParseBudget(r *http.Request) (core.Budget, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return core.Budget{}, err
	}

	cents, err := core.ParseDecimalToCents(p.Get("amount"))
	if err != nil {
		return core.Budget{}, err
	}
	return core.Budget{
		Category: p.Get("category"),
		Amount:   core.Money{Cents: cents},
		Month:    p.Get("month"),
	}, nil
}

// ParseCredentials reads {username, password}.
func ParseCredentials(r *http.Request) (username, password string, err error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return "", "", err
	}
	return p.Get("username"), p.GetRaw("password"), nil
}

// ParseFilterInput reads the search parameters from a query string.
func ParseFilterInput(q url.Values) core.FilterInput {
	return core.FilterInput{
		DateFrom:  strings.TrimSpace(q.Get("dateFrom")),
		DateTo:    strings.TrimSpace(q.Get("dateTo")),
		Category:  sanitizeInput(q.Get("category")),
		AmountMin: strings.TrimSpace(q.Get("amountMin")),
		AmountMax: strings.TrimSpace(q.Get("amountMax")),
	}
}

// pathID returns the {id} route variable. Routes constrain it to digits, so
// a parse failure means an out-of-range value.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id", errMalformedBody)
	}
	return id, nil
}
