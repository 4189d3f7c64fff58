package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{".5", 50, true},
		{"7.", 700, true},
		{"+1", 0, false},
		{"1e2", 0, false},
		{".", 0, false},
		// non-ASCII digits in the fraction and in the integer part
		{"1.٣", 0, false},
		{"١٢.50", 0, false},
		{"１.00", 0, false},
		{"92233720368547758.08", 0, false},
		{"92233720368547758.07", 9223372036854775807, true},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseLenientCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"100", 10000, true},
		{"0", 0, true},
		{"-5.5", -550, true},
		{"12,345", 1235, true},
		{"", 0, false},
		{"abc", 0, false},
		{"100000000000000000", 0, false},
		{"-100000000000000000", 0, false},
		{"+2", 200, true},
		{"1e3", 0, false},
		{"--1", 0, false},
		{"1-", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseLenientCents(tc.in)
		if ok != tc.ok || got != tc.out {
			t.Fatalf("%q expected (%d,%v), got (%d,%v)", tc.in, tc.out, tc.ok, got, ok)
		}
	}
}

func TestMoneyFormatting(t *testing.T) {
	cases := []struct {
		m    Money
		want string
	}{
		{Money{Cents: 12000}, "120.00"},
		{Money{Cents: 5}, "0.05"},
		{Money{Cents: -1050}, "-10.50"},
		{Money{}, "0.00"},
	}
	for _, tc := range cases {
		if got := tc.m.String(); got != tc.want {
			t.Fatalf("String(%d) = %q, want %q", tc.m.Cents, got, tc.want)
		}
	}

	b, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{Money{Cents: 12345}})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"amount":123.45}` {
		t.Fatalf("unexpected json %s", b)
	}
}

func TestMeanCents(t *testing.T) {
	cases := []struct {
		in   []int64
		want int64
	}{
		{nil, 0},
		{[]int64{100, 200}, 150},
		{[]int64{1, 2}, 2},   // 1.5 rounds away from zero
		{[]int64{-1, -2}, -2}, // -1.5 rounds away from zero
		{[]int64{10, 10, 11}, 10},
	}
	for _, tc := range cases {
		if got := meanCents(tc.in); got != tc.want {
			t.Fatalf("meanCents(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
