package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{".5", "0.5", true},
		{"5.", "5", true},
		{" 2.50 ", "2.5", true},
		{"0", "0", true},
		{"999999999999.99", "999999999999.99", true},
		{"000000000000001", "1", true},
		{"1000000000000", "", false},
		{"99999999999999999999", "", false},
		{"-1", "", false},
		{"+1", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1e3", "", false},
		{"NaN", "", false},
		{".", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err != ErrMalformedAmount {
				t.Fatalf("%q expected ErrMalformedAmount, got %v", tc.in, err)
			}
		}
	}
}

func TestFormatBRL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "R$\u00a00,00"},
		{"100", "R$\u00a0100,00"},
		{"1234.5", "R$\u00a01.234,50"},
		{"1234567.891", "R$\u00a01.234.567,89"},
		{"0.005", "R$\u00a00,01"},
		{"-40", "-R$\u00a040,00"},
		{"-0.004", "R$\u00a00,00"},
		{"-0.005", "-R$\u00a00,01"},
		{"9223372036854775807", "R$\u00a09.223.372.036.854.775.807,00"},
		{"99999999999999999999.5", "R$\u00a099.999.999.999.999.999.999,50"},
		{"123456789012345678901.23", "R$\u00a0123.456.789.012.345.678.901,23"},
	}
	for _, tc := range cases {
		if got := FormatBRL(decimal.RequireFromString(tc.in)); got != tc.want {
			t.Errorf("FormatBRL(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	d := decimal.RequireFromString
	cases := []struct {
		part, total string
		want        string
	}{
		{"100", "100", "100.00%"},
		{"1", "3", "33.33%"},
		{"2", "3", "66.67%"},
		{"0", "0", "0.00%"},
		{"10", "0", "0.00%"},
	}
	for _, tc := range cases {
		if got := FormatPercent(d(tc.part), d(tc.total)); got != tc.want {
			t.Errorf("FormatPercent(%s, %s) = %q, want %q", tc.part, tc.total, got, tc.want)
		}
	}
}
