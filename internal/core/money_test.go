package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"12.3", 1230, true},
		{"12.345", 1234, true},
		{"12.346", 1235, true},
		{".50", 50, true},
		{"0.01", 1, true},
		{" 7.00 ", 700, true},
		{"", 0, false},
		{"0", 0, false},
		{"0.00", 0, false},
		{"-1", 0, false},
		{"+1", 0, false},
		{"1.2.3", 0, false},
		{"abc", 0, false},
		{"12.ab", 0, false},
		{"92233720368547758079", 0, false}, // overflows when scaled to cents
	}

	for _, c := range cases {
		got, err := ParseDecimalToCents(c.in)
		if c.ok && err != nil {
			t.Errorf("ParseDecimalToCents(%q) unexpected error: %v", c.in, err)
			continue
		}
		if !c.ok && err == nil {
			t.Errorf("ParseDecimalToCents(%q) expected error, got %d", c.in, got)
			continue
		}
		if c.ok && got != c.out {
			t.Errorf("ParseDecimalToCents(%q) = %d, want %d", c.in, got, c.out)
		}
	}
}

func TestMoneySubFloor(t *testing.T) {
	cases := []struct {
		name string
		a, b int64
		want int64
	}{
		{"normal subtraction", 500, 200, 300},
		{"exact zero", 200, 200, 0},
		{"clamped at zero", 100, 300, 0},
		{"subtract from zero", 0, 50, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Money{Cents: c.a}.SubFloor(Money{Cents: c.b})
			if got.Cents != c.want {
				t.Errorf("Money{%d}.SubFloor(Money{%d}) = %d, want %d", c.a, c.b, got.Cents, c.want)
			}
		})
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{1234, "12.34"},
		{100, "1.00"},
		{5, "0.05"},
		{0, "0.00"},
		{-250, "-2.50"},
	}
	for _, c := range cases {
		if got := (Money{Cents: c.cents}).String(); got != c.want {
			t.Errorf("Money{%d}.String() = %q, want %q", c.cents, got, c.want)
		}
	}
}
