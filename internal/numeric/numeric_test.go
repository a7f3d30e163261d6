package numeric

import (
	"math"
	"strconv"
	"testing"
)

func TestStringExactExpansion(t *testing.T) {
	cases := []struct {
		num   int64
		denom int64
		want  string
	}{
		{100, 100, "1"},
		{150, 100, "1.50"},
		{-50, 100, "-0.50"},
		{12345, 1000, "12.345"},
		{999999999, 100, "9999999.99"},
		{0, 100, "0"},
		{100, 0, "0"},
		{1, 10000, "0.0001"},
		{-12345, 100, "-123.45"},
	}
	for _, tc := range cases {
		got := New(tc.num, tc.denom).String()
		if got != tc.want {
			t.Errorf("String(%d/%d) = %q, want %q", tc.num, tc.denom, got, tc.want)
		}
	}
}

func TestFromFloatRoundsHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		value float64
		denom int64
		want  int64
	}{
		{1.999, 100, 200},
		{0.25, 10, 3},
		{-0.25, 10, -3},
		{0.004, 100, 0},
	}
	for _, tc := range cases {
		got := FromFloat(tc.value, tc.denom)
		if got.Num != tc.want || got.Denom != tc.denom {
			t.Errorf("FromFloat(%v, %d) = (%d,%d), want (%d,%d)", tc.value, tc.denom, got.Num, got.Denom, tc.want, tc.denom)
		}
	}
}

func TestFromStringExact(t *testing.T) {
	a, err := FromString("85.00", 100)
	if err != nil {
		t.Fatalf("FromString returned error: %v", err)
	}
	if a.Num != 8500 || a.Denom != 100 {
		t.Fatalf("FromString(85.00, 100) = (%d,%d)", a.Num, a.Denom)
	}
	if _, err := FromString("not-a-number", 100); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRoundTripThroughDecimalString(t *testing.T) {
	denoms := []int64{100, 1000, 10000}
	nums := []int64{0, 1, -1, 99, -250, 12345, 999999999}
	for _, d := range denoms {
		for _, n := range nums {
			s := New(n, d).String()
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				t.Fatalf("parse %q: %v", s, err)
			}
			back := FromFloat(f, d)
			if back.Num != n || back.Denom != d {
				t.Errorf("round trip (%d/%d) via %q = (%d/%d)", n, d, s, back.Num, back.Denom)
			}
		}
	}
}

func TestAddNormalisesDenominators(t *testing.T) {
	sum := New(150, 100).Add(New(250, 1000))
	if sum.Num != 1750 || sum.Denom != 1000 {
		t.Fatalf("1.50 + 0.250 = (%d,%d), want (1750,1000)", sum.Num, sum.Denom)
	}
	if !New(100, 100).Add(New(-1000, 1000)).IsZero() {
		t.Fatal("1 + (-1) should be exactly zero")
	}
}

func TestCmpAcrossScales(t *testing.T) {
	if New(150, 100).Cmp(New(1500, 1000)) != 0 {
		t.Fatal("1.50 should equal 1.500")
	}
	if New(149, 100).Cmp(New(1500, 1000)) != -1 {
		t.Fatal("1.49 should be less than 1.500")
	}
}

func TestDecimalBoundary(t *testing.T) {
	d := New(150, 100).Decimal()
	if f, _ := d.Float64(); math.Abs(f-1.5) > 1e-12 {
		t.Fatalf("Decimal() = %v, want 1.5", d)
	}
	if !New(1, 0).Decimal().IsZero() {
		t.Fatal("zero denominator must decay to zero")
	}
}
