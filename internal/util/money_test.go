package util

import (
	"math"
	"testing"
)

func TestTruncDiv_TowardZero(t *testing.T) {
	tests := []struct {
		a, b, want int64
	}{
		{230000, 28, 8214},
		{7, 2, 3},
		{-7, 2, -3}, // not -4
		{-1, 3, 0},
	}
	for _, tt := range tests {
		if got := TruncDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("TruncDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCeilDiv(t *testing.T) {
	tests := []struct {
		a, b, want int64
	}{
		{1000, 3, 334},
		{999, 3, 333},
		{1, 52, 1},
		{-7, 2, -3},
	}
	for _, tt := range tests {
		if got := CeilDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("CeilDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestMulCents_Overflow(t *testing.T) {
	if got, ok := MulCents(150000, 6); !ok || got != 900000 {
		t.Errorf("MulCents(150000, 6) = (%d, %v), want (900000, true)", got, ok)
	}
	if _, ok := MulCents(math.MaxInt64/2, 3); ok {
		t.Error("Expected overflow to be reported")
	}
	if _, ok := MulCents(math.MinInt64, -1); ok {
		t.Error("Expected overflow to be reported for MinInt64 * -1")
	}
}

func TestFormatCentsBRL(t *testing.T) {
	tests := map[int64]string{
		0:       "0,00",
		5:       "0,05",
		123456:  "1234,56",
		-4000:   "-40,00",
		1000000: "10000,00",
	}
	for cents, want := range tests {
		if got := FormatCentsBRL(cents); got != want {
			t.Errorf("FormatCentsBRL(%d) = %q, want %q", cents, got, want)
		}
	}
}
