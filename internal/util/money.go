package util

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// TruncDiv divides rounding toward zero, so -7/2 is -3
func TruncDiv(a, b int64) int64 {
	return a / b
}

// CeilDiv divides rounding toward positive infinity
func CeilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a > 0) == (b > 0) {
		q++
	}
	return q
}

// MulCents multiplies two integer amounts, reporting false on int64 overflow
func MulCents(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	r := a * b
	if r/b != a {
		return 0, false
	}
	return r, true
}

// FormatCentsBRL renders cents with two decimals and a comma separator,
// e.g. 123456 -> "1234,56"
func FormatCentsBRL(cents int64) string {
	return strings.Replace(decimal.New(cents, -2).StringFixed(2), ".", ",", 1)
}
