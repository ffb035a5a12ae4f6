package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Serialize returns the canonical JSON text of v: keys sorted at every
// depth, no insignificant whitespace, no HTML escaping.
func Serialize(v Value) string {
	return string(v.Canonicalize().appendJSON(nil))
}

// String implements fmt.Stringer with the canonical text
func (v Value) String() string {
	return Serialize(v)
}

// SerializeAny canonicalizes a decoded JSON value
func SerializeAny(x any) (string, error) {
	v, err := FromAny(x)
	if err != nil {
		return "", err
	}
	return Serialize(v), nil
}

// Fingerprint is the lowercase hex SHA-256 of the UTF-8 canonical text
func Fingerprint(v Value) string {
	sum := sha256.Sum256([]byte(Serialize(v)))
	return hex.EncodeToString(sum[:])
}

// FingerprintAny fingerprints a decoded JSON value
func FingerprintAny(x any) (string, error) {
	v, err := FromAny(x)
	if err != nil {
		return "", err
	}
	return Fingerprint(v), nil
}

func (v Value) appendJSON(buf []byte) []byte {
	switch v.kind {
	case KindBool:
		return strconv.AppendBool(buf, v.boolean)
	case KindNumber:
		return append(buf, v.number...)
	case KindString:
		return appendString(buf, v.str)
	case KindArray:
		buf = append(buf, '[')
		for i, item := range v.items {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = item.appendJSON(buf)
		}
		return append(buf, ']')
	case KindObject:
		buf = append(buf, '{')
		for i, m := range v.members {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendString(buf, m.Key)
			buf = append(buf, ':')
			buf = m.Value.appendJSON(buf)
		}
		return append(buf, '}')
	}
	return append(buf, "null"...)
}

const hexDigits = "0123456789abcdef"

// appendString quotes s the way JSON.stringify does: only the quote, the
// backslash and control characters are escaped. Invalid UTF-8 becomes U+FFFD.
func appendString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch c {
			case '"':
				buf = append(buf, '\\', '"')
			case '\\':
				buf = append(buf, '\\', '\\')
			case '\b':
				buf = append(buf, '\\', 'b')
			case '\f':
				buf = append(buf, '\\', 'f')
			case '\n':
				buf = append(buf, '\\', 'n')
			case '\r':
				buf = append(buf, '\\', 'r')
			case '\t':
				buf = append(buf, '\\', 't')
			default:
				if c < 0x20 {
					buf = append(buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
				} else {
					buf = append(buf, c)
				}
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			buf = utf8.AppendRune(buf, utf8.RuneError)
		} else {
			buf = append(buf, s[i:i+size]...)
		}
		i += size
	}
	return append(buf, '"')
}

// formatNumber renders f like ECMAScript Number.prototype.toString: plain
// decimal for 1e-6 <= |f| < 1e21, shortest exponent form otherwise.
// Integral floats lose their fraction, so 1, 1.0 and 1e0 all print "1".
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}
