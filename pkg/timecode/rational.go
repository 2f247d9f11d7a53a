package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Rational represents a rational number (numerator/denominator).
// Used for exact framerates and media clock time bases.
type Rational struct {
	Num int64 `json:"numerator"`
	Den int64 `json:"denominator"`
}

// Float64 returns the floating point representation
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Reduce returns r divided by the greatest common divisor of its terms.
func (r Rational) Reduce() Rational {
	d := gcd(abs64(r.Num), abs64(r.Den))
	if d == 0 {
		return r
	}
	return Rational{Num: r.Num / d, Den: r.Den / d}
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Common media clock time bases
var (
	TimeBase90kHz = Rational{Num: 1, Den: 90000}
	TimeBase48kHz = Rational{Num: 1, Den: 48000}
	TimeBase1kHz  = Rational{Num: 1, Den: 1000}
)

// gcd is Euclid's algorithm on exact integers.
func gcd(a, b int64) int64 {
	if b == 0 {
		return a
	}
	return gcd(b, a%b)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// maxFractionDigits keeps the numerator of a derived fraction within int64.
const maxFractionDigits = 18

// decimalToFraction derives the exact fraction a decimal value was written as,
// e.g. 33.3333 -> 333333/10000. The value must be finite and positive.
func decimalToFraction(v float64) Rational {
	text := strconv.FormatFloat(v, 'f', -1, 64)
	intPart, fracPart, _ := strings.Cut(text, ".")

	if len(intPart)+len(fracPart) > maxFractionDigits {
		prec := maxFractionDigits - len(intPart)
		if prec < 0 {
			prec = 0
		}
		text = strconv.FormatFloat(v, 'f', prec, 64)
		intPart, fracPart, _ = strings.Cut(text, ".")
		fracPart = strings.TrimRight(fracPart, "0")
	}

	num, err := strconv.ParseInt(intPart+fracPart, 10, 64)
	if err != nil {
		// Only reachable for magnitudes beyond int64; fall back to the rounded integer.
		return Rational{Num: int64(math.Round(v)), Den: 1}
	}
	den := int64(1)
	for i := 0; i < len(fracPart); i++ {
		den *= 10
	}
	return Rational{Num: num, Den: den}.Reduce()
}
