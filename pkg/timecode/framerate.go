package timecode

import (
	"math"
	"strconv"
	"strings"
)

// FramerateSpec is one of the accepted framerate input shapes:
// Standard, Fraction or Decimal.
type FramerateSpec interface {
	framerateSpec()
}

// Standard names a broadcast framerate from the fixed vocabulary,
// e.g. "29.97DF".
type Standard string

// Fraction is an exact numerator/denominator framerate. Drop requests
// drop-frame counting and only takes effect for 29.97 and 59.94.
type Fraction struct {
	Numerator   int64 `json:"numerator"`
	Denominator int64 `json:"denominator"`
	Drop        bool  `json:"drop"`
}

// Decimal is a framerate given as a number. 29.97 and 59.94 are
// always drop-frame.
type Decimal float64

func (Standard) framerateSpec() {}
func (Fraction) framerateSpec() {}
func (Decimal) framerateSpec()  {}

// The standard vocabulary.
const (
	Rate23_976   Standard = "23.976"
	Rate24       Standard = "24"
	Rate25       Standard = "25"
	Rate29_97DF  Standard = "29.97DF"
	Rate29_97NDF Standard = "29.97NDF"
	Rate30       Standard = "30"
	Rate48       Standard = "48"
	Rate50       Standard = "50"
	Rate59_94DF  Standard = "59.94DF"
	Rate59_94NDF Standard = "59.94NDF"
)

// maxFPS bounds framerates so frame arithmetic stays well inside int64.
const maxFPS = 1e6

// Framerate is a normalized framerate. It is immutable and safe to share.
// The zero value is not a valid framerate.
type Framerate struct {
	baseRate int
	fps      float64
	drop     bool
	fraction Rational
}

var standardOrder = []Standard{
	Rate23_976, Rate24, Rate25, Rate29_97DF, Rate29_97NDF,
	Rate30, Rate48, Rate50, Rate59_94DF, Rate59_94NDF,
}

var standardRates = map[Standard]Framerate{
	Rate23_976:   {baseRate: 24, fps: 23.976, fraction: Rational{Num: 24000, Den: 1001}},
	Rate24:       {baseRate: 24, fps: 24, fraction: Rational{Num: 24, Den: 1}},
	Rate25:       {baseRate: 25, fps: 25, fraction: Rational{Num: 25, Den: 1}},
	Rate29_97DF:  {baseRate: 30, fps: 29.97, drop: true, fraction: Rational{Num: 30000, Den: 1001}},
	Rate29_97NDF: {baseRate: 30, fps: 29.97, fraction: Rational{Num: 30000, Den: 1001}},
	Rate30:       {baseRate: 30, fps: 30, fraction: Rational{Num: 30, Den: 1}},
	Rate48:       {baseRate: 48, fps: 48, fraction: Rational{Num: 48, Den: 1}},
	Rate50:       {baseRate: 50, fps: 50, fraction: Rational{Num: 50, Den: 1}},
	Rate59_94DF:  {baseRate: 60, fps: 59.94, drop: true, fraction: Rational{Num: 60000, Den: 1001}},
	Rate59_94NDF: {baseRate: 60, fps: 59.94, fraction: Rational{Num: 60000, Den: 1001}},
}

// wellKnown maps a ratio rounded to three decimals to its non-drop
// standard. dropCapable marks the ratios where a drop request applies.
var wellKnown = map[string]Standard{
	"23.976": Rate23_976,
	"24.000": Rate24,
	"25.000": Rate25,
	"29.970": Rate29_97NDF,
	"30.000": Rate30,
	"48.000": Rate48,
	"50.000": Rate50,
	"59.940": Rate59_94NDF,
}

var dropCapable = map[string]Standard{
	"29.970": Rate29_97DF,
	"59.940": Rate59_94DF,
}

// NewFramerate normalizes spec into a Framerate.
func NewFramerate(spec FramerateSpec) (Framerate, error) {
	switch s := spec.(type) {
	case Standard:
		return fromStandard(s)
	case Fraction:
		return fromFraction(s)
	case Decimal:
		return fromDecimal(float64(s))
	default:
		return Framerate{}, newError(KindUnsupportedFramerate, "supplied framerate was in an unsupported format: %T", spec)
	}
}

// MustFramerate is like NewFramerate but panics on error. Intended for
// package-level variables and tests.
func MustFramerate(spec FramerateSpec) Framerate {
	fr, err := NewFramerate(spec)
	if err != nil {
		panic(err)
	}
	return fr
}

// StandardFramerates returns the standard table in vocabulary order.
func StandardFramerates() []Framerate {
	out := make([]Framerate, 0, len(standardOrder))
	for _, name := range standardOrder {
		out = append(out, standardRates[name])
	}
	return out
}

func fromStandard(name Standard) (Framerate, error) {
	fr, ok := standardRates[name]
	if !ok {
		return Framerate{}, newError(KindUnsupportedFramerate, "unknown standard framerate %q", string(name)).
			WithDetails(map[string]interface{}{"framerate": string(name)})
	}
	return fr, nil
}

func fromFraction(f Fraction) (Framerate, error) {
	if f.Numerator <= 0 || f.Denominator <= 0 {
		return Framerate{}, newError(KindUnsupportedFramerate, "fractional framerate %d/%d must be positive", f.Numerator, f.Denominator).
			WithDetails(map[string]interface{}{"numerator": f.Numerator, "denominator": f.Denominator})
	}
	ratio := float64(f.Numerator) / float64(f.Denominator)
	key := strconv.FormatFloat(ratio, 'f', 3, 64)
	fraction := Rational{Num: f.Numerator, Den: f.Denominator}

	if name, ok := wellKnown[key]; ok {
		if dropName, ok := dropCapable[key]; ok && f.Drop {
			name = dropName
		}
		fr := standardRates[name]
		fr.fraction = fraction
		return fr, nil
	}

	return fallback(ratio, fraction)
}

func fromDecimal(v float64) (Framerate, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return Framerate{}, newError(KindUnsupportedFramerate, "framerate %v must be a positive finite number", v).
			WithDetails(map[string]interface{}{"framerate": v})
	}
	key := strconv.FormatFloat(v, 'f', 3, 64)
	if name, ok := dropCapable[key]; ok {
		return standardRates[name], nil
	}
	if name, ok := wellKnown[key]; ok {
		return standardRates[name], nil
	}

	var fraction Rational
	if v == math.Trunc(v) && v <= maxFPS {
		fraction = Rational{Num: int64(v), Den: 1}
	} else if v <= maxFPS {
		fraction = decimalToFraction(v)
	}
	return fallback(v, fraction)
}

// fallback builds a non-standard, non-drop framerate. The base rate is the
// nominal rate rounded to the nearest integer.
func fallback(fps float64, fraction Rational) (Framerate, error) {
	if fps > maxFPS {
		return Framerate{}, newError(KindUnsupportedFramerate, "framerate %v exceeds %v fps", fps, maxFPS).
			WithDetails(map[string]interface{}{"framerate": fps})
	}
	base := int(math.Round(fps))
	if base < 1 {
		return Framerate{}, newError(KindUnsupportedFramerate, "framerate %v rounds to a base rate below 1", fps).
			WithDetails(map[string]interface{}{"framerate": fps})
	}
	return Framerate{baseRate: base, fps: fps, fraction: fraction}, nil
}

// ParseFramerate accepts the standard vocabulary ("29.97DF"), a fraction
// with an optional DF/NDF suffix ("30000/1001DF") or a decimal ("25",
// "33.3333"). A bare decimal follows the Decimal rules.
func ParseFramerate(s string) (Framerate, error) {
	s = strings.TrimSpace(s)
	if fr, ok := standardRates[Standard(strings.ToUpper(s))]; ok {
		return fr, nil
	}

	if num, den, ok := strings.Cut(s, "/"); ok {
		drop := false
		upper := strings.ToUpper(den)
		switch {
		case strings.HasSuffix(upper, "NDF"):
			den = den[:len(den)-3]
		case strings.HasSuffix(upper, "DF"):
			den = den[:len(den)-2]
			drop = true
		}
		n, errN := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
		d, errD := strconv.ParseInt(strings.TrimSpace(den), 10, 64)
		if errN != nil || errD != nil {
			return Framerate{}, newError(KindUnsupportedFramerate, "cannot parse fractional framerate %q", s).
				WithDetails(map[string]interface{}{"framerate": s})
		}
		return NewFramerate(Fraction{Numerator: n, Denominator: d, Drop: drop})
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Framerate{}, newError(KindUnsupportedFramerate, "cannot parse framerate %q", s).
			WithDetails(map[string]interface{}{"framerate": s})
	}
	return NewFramerate(Decimal(v))
}

// BaseRate is the integer number of frames counted per second.
func (f Framerate) BaseRate() int { return f.baseRate }

// FPS is the nominal rate, e.g. 29.97.
func (f Framerate) FPS() float64 { return f.fps }

// Drop reports whether drop-frame counting applies.
func (f Framerate) Drop() bool { return f.drop }

// Fraction is the exact rate. It keeps a caller-supplied fraction as given.
func (f Framerate) Fraction() Rational { return f.fraction }

// IsZero reports whether f is the invalid zero value.
func (f Framerate) IsZero() bool { return f.baseRate == 0 }

// Compatible reports whether timecodes at f and other can be combined.
func (f Framerate) Compatible(other Framerate) bool {
	return f.baseRate == other.baseRate && f.drop == other.drop
}

// dropRate is the number of frame labels skipped per dropping minute.
func (f Framerate) dropRate() int64 {
	if f.baseRate == 60 {
		return 4
	}
	return 2
}

// String returns the standard name where one applies, the integer rate for
// whole framerates, and the rate to two decimals otherwise.
func (f Framerate) String() string {
	if f.fps == math.Trunc(f.fps) {
		return strconv.FormatFloat(f.fps, 'f', 0, 64)
	}
	switch strconv.FormatFloat(f.fps, 'f', 3, 64) {
	case "23.976":
		return string(Rate23_976)
	case "29.970":
		if f.drop {
			return string(Rate29_97DF)
		}
		return string(Rate29_97NDF)
	case "59.940":
		if f.drop {
			return string(Rate59_94DF)
		}
		return string(Rate59_94NDF)
	default:
		return strconv.FormatFloat(f.fps, 'f', 2, 64)
	}
}
