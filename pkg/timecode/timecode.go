package timecode

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Any of ':' or ';' may separate any pair of fields on input.
var timecodePattern = regexp.MustCompile(`^([0-9]{1,2})[;:]([0-9]{1,2})[;:]([0-9]{1,2})[;:]([0-9]{1,2})$`)

// Timecode is a frame position at a framerate. It is not safe for
// concurrent mutation.
type Timecode struct {
	frames int64
	rate   Framerate
}

// New creates a Timecode at an absolute frame count.
func New(frames int64, rate Framerate) (*Timecode, error) {
	if rate.IsZero() {
		return nil, newError(KindUnsupportedFramerate, "framerate is not set")
	}
	if frames < 0 {
		return nil, invalidFrames(frames)
	}
	return &Timecode{frames: frames, rate: rate}, nil
}

// NewFromSpec is New with a raw framerate specification.
func NewFromSpec(frames int64, spec FramerateSpec) (*Timecode, error) {
	rate, err := NewFramerate(spec)
	if err != nil {
		return nil, err
	}
	return New(frames, rate)
}

// Parse reads an hh:mm:ss:ff timecode at rate.
func Parse(s string, rate Framerate) (*Timecode, error) {
	if rate.IsZero() {
		return nil, newError(KindUnsupportedFramerate, "framerate is not set")
	}
	e, err := parseElements(s)
	if err != nil {
		return nil, err
	}
	frames, err := ElementsToFrames(e, rate)
	if err != nil {
		return nil, err
	}
	return &Timecode{frames: frames, rate: rate}, nil
}

// ParseWithSpec is Parse with a raw framerate specification.
func ParseWithSpec(s string, spec FramerateSpec) (*Timecode, error) {
	rate, err := NewFramerate(spec)
	if err != nil {
		return nil, err
	}
	return Parse(s, rate)
}

func parseElements(s string) (Elements, error) {
	m := timecodePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Elements{}, newError(KindInvalidTimecode, "invalid timecode string %q", s).
			WithDetails(map[string]interface{}{"timecode": s})
	}
	var fields [4]int
	for i := range fields {
		// The pattern guarantees at most two digits.
		fields[i], _ = strconv.Atoi(m[i+1])
	}
	return Elements{Hours: fields[0], Minutes: fields[1], Seconds: fields[2], Frames: fields[3]}, nil
}

// FramesFromFloat validates a frame count that arrived as a number, as from
// JSON. Non-integers, NaN and negative values are rejected.
func FramesFromFloat(v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || v < 0 || v > math.MaxInt64/2 {
		return 0, newError(KindInvalidFrameValue, "cannot set frames to non-integer or negative value %v", v).
			WithDetails(map[string]interface{}{"frames": v})
	}
	return int64(v), nil
}

func invalidFrames(frames int64) *Error {
	return newError(KindInvalidFrameValue, "cannot set frames to negative value %d", frames).
		WithDetails(map[string]interface{}{"frames": frames})
}

// Frames returns the absolute frame count.
func (t *Timecode) Frames() int64 { return t.frames }

// SetFrames replaces the frame count. Negative values are rejected and leave
// t unchanged.
func (t *Timecode) SetFrames(frames int64) error {
	if frames < 0 {
		return invalidFrames(frames)
	}
	t.frames = frames
	return nil
}

// Framerate returns the framerate t counts in.
func (t *Timecode) Framerate() Framerate { return t.rate }

// Elements returns the timecode label fields.
func (t *Timecode) Elements() Elements {
	return FramesToElements(t.frames, t.rate)
}

// String formats t as HH:MM:SS:FF, or HH;MM;SS;FF for drop-frame rates.
func (t *Timecode) String() string {
	sep := ":"
	if t.rate.drop {
		sep = ";"
	}
	return t.Elements().Format(sep)
}

// Clone returns an independent copy of t.
func (t *Timecode) Clone() *Timecode {
	c := *t
	return &c
}

// Add returns a new Timecode holding a + b. The operands are not modified.
// A sum beyond the int64 range is an InvalidFrameValue error.
func Add(a, b *Timecode) (*Timecode, error) {
	if err := checkCompatible("add", a, b); err != nil {
		return nil, err
	}
	if a.frames > math.MaxInt64-b.frames {
		return nil, newError(KindInvalidFrameValue, "frame count overflows: %d + %d", a.frames, b.frames).
			WithDetails(map[string]interface{}{"left_frames": a.frames, "right_frames": b.frames})
	}
	return &Timecode{frames: a.frames + b.frames, rate: a.rate}, nil
}

// Subtract returns a new Timecode holding a - b, clamped at zero. The
// operands are not modified.
func Subtract(a, b *Timecode) (*Timecode, error) {
	if err := checkCompatible("subtract", a, b); err != nil {
		return nil, err
	}
	frames := a.frames - b.frames
	if frames < 0 {
		frames = 0
	}
	return &Timecode{frames: frames, rate: a.rate}, nil
}

// AddTimecode adds other to t in place and returns t.
func (t *Timecode) AddTimecode(other *Timecode) (*Timecode, error) {
	sum, err := Add(t, other)
	if err != nil {
		return nil, err
	}
	t.frames = sum.frames
	return t, nil
}

// SubtractTimecode subtracts other from t in place, clamping at zero, and
// returns t.
func (t *Timecode) SubtractTimecode(other *Timecode) (*Timecode, error) {
	diff, err := Subtract(t, other)
	if err != nil {
		return nil, err
	}
	t.frames = diff.frames
	return t, nil
}

func checkCompatible(op string, a, b *Timecode) error {
	if a.rate.Compatible(b.rate) {
		return nil
	}
	return newError(KindFramerateMismatch, "cannot %s timecodes with different framerates: %s != %s", op, a.rate, b.rate).
		WithDetails(map[string]interface{}{
			"left_base_rate":  a.rate.baseRate,
			"left_drop":       a.rate.drop,
			"right_base_rate": b.rate.baseRate,
			"right_drop":      b.rate.drop,
		})
}
