package timecode

import (
	"bytes"
	"encoding/json"
)

type framerateJSON struct {
	Name        string  `json:"name"`
	BaseRate    int     `json:"base_rate"`
	FPS         float64 `json:"fps"`
	Drop        bool    `json:"drop"`
	Numerator   int64   `json:"numerator"`
	Denominator int64   `json:"denominator"`
}

// MarshalJSON encodes the normalized framerate.
func (f Framerate) MarshalJSON() ([]byte, error) {
	return json.Marshal(framerateJSON{
		Name:        f.String(),
		BaseRate:    f.baseRate,
		FPS:         f.fps,
		Drop:        f.drop,
		Numerator:   f.fraction.Num,
		Denominator: f.fraction.Den,
	})
}

// UnmarshalJSON accepts each input shape: a string (ParseFramerate), a
// number (Decimal) or an object with numerator, denominator and drop
// (Fraction).
func (f *Framerate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return newError(KindUnsupportedFramerate, "framerate is required")
	}

	var (
		fr  Framerate
		err error
	)
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		fr, err = ParseFramerate(s)
	case '{':
		var frac Fraction
		if err := json.Unmarshal(data, &frac); err != nil {
			return newError(KindUnsupportedFramerate, "invalid fractional framerate: %v", err)
		}
		fr, err = NewFramerate(frac)
	default:
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return newError(KindUnsupportedFramerate, "supplied framerate was in an unsupported format: %s", data)
		}
		fr, err = NewFramerate(Decimal(v))
	}
	if err != nil {
		return err
	}
	*f = fr
	return nil
}

// MarshalJSON encodes the label, the frame count and the framerate.
func (t *Timecode) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Timecode  string    `json:"timecode"`
		Frames    int64     `json:"frames"`
		Framerate Framerate `json:"framerate"`
	}{
		Timecode:  t.String(),
		Frames:    t.frames,
		Framerate: t.rate,
	})
}
