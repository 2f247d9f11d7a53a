package timecode

import (
	"fmt"
)

// Elements are the fields of a timecode label.
type Elements struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
	Frames  int `json:"frames"`
}

// Format renders e with every field zero-padded to two digits.
func (e Elements) Format(sep string) string {
	return fmt.Sprintf("%02d%s%02d%s%02d%s%02d", e.Hours, sep, e.Minutes, sep, e.Seconds, sep, e.Frames)
}

func (e Elements) details() map[string]interface{} {
	return map[string]interface{}{
		"hours":   e.Hours,
		"minutes": e.Minutes,
		"seconds": e.Seconds,
		"frames":  e.Frames,
	}
}

// ElementsToFrames converts a timecode label to an absolute frame count.
// For drop-frame rates the skipped labels are rejected and the dropped
// numbers are subtracted from the linear count.
func ElementsToFrames(e Elements, rate Framerate) (int64, error) {
	if rate.IsZero() {
		return 0, newError(KindUnsupportedFramerate, "framerate is not set")
	}
	base := int64(rate.baseRate)
	if e.Hours < 0 || e.Minutes < 0 || e.Seconds < 0 || e.Frames < 0 ||
		e.Minutes > 59 || e.Seconds > 59 || int64(e.Frames) >= base {
		return 0, newError(KindInvalidTimecode, "timecode %s is out of range for %s", e.Format(":"), rate).
			WithDetails(e.details())
	}

	h, m, s, f := int64(e.Hours), int64(e.Minutes), int64(e.Seconds), int64(e.Frames)
	frames := h*3600*base + m*60*base + s*base + f

	if rate.drop {
		droprate := rate.dropRate()
		if m%10 != 0 && s == 0 && f < droprate {
			return 0, newError(KindInvalidTimecode,
				"timecode %s does not exist in %s: the frame number is dropped", e.Format(";"), rate).
				WithDetails(e.details())
		}
		// Every minute drops droprate labels except each tenth minute.
		drops := h*54*droprate + (m-m/10)*droprate
		frames -= drops
	}
	return frames, nil
}

// FramesToElements converts a non-negative frame count to its timecode label.
func FramesToElements(count int64, rate Framerate) Elements {
	if rate.IsZero() || count < 0 {
		return Elements{}
	}
	base := int64(rate.baseRate)

	if rate.drop {
		droprate := rate.dropRate()
		framesPerMin := base*60 - droprate
		framesPer10Min := base*600 - 9*droprate
		discrepancy := base*60 - framesPerMin

		blocks := count / framesPer10Min
		remainder := count % framesPer10Min
		// Truncating division: the first two (or four) frames of a block
		// belong to its undropped tenth minute.
		remainingMins := (remainder - discrepancy) / framesPerMin

		count += (9*blocks + remainingMins) * droprate
	}

	hours := count / (base * 3600)
	count -= hours * base * 3600
	minutes := count / (base * 60)
	count -= minutes * base * 60
	seconds := count / base
	count -= seconds * base

	return Elements{
		Hours:   int(hours),
		Minutes: int(minutes),
		Seconds: int(seconds),
		Frames:  int(count),
	}
}
