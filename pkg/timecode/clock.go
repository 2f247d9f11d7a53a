package timecode

import (
	"math"
	"math/big"
	"time"
)

// FromTicks converts a timestamp in a media clock time base (for example
// TimeBase90kHz) to the Timecode of the frame being displayed at that
// instant. Partial frames round down.
func FromTicks(ticks int64, timeBase Rational, rate Framerate) (*Timecode, error) {
	if timeBase.Num <= 0 || timeBase.Den <= 0 {
		return nil, newError(KindUnsupportedFramerate, "invalid time base %s", timeBase).
			WithDetails(map[string]interface{}{"time_base": timeBase.String()})
	}
	if ticks < 0 {
		return nil, invalidFrames(ticks)
	}
	if rate.IsZero() {
		return nil, newError(KindUnsupportedFramerate, "framerate is not set")
	}
	// frames = ticks * tb.Num * rate.Num / (tb.Den * rate.Den)
	fr := rate.fraction
	num := new(big.Int).Mul(big.NewInt(ticks), big.NewInt(timeBase.Num))
	num.Mul(num, big.NewInt(fr.Num))
	den := new(big.Int).Mul(big.NewInt(timeBase.Den), big.NewInt(fr.Den))
	num.Quo(num, den)
	if !num.IsInt64() {
		return nil, newError(KindInvalidFrameValue, "%d ticks at %s overflow the frame count", ticks, timeBase).
			WithDetails(map[string]interface{}{"ticks": ticks, "time_base": timeBase.String()})
	}
	return New(num.Int64(), rate)
}

// Ticks returns the first timestamp in the given time base that falls
// within t's frame, so FromTicks(t.Ticks(tb), tb, rate) yields t again.
// Results beyond the int64 range saturate at math.MaxInt64.
func (t *Timecode) Ticks(timeBase Rational) int64 {
	if timeBase.Num <= 0 || timeBase.Den <= 0 {
		return 0
	}
	// ticks = frames * rate.Den * tb.Den / (rate.Num * tb.Num)
	fr := t.rate.fraction
	num := new(big.Int).Mul(big.NewInt(t.frames), big.NewInt(fr.Den))
	num.Mul(num, big.NewInt(timeBase.Den))
	den := new(big.Int).Mul(big.NewInt(fr.Num), big.NewInt(timeBase.Num))
	num.Add(num, den)
	num.Sub(num, big.NewInt(1))
	num.Quo(num, den)
	if !num.IsInt64() {
		return math.MaxInt64
	}
	return num.Int64()
}

// FromDuration returns the Timecode of the frame displayed d after zero.
func FromDuration(d time.Duration, rate Framerate) (*Timecode, error) {
	return FromTicks(int64(d), Rational{Num: 1, Den: int64(time.Second)}, rate)
}

// Duration is the wall-clock offset of t's frame, rounded up to the
// nanosecond.
func (t *Timecode) Duration() time.Duration {
	return time.Duration(t.Ticks(Rational{Num: 1, Den: int64(time.Second)}))
}
