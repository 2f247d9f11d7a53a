package health

import (
	"context"
	"fmt"

	"github.com/zsiec/timeframe/pkg/timecode"
)

// ConversionChecker converts a few known positions at every standard rate
// and fails if any label or count comes back different.
type ConversionChecker struct{}

func NewConversionChecker() *ConversionChecker {
	return &ConversionChecker{}
}

func (c *ConversionChecker) Name() string {
	return "conversion"
}

func (c *ConversionChecker) Check(ctx context.Context) error {
	for _, rate := range timecode.StandardFramerates() {
		if err := ctx.Err(); err != nil {
			return err
		}
		hour := int64(rate.BaseRate()) * 3600
		for _, frames := range []int64{0, 1, hour - 1, hour, 24 * hour} {
			tc, err := timecode.New(frames, rate)
			if err != nil {
				return err
			}
			back, err := timecode.Parse(tc.String(), rate)
			if err != nil {
				return fmt.Errorf("%s at %s: %w", tc, rate, err)
			}
			if back.Frames() != frames {
				return fmt.Errorf("%s at %s round-trips to %d frames, want %d", tc, rate, back.Frames(), frames)
			}
		}
	}
	return nil
}
