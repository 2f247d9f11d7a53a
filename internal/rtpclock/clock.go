// Package rtpclock labels RTP media with timecodes by mapping packet
// timestamps onto frame counts.
package rtpclock

import (
	"fmt"
	"time"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/zsiec/timeframe/internal/logger"
	"github.com/zsiec/timeframe/internal/metrics"
	"github.com/zsiec/timeframe/pkg/timecode"
)

// DefaultClockRate is the RTP clock rate used by video payloads.
const DefaultClockRate = 90000

// Seconds between the NTP epoch (1900) and the Unix epoch.
const ntpEpochOffset = 2208988800

// Clock maps RTP timestamps of one stream to timecodes. The first packet
// (or sender report) seen fixes the anchor: its timestamp is labelled with
// the start timecode and later timestamps count forward from it.
//
// A Clock is not safe for concurrent use.
type Clock struct {
	rate      timecode.Framerate
	clockRate uint32
	timeBase  timecode.Rational
	start     int64
	initStart int64 // start given to New, restored by Reset

	anchored  bool
	ssrc      uint32
	anchorExt int64 // extended timestamp labelled start
	lastExt   int64 // highest extended timestamp seen
	wraps     int

	location *time.Location
	logger   logger.Logger
}

// New creates a Clock. clockRate 0 selects DefaultClockRate and a nil
// start labels the anchor 00:00:00:00.
func New(rate timecode.Framerate, clockRate uint32, start *timecode.Timecode, log logger.Logger) (*Clock, error) {
	if rate.IsZero() {
		return nil, timecode.ErrUnsupportedFramerate
	}
	if clockRate == 0 {
		clockRate = DefaultClockRate
	}
	if log == nil {
		log = logger.NewNullLogger()
	}

	c := &Clock{
		rate:      rate,
		clockRate: clockRate,
		timeBase:  timecode.Rational{Num: 1, Den: int64(clockRate)},
		location:  time.UTC,
		logger:    log.WithField("clock_rate", clockRate),
	}
	if start != nil {
		if !start.Framerate().Compatible(rate) {
			return nil, fmt.Errorf("start timecode %s is at %s, clock runs at %s: %w",
				start, start.Framerate(), rate, timecode.ErrFramerateMismatch)
		}
		c.start = start.Frames()
		c.initStart = c.start
	}
	return c, nil
}

// SetLocation selects the time zone used for time-of-day anchoring.
func (c *Clock) SetLocation(loc *time.Location) {
	if loc != nil {
		c.location = loc
	}
}

// Framerate returns the rate the clock labels in.
func (c *Clock) Framerate() timecode.Framerate { return c.rate }

// Wraps returns how many times the 32-bit timestamp has wrapped.
func (c *Clock) Wraps() int { return c.wraps }

// Reset forgets the anchor and the stream. A start taken from a sender
// report is dropped in favour of the one given to New.
func (c *Clock) Reset() {
	c.start = c.initStart
	c.anchored = false
	c.ssrc = 0
	c.anchorExt = 0
	c.lastExt = 0
	c.wraps = 0
}

// Stamp returns the timecode of the frame pkt belongs to. A packet from a
// new SSRC re-anchors the clock. Packets that precede the anchor are
// rejected with an InvalidFrameValue error.
func (c *Clock) Stamp(pkt *rtp.Packet) (tc *timecode.Timecode, err error) {
	defer func() { metrics.RecordRTPStamp(err) }()

	if pkt == nil {
		return nil, fmt.Errorf("nil RTP packet")
	}

	if c.anchored && pkt.SSRC != c.ssrc {
		c.logger.WithFields(map[string]interface{}{
			"old_ssrc": c.ssrc,
			"new_ssrc": pkt.SSRC,
		}).Warn("SSRC changed, re-anchoring clock")
		c.Reset()
	}
	if !c.anchored {
		c.anchor(pkt.SSRC, pkt.Timestamp)
		c.logger.WithFields(map[string]interface{}{
			"ssrc":      pkt.SSRC,
			"timestamp": pkt.Timestamp,
			"start":     c.startLabel(),
		}).Debug("Clock anchored on first packet")
	}

	return c.at(c.extend(pkt.Timestamp))
}

// StampBytes parses a raw RTP packet and stamps it.
func (c *Clock) StampBytes(buf []byte) (*timecode.Timecode, error) {
	var pkt rtp.Packet
	if err := pkt.Unmarshal(buf); err != nil {
		metrics.RecordRTPStamp(err)
		return nil, fmt.Errorf("failed to parse RTP packet: %w", err)
	}
	return c.Stamp(&pkt)
}

// AnchorSenderReport re-anchors the clock on a sender report so labels
// become time of day: the report's RTP time is labelled with the wall
// clock time of its NTP timestamp.
func (c *Clock) AnchorSenderReport(sr *rtcp.SenderReport) (*timecode.Timecode, error) {
	if sr == nil {
		return nil, fmt.Errorf("nil sender report")
	}
	if c.anchored && sr.SSRC != c.ssrc {
		return nil, fmt.Errorf("sender report for SSRC %d, clock follows %d", sr.SSRC, c.ssrc)
	}

	wall := ntpToTime(sr.NTPTime).In(c.location)
	midnight := time.Date(wall.Year(), wall.Month(), wall.Day(), 0, 0, 0, 0, c.location)
	tod, err := timecode.FromDuration(wall.Sub(midnight), c.rate)
	if err != nil {
		return nil, err
	}

	if !c.anchored {
		c.anchor(sr.SSRC, sr.RTPTime)
	}
	c.anchorExt = c.extend(sr.RTPTime)
	c.start = tod.Frames()
	metrics.IncrementRTCPAnchors()

	c.logger.WithFields(map[string]interface{}{
		"ssrc":     sr.SSRC,
		"rtp_time": sr.RTPTime,
		"wall":     wall.Format(time.RFC3339Nano),
		"start":    tod.String(),
	}).Info("Clock anchored to sender report")

	return tod, nil
}

func (c *Clock) anchor(ssrc, ts uint32) {
	c.anchored = true
	c.ssrc = ssrc
	c.anchorExt = int64(ts)
	c.lastExt = int64(ts)
}

// extend unwraps a 32-bit timestamp against the highest one seen. Steps of
// less than half the range either way are taken as reordering or progress.
func (c *Clock) extend(ts uint32) int64 {
	last := uint32(c.lastExt)
	delta := int64(int32(ts - last))
	ext := c.lastExt + delta

	if delta > 0 {
		if ts < last {
			c.wraps++
			metrics.IncrementRTPWraps()
			c.logger.WithField("wraps", c.wraps).Debug("RTP timestamp wrapped")
		}
		c.lastExt = ext
	}
	return ext
}

func (c *Clock) at(ext int64) (*timecode.Timecode, error) {
	offset, err := timecode.FromTicks(ext-c.anchorExt, c.timeBase, c.rate)
	if err != nil {
		return nil, err
	}
	return timecode.New(c.start+offset.Frames(), c.rate)
}

func (c *Clock) startLabel() string {
	tc, err := timecode.New(c.start, c.rate)
	if err != nil {
		return ""
	}
	return tc.String()
}

func ntpToTime(ntp uint64) time.Time {
	secs := int64(ntp>>32) - ntpEpochOffset
	frac := ntp & 0xFFFFFFFF
	nanos := int64((frac * uint64(time.Second)) >> 32)
	return time.Unix(secs, nanos)
}
