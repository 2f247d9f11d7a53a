package rtpclock

import (
	"testing"
	"time"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zsiec/timeframe/pkg/timecode"
)

func packet(ssrc, ts uint32) *rtp.Packet {
	return &rtp.Packet{
		Header: rtp.Header{
			Version:     2,
			PayloadType: 96,
			SSRC:        ssrc,
			Timestamp:   ts,
		},
		Payload: []byte{0x00},
	}
}

func newClock(t *testing.T, rate timecode.FramerateSpec, start *timecode.Timecode) *Clock {
	t.Helper()
	c, err := New(timecode.MustFramerate(rate), 0, start, nil)
	require.NoError(t, err)
	return c
}

func TestNewRejects(t *testing.T) {
	_, err := New(timecode.Framerate{}, 0, nil, nil)
	assert.ErrorIs(t, err, timecode.ErrUnsupportedFramerate)

	start, err := timecode.NewFromSpec(0, timecode.Rate25)
	require.NoError(t, err)
	_, err = New(timecode.MustFramerate(timecode.Rate29_97DF), 0, start, nil)
	assert.ErrorIs(t, err, timecode.ErrFramerateMismatch)
}

func TestStampCountsFrames(t *testing.T) {
	c := newClock(t, timecode.Rate29_97DF, nil)

	for i := uint32(0); i < 5; i++ {
		tc, err := c.Stamp(packet(1, 1000+i*3003))
		require.NoError(t, err)
		assert.Equal(t, int64(i), tc.Frames())
	}

	// Packets of the same frame share a timestamp.
	tc, err := c.Stamp(packet(1, 1000+4*3003))
	require.NoError(t, err)
	assert.Equal(t, int64(4), tc.Frames())
}

func TestStampFromStartTimecode(t *testing.T) {
	start, err := timecode.ParseWithSpec("01:00:00:00", timecode.Rate25)
	require.NoError(t, err)
	c := newClock(t, timecode.Rate25, start)

	tc, err := c.Stamp(packet(7, 5000))
	require.NoError(t, err)
	assert.Equal(t, "01:00:00:00", tc.String())

	tc, err = c.Stamp(packet(7, 5000+90000))
	require.NoError(t, err)
	assert.Equal(t, "01:00:01:00", tc.String())
}

func TestStampAcrossWrap(t *testing.T) {
	c := newClock(t, timecode.Rate29_97DF, nil)

	first := uint32(1<<32 - 3003)
	_, err := c.Stamp(packet(1, first))
	require.NoError(t, err)

	tc, err := c.Stamp(packet(1, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), tc.Frames())
	assert.Equal(t, 1, c.Wraps())

	tc, err = c.Stamp(packet(1, 3003))
	require.NoError(t, err)
	assert.Equal(t, int64(2), tc.Frames())

	// A late packet from before the wrap still resolves.
	tc, err = c.Stamp(packet(1, first))
	require.NoError(t, err)
	assert.Equal(t, int64(0), tc.Frames())
	assert.Equal(t, 1, c.Wraps())
}

func TestStampBeforeAnchor(t *testing.T) {
	c := newClock(t, timecode.Rate29_97DF, nil)

	_, err := c.Stamp(packet(1, 10000))
	require.NoError(t, err)

	tc, err := c.Stamp(packet(1, 10000-3003))
	assert.Nil(t, tc)
	assert.ErrorIs(t, err, timecode.ErrInvalidFrameValue)
}

func TestStampSSRCChangeReanchors(t *testing.T) {
	c := newClock(t, timecode.Rate30, nil)

	_, err := c.Stamp(packet(1, 0))
	require.NoError(t, err)
	tc, err := c.Stamp(packet(1, 30000))
	require.NoError(t, err)
	assert.Equal(t, int64(10), tc.Frames())

	tc, err = c.Stamp(packet(2, 123456))
	require.NoError(t, err)
	assert.Equal(t, int64(0), tc.Frames())
}

func TestStampBytes(t *testing.T) {
	c := newClock(t, timecode.Rate25, nil)

	raw, err := packet(3, 100).Marshal()
	require.NoError(t, err)
	_, err = c.StampBytes(raw)
	require.NoError(t, err)

	raw, err = packet(3, 100+3600*3).Marshal()
	require.NoError(t, err)
	tc, err := c.StampBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, "00:00:00:03", tc.String())

	_, err = c.StampBytes([]byte{0x80})
	assert.Error(t, err)
}

func TestAnchorSenderReport(t *testing.T) {
	c := newClock(t, timecode.Rate25, nil)

	wall := time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)
	sr := &rtcp.SenderReport{
		SSRC:    9,
		NTPTime: uint64(wall.Unix()+ntpEpochOffset) << 32,
		RTPTime: 40000,
	}

	tod, err := c.AnchorSenderReport(sr)
	require.NoError(t, err)
	assert.Equal(t, "01:00:00:00", tod.String())

	tc, err := c.Stamp(packet(9, 40000+3600))
	require.NoError(t, err)
	assert.Equal(t, "01:00:00:01", tc.String())

	_, err = c.AnchorSenderReport(&rtcp.SenderReport{SSRC: 10, NTPTime: sr.NTPTime})
	assert.Error(t, err)
}

func TestSSRCChangeDropsSenderReportStart(t *testing.T) {
	start, err := timecode.ParseWithSpec("00:10:00:00", timecode.Rate25)
	require.NoError(t, err)
	c := newClock(t, timecode.Rate25, start)

	wall := time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)
	_, err = c.AnchorSenderReport(&rtcp.SenderReport{
		SSRC:    9,
		NTPTime: uint64(wall.Unix()+ntpEpochOffset) << 32,
		RTPTime: 40000,
	})
	require.NoError(t, err)

	tc, err := c.Stamp(packet(9, 40000))
	require.NoError(t, err)
	assert.Equal(t, "01:00:00:00", tc.String())

	tc, err = c.Stamp(packet(10, 5000))
	require.NoError(t, err)
	assert.Equal(t, "00:10:00:00", tc.String())
}

func TestNTPToTime(t *testing.T) {
	wall := time.Date(2023, 6, 15, 12, 30, 0, 500000000, time.UTC)
	ntp := uint64(wall.Unix()+ntpEpochOffset)<<32 | 1<<31

	got := ntpToTime(ntp)
	assert.True(t, got.Equal(wall), "got %s", got)
}

func TestReset(t *testing.T) {
	c := newClock(t, timecode.Rate25, nil)
	_, err := c.Stamp(packet(1, 1<<32-1800))
	require.NoError(t, err)
	_, err = c.Stamp(packet(1, 1800))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Wraps())

	c.Reset()
	assert.Equal(t, 0, c.Wraps())

	tc, err := c.Stamp(packet(1, 500))
	require.NoError(t, err)
	assert.Equal(t, int64(0), tc.Frames())
}
