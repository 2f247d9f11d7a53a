package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/timeframe/internal/logger"
	"github.com/zsiec/timeframe/internal/rtpclock"
	"github.com/zsiec/timeframe/pkg/timecode"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"timeframe"}, args...))
	return strings.TrimSpace(out.String()), err
}

func TestFramesCommand(t *testing.T) {
	out, err := run(t, "frames", "--rate", "29.97DF", "00:01:00:02")
	require.NoError(t, err)
	assert.Equal(t, "1800", out)

	out, err = run(t, "frames", "-r", "30000/1001", "00:01:00:00")
	require.NoError(t, err)
	assert.Equal(t, "1800", out)

	_, err = run(t, "frames", "--rate", "29.97DF", "00:01:00:00")
	assert.ErrorIs(t, err, timecode.ErrInvalidTimecode)

	_, err = run(t, "frames")
	assert.Error(t, err)
}

func TestTimecodeCommand(t *testing.T) {
	out, err := run(t, "timecode", "--rate", "29.97", "12345")
	require.NoError(t, err)
	assert.Equal(t, "00;06;51;27", out)

	out, err = run(t, "timecode", "12345")
	require.NoError(t, err)
	assert.Equal(t, "00;06;51;27", out, "defaults to 29.97DF")

	_, err = run(t, "timecode", "--rate", "fast", "1")
	assert.ErrorIs(t, err, timecode.ErrUnsupportedFramerate)

	_, err = run(t, "timecode", "--rate", "25", "1.5")
	assert.ErrorIs(t, err, timecode.ErrInvalidFrameValue)
}

func TestArithmeticCommands(t *testing.T) {
	out, err := run(t, "add", "--rate", "29.97DF", "00:01:01:00", "00:01:02:15")
	require.NoError(t, err)
	assert.Equal(t, "00;02;03;15 (3701 frames)", out)

	out, err = run(t, "add", "--rate", "25", "00:00:01:00", "30")
	require.NoError(t, err)
	assert.Equal(t, "00:00:02:05 (55 frames)", out)

	out, err = run(t, "subtract", "--rate", "25", "10", "100")
	require.NoError(t, err)
	assert.Equal(t, "00:00:00:00 (0 frames)", out)

	_, err = run(t, "subtract", "--rate", "25", "10")
	assert.Error(t, err)

	_, err = run(t, "add", "--rate", "25", "ten", "1")
	assert.Error(t, err)

	_, err = run(t, "add", "--rate", "25", "9223372036854775807", "1")
	assert.ErrorIs(t, err, timecode.ErrInvalidFrameValue)
}

func TestRatesCommand(t *testing.T) {
	out, err := run(t, "rates")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 11)
	assert.Contains(t, lines[0], "FRACTION")
	assert.Contains(t, lines[4], "29.97DF")
	assert.Contains(t, lines[4], "30000/1001")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Timeframe")
}

func TestRateFromRedisPreset(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.HSet("timeframe:presets", "house",
		`{"name":"house","framerate":"59.94DF","created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"}`)

	out, err := run(t, "--redis", mr.Addr(), "timecode", "--rate", "house", "3600")
	require.NoError(t, err)
	assert.Equal(t, "00;01;00;04", out)
}

func TestLabelPackets(t *testing.T) {
	rate := timecode.MustFramerate(timecode.Rate25)
	clock, err := rtpclock.New(rate, 90000, nil, nil)
	require.NoError(t, err)

	in := make(chan datagram, 8)
	send := func(ts uint32, seq uint16) {
		pkt := rtp.Packet{Header: rtp.Header{Version: 2, SSRC: 5, SequenceNumber: seq, Timestamp: ts}, Payload: []byte{1}}
		data, err := pkt.Marshal()
		require.NoError(t, err)
		in <- datagram{data: data}
	}

	wall := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	sr := &rtcp.SenderReport{SSRC: 5, NTPTime: uint64(wall.Unix()+2208988800) << 32, RTPTime: 1000}
	srData, err := sr.Marshal()
	require.NoError(t, err)

	send(1000, 1)
	send(1000, 2) // same frame
	in <- datagram{data: []byte{0xff}}
	in <- datagram{data: srData, rtcp: true}
	send(1000+3600, 3)

	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	done := make(chan error)
	go func() { done <- labelPackets(ctx, clock, in, &out, logger.NewNullLogger()) }()

	require.Eventually(t, func() bool { return len(in) == 0 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3, out.String())
	assert.Equal(t, "00:00:00:00 ssrc=5 seq=1 ts=1000", lines[0])
	assert.Equal(t, "anchor 10:00:00:00 ssrc=5 rtp=1000", lines[1])
	assert.Equal(t, "10:00:00:01 ssrc=5 seq=3 ts=4600", lines[2])
}
