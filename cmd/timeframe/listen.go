package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/zsiec/timeframe/internal/logger"
	"github.com/zsiec/timeframe/internal/rtpclock"
	"github.com/zsiec/timeframe/pkg/timecode"
)

const maxDatagram = 1500

type datagram struct {
	data []byte
	rtcp bool
}

func listenCommand(c *cli.Context) error {
	rate, err := resolveRate(c)
	if err != nil {
		return err
	}
	log, err := cliLogger(c)
	if err != nil {
		return err
	}

	var start *timecode.Timecode
	if s := c.String("start"); s != "" {
		if start, err = timecode.Parse(s, rate); err != nil {
			return errors.Wrap(err, "start")
		}
	}

	clock, err := rtpclock.New(rate, uint32(c.Uint("clock-rate")), start, logger.WithComponent(log, "rtpclock"))
	if err != nil {
		return err
	}

	rtpConn, err := net.ListenPacket("udp", c.String("addr"))
	if err != nil {
		return errors.Wrap(err, "listen rtp")
	}
	defer rtpConn.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	packets := make(chan datagram, 64)
	go readDatagrams(ctx, rtpConn, false, packets)

	if addr := c.String("rtcp-addr"); addr != "" {
		rtcpConn, err := net.ListenPacket("udp", addr)
		if err != nil {
			return errors.Wrap(err, "listen rtcp")
		}
		defer rtcpConn.Close()
		go readDatagrams(ctx, rtcpConn, true, packets)
	}

	log.WithField("addr", rtpConn.LocalAddr().String()).Info("Listening for RTP")

	go func() {
		<-ctx.Done()
		rtpConn.Close()
	}()

	// The clock is only touched from this loop.
	return labelPackets(ctx, clock, packets, c.App.Writer, logger.NewLogrusAdapter(logrus.NewEntry(log)))
}

func readDatagrams(ctx context.Context, conn net.PacketConn, isRTCP bool, out chan<- datagram) {
	buf := make([]byte, maxDatagram)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			return
		}
		data := make([]byte, n)
		copy(data, buf[:n])

		select {
		case out <- datagram{data: data, rtcp: isRTCP}:
		case <-ctx.Done():
			return
		}
	}
}

// labelPackets prints one line per frame: the first packet of each new
// timecode, and each sender report anchor.
func labelPackets(ctx context.Context, clock *rtpclock.Clock, in <-chan datagram, w io.Writer, log logger.Logger) error {
	last := int64(-1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d := <-in:
			if d.rtcp {
				anchorReports(clock, d.data, w, log)
				continue
			}

			var pkt rtp.Packet
			if err := pkt.Unmarshal(d.data); err != nil {
				log.WithError(err).Debug("Dropping malformed RTP packet")
				continue
			}
			tc, err := clock.Stamp(&pkt)
			if err != nil {
				log.WithError(err).WithField("seq", pkt.SequenceNumber).Debug("Cannot label packet")
				continue
			}
			if tc.Frames() != last {
				last = tc.Frames()
				fmt.Fprintf(w, "%s ssrc=%d seq=%d ts=%d\n", tc, pkt.SSRC, pkt.SequenceNumber, pkt.Timestamp)
			}
		}
	}
}

func anchorReports(clock *rtpclock.Clock, data []byte, w io.Writer, log logger.Logger) {
	pkts, err := rtcp.Unmarshal(data)
	if err != nil {
		log.WithError(err).Debug("Dropping malformed RTCP packet")
		return
	}
	for _, p := range pkts {
		sr, ok := p.(*rtcp.SenderReport)
		if !ok {
			continue
		}
		tod, err := clock.AnchorSenderReport(sr)
		if err != nil {
			log.WithError(err).Warn("Ignoring sender report")
			continue
		}
		fmt.Fprintf(w, "anchor %s ssrc=%d rtp=%d\n", tod, sr.SSRC, sr.RTPTime)
	}
}
