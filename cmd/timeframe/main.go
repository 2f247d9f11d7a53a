package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/zsiec/timeframe/pkg/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "timeframe: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "timeframe"
	app.Usage = "convert between timecodes and frame counts"
	app.Version = version.Version
	app.HideVersion = true
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "redis",
			Usage:  "redis address to resolve framerate presets from",
			EnvVar: "TIMEFRAME_REDIS_ADDR",
		},
		cli.StringFlag{
			Name:   "preset-key",
			Usage:  "redis hash holding the presets",
			Value:  "timeframe:presets",
			EnvVar: "TIMEFRAME_REDIS_PRESET_KEY",
		},
		cli.StringFlag{
			Name:  "loglevel",
			Usage: "log level for serve, listen and calc",
			Value: "info",
		},
	}

	rateFlag := cli.StringFlag{
		Name:   "rate, r",
		Usage:  "framerate: standard name (29.97DF), fraction (30000/1001), decimal (29.97) or preset name",
		Value:  "29.97DF",
		EnvVar: "TIMEFRAME_RATE",
	}

	app.Commands = []cli.Command{
		{
			Name:      "frames",
			Usage:     "print the frame count of a timecode",
			ArgsUsage: "<hh:mm:ss:ff>",
			Flags:     []cli.Flag{rateFlag},
			Action:    framesCommand,
		},
		{
			Name:      "timecode",
			Usage:     "print the timecode of a frame count",
			ArgsUsage: "<frames>",
			Flags:     []cli.Flag{rateFlag},
			Action:    timecodeCommand,
		},
		{
			Name:      "add",
			Usage:     "add two timecodes or frame counts",
			ArgsUsage: "<a> <b>",
			Flags:     []cli.Flag{rateFlag},
			Action:    arithmeticCommand("add"),
		},
		{
			Name:      "subtract",
			Usage:     "subtract b from a, stopping at zero",
			ArgsUsage: "<a> <b>",
			Flags:     []cli.Flag{rateFlag},
			Action:    arithmeticCommand("subtract"),
		},
		{
			Name:   "rates",
			Usage:  "list the standard framerates",
			Action: ratesCommand,
		},
		{
			Name:  "serve",
			Usage: "run the HTTP API",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "config, c",
					Usage: "path to configuration file",
					Value: "configs/default.yaml",
				},
			},
			Action: serveCommand,
		},
		{
			Name:  "listen",
			Usage: "label incoming RTP packets with timecodes",
			Flags: []cli.Flag{
				rateFlag,
				cli.StringFlag{
					Name:  "addr",
					Usage: "UDP address receiving RTP",
					Value: ":5004",
				},
				cli.StringFlag{
					Name:  "rtcp-addr",
					Usage: "UDP address receiving RTCP sender reports, empty to disable",
					Value: ":5005",
				},
				cli.UintFlag{
					Name:  "clock-rate",
					Usage: "RTP clock rate in Hz",
					Value: 90000,
				},
				cli.StringFlag{
					Name:  "start",
					Usage: "timecode of the first packet when no sender report arrives",
				},
			},
			Action: listenCommand,
		},
		{
			Name:   "calc",
			Usage:  "interactive calculator",
			Flags:  []cli.Flag{rateFlag},
			Action: calcCommand,
		},
		{
			Name:   "version",
			Usage:  "print version information",
			Action: versionCommand,
		},
	}

	return app
}
