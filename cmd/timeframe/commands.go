package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/zsiec/timeframe/internal/config"
	"github.com/zsiec/timeframe/internal/logger"
	"github.com/zsiec/timeframe/internal/preset"
	"github.com/zsiec/timeframe/internal/tui"
	"github.com/zsiec/timeframe/pkg/timecode"
	"github.com/zsiec/timeframe/pkg/version"
)

// resolveRate reads --rate, falling back to redis presets when --redis is
// set.
func resolveRate(c *cli.Context) (timecode.Framerate, error) {
	spec := c.String("rate")

	var store preset.Store
	if addr := c.GlobalString("redis"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		store = preset.NewRedisStore(client, c.GlobalString("preset-key"), logger.NewNullLogger())
	}

	fr, err := preset.Resolve(context.Background(), store, spec)
	if err != nil {
		return timecode.Framerate{}, errors.Wrapf(err, "rate %q", spec)
	}
	return fr, nil
}

// parseOperand reads a timecode label, or a frame count when s has no
// separators.
func parseOperand(s string, rate timecode.Framerate) (*timecode.Timecode, error) {
	if strings.ContainsAny(s, ":;") {
		return timecode.Parse(s, rate)
	}
	frames, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil, errors.Errorf("%q is neither a timecode nor a frame count", s)
	}
	return timecode.New(frames, rate)
}

func requireArgs(c *cli.Context, n int) error {
	if c.NArg() != n {
		return errors.Errorf("%s expects %d argument(s): %s", c.Command.Name, n, c.Command.ArgsUsage)
	}
	return nil
}

func framesCommand(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	rate, err := resolveRate(c)
	if err != nil {
		return err
	}

	tc, err := timecode.Parse(c.Args().First(), rate)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, tc.Frames())
	return nil
}

func timecodeCommand(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	rate, err := resolveRate(c)
	if err != nil {
		return err
	}

	frames, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return errors.Wrap(timecode.ErrInvalidFrameValue, err.Error())
	}
	tc, err := timecode.New(frames, rate)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, tc)
	return nil
}

func arithmeticCommand(op string) cli.ActionFunc {
	fn := timecode.Add
	if op == "subtract" {
		fn = timecode.Subtract
	}

	return func(c *cli.Context) error {
		if err := requireArgs(c, 2); err != nil {
			return err
		}
		rate, err := resolveRate(c)
		if err != nil {
			return err
		}

		a, err := parseOperand(c.Args().Get(0), rate)
		if err != nil {
			return err
		}
		b, err := parseOperand(c.Args().Get(1), rate)
		if err != nil {
			return err
		}

		result, err := fn(a, b)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%s (%d frames)\n", result, result.Frames())
		return nil
	}
}

func ratesCommand(c *cli.Context) error {
	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBASE\tFPS\tDROP\tFRACTION")
	for _, fr := range timecode.StandardFramerates() {
		fmt.Fprintf(w, "%s\t%d\t%g\t%t\t%s\n", fr, fr.BaseRate(), fr.FPS(), fr.Drop(), fr.Fraction())
	}
	return w.Flush()
}

func calcCommand(c *cli.Context) error {
	rate, err := resolveRate(c)
	if err != nil {
		return err
	}
	log, err := cliLogger(c)
	if err != nil {
		return err
	}
	return tui.Run(rate, logger.WithComponent(log, "calc"))
}

func versionCommand(c *cli.Context) error {
	fmt.Fprintln(c.App.Writer, version.GetInfo().String())
	return nil
}

// cliLogger logs text to stderr so it does not mix with command output.
func cliLogger(c *cli.Context) (*logrus.Logger, error) {
	return logger.New(&config.LoggingConfig{
		Level:  c.GlobalString("loglevel"),
		Format: "text",
		Output: "stderr",
	})
}
