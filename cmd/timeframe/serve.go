package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli"

	"github.com/zsiec/timeframe/internal/config"
	"github.com/zsiec/timeframe/internal/logger"
	"github.com/zsiec/timeframe/internal/preset"
	"github.com/zsiec/timeframe/internal/server"
	"github.com/zsiec/timeframe/pkg/version"
)

func serveCommand(c *cli.Context) error {
	configPath := c.String("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}

	log.WithField("version", version.GetInfo().Short()).Info("Starting Timeframe server")
	log.WithField("config_path", configPath).Debug("Configuration loaded")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled {
		redisClient = preset.NewRedisClient(&cfg.Redis)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return errors.Wrap(err, "failed to connect to redis")
		}
		log.Info("Connected to Redis successfully")

		defer func() {
			if err := redisClient.Close(); err != nil {
				log.WithError(err).Error("Failed to close Redis connection")
			}
		}()
	} else {
		log.Info("Redis disabled, presets are kept in memory")
	}

	srv := server.New(cfg, log, redisClient)
	if err := srv.Start(ctx); err != nil {
		return errors.Wrap(err, "server error")
	}

	log.Info("Server shutdown complete")
	return nil
}
