package preset

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/zsiec/timeframe/internal/config"
	"github.com/zsiec/timeframe/internal/logger"
	"github.com/zsiec/timeframe/internal/metrics"
)

// DefaultKey is the Redis hash holding presets, field per name.
const DefaultKey = "timeframe:presets"

const maxSaveRetries = 5

// NewRedisClient builds a client from the redis config section. A single
// address gives a plain client, several give a cluster client.
func NewRedisClient(cfg *config.RedisConfig) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        cfg.Addresses,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})
}

// RedisStore keeps presets as JSON values in one Redis hash.
type RedisStore struct {
	client redis.UniversalClient
	key    string
	logger logger.Logger
}

func NewRedisStore(client redis.UniversalClient, key string, log logger.Logger) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	if log == nil {
		log = logger.NewNullLogger()
	}
	return &RedisStore{client: client, key: key, logger: log}
}

func (s *RedisStore) Save(ctx context.Context, p *Preset) (err error) {
	defer func() { metrics.RecordPresetOperation("save", err) }()

	if err := validatePreset(p); err != nil {
		return err
	}

	// Optimistic transaction so a concurrent save cannot clobber CreatedAt.
	txf := func(tx *redis.Tx) error {
		now := time.Now().UTC()
		p.CreatedAt = now
		p.UpdatedAt = now

		existing, err := tx.HGet(ctx, s.key, p.Name).Bytes()
		switch {
		case err == nil:
			var prev Preset
			if json.Unmarshal(existing, &prev) == nil && !prev.CreatedAt.IsZero() {
				p.CreatedAt = prev.CreatedAt
			}
		case err != redis.Nil:
			return err
		}

		data, err := json.Marshal(p)
		if err != nil {
			return errors.Wrap(err, "encode preset")
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.key, p.Name, data)
			return nil
		})
		return err
	}

	for i := 0; i < maxSaveRetries; i++ {
		err = s.client.Watch(ctx, txf, s.key)
		if err != redis.TxFailedErr {
			break
		}
	}
	if err != nil {
		return errors.Wrapf(err, "save preset %q", p.Name)
	}

	s.logger.WithFields(map[string]interface{}{
		"preset":    p.Name,
		"framerate": p.Framerate.String(),
	}).Info("Preset saved")
	s.refreshCount(ctx)
	return nil
}

func (s *RedisStore) Get(ctx context.Context, name string) (p *Preset, err error) {
	defer func() { metrics.RecordPresetOperation("get", ignoreNotFound(err)) }()

	data, err := s.client.HGet(ctx, s.key, name).Bytes()
	if err == redis.Nil {
		return nil, errors.Wrapf(ErrNotFound, "preset %q", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get preset %q", name)
	}

	p = &Preset{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, errors.Wrapf(err, "decode preset %q", name)
	}
	return p, nil
}

// List returns every preset sorted by name. Entries that no longer decode
// are skipped and logged.
func (s *RedisStore) List(ctx context.Context) (presets []*Preset, err error) {
	defer func() { metrics.RecordPresetOperation("list", err) }()

	all, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, errors.Wrap(err, "list presets")
	}

	presets = make([]*Preset, 0, len(all))
	for name, data := range all {
		var p Preset
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			s.logger.WithError(err).WithField("preset", name).Warn("Skipping undecodable preset")
			continue
		}
		presets = append(presets, &p)
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].Name < presets[j].Name })

	metrics.SetPresetCount(len(all))
	return presets, nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) (err error) {
	defer func() { metrics.RecordPresetOperation("delete", ignoreNotFound(err)) }()

	deleted, err := s.client.HDel(ctx, s.key, name).Result()
	if err != nil {
		return errors.Wrapf(err, "delete preset %q", name)
	}
	if deleted == 0 {
		return errors.Wrapf(ErrNotFound, "preset %q", name)
	}

	s.logger.WithField("preset", name).Info("Preset deleted")
	s.refreshCount(ctx)
	return nil
}

func (s *RedisStore) refreshCount(ctx context.Context) {
	n, err := s.client.HLen(ctx, s.key).Result()
	if err != nil {
		s.logger.WithError(err).Debug("Failed to count presets")
		return
	}
	metrics.SetPresetCount(int(n))
}

// A miss is a normal answer, not a store failure.
func ignoreNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
