package savedata

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/milk9111/soundtrack/config"
)

const pingTimeout = 5 * time.Second

// RedisStore keeps each slot as one hash at <prefix><slot>.
type RedisStore struct {
	client *redis.Client
	prefix string
	log    *zap.Logger
}

func NewRedisStore(cfg config.RedisConfig, logger *zap.Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisStoreWithClient(client, cfg.Prefix, logger)
}

func NewRedisStoreWithClient(client *redis.Client, prefix string, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, prefix: prefix, log: logger.With(zap.String("store", "redis"))}
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("savedata: connect to redis: %w", err)
	}
	return nil
}

func (s *RedisStore) key(slot string) string {
	return s.prefix + slot
}

// Save replaces the slot hash in one transaction.
func (s *RedisStore) Save(ctx context.Context, slot string, data *Data) error {
	if err := validSlot(slot); err != nil {
		return err
	}
	key := s.key(slot)
	values := data.Map()

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(values) > 0 {
		fields := make(map[string]any, len(values))
		for k, v := range values {
			fields[k] = v
		}
		pipe.HSet(ctx, key, fields)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("savedata: save slot %q: %w", slot, err)
	}

	s.log.Debug("savedata: saved slot", zap.String("slot", slot), zap.String("key", key), zap.Int("keys", len(values)))
	return nil
}

func (s *RedisStore) Load(ctx context.Context, slot string) (*Data, error) {
	if err := validSlot(slot); err != nil {
		return nil, err
	}
	values, err := s.client.HGetAll(ctx, s.key(slot)).Result()
	if err == redis.Nil || (err == nil && len(values) == 0) {
		return nil, fmt.Errorf("%w: %q", ErrSlotNotFound, slot)
	}
	if err != nil {
		return nil, fmt.Errorf("savedata: load slot %q: %w", slot, err)
	}
	return FromMap(values), nil
}

func (s *RedisStore) Delete(ctx context.Context, slot string) error {
	if err := validSlot(slot); err != nil {
		return err
	}
	n, err := s.client.Del(ctx, s.key(slot)).Result()
	if err != nil {
		return fmt.Errorf("savedata: delete slot %q: %w", slot, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrSlotNotFound, slot)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
