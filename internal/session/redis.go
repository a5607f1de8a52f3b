package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/farmgate/whatsapp-engine/internal/model"
	redisclient "github.com/farmgate/whatsapp-engine/internal/redis"
	"github.com/farmgate/whatsapp-engine/internal/util"
)

// RedisStore persists sessions as JSON snapshots with a sliding TTL, so any
// instance can continue any conversation. Snapshots are sealed to their phone
// when a sealer is given.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	sealer *util.Sealer
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, ttl time.Duration, sealer *util.Sealer) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		sealer: sealer,
		now:    time.Now,
	}
}

func (s *RedisStore) Get(ctx context.Context, phone string) model.Session {
	sess, err := s.load(ctx, phone)
	if err != nil {
		log.Error().
			Err(err).
			Str("phone", util.MaskPhone(phone)).
			Msg("session load failed, starting fresh session")
		return model.NewSession(s.now())
	}
	return sess
}

func (s *RedisStore) Set(ctx context.Context, phone string, patch Patch) (model.Session, error) {
	next := Apply(s.Get(ctx, phone), patch, s.now())

	raw, err := json.Marshal(next)
	if err != nil {
		return next, fmt.Errorf("marshal session: %w", err)
	}
	value := string(raw)
	if s.sealer != nil {
		value, err = s.sealer.Seal(raw, phone)
		if err != nil {
			return next, fmt.Errorf("seal session: %w", err)
		}
	}

	if err := s.client.Set(ctx, redisclient.SessionKey(phone), value, s.ttl).Err(); err != nil {
		return next, fmt.Errorf("save session: %w", err)
	}

	// Re-read through the decoder so callers see the same value types as the next Get.
	return clone(next), nil
}

func (s *RedisStore) Clear(ctx context.Context, phone string) error {
	return s.client.Del(ctx, redisclient.SessionKey(phone)).Err()
}

func (s *RedisStore) load(ctx context.Context, phone string) (model.Session, error) {
	key := redisclient.SessionKey(phone)
	now := s.now()

	pipe := s.client.TxPipeline()
	getCmd := pipe.Get(ctx, key)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return model.Session{}, fmt.Errorf("read session: %w", err)
	}

	value, err := getCmd.Result()
	if errors.Is(err, redis.Nil) {
		return model.NewSession(now), nil
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("read session: %w", err)
	}

	raw := []byte(value)
	if s.sealer != nil {
		raw, err = s.sealer.Open(value, phone)
		if err != nil {
			return model.Session{}, fmt.Errorf("open session: %w", err)
		}
	}

	var sess model.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return model.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return sanitize(sess, now), nil
}
