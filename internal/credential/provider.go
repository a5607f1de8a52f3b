package credential

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	redisclient "github.com/farmgate/whatsapp-engine/internal/redis"
	"github.com/farmgate/whatsapp-engine/internal/util"
)

// Provider hands out the current upstream bearer token.
type Provider interface {
	// Token returns the cached token, loading it on first use.
	Token(ctx context.Context) (string, error)
	// Refresh re-reads the token from the shared store, bypassing the cache.
	Refresh(ctx context.Context) (string, error)
	// Rotate replaces the token for every process sharing the store.
	Rotate(ctx context.Context, token string) error
}

var ErrNoToken = errors.New("no upstream token configured")

// RedisProvider keeps the token under a shared key and announces rotations on
// a pub/sub channel so the web process and the worker stay in sync.
type RedisProvider struct {
	client   *redis.Client
	fallback string

	mu     sync.RWMutex
	cached string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRedisProvider uses fallback (usually WHATSAPP_TOKEN) until a token has
// been rotated into the shared store.
func NewRedisProvider(client *redis.Client, fallback string) *RedisProvider {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisProvider{
		client:   client,
		fallback: fallback,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (p *RedisProvider) Token(ctx context.Context) (string, error) {
	p.mu.RLock()
	token := p.cached
	p.mu.RUnlock()
	if token != "" {
		return token, nil
	}
	return p.Refresh(ctx)
}

func (p *RedisProvider) Refresh(ctx context.Context) (string, error) {
	token, err := p.client.Get(ctx, redisclient.TokenKey).Result()
	if errors.Is(err, redis.Nil) {
		token = p.fallback
	} else if err != nil {
		return "", fmt.Errorf("read shared token: %w", err)
	}

	if token == "" {
		return "", ErrNoToken
	}

	p.mu.Lock()
	p.cached = token
	p.mu.Unlock()
	return token, nil
}

func (p *RedisProvider) Rotate(ctx context.Context, token string) error {
	if token == "" {
		return ErrNoToken
	}
	if err := p.client.Set(ctx, redisclient.TokenKey, token, 0).Err(); err != nil {
		return fmt.Errorf("store token: %w", err)
	}

	p.mu.Lock()
	p.cached = token
	p.mu.Unlock()

	// Subscribers re-read the key; only a fingerprint travels over the channel.
	if err := p.client.Publish(ctx, redisclient.TokenRotatedChannel, util.HashToken(token)).Err(); err != nil {
		return fmt.Errorf("announce rotation: %w", err)
	}
	return nil
}

// Start listens for rotations announced by other processes.
func (p *RedisProvider) Start() {
	pubsub := p.client.Subscribe(p.ctx, redisclient.TokenRotatedChannel)
	p.wg.Add(1)
	go p.listen(pubsub)
	log.Info().Str("channel", redisclient.TokenRotatedChannel).Msg("token rotation listener started")
}

func (p *RedisProvider) listen(pubsub *redis.PubSub) {
	defer p.wg.Done()
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-p.ctx.Done():
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}

			p.mu.RLock()
			current := p.cached
			p.mu.RUnlock()
			if current != "" && util.HashToken(current) == msg.Payload {
				continue
			}

			if _, err := p.Refresh(p.ctx); err != nil {
				log.Error().Err(err).Msg("failed to reload rotated token")
				continue
			}
			log.Info().Msg("upstream token reloaded after rotation")
		}
	}
}

func (p *RedisProvider) Close() {
	p.cancel()
	p.wg.Wait()
}

// Static is a fixed token, for tests and single-process tools.
type Static string

func (s Static) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

func (s Static) Refresh(ctx context.Context) (string, error) {
	return s.Token(ctx)
}

func (s Static) Rotate(ctx context.Context, token string) error {
	return errors.New("static token cannot be rotated")
}
