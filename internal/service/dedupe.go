package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	rediskeys "github.com/farmgate/whatsapp-engine/internal/redis"
)

// Deduper suppresses repeated webhook deliveries of the same inbound message.
type Deduper struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDeduper(client *redis.Client, ttl time.Duration) *Deduper {
	return &Deduper{client: client, ttl: ttl}
}

// Claim returns true the first time messageID is seen within the TTL. When
// Redis is unavailable the message is processed.
func (d *Deduper) Claim(ctx context.Context, messageID string) bool {
	if messageID == "" {
		return true
	}
	ok, err := d.client.SetNX(ctx, rediskeys.InboundMessageKey(messageID), 1, d.ttl).Result()
	if err != nil {
		log.Warn().Err(err).Str("messageId", messageID).Msg("dedupe check failed, processing message")
		return true
	}
	return ok
}
