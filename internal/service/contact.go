package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/farmgate/whatsapp-engine/internal/audit"
	"github.com/farmgate/whatsapp-engine/internal/model"
	rediskeys "github.com/farmgate/whatsapp-engine/internal/redis"
	"github.com/farmgate/whatsapp-engine/internal/repository"
	"github.com/farmgate/whatsapp-engine/internal/util"
)

// lastInboundRetention bounds how long the hot-path copy of a contact's last
// inbound timestamp is kept. Postgres holds the durable copy.
const lastInboundRetention = 7 * 24 * time.Hour

// ContactService tracks WhatsApp contacts: last inbound time, opt-out and the
// platform user bound to each number.
type ContactService struct {
	repo   repository.ContactRepository
	client *redis.Client
	now    func() time.Time
}

func NewContactService(repo repository.ContactRepository, client *redis.Client) *ContactService {
	return &ContactService{repo: repo, client: client, now: time.Now}
}

// TouchInbound records that phone just wrote to us.
func (s *ContactService) TouchInbound(ctx context.Context, phone string, profileName *string) (*model.Contact, error) {
	now := s.now()
	if err := s.client.Set(ctx, rediskeys.LastInboundKey(phone), now.Unix(), lastInboundRetention).Err(); err != nil {
		log.Warn().Err(err).Str("phone", util.MaskPhone(phone)).Msg("failed to cache last inbound time")
	}

	contact, err := s.repo.Upsert(ctx, model.UpsertContactParams{
		Phone:       phone,
		ProfileName: profileName,
		InboundAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert contact: %w", err)
	}
	return contact, nil
}

// LastInbound returns when phone last wrote to us, or nil if never.
func (s *ContactService) LastInbound(ctx context.Context, phone string) (*time.Time, error) {
	raw, err := s.client.Get(ctx, rediskeys.LastInboundKey(phone)).Result()
	if err == nil {
		if sec, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			t := time.Unix(sec, 0)
			return &t, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Str("phone", util.MaskPhone(phone)).Msg("last inbound cache unavailable")
	}

	contact, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("find contact: %w", err)
	}
	if contact == nil {
		return nil, nil
	}
	return contact.LastInboundAt, nil
}

func (s *ContactService) Find(ctx context.Context, phone string) (*model.Contact, error) {
	return s.repo.FindByPhone(ctx, phone)
}

func (s *ContactService) PhoneForUser(ctx context.Context, userID string) (string, error) {
	return s.repo.FindPhoneByUserID(ctx, userID)
}

// BindUser links phone to a platform user. A nil userID unlinks it.
func (s *ContactService) BindUser(ctx context.Context, phone string, userID *string) error {
	if err := s.repo.SetUser(ctx, phone, userID); err != nil {
		return fmt.Errorf("bind contact user: %w", err)
	}
	return nil
}

func (s *ContactService) SetLocale(ctx context.Context, phone, locale string) error {
	if err := s.repo.SetLocale(ctx, phone, locale); err != nil {
		return fmt.Errorf("set contact locale: %w", err)
	}
	return nil
}

func (s *ContactService) OptOut(ctx context.Context, phone string) error {
	if err := s.repo.SetOptedOut(ctx, phone, true); err != nil {
		return fmt.Errorf("opt out: %w", err)
	}
	if err := s.client.Set(ctx, rediskeys.OptOutKey(phone), "1", 0).Err(); err != nil {
		return fmt.Errorf("cache opt out: %w", err)
	}
	audit.Log(ctx, audit.Event{Type: audit.EventOptOut, Phone: util.MaskPhone(phone)})
	return nil
}

func (s *ContactService) OptIn(ctx context.Context, phone string) error {
	if err := s.repo.SetOptedOut(ctx, phone, false); err != nil {
		return fmt.Errorf("opt in: %w", err)
	}
	if err := s.client.Del(ctx, rediskeys.OptOutKey(phone)).Err(); err != nil {
		return fmt.Errorf("clear opt out: %w", err)
	}
	return nil
}

// IsOptedOut consults the Redis marker and falls back to Postgres when Redis
// is unreachable.
func (s *ContactService) IsOptedOut(ctx context.Context, phone string) (bool, error) {
	n, err := s.client.Exists(ctx, rediskeys.OptOutKey(phone)).Result()
	if err == nil {
		return n > 0, nil
	}
	log.Warn().Err(err).Str("phone", util.MaskPhone(phone)).Msg("opt-out cache unavailable")

	contact, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		return false, fmt.Errorf("find contact: %w", err)
	}
	return contact != nil && contact.OptedOut, nil
}
