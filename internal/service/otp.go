package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/farmgate/whatsapp-engine/internal/audit"
	"github.com/farmgate/whatsapp-engine/internal/config"
	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/otp"
	rediskeys "github.com/farmgate/whatsapp-engine/internal/redis"
	"github.com/farmgate/whatsapp-engine/internal/util"
)

// OTPService applies send limits and attempt budgets on top of an otp.Provider.
type OTPService struct {
	provider    otp.Provider
	limiter     *RateLimiter
	client      *redis.Client
	maxAttempts int64
}

func NewOTPService(provider otp.Provider, limiter *RateLimiter, client *redis.Client) *OTPService {
	return &OTPService{
		provider:    provider,
		limiter:     limiter,
		client:      client,
		maxAttempts: config.OTPMaxAttempts,
	}
}

func otpSendKey(phone string) string {
	return fmt.Sprintf("otp-send:%s", phone)
}

// Send starts a new challenge and resets the attempt counter.
func (s *OTPService) Send(ctx context.Context, to otp.Destination) error {
	allowed, _ := s.limiter.CheckLimit(ctx, otpSendKey(to.Phone), config.OTPSendLimit, config.OTPSendWindow)
	if !allowed {
		audit.Log(ctx, audit.Event{
			Type:    audit.EventRateLimitExceed,
			Phone:   util.MaskPhone(to.Phone),
			Details: map[string]interface{}{"limit": "otp_send"},
		})
		return apperrors.RateLimitExceeded()
	}

	if err := s.client.Del(ctx, rediskeys.OTPAttemptsKey(to.Phone)).Err(); err != nil {
		return fmt.Errorf("reset otp attempts: %w", err)
	}
	if err := s.provider.Send(ctx, to); err != nil {
		return apperrors.External("otp", err)
	}

	audit.Log(ctx, audit.Event{Type: audit.EventOTPSent, Phone: util.MaskPhone(to.Phone)})
	return nil
}

// Verify checks code against the active challenge. The attempt that uses up
// the budget returns OTP_EXHAUSTED instead of OTP_INVALID.
func (s *OTPService) Verify(ctx context.Context, to otp.Destination, code string) error {
	key := rediskeys.OTPAttemptsKey(to.Phone)

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, config.OTPCodeTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("count otp attempt: %w", err)
	}
	attempts := incr.Val()
	if attempts > s.maxAttempts {
		return apperrors.OTPExhausted()
	}

	ok, err := s.provider.Check(ctx, to, code)
	if err != nil {
		return apperrors.External("otp", err)
	}
	if ok {
		s.client.Del(ctx, key)
		if err := s.limiter.Reset(ctx, otpSendKey(to.Phone)); err != nil {
			log.Warn().Err(err).Str("phone", util.MaskPhone(to.Phone)).Msg("failed to reset otp send limit")
		}
		return nil
	}

	if attempts >= s.maxAttempts {
		audit.Log(ctx, audit.Event{Type: audit.EventOTPExhausted, Phone: util.MaskPhone(to.Phone)})
		return apperrors.OTPExhausted()
	}
	return apperrors.OTPInvalid().WithDetails(map[string]int64{"remaining": s.maxAttempts - attempts})
}
