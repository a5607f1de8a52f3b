package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/twilio/twilio-go"
	verify "github.com/twilio/twilio-go/rest/verify/v2"

	rediskeys "github.com/farmgate/whatsapp-engine/internal/redis"
	"github.com/farmgate/whatsapp-engine/internal/util"
)

// Destination identifies who receives a one-time code. Phone is the
// challenge key; Email selects the email channel when set.
type Destination struct {
	Phone string
	Email string
}

// Provider sends and checks one-time codes.
type Provider interface {
	Send(ctx context.Context, to Destination) error
	Check(ctx context.Context, to Destination, code string) (bool, error)
}

type verifyAPI interface {
	CreateVerification(serviceSid string, params *verify.CreateVerificationParams) (*verify.VerifyV2Verification, error)
	CreateVerificationCheck(serviceSid string, params *verify.CreateVerificationCheckParams) (*verify.VerifyV2VerificationCheck, error)
}

// TwilioProvider delivers codes through Twilio Verify.
type TwilioProvider struct {
	api        verifyAPI
	serviceSID string
}

func NewTwilioProvider(accountSID, authToken, serviceSID string) *TwilioProvider {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioProvider{api: client.VerifyV2, serviceSID: serviceSID}
}

func channelFor(to Destination) (string, string) {
	if to.Email != "" {
		return to.Email, "email"
	}
	return to.Phone, "sms"
}

func (p *TwilioProvider) Send(ctx context.Context, to Destination) error {
	target, channel := channelFor(to)

	params := &verify.CreateVerificationParams{}
	params.SetTo(target)
	params.SetChannel(channel)

	resp, err := p.api.CreateVerification(p.serviceSID, params)
	if err != nil {
		return fmt.Errorf("create verification: %w", err)
	}

	status := ""
	if resp != nil && resp.Status != nil {
		status = *resp.Status
	}
	log.Debug().
		Str("phone", util.MaskPhone(to.Phone)).
		Str("channel", channel).
		Str("status", status).
		Msg("verification sent")
	return nil
}

func (p *TwilioProvider) Check(ctx context.Context, to Destination, code string) (bool, error) {
	target, _ := channelFor(to)

	params := &verify.CreateVerificationCheckParams{}
	params.SetTo(target)
	params.SetCode(code)

	resp, err := p.api.CreateVerificationCheck(p.serviceSID, params)
	if err != nil {
		return false, fmt.Errorf("check verification: %w", err)
	}
	return resp != nil && resp.Status != nil && *resp.Status == "approved", nil
}

// Notifier hands a freshly generated code to the user.
type Notifier func(ctx context.Context, to Destination, code string) error

// LocalProvider keeps bcrypt hashes of generated codes in Redis and delivers
// them through a Notifier. Used when Twilio is not configured.
type LocalProvider struct {
	client *redis.Client
	notify Notifier
	ttl    time.Duration
	digits int
}

func NewLocalProvider(client *redis.Client, notify Notifier, ttl time.Duration) *LocalProvider {
	return &LocalProvider{client: client, notify: notify, ttl: ttl, digits: 6}
}

func (p *LocalProvider) Send(ctx context.Context, to Destination) error {
	code, err := util.GenerateNumericCode(p.digits)
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	hash, err := util.HashPassword(code)
	if err != nil {
		return fmt.Errorf("hash code: %w", err)
	}
	if err := p.client.Set(ctx, rediskeys.OTPKey(to.Phone), hash, p.ttl).Err(); err != nil {
		return fmt.Errorf("store code: %w", err)
	}
	if p.notify == nil {
		return nil
	}
	return p.notify(ctx, to, code)
}

func (p *LocalProvider) Check(ctx context.Context, to Destination, code string) (bool, error) {
	key := rediskeys.OTPKey(to.Phone)
	hash, err := p.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load code: %w", err)
	}
	if !util.CheckPasswordHash(code, hash) {
		return false, nil
	}
	if err := p.client.Del(ctx, key).Err(); err != nil {
		log.Warn().Err(err).Str("phone", util.MaskPhone(to.Phone)).Msg("failed to clear used code")
	}
	return true, nil
}
