package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	*redis.Client
}

func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Client{client}, nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}

// Keys shared between the web process and the worker.
const (
	TokenKey            = "wa:token"
	TokenRotatedChannel = "wa:token:rotated"
)

func SessionKey(phone string) string {
	return fmt.Sprintf("wa:session:%s", phone)
}

func InboundMessageKey(messageID string) string {
	return fmt.Sprintf("wa:inbound:%s", messageID)
}

func LastInboundKey(phone string) string {
	return fmt.Sprintf("wa:last-inbound:%s", phone)
}

func OptOutKey(phone string) string {
	return fmt.Sprintf("wa:optout:%s", phone)
}

func OTPKey(phone string) string {
	return fmt.Sprintf("wa:otp:%s", phone)
}

func OTPAttemptsKey(phone string) string {
	return fmt.Sprintf("wa:otp-attempts:%s", phone)
}
