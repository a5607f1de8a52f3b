package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/farmgate/whatsapp-engine/internal/credential"
)

// Graph error codes the client reacts to.
const (
	CodeAccessTokenExpired = 190
	CodeReengagement       = 131047
)

const maxMediaBytes = 16 << 20

// APIError is a Graph API error response.
type APIError struct {
	Status    int    `json:"-"`
	Code      int    `json:"code"`
	Subcode   int    `json:"error_subcode"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	FBTraceID string `json:"fbtrace_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp api error %d (code %d, subcode %d): %s", e.Status, e.Code, e.Subcode, e.Message)
}

// TokenExpired reports whether the error means the bearer token is no longer valid.
func (e *APIError) TokenExpired() bool {
	return e.Status == http.StatusUnauthorized && e.Code == CodeAccessTokenExpired
}

func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

type SendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

func (r *SendResponse) MessageID() string {
	if r == nil || len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0].ID
}

type Config struct {
	BaseURL       string
	APIVersion    string
	PhoneNumberID string
	Timeout       time.Duration
}

// Client talks to the Cloud API with whatever token the provider currently holds.
type Client struct {
	cfg        Config
	tokens     credential.Provider
	httpClient *http.Client
}

func NewClient(cfg Config, tokens credential.Provider) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Client{
		cfg:        cfg,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) endpoint(path string) string {
	return fmt.Sprintf("%s/%s/%s", c.cfg.BaseURL, c.cfg.APIVersion, path)
}

// Send posts a message payload. When the token has expired it reloads the
// token from the provider and retries exactly once.
func (c *Client) Send(ctx context.Context, payload json.RawMessage) (*SendResponse, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, token, payload)
	apiErr, ok := AsAPIError(err)
	if !ok || !apiErr.TokenExpired() {
		return resp, err
	}

	fresh, refreshErr := c.tokens.Refresh(ctx)
	if refreshErr != nil {
		log.Warn().Err(refreshErr).Msg("token refresh after expiry failed")
		return nil, err
	}

	log.Info().Bool("tokenChanged", fresh != token).Msg("retrying send after token expiry")
	return c.send(ctx, fresh, payload)
}

func (c *Client) send(ctx context.Context, token string, payload json.RawMessage) (*SendResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.cfg.PhoneNumberID+"/messages"), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var out SendResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode send response: %w", err)
	}
	return &out, nil
}

// Media is an inbound attachment downloaded from the Graph API.
type Media struct {
	Data     []byte
	MimeType string
}

// DownloadMedia resolves a media id to its URL and fetches the bytes.
func (c *Client) DownloadMedia(ctx context.Context, mediaID string) (*Media, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(mediaID), nil)
	if err != nil {
		return nil, fmt.Errorf("build media request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var meta struct {
		URL      string `json:"url"`
		MimeType string `json:"mime_type"`
	}
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("decode media metadata: %w", err)
	}
	if meta.URL == "" {
		return nil, fmt.Errorf("media %s has no download url", mediaID)
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, meta.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build media download: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	data, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return &Media{Data: data, MimeType: meta.MimeType}, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whatsapp request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == nil {
		return nil, &APIError{Status: resp.StatusCode, Message: string(body)}
	}
	envelope.Error.Status = resp.StatusCode
	return nil, envelope.Error
}
