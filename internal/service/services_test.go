package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/farmgate/whatsapp-engine/internal/credential"
	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/otp"
	"github.com/farmgate/whatsapp-engine/internal/queue"
	rediskeys "github.com/farmgate/whatsapp-engine/internal/redis"
	"github.com/farmgate/whatsapp-engine/internal/util"
	"github.com/farmgate/whatsapp-engine/internal/whatsapp"
)

// --- mocks ---

type mockSecurityRepo struct {
	mock.Mock
}

func (m *mockSecurityRepo) FindByUserID(ctx context.Context, userID string) (*model.SecurityState, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SecurityState), args.Error(1)
}

func (m *mockSecurityRepo) Lock(ctx context.Context, userID string, reason model.LockReason) error {
	args := m.Called(ctx, userID, reason)
	return args.Error(0)
}

func (m *mockSecurityRepo) Unlock(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockSecurityRepo) SetPairing(ctx context.Context, userID string, fingerprint string) error {
	args := m.Called(ctx, userID, fingerprint)
	return args.Error(0)
}

func (m *mockSecurityRepo) TouchActivity(ctx context.Context, userID string, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

type mockContactRepo struct {
	mock.Mock
}

func (m *mockContactRepo) FindByPhone(ctx context.Context, phone string) (*model.Contact, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contact), args.Error(1)
}

func (m *mockContactRepo) Upsert(ctx context.Context, params model.UpsertContactParams) (*model.Contact, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contact), args.Error(1)
}

func (m *mockContactRepo) SetUser(ctx context.Context, phone string, userID *string) error {
	args := m.Called(ctx, phone, userID)
	return args.Error(0)
}

func (m *mockContactRepo) SetOptedOut(ctx context.Context, phone string, optedOut bool) error {
	args := m.Called(ctx, phone, optedOut)
	return args.Error(0)
}

func (m *mockContactRepo) SetLocale(ctx context.Context, phone string, locale string) error {
	args := m.Called(ctx, phone, locale)
	return args.Error(0)
}

func (m *mockContactRepo) FindPhoneByUserID(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

type mockOutboundLogRepo struct {
	mock.Mock
}

func (m *mockOutboundLogRepo) Create(ctx context.Context, params model.CreateOutboundLogParams) (*model.OutboundLog, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OutboundLog), args.Error(1)
}

func (m *mockOutboundLogRepo) FindByRecipient(ctx context.Context, recipient string, limit, offset int) ([]model.OutboundLog, error) {
	args := m.Called(ctx, recipient, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OutboundLog), args.Error(1)
}

func (m *mockOutboundLogRepo) CountByStatus(ctx context.Context, status model.DeliveryStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

func (m *mockOutboundLogRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type mockGraph struct {
	mock.Mock
}

func (m *mockGraph) Send(ctx context.Context, payload json.RawMessage) (*whatsapp.SendResponse, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*whatsapp.SendResponse), args.Error(1)
}

type mockQueueInspector struct {
	mock.Mock
}

func (m *mockQueueInspector) Stats(ctx context.Context) (*queue.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queue.Stats), args.Error(1)
}

func (m *mockQueueInspector) DeadLetters(ctx context.Context, limit int64) ([]queue.Job, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]queue.Job), args.Error(1)
}

// fixedCodeProvider accepts a single code and counts sends.
type fixedCodeProvider struct {
	code  string
	sends int
}

func (p *fixedCodeProvider) Send(context.Context, otp.Destination) error {
	p.sends++
	return nil
}

func (p *fixedCodeProvider) Check(_ context.Context, _ otp.Destination, code string) (bool, error) {
	return code == p.code, nil
}

// --- dedupe ---

func TestDeduperClaim(t *testing.T) {
	ctx := context.Background()

	t.Run("second delivery is rejected", func(t *testing.T) {
		_, client := newTestRedis(t)
		d := NewDeduper(client, time.Hour)

		assert.True(t, d.Claim(ctx, "wamid.A"))
		assert.False(t, d.Claim(ctx, "wamid.A"))
		assert.True(t, d.Claim(ctx, "wamid.B"))
	})

	t.Run("claim expires with ttl", func(t *testing.T) {
		mr, client := newTestRedis(t)
		d := NewDeduper(client, time.Minute)

		require.True(t, d.Claim(ctx, "wamid.A"))
		mr.FastForward(2 * time.Minute)
		assert.True(t, d.Claim(ctx, "wamid.A"))
	})

	t.Run("missing id is always processed", func(t *testing.T) {
		_, client := newTestRedis(t)
		d := NewDeduper(client, time.Hour)

		assert.True(t, d.Claim(ctx, ""))
		assert.True(t, d.Claim(ctx, ""))
	})

	t.Run("redis outage processes the message", func(t *testing.T) {
		mr, client := newTestRedis(t)
		d := NewDeduper(client, time.Hour)
		mr.Close()

		assert.True(t, d.Claim(ctx, "wamid.A"))
	})
}

// --- otp ---

func TestOTPService(t *testing.T) {
	ctx := context.Background()
	to := otp.Destination{Phone: "+254700000003"}

	t.Run("send is rate limited", func(t *testing.T) {
		_, client := newTestRedis(t)
		provider := &fixedCodeProvider{code: "424242"}
		svc := NewOTPService(provider, NewRateLimiter(client), client)

		for i := 0; i < 3; i++ {
			require.NoError(t, svc.Send(ctx, to))
		}
		err := svc.Send(ctx, to)

		assert.Equal(t, apperrors.ErrCodeRateLimitExceeded, apperrors.GetCode(err))
		assert.Equal(t, 3, provider.sends)
	})

	t.Run("wrong codes exhaust the budget", func(t *testing.T) {
		_, client := newTestRedis(t)
		svc := NewOTPService(&fixedCodeProvider{code: "424242"}, NewRateLimiter(client), client)
		require.NoError(t, svc.Send(ctx, to))

		for i := 0; i < 4; i++ {
			err := svc.Verify(ctx, to, "000000")
			assert.Equal(t, apperrors.ErrCodeOTPInvalid, apperrors.GetCode(err), "attempt %d", i+1)
		}
		err := svc.Verify(ctx, to, "000000")
		assert.Equal(t, apperrors.ErrCodeOTPExhausted, apperrors.GetCode(err))

		err = svc.Verify(ctx, to, "424242")
		assert.Equal(t, apperrors.ErrCodeOTPExhausted, apperrors.GetCode(err))
	})

	t.Run("correct code clears attempts", func(t *testing.T) {
		mr, client := newTestRedis(t)
		svc := NewOTPService(&fixedCodeProvider{code: "424242"}, NewRateLimiter(client), client)
		require.NoError(t, svc.Send(ctx, to))

		require.Error(t, svc.Verify(ctx, to, "111111"))
		require.NoError(t, svc.Verify(ctx, to, "424242"))
		assert.False(t, mr.Exists(rediskeys.OTPAttemptsKey(to.Phone)))
		assert.False(t, mr.Exists(rateLimitKey(otpSendKey(to.Phone))))
	})

	t.Run("resend resets attempts", func(t *testing.T) {
		_, client := newTestRedis(t)
		svc := NewOTPService(&fixedCodeProvider{code: "424242"}, NewRateLimiter(client), client)
		require.NoError(t, svc.Send(ctx, to))
		for i := 0; i < 4; i++ {
			require.Error(t, svc.Verify(ctx, to, "000000"))
		}

		require.NoError(t, svc.Send(ctx, to))
		assert.NoError(t, svc.Verify(ctx, to, "424242"))
	})
}

// --- security ---

func TestSecurityCheckActivity(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	newSvc := func(repo *mockSecurityRepo) *SecurityService {
		svc := NewSecurityService(repo, "pair-secret", 30*time.Minute)
		svc.now = func() time.Time { return now }
		return svc
	}

	t.Run("idle user is locked", func(t *testing.T) {
		repo := new(mockSecurityRepo)
		last := now.Add(-time.Hour)
		repo.On("FindByUserID", ctx, "u1").Return(&model.SecurityState{UserID: "u1", LastActivityAt: &last}, nil).Once()
		repo.On("Lock", ctx, "u1", model.LockReasonIdle).Return(nil).Once()

		locked, err := newSvc(repo).CheckActivity(ctx, "u1")

		require.NoError(t, err)
		assert.True(t, locked)
		repo.AssertNotCalled(t, "TouchActivity", mock.Anything, mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("already locked stays locked", func(t *testing.T) {
		repo := new(mockSecurityRepo)
		repo.On("FindByUserID", ctx, "u1").Return(&model.SecurityState{UserID: "u1", Locked: true}, nil).Once()

		locked, err := newSvc(repo).CheckActivity(ctx, "u1")

		require.NoError(t, err)
		assert.True(t, locked)
		repo.AssertExpectations(t)
	})

	t.Run("active user is touched", func(t *testing.T) {
		repo := new(mockSecurityRepo)
		last := now.Add(-5 * time.Minute)
		repo.On("FindByUserID", ctx, "u1").Return(&model.SecurityState{UserID: "u1", LastActivityAt: &last}, nil).Once()
		repo.On("TouchActivity", ctx, "u1", now).Return(nil).Once()

		locked, err := newSvc(repo).CheckActivity(ctx, "u1")

		require.NoError(t, err)
		assert.False(t, locked)
		repo.AssertExpectations(t)
	})

	t.Run("first activity has no state", func(t *testing.T) {
		repo := new(mockSecurityRepo)
		repo.On("FindByUserID", ctx, "u2").Return(nil, nil).Once()
		repo.On("TouchActivity", ctx, "u2", now).Return(nil).Once()

		locked, err := newSvc(repo).CheckActivity(ctx, "u2")

		require.NoError(t, err)
		assert.False(t, locked)
	})

	t.Run("repository failure surfaces", func(t *testing.T) {
		repo := new(mockSecurityRepo)
		repo.On("FindByUserID", ctx, "u1").Return(nil, errors.New("db down")).Once()

		_, err := newSvc(repo).CheckActivity(ctx, "u1")

		assert.Error(t, err)
	})
}

func TestSecurityPairing(t *testing.T) {
	ctx := context.Background()
	phone := "+254700000004"
	fp := util.PairingFingerprint("pair-secret", phone)

	t.Run("matching fingerprint is paired", func(t *testing.T) {
		repo := new(mockSecurityRepo)
		repo.On("FindByUserID", ctx, "u1").Return(&model.SecurityState{UserID: "u1", PairingFingerprint: &fp}, nil)
		svc := NewSecurityService(repo, "pair-secret", 0)

		paired, err := svc.IsPaired(ctx, "u1", phone)
		require.NoError(t, err)
		assert.True(t, paired)

		paired, err = svc.IsPaired(ctx, "u1", "+254799999999")
		require.NoError(t, err)
		assert.False(t, paired)
	})

	t.Run("never paired", func(t *testing.T) {
		repo := new(mockSecurityRepo)
		repo.On("FindByUserID", ctx, "u1").Return(&model.SecurityState{UserID: "u1"}, nil)

		paired, err := NewSecurityService(repo, "pair-secret", 0).IsPaired(ctx, "u1", phone)
		require.NoError(t, err)
		assert.False(t, paired)
	})

	t.Run("unlock pairs the verifying phone", func(t *testing.T) {
		repo := new(mockSecurityRepo)
		repo.On("Unlock", ctx, "u1").Return(nil).Once()
		repo.On("SetPairing", ctx, "u1", fp).Return(nil).Once()

		require.NoError(t, NewSecurityService(repo, "pair-secret", 0).Unlock(ctx, "u1", phone))
		repo.AssertExpectations(t)
	})
}

// --- contacts ---

func TestContactService(t *testing.T) {
	ctx := context.Background()
	phone := "+254700000005"

	t.Run("touch caches last inbound", func(t *testing.T) {
		_, client := newTestRedis(t)
		repo := new(mockContactRepo)
		now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
		repo.On("Upsert", ctx, mock.MatchedBy(func(p model.UpsertContactParams) bool {
			return p.Phone == phone && p.InboundAt.Equal(now)
		})).Return(&model.Contact{Phone: phone}, nil).Once()

		svc := NewContactService(repo, client)
		svc.now = func() time.Time { return now }

		_, err := svc.TouchInbound(ctx, phone, nil)
		require.NoError(t, err)

		last, err := svc.LastInbound(ctx, phone)
		require.NoError(t, err)
		require.NotNil(t, last)
		assert.Equal(t, now.Unix(), last.Unix())
		repo.AssertNotCalled(t, "FindByPhone", mock.Anything, mock.Anything)
	})

	t.Run("last inbound falls back to postgres", func(t *testing.T) {
		_, client := newTestRedis(t)
		repo := new(mockContactRepo)
		stored := time.Date(2026, 4, 30, 8, 0, 0, 0, time.UTC)
		repo.On("FindByPhone", ctx, phone).Return(&model.Contact{Phone: phone, LastInboundAt: &stored}, nil).Once()

		last, err := NewContactService(repo, client).LastInbound(ctx, phone)

		require.NoError(t, err)
		assert.Equal(t, stored, *last)
	})

	t.Run("opt out marker", func(t *testing.T) {
		_, client := newTestRedis(t)
		repo := new(mockContactRepo)
		repo.On("SetOptedOut", ctx, phone, true).Return(nil).Once()
		repo.On("SetOptedOut", ctx, phone, false).Return(nil).Once()
		svc := NewContactService(repo, client)

		require.NoError(t, svc.OptOut(ctx, phone))
		out, err := svc.IsOptedOut(ctx, phone)
		require.NoError(t, err)
		assert.True(t, out)

		require.NoError(t, svc.OptIn(ctx, phone))
		out, err = svc.IsOptedOut(ctx, phone)
		require.NoError(t, err)
		assert.False(t, out)
		repo.AssertExpectations(t)
	})

	t.Run("opt out falls back to postgres when redis is down", func(t *testing.T) {
		mr, client := newTestRedis(t)
		repo := new(mockContactRepo)
		repo.On("FindByPhone", ctx, phone).Return(&model.Contact{Phone: phone, OptedOut: true}, nil).Once()
		mr.Close()

		out, err := NewContactService(repo, client).IsOptedOut(ctx, phone)

		require.NoError(t, err)
		assert.True(t, out)
	})
}

// --- delivery ---

func deliveryJob() *queue.Job {
	return &queue.Job{
		ID:       "job-1",
		Payload:  json.RawMessage(`{"to":"254700000006"}`),
		Meta:     map[string]string{"to": "254700000006", "kind": "text"},
		Attempts: 1,
	}
}

func TestDeliveryHandlerProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("stores provider message id", func(t *testing.T) {
		graph := new(mockGraph)
		resp := &whatsapp.SendResponse{}
		require.NoError(t, json.Unmarshal([]byte(`{"messages":[{"id":"wamid.out"}]}`), resp))
		graph.On("Send", ctx, mock.Anything).Return(resp, nil).Once()
		job := deliveryJob()

		require.NoError(t, NewDeliveryHandler(graph, new(mockOutboundLogRepo)).Process(ctx, job))
		assert.Equal(t, "wamid.out", job.Meta[metaProviderMessageID])
	})

	t.Run("expired token", func(t *testing.T) {
		graph := new(mockGraph)
		graph.On("Send", ctx, mock.Anything).
			Return(nil, fmt.Errorf("send: %w", &whatsapp.APIError{Status: http.StatusUnauthorized, Code: whatsapp.CodeAccessTokenExpired})).Once()

		err := NewDeliveryHandler(graph, new(mockOutboundLogRepo)).Process(ctx, deliveryJob())
		assert.Equal(t, apperrors.ErrCodeUpstreamTokenExpired, apperrors.GetCode(err))
	})

	t.Run("other failures are retryable sends", func(t *testing.T) {
		graph := new(mockGraph)
		graph.On("Send", ctx, mock.Anything).Return(nil, &whatsapp.APIError{Status: http.StatusBadRequest, Code: 131026}).Once()

		err := NewDeliveryHandler(graph, new(mockOutboundLogRepo)).Process(ctx, deliveryJob())
		assert.Equal(t, apperrors.ErrCodeUpstreamSendFailed, apperrors.GetCode(err))
	})
}

func TestDeliveryHandlerOutcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("completed job is logged as sent", func(t *testing.T) {
		logs := new(mockOutboundLogRepo)
		logs.On("Create", ctx, mock.MatchedBy(func(p model.CreateOutboundLogParams) bool {
			return p.Status == model.DeliveryStatusSent && p.ProviderID != nil && *p.ProviderID == "wamid.out" &&
				p.Recipient == "254700000006" && p.Kind == "text"
		})).Return(&model.OutboundLog{ID: "log-1"}, nil).Once()
		job := deliveryJob()
		job.Meta[metaProviderMessageID] = "wamid.out"

		NewDeliveryHandler(new(mockGraph), logs).Completed(ctx, job)
		logs.AssertExpectations(t)
	})

	t.Run("dead letter keeps the cause", func(t *testing.T) {
		logs := new(mockOutboundLogRepo)
		logs.On("Create", ctx, mock.MatchedBy(func(p model.CreateOutboundLogParams) bool {
			return p.Status == model.DeliveryStatusDeadLettered && p.ErrorMessage != nil && *p.ErrorMessage != ""
		})).Return(nil, errors.New("db down")).Once()

		NewDeliveryHandler(new(mockGraph), logs).DeadLettered(ctx, deliveryJob(), apperrors.UpstreamSendFailed(errors.New("boom")))
		logs.AssertExpectations(t)
	})
}

// --- admin ---

func TestAdminAuthenticate(t *testing.T) {
	hash, err := util.HashPassword("operator-secret")
	require.NoError(t, err)

	svc := NewAdminService(credential.Static("t"), new(mockQueueInspector), new(mockOutboundLogRepo), hash)
	assert.True(t, svc.Authenticate("operator-secret"))
	assert.False(t, svc.Authenticate("wrong"))
	assert.False(t, svc.Authenticate(""))

	unconfigured := NewAdminService(credential.Static("t"), new(mockQueueInspector), new(mockOutboundLogRepo), "")
	assert.False(t, unconfigured.Authenticate("operator-secret"))
}

func TestAdminRotateToken(t *testing.T) {
	ctx := context.Background()
	svc := NewAdminService(credential.Static("t"), new(mockQueueInspector), new(mockOutboundLogRepo), "")

	err := svc.RotateToken(ctx, "   ")
	assert.Equal(t, apperrors.ErrCodeMissingRequired, apperrors.GetCode(err))

	err = svc.RotateToken(ctx, "EAAG-new")
	assert.Equal(t, apperrors.ErrCodeInternal, apperrors.GetCode(err))
}

func TestAdminQueueViews(t *testing.T) {
	ctx := context.Background()

	t.Run("dead letter limit is clamped", func(t *testing.T) {
		q := new(mockQueueInspector)
		q.On("DeadLetters", ctx, int64(50)).Return([]queue.Job{}, nil).Twice()
		q.On("DeadLetters", ctx, int64(10)).Return([]queue.Job{{ID: "job-1"}}, nil).Once()
		svc := NewAdminService(credential.Static("t"), q, new(mockOutboundLogRepo), "")

		_, err := svc.DeadLetters(ctx, 0)
		require.NoError(t, err)
		_, err = svc.DeadLetters(ctx, 1000)
		require.NoError(t, err)
		jobs, err := svc.DeadLetters(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, jobs, 1)
		q.AssertExpectations(t)
	})

	t.Run("stats combine queue and log counts", func(t *testing.T) {
		q := new(mockQueueInspector)
		q.On("Stats", ctx).Return(&queue.Stats{Waiting: 2}, nil).Once()
		logs := new(mockOutboundLogRepo)
		logs.On("CountByStatus", ctx, model.DeliveryStatusSent).Return(7, nil).Once()
		logs.On("CountByStatus", ctx, model.DeliveryStatusDeadLettered).Return(1, nil).Once()

		stats, err := NewAdminService(credential.Static("t"), q, logs, "").GetStats(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.Queue.Waiting)
		assert.Equal(t, 7, stats.Delivered)
		assert.Equal(t, 1, stats.DeadLettered)
	})

	t.Run("history is keyed by wa id", func(t *testing.T) {
		logs := new(mockOutboundLogRepo)
		logs.On("FindByRecipient", ctx, "254700000006", 50, 0).Return([]model.OutboundLog{{ID: "log-1"}}, nil).Once()

		history, err := NewAdminService(credential.Static("t"), new(mockQueueInspector), logs, "").
			DeliveryHistory(ctx, "+254700000006", 0, 0)

		require.NoError(t, err)
		assert.Len(t, history, 1)
		logs.AssertExpectations(t)
	})
}
