package service

import (
	"context"
	"strings"

	"github.com/farmgate/whatsapp-engine/internal/audit"
	"github.com/farmgate/whatsapp-engine/internal/credential"
	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/queue"
	"github.com/farmgate/whatsapp-engine/internal/repository"
	"github.com/farmgate/whatsapp-engine/internal/util"
)

type queueInspector interface {
	Stats(ctx context.Context) (*queue.Stats, error)
	DeadLetters(ctx context.Context, limit int64) ([]queue.Job, error)
}

// AdminService backs the operator endpoints: token rotation and outbound
// queue inspection.
type AdminService struct {
	tokens    credential.Provider
	queue     queueInspector
	logs      repository.OutboundLogRepository
	tokenHash string
}

func NewAdminService(
	tokens credential.Provider,
	q queueInspector,
	logs repository.OutboundLogRepository,
	adminTokenHash string,
) *AdminService {
	return &AdminService{
		tokens:    tokens,
		queue:     q,
		logs:      logs,
		tokenHash: adminTokenHash,
	}
}

// Authenticate checks the shared admin secret against its bcrypt hash.
// An unconfigured hash rejects everything.
func (s *AdminService) Authenticate(secret string) bool {
	if s.tokenHash == "" || secret == "" {
		return false
	}
	return util.CheckPasswordHash(secret, s.tokenHash)
}

// RotateToken replaces the Graph API bearer token for every process.
func (s *AdminService) RotateToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.MissingRequired("token")
	}
	if err := s.tokens.Rotate(ctx, token); err != nil {
		return apperrors.Internal("failed to rotate token").WithCause(err)
	}
	audit.Log(ctx, audit.Event{
		Type:    audit.EventTokenRotated,
		Details: map[string]interface{}{"fingerprint": util.HashToken(token)[:12]},
	})
	return nil
}

type Stats struct {
	Queue        *queue.Stats `json:"queue"`
	Delivered    int          `json:"delivered"`
	DeadLettered int          `json:"deadLettered"`
}

func (s *AdminService) GetStats(ctx context.Context) (*Stats, error) {
	qs, err := s.queue.Stats(ctx)
	if err != nil {
		return nil, err
	}
	delivered, err := s.logs.CountByStatus(ctx, model.DeliveryStatusSent)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	dead, err := s.logs.CountByStatus(ctx, model.DeliveryStatusDeadLettered)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return &Stats{Queue: qs, Delivered: delivered, DeadLettered: dead}, nil
}

func (s *AdminService) DeadLetters(ctx context.Context, limit int) ([]queue.Job, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.queue.DeadLetters(ctx, int64(limit))
}

func (s *AdminService) DeliveryHistory(ctx context.Context, phone string, limit, offset int) ([]model.OutboundLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	logs, err := s.logs.FindByRecipient(ctx, util.WaID(phone), limit, offset)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return logs, nil
}
