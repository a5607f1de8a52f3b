package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/farmgate/whatsapp-engine/internal/audit"
	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/queue"
	"github.com/farmgate/whatsapp-engine/internal/repository"
	"github.com/farmgate/whatsapp-engine/internal/util"
	"github.com/farmgate/whatsapp-engine/internal/whatsapp"
)

const metaProviderMessageID = "providerMessageId"

type graphSender interface {
	Send(ctx context.Context, payload json.RawMessage) (*whatsapp.SendResponse, error)
}

// DeliveryHandler performs queued Graph API sends and records their final outcome.
type DeliveryHandler struct {
	client graphSender
	logs   repository.OutboundLogRepository
}

func NewDeliveryHandler(client graphSender, logs repository.OutboundLogRepository) *DeliveryHandler {
	return &DeliveryHandler{client: client, logs: logs}
}

func (h *DeliveryHandler) Process(ctx context.Context, job *queue.Job) error {
	resp, err := h.client.Send(ctx, job.Payload)
	if err != nil {
		event := log.Warn().
			Str("jobId", job.ID).
			Str("phone", util.MaskPhone(job.Meta["to"])).
			Str("kind", job.Meta["kind"]).
			Int("attempt", job.Attempts)
		if apiErr, ok := whatsapp.AsAPIError(err); ok {
			event = event.
				Int("status", apiErr.Status).
				Int("code", apiErr.Code).
				Int("subcode", apiErr.Subcode).
				Str("fbtraceId", apiErr.FBTraceID)
			if apiErr.TokenExpired() {
				event.Err(err).Msg("send rejected with expired token after refresh")
				return apperrors.UpstreamTokenExpired(err)
			}
		}
		event.Err(err).Msg("send failed")
		return apperrors.UpstreamSendFailed(err)
	}

	if id := resp.MessageID(); id != "" {
		if job.Meta == nil {
			job.Meta = map[string]string{}
		}
		job.Meta[metaProviderMessageID] = id
	}
	return nil
}

func (h *DeliveryHandler) Completed(ctx context.Context, job *queue.Job) {
	params := h.logParams(job, model.DeliveryStatusSent)
	if id := job.Meta[metaProviderMessageID]; id != "" {
		params.ProviderID = &id
	}
	if _, err := h.logs.Create(ctx, params); err != nil {
		log.Error().Err(err).Str("jobId", job.ID).Msg("failed to record delivery")
	}
}

func (h *DeliveryHandler) DeadLettered(ctx context.Context, job *queue.Job, cause error) {
	params := h.logParams(job, model.DeliveryStatusDeadLettered)
	msg := cause.Error()
	params.ErrorMessage = &msg
	if _, err := h.logs.Create(ctx, params); err != nil {
		log.Error().Err(err).Str("jobId", job.ID).Msg("failed to record dead letter")
	}

	audit.Log(ctx, audit.Event{
		Type:  audit.EventDeadLetter,
		Phone: util.MaskPhone(job.Meta["to"]),
		Details: map[string]interface{}{
			"jobId":    job.ID,
			"kind":     job.Meta["kind"],
			"attempts": job.Attempts,
			"code":     string(apperrors.GetCode(cause)),
		},
	})
}

func (h *DeliveryHandler) logParams(job *queue.Job, status model.DeliveryStatus) model.CreateOutboundLogParams {
	return model.CreateOutboundLogParams{
		JobID:     job.ID,
		Recipient: job.Meta["to"],
		Kind:      job.Meta["kind"],
		Payload:   job.Payload,
		Status:    status,
		Attempts:  job.Attempts,
	}
}
