package model

import (
	"encoding/json"
	"time"
)

// OutboundLog records the final outcome of an outbound queue job.
type OutboundLog struct {
	ID           string          `db:"id" json:"id"`
	JobID        string          `db:"job_id" json:"jobId"`
	Recipient    string          `db:"recipient" json:"recipient"`
	Kind         string          `db:"kind" json:"kind"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       DeliveryStatus  `db:"status" json:"status"`
	Attempts     int             `db:"attempts" json:"attempts"`
	ErrorMessage *string         `db:"error_message" json:"errorMessage,omitempty"`
	ProviderID   *string         `db:"provider_message_id" json:"providerMessageId,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
}

type CreateOutboundLogParams struct {
	JobID        string
	Recipient    string
	Kind         string
	Payload      json.RawMessage
	Status       DeliveryStatus
	Attempts     int
	ErrorMessage *string
	ProviderID   *string
}
