package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/farmgate/whatsapp-engine/internal/queue"
	"github.com/farmgate/whatsapp-engine/internal/whatsapp"
)

// Outbox accepts outbound API calls for asynchronous delivery.
type Outbox interface {
	Enqueue(ctx context.Context, payload json.RawMessage, meta map[string]string) (*queue.Job, error)
}

// Messenger is the only path from the engine to the Graph API: every reply
// becomes a queue job.
type Messenger struct {
	outbox Outbox
}

func NewMessenger(outbox Outbox) *Messenger {
	return &Messenger{outbox: outbox}
}

func (m *Messenger) Send(ctx context.Context, msg whatsapp.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	meta := map[string]string{"to": msg.To, "kind": msg.Type}
	if msg.Template != nil {
		meta["template"] = msg.Template.Name
	}
	if _, err := m.outbox.Enqueue(ctx, payload, meta); err != nil {
		return fmt.Errorf("enqueue message: %w", err)
	}
	return nil
}

// SendAll enqueues msgs in order and stops at the first failure.
func (m *Messenger) SendAll(ctx context.Context, msgs []whatsapp.Message) error {
	for _, msg := range msgs {
		if err := m.Send(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}
