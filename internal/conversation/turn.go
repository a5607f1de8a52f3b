package conversation

import (
	"context"

	"github.com/farmgate/whatsapp-engine/internal/i18n"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/session"
	"github.com/farmgate/whatsapp-engine/internal/whatsapp"
)

// Turn is the handling of one inbound event: the session as it evolves
// through the turn and the replies queued so far.
type Turn struct {
	ctx   context.Context
	e     *Engine
	Phone string
	to    string
	S     model.Session
	Ev    Event
	out   []whatsapp.Message
}

func (t *Turn) T(key string, args ...any) string {
	return i18n.T(t.S.Locale, key, args...)
}

// Say queues a localized text reply.
func (t *Turn) Say(key string, args ...any) {
	t.Text(t.T(key, args...))
}

func (t *Turn) Text(body string) {
	t.out = append(t.out, whatsapp.NewText(t.to, body))
}

func (t *Turn) Buttons(body string, buttons []whatsapp.Button) {
	t.out = append(t.out, whatsapp.NewButtons(t.to, body, buttons))
}

func (t *Turn) List(body string, rows []whatsapp.Button) {
	t.out = append(t.out, whatsapp.NewList(t.to, body, t.T("list.button"), []whatsapp.Section{{Rows: whatsapp.Rows(rows)}}))
}

func (t *Turn) set(p session.Patch) error {
	s, err := t.e.Sessions.Set(t.ctx, t.Phone, p)
	if err != nil {
		return err
	}
	t.S = s
	return nil
}

// Goto moves to flow and merges data into the session.
func (t *Turn) Goto(flow model.Flow, data map[string]any) error {
	return t.set(session.Patch{Flow: session.FlowPtr(flow), Data: data})
}

// Start enters flow with data as the only session data.
func (t *Turn) Start(flow model.Flow, data map[string]any) error {
	return t.set(session.Patch{Flow: session.FlowPtr(flow), Data: data, ReplaceData: true})
}

// Merge stores data without changing the flow.
func (t *Turn) Merge(data map[string]any) error {
	return t.set(session.Patch{Data: data})
}

// Reset returns to the menu with empty data. The undo snapshot is kept so an
// abandoned flow can be resumed.
func (t *Turn) Reset() error {
	return t.set(session.Patch{Flow: session.FlowPtr(model.FlowMenu), ReplaceData: true})
}

// Finish returns to the menu after a completed operation and drops the undo
// snapshot, so the operation cannot be replayed.
func (t *Turn) Finish() error {
	return t.set(session.Patch{
		Flow:         session.FlowPtr(model.FlowMenu),
		ReplaceData:  true,
		SkipSnapshot: true,
	})
}

func (t *Turn) User() *model.SessionUser {
	return t.S.User
}

func (t *Turn) str(key string) string {
	return fields(t.S.Data).str(key)
}

func (t *Turn) num(key string) (float64, bool) {
	return fields(t.S.Data).num(key)
}

func (t *Turn) has(key string) bool {
	return fields(t.S.Data).has(key)
}

// optional returns a pointer to the string stored at key, or nil.
func (t *Turn) optional(key string) *string {
	if !t.has(key) {
		return nil
	}
	v := t.str(key)
	return &v
}

func (t *Turn) stringList(key string) []string {
	raw, _ := t.S.Data[key].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
