package session

import (
	"context"
	"encoding/json"
	"reflect"
	"time"

	"github.com/farmgate/whatsapp-engine/internal/model"
)

// PrevKey holds the one-level undo snapshot inside Session.Data.
const PrevKey = "_prev"

// Store is the per-phone session contract shared by every backend.
type Store interface {
	// Get returns the current session, creating a fresh one when absent or expired.
	Get(ctx context.Context, phone string) model.Session
	// Set merges the patch into the current session and persists it.
	Set(ctx context.Context, phone string, patch Patch) (model.Session, error)
	Clear(ctx context.Context, phone string) error
}

// Patch is a partial session update. Data keys are merged shallowly and a nil
// value removes the key.
type Patch struct {
	Flow      *model.Flow
	Data      map[string]any
	User      *model.SessionUser
	ClearUser bool
	Locale    *string

	// ReplaceData discards existing data before merging Data.
	ReplaceData bool
	// SkipSnapshot leaves the undo snapshot untouched.
	SkipSnapshot bool
}

func FlowPtr(f model.Flow) *model.Flow {
	return &f
}

// Apply merges p into cur. Both backends go through Apply so merge and
// snapshot behavior cannot drift between them.
func Apply(cur model.Session, p Patch, now time.Time) model.Session {
	oldData := withoutPrev(cur.Data)

	var newData map[string]any
	if p.ReplaceData {
		newData = map[string]any{}
	} else {
		newData = withoutPrev(cur.Data)
	}
	for k, v := range normalize(p.Data) {
		if k == PrevKey {
			continue
		}
		if v == nil {
			delete(newData, k)
			continue
		}
		newData[k] = v
	}

	next := cur
	if p.Flow != nil {
		next.Flow = *p.Flow
	}
	if !next.Flow.IsKnown() {
		next.Flow = model.FlowMenu
	}

	changed := next.Flow != cur.Flow || !reflect.DeepEqual(newData, oldData)
	prev, hasPrev := cur.Data[PrevKey]
	switch {
	case changed && !p.SkipSnapshot:
		newData[PrevKey] = map[string]any{
			"flow": string(cur.Flow),
			"data": oldData,
		}
	case hasPrev && !(changed && p.ReplaceData):
		newData[PrevKey] = prev
	}
	next.Data = newData

	if p.ClearUser {
		next.User = nil
	}
	if p.User != nil {
		u := *p.User
		next.User = &u
	}
	if p.Locale != nil {
		next.Locale = *p.Locale
	}
	next.UpdatedAt = now
	return next
}

// Previous returns the undo snapshot stored in the session, if any.
func Previous(s model.Session) (model.Flow, map[string]any, bool) {
	raw, ok := s.Data[PrevKey].(map[string]any)
	if !ok {
		return "", nil, false
	}
	flow, _ := raw["flow"].(string)
	data, _ := raw["data"].(map[string]any)
	if data == nil {
		data = map[string]any{}
	}
	return model.Flow(flow), data, true
}

// UndoPatch restores the snapshot and drops it, so a second undo finds nothing.
func UndoPatch(s model.Session) (Patch, bool) {
	flow, data, ok := Previous(s)
	if !ok {
		return Patch{}, false
	}
	return Patch{
		Flow:         FlowPtr(flow),
		Data:         data,
		ReplaceData:  true,
		SkipSnapshot: true,
	}, true
}

func withoutPrev(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if k == PrevKey {
			continue
		}
		out[k] = v
	}
	return out
}

// normalize round-trips values through JSON so in-memory sessions hold the
// same types the durable store would decode.
func normalize(data map[string]any) map[string]any {
	if len(data) == 0 {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return data
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return data
	}
	return out
}

func sanitize(s model.Session, now time.Time) model.Session {
	if s.Data == nil {
		s.Data = map[string]any{}
	}
	if !s.Flow.IsKnown() {
		s.Flow = model.FlowMenu
	}
	if s.Locale == "" {
		s.Locale = model.LocaleEnglish
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now
	}
	return s
}
