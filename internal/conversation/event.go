package conversation

import (
	"strings"

	"github.com/farmgate/whatsapp-engine/internal/whatsapp"
)

type EventKind int

const (
	EventUnsupported EventKind = iota
	EventText
	EventButton
	EventImage
)

func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventButton:
		return "button"
	case EventImage:
		return "image"
	}
	return "unsupported"
}

// Event is one inbound signal: free text, a button or list selection, or media.
// Documents arrive as EventImage and steps check MimeType.
type Event struct {
	Kind      EventKind
	MessageID string
	Text      string
	ButtonID  string
	MediaID   string
	MimeType  string
	Caption   string
}

// EventFromMessage converts a webhook message into an Event.
func EventFromMessage(m whatsapp.InboundMessage) Event {
	ev := Event{MessageID: m.ID}
	switch {
	case m.Text != nil:
		ev.Kind = EventText
		ev.Text = strings.TrimSpace(m.Text.Body)
	case m.Interactive != nil && m.Interactive.ButtonReply != nil:
		ev.Kind = EventButton
		ev.ButtonID = m.Interactive.ButtonReply.ID
	case m.Interactive != nil && m.Interactive.ListReply != nil:
		ev.Kind = EventButton
		ev.ButtonID = m.Interactive.ListReply.ID
	case m.Button != nil:
		// Template quick replies carry their id in the payload.
		ev.Kind = EventButton
		ev.ButtonID = m.Button.Payload
	case m.Image != nil:
		ev.Kind = EventImage
		ev.MediaID = m.Image.ID
		ev.MimeType = m.Image.MimeType
		ev.Caption = m.Image.Caption
	case m.Document != nil:
		ev.Kind = EventImage
		ev.MediaID = m.Document.ID
		ev.MimeType = m.Document.MimeType
		ev.Caption = m.Document.Caption
	}
	return ev
}

// command returns the lower-cased text of a text event.
func (e Event) command() string {
	if e.Kind != EventText {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(e.Text))
}
