package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/farmgate/whatsapp-engine/internal/whatsapp"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw       string
		allowZero bool
		want      float64
		ok        bool
	}{
		{"25", false, 25, true},
		{"12.5 kg", false, 12.5, true},
		{"KES 1,500", false, 1500, true},
		{"-3", false, 3, true},
		{"0", false, 0, false},
		{"0", true, 0, true},
		{"abc", false, 0, false},
		{"", true, 0, false},
		{"1.2.3", false, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := parseNumber(tc.raw, tc.allowZero)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	d, ok := parseDate(" 2026-03-01 ")
	assert.True(t, ok)
	assert.Equal(t, "2026-03-01", d.Format(dateLayout))

	for _, raw := range []string{"2026-3-1", "01/03/2026", "2026-02-30", "tomorrow", ""} {
		_, ok := parseDate(raw)
		assert.False(t, ok, raw)
	}
}

func TestMatchOption(t *testing.T) {
	tests := []struct {
		name string
		opts []option
		raw  string
		want string
		ok   bool
	}{
		{"value", units, "KG", "kg", true},
		{"alias", units, "kilos", "kg", true},
		{"english label", categories, "Vegetables", "vegetables", true},
		{"spanish label", categories, "verduras", "vegetables", true},
		{"literal label", countries, "Kenya", "KE", true},
		{"unknown", categories, "furniture", "", false},
		{"blank", categories, "  ", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := matchOption(tc.opts, tc.raw)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEventFromMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  whatsapp.InboundMessage
		want Event
	}{
		{
			name: "text",
			msg:  whatsapp.InboundMessage{ID: "wamid.1", Text: &whatsapp.InboundText{Body: "  hello "}},
			want: Event{Kind: EventText, MessageID: "wamid.1", Text: "hello"},
		},
		{
			name: "button reply",
			msg: whatsapp.InboundMessage{ID: "wamid.2", Interactive: &whatsapp.InboundInteractive{
				ButtonReply: &whatsapp.ReplyTitle{ID: "menu:orders"},
			}},
			want: Event{Kind: EventButton, MessageID: "wamid.2", ButtonID: "menu:orders"},
		},
		{
			name: "list reply",
			msg: whatsapp.InboundMessage{ID: "wamid.3", Interactive: &whatsapp.InboundInteractive{
				ListReply: &whatsapp.ListReply{ID: "req:r-1"},
			}},
			want: Event{Kind: EventButton, MessageID: "wamid.3", ButtonID: "req:r-1"},
		},
		{
			name: "template quick reply",
			msg:  whatsapp.InboundMessage{ID: "wamid.4", Button: &whatsapp.InboundButton{Payload: "order:o-1"}},
			want: Event{Kind: EventButton, MessageID: "wamid.4", ButtonID: "order:o-1"},
		},
		{
			name: "image",
			msg:  whatsapp.InboundMessage{ID: "wamid.5", Image: &whatsapp.InboundMedia{ID: "m-1", MimeType: "image/jpeg"}},
			want: Event{Kind: EventImage, MessageID: "wamid.5", MediaID: "m-1", MimeType: "image/jpeg"},
		},
		{
			name: "location",
			msg:  whatsapp.InboundMessage{ID: "wamid.6"},
			want: Event{Kind: EventUnsupported, MessageID: "wamid.6"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EventFromMessage(tc.msg))
		})
	}
}
