package whatsapp

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewButtons(t *testing.T) {
	t.Run("builds reply buttons", func(t *testing.T) {
		m := NewButtons("1555", "Pick one", []Button{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}})
		require.NotNil(t, m.Interactive)
		assert.Equal(t, "button", m.Interactive.Type)
		assert.Len(t, m.Interactive.Action.Buttons, 2)
		assert.Equal(t, "a", m.Interactive.Action.Buttons[0].Reply.ID)
	})

	t.Run("falls back to list above three buttons", func(t *testing.T) {
		m := NewButtons("1555", "Pick one", []Button{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}})
		assert.Equal(t, "list", m.Interactive.Type)
		assert.Len(t, m.Interactive.Action.Sections[0].Rows, 4)
	})

	t.Run("truncates long titles", func(t *testing.T) {
		m := NewButtons("1555", "Pick", []Button{{ID: "a", Title: strings.Repeat("x", 40)}})
		assert.Equal(t, maxButtonTitle, len([]rune(m.Interactive.Action.Buttons[0].Reply.Title)))
	})
}

func TestNewList(t *testing.T) {
	t.Run("caps rows across sections", func(t *testing.T) {
		var rows []Row
		for i := 0; i < 8; i++ {
			rows = append(rows, Row{ID: "r", Title: "row"})
		}
		m := NewList("1555", "Choose", "Open", []Section{{Rows: rows}, {Rows: rows}})

		total := 0
		for _, s := range m.Interactive.Action.Sections {
			total += len(s.Rows)
		}
		assert.Equal(t, MaxListRows, total)
	})
}

func TestNewTemplate(t *testing.T) {
	m := NewTemplate("1555", "new_order_alert", "es", "ORD-1", "Maize")
	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	tpl := decoded["template"].(map[string]any)
	assert.Equal(t, "new_order_alert", tpl["name"])
	assert.Equal(t, "es", tpl["language"].(map[string]any)["code"])

	params := tpl["components"].([]any)[0].(map[string]any)["parameters"].([]any)
	require.Len(t, params, 2)
	assert.Equal(t, "ORD-1", params[0].(map[string]any)["text"])
	assert.Equal(t, "Maize", params[1].(map[string]any)["text"])
}

func TestFirstMessage(t *testing.T) {
	t.Run("extracts message and profile", func(t *testing.T) {
		body := `{"object":"whatsapp_business_account","entry":[{"id":"1","changes":[{"field":"messages","value":{
			"messaging_product":"whatsapp","metadata":{"phone_number_id":"123"},
			"contacts":[{"wa_id":"15550001111","profile":{"name":"Ana"}}],
			"messages":[{"from":"15550001111","id":"wamid.X","timestamp":"1700000000","type":"interactive",
				"interactive":{"type":"list_reply","list_reply":{"id":"menu:upload","title":"Sell"}}}]}}]}]}`

		var p WebhookPayload
		require.NoError(t, json.Unmarshal([]byte(body), &p))

		msg, name, ok := p.FirstMessage()
		require.True(t, ok)
		assert.Equal(t, "wamid.X", msg.ID)
		assert.Equal(t, "Ana", name)
		assert.Equal(t, "menu:upload", msg.Interactive.ListReply.ID)
	})

	t.Run("status only payload has no message", func(t *testing.T) {
		body := `{"entry":[{"changes":[{"value":{"statuses":[{"id":"wamid.Y","status":"delivered","recipient_id":"1555"}]}}]}]}`

		var p WebhookPayload
		require.NoError(t, json.Unmarshal([]byte(body), &p))

		_, _, ok := p.FirstMessage()
		assert.False(t, ok)
		assert.Len(t, p.Statuses(), 1)
	})
}
