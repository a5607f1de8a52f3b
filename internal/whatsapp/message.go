package whatsapp

import "unicode/utf8"

// Message is an outbound Cloud API message payload.
type Message struct {
	MessagingProduct string       `json:"messaging_product"`
	RecipientType    string       `json:"recipient_type,omitempty"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             *Text        `json:"text,omitempty"`
	Interactive      *Interactive `json:"interactive,omitempty"`
	Template         *Template    `json:"template,omitempty"`
	Image            *MediaRef    `json:"image,omitempty"`
}

type Text struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url,omitempty"`
}

type Interactive struct {
	Type   string             `json:"type"`
	Header *InteractiveHeader `json:"header,omitempty"`
	Body   InteractiveText    `json:"body"`
	Footer *InteractiveText   `json:"footer,omitempty"`
	Action InteractiveAction  `json:"action"`
}

type InteractiveHeader struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type InteractiveText struct {
	Text string `json:"text"`
}

type InteractiveAction struct {
	Button   string        `json:"button,omitempty"`
	Buttons  []ReplyButton `json:"buttons,omitempty"`
	Sections []Section     `json:"sections,omitempty"`
}

type ReplyButton struct {
	Type  string     `json:"type"`
	Reply ReplyTitle `json:"reply"`
}

type ReplyTitle struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Section struct {
	Title string `json:"title,omitempty"`
	Rows  []Row  `json:"rows"`
}

type Row struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type Template struct {
	Name       string              `json:"name"`
	Language   TemplateLanguage    `json:"language"`
	Components []TemplateComponent `json:"components,omitempty"`
}

type TemplateLanguage struct {
	Code string `json:"code"`
}

type TemplateComponent struct {
	Type       string              `json:"type"`
	Parameters []TemplateParameter `json:"parameters"`
}

type TemplateParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type MediaRef struct {
	ID      string `json:"id,omitempty"`
	Link    string `json:"link,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// Button is a reply button or list row offered to the user.
type Button struct {
	ID          string
	Title       string
	Description string
}

// Platform limits on interactive messages.
const (
	MaxReplyButtons     = 3
	MaxListRows         = 10
	maxButtonTitle      = 20
	maxRowTitle         = 24
	maxRowDescription   = 72
	maxListButtonLabel  = 20
	maxInteractiveBody  = 1024
	maxTextBody         = 4096
	messagingProduct    = "whatsapp"
	recipientIndividual = "individual"
)

func base(to, kind string) Message {
	return Message{
		MessagingProduct: messagingProduct,
		RecipientType:    recipientIndividual,
		To:               to,
		Type:             kind,
	}
}

func NewText(to, body string) Message {
	m := base(to, "text")
	m.Text = &Text{Body: truncate(body, maxTextBody)}
	return m
}

// NewButtons builds reply buttons, falling back to a list when there are more
// than three options.
func NewButtons(to, body string, buttons []Button) Message {
	if len(buttons) > MaxReplyButtons {
		return NewList(to, body, "Options", []Section{{Rows: Rows(buttons)}})
	}

	replies := make([]ReplyButton, 0, len(buttons))
	for _, b := range buttons {
		replies = append(replies, ReplyButton{
			Type:  "reply",
			Reply: ReplyTitle{ID: b.ID, Title: truncate(b.Title, maxButtonTitle)},
		})
	}

	m := base(to, "interactive")
	m.Interactive = &Interactive{
		Type:   "button",
		Body:   InteractiveText{Text: truncate(body, maxInteractiveBody)},
		Action: InteractiveAction{Buttons: replies},
	}
	return m
}

// NewList builds a list message. Rows beyond the platform limit are dropped.
func NewList(to, body, buttonLabel string, sections []Section) Message {
	remaining := MaxListRows
	trimmed := make([]Section, 0, len(sections))
	for _, s := range sections {
		if remaining == 0 {
			break
		}
		if len(s.Rows) > remaining {
			s.Rows = s.Rows[:remaining]
		}
		remaining -= len(s.Rows)
		for i := range s.Rows {
			s.Rows[i].Title = truncate(s.Rows[i].Title, maxRowTitle)
			s.Rows[i].Description = truncate(s.Rows[i].Description, maxRowDescription)
		}
		trimmed = append(trimmed, s)
	}

	m := base(to, "interactive")
	m.Interactive = &Interactive{
		Type: "list",
		Body: InteractiveText{Text: truncate(body, maxInteractiveBody)},
		Action: InteractiveAction{
			Button:   truncate(buttonLabel, maxListButtonLabel),
			Sections: trimmed,
		},
	}
	return m
}

// NewTemplate builds a template message with positional body parameters.
func NewTemplate(to, name, language string, params ...string) Message {
	m := base(to, "template")
	m.Template = &Template{
		Name:     name,
		Language: TemplateLanguage{Code: language},
	}
	if len(params) > 0 {
		parameters := make([]TemplateParameter, 0, len(params))
		for _, p := range params {
			parameters = append(parameters, TemplateParameter{Type: "text", Text: p})
		}
		m.Template.Components = []TemplateComponent{{Type: "body", Parameters: parameters}}
	}
	return m
}

func NewImage(to, link, caption string) Message {
	m := base(to, "image")
	m.Image = &MediaRef{Link: link, Caption: caption}
	return m
}

// Rows converts buttons into list rows.
func Rows(buttons []Button) []Row {
	out := make([]Row, 0, len(buttons))
	for _, b := range buttons {
		out = append(out, Row{ID: b.ID, Title: b.Title, Description: b.Description})
	}
	return out
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}
