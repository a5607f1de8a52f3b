// Package conversation is the WhatsApp dialogue state machine. Each inbound
// event is routed to the handler for the session's current step; handlers
// validate input, cache it in session data, call the marketplace and queue
// replies.
package conversation

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/farmgate/whatsapp-engine/internal/ai"
	"github.com/farmgate/whatsapp-engine/internal/marketplace"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/otp"
	"github.com/farmgate/whatsapp-engine/internal/session"
	"github.com/farmgate/whatsapp-engine/internal/util"
	"github.com/farmgate/whatsapp-engine/internal/whatsapp"
)

type Sender interface {
	SendAll(ctx context.Context, msgs []whatsapp.Message) error
}

type OTPVerifier interface {
	Send(ctx context.Context, to otp.Destination) error
	Verify(ctx context.Context, to otp.Destination, code string) error
}

type SecurityGate interface {
	Lock(ctx context.Context, userID string, reason model.LockReason) error
	Unlock(ctx context.Context, userID, phone string) error
	Pair(ctx context.Context, userID, phone string) error
	IsPaired(ctx context.Context, userID, phone string) (bool, error)
	IsLocked(ctx context.Context, userID string) (bool, error)
}

type ContactBook interface {
	BindUser(ctx context.Context, phone string, userID *string) error
	SetLocale(ctx context.Context, phone, locale string) error
	OptOut(ctx context.Context, phone string) error
	OptIn(ctx context.Context, phone string) error
}

type MediaDownloader interface {
	DownloadMedia(ctx context.Context, mediaID string) (*whatsapp.Media, error)
}

type MediaStore interface {
	Put(ctx context.Context, prefix, owner string, data []byte, contentType string) (string, error)
}

type Deps struct {
	Sessions   session.Store
	Sender     Sender
	Market     marketplace.Facade
	AI         ai.Extractor
	OTP        OTPVerifier
	Security   SecurityGate
	Contacts   ContactBook
	Downloader MediaDownloader
	// Media is optional. Without it photos are kept as WhatsApp media ids.
	Media MediaStore
}

type Options struct {
	// ShortcutThreshold is the minimum number of recognized fields before a
	// free-text message jumps into a structured flow.
	ShortcutThreshold int
	// StrictFlows consume free text without trying the AI shortcut. Nil means
	// every step except the menu.
	StrictFlows map[model.Flow]bool
	PageSize    int
	MaxPhotos   int
	AITimeout   time.Duration
}

func (o *Options) defaults() {
	if o.ShortcutThreshold <= 0 {
		o.ShortcutThreshold = 2
	}
	if o.PageSize <= 0 || o.PageSize > whatsapp.MaxListRows-2 {
		o.PageSize = whatsapp.MaxListRows - 2
	}
	if o.MaxPhotos <= 0 {
		o.MaxPhotos = 5
	}
	if o.AITimeout <= 0 {
		o.AITimeout = 8 * time.Second
	}
}

type Engine struct {
	Deps
	opts Options
}

func New(deps Deps, opts Options) *Engine {
	opts.defaults()
	if deps.AI == nil {
		deps.AI = ai.Noop{}
	}
	return &Engine{Deps: deps, opts: opts}
}

func (e *Engine) strict(f model.Flow) bool {
	if e.opts.StrictFlows == nil {
		return f != model.FlowMenu
	}
	return e.opts.StrictFlows[f]
}

func (e *Engine) newTurn(ctx context.Context, phone string, s model.Session, ev Event) *Turn {
	return &Turn{
		ctx:   ctx,
		e:     e,
		Phone: phone,
		to:    util.WaID(phone),
		S:     s,
		Ev:    ev,
	}
}

// run executes fn and flushes queued replies. A failing handler is logged,
// the user gets a generic retry message and the session returns to the menu.
func (e *Engine) run(t *Turn, fn func(*Turn) error) error {
	if err := fn(t); err != nil {
		log.Error().
			Err(err).
			Str("phone", util.MaskPhone(t.Phone)).
			Str("flow", string(t.S.Flow)).
			Str("event", t.Ev.Kind.String()).
			Str("messageId", t.Ev.MessageID).
			Msg("conversation step failed")

		t.out = t.out[:0]
		t.Say("error.generic")
		if rerr := t.Reset(); rerr != nil {
			log.Error().Err(rerr).Str("phone", util.MaskPhone(t.Phone)).Msg("failed to reset session")
		}
		e.showMenu(t)
	}
	return e.Sender.SendAll(t.ctx, t.out)
}

// Handle routes one inbound event for phone. s is the session as loaded by
// the dispatcher, after identity hydration.
func (e *Engine) Handle(ctx context.Context, phone string, s model.Session, ev Event) error {
	t := e.newTurn(ctx, phone, s, ev)
	return e.run(t, e.route)
}

func (e *Engine) route(t *Turn) error {
	switch t.Ev.Kind {
	case EventButton:
		return e.routeButton(t)
	case EventImage:
		return e.routeImage(t)
	case EventText:
		return e.routeText(t)
	default:
		t.Say("unsupported")
		return nil
	}
}

// LockNotice answers an event from a locked account.
func (e *Engine) LockNotice(ctx context.Context, phone string, s model.Session) error {
	t := e.newTurn(ctx, phone, s, Event{})
	t.Say("lock.notice")
	return e.Sender.SendAll(ctx, t.out)
}

// AllowedWhileLocked reports whether ev may pass the lock gate: the literal
// unlock command, or text typed into the unlock challenge in progress. Inside
// the challenge only cancel and menu are honoured as commands; buttons and
// images never pass.
func AllowedWhileLocked(s model.Session, ev Event) bool {
	cmd := ev.command()
	if cmd == "unlock" {
		return true
	}
	if s.Flow != model.FlowUnlockOTP || ev.Kind != EventText {
		return false
	}
	switch cmd {
	case "cancel", "menu":
		return true
	}
	_, escape := escapes[cmd]
	_, command := commands[cmd]
	return !escape && !command
}

// StartVerification begins OTP re-verification for a hydrated account that is
// not verified yet.
func (e *Engine) StartVerification(ctx context.Context, phone string, s model.Session, acct *model.Account) error {
	t := e.newTurn(ctx, phone, s, Event{})
	return e.run(t, func(t *Turn) error {
		return e.beginVerify(t, acct.ID, acct.Email, "")
	})
}
