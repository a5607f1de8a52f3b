package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/farmgate/whatsapp-engine/internal/conversation"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/session"
	"github.com/farmgate/whatsapp-engine/internal/util"
	"github.com/farmgate/whatsapp-engine/internal/whatsapp"
)

type messageClaimer interface {
	Claim(ctx context.Context, messageID string) bool
}

type contactTracker interface {
	TouchInbound(ctx context.Context, phone string, profileName *string) (*model.Contact, error)
	BindUser(ctx context.Context, phone string, userID *string) error
}

type accountLookup interface {
	FindAccountByPhone(ctx context.Context, phone string) (*model.Account, error)
}

type activityChecker interface {
	CheckActivity(ctx context.Context, userID string) (bool, error)
}

type conversationEngine interface {
	Handle(ctx context.Context, phone string, s model.Session, ev conversation.Event) error
	LockNotice(ctx context.Context, phone string, s model.Session) error
	StartVerification(ctx context.Context, phone string, s model.Session, acct *model.Account) error
}

// Dispatcher takes a verified webhook payload through dedupe, contact
// tracking, identity hydration and the lock gate before handing the message
// to the conversation engine.
type Dispatcher struct {
	dedupe   messageClaimer
	contacts contactTracker
	sessions session.Store
	accounts accountLookup
	security activityChecker
	engine   conversationEngine
}

func NewDispatcher(
	dedupe messageClaimer,
	contacts contactTracker,
	sessions session.Store,
	accounts accountLookup,
	security activityChecker,
	engine conversationEngine,
) *Dispatcher {
	return &Dispatcher{
		dedupe:   dedupe,
		contacts: contacts,
		sessions: sessions,
		accounts: accounts,
		security: security,
		engine:   engine,
	}
}

// Dispatch processes the first message in payload and returns the result
// label it was counted under.
func (d *Dispatcher) Dispatch(ctx context.Context, payload *whatsapp.WebhookPayload) (string, error) {
	result, err := d.dispatch(ctx, payload)
	CountWebhook(result)
	return result, err
}

func (d *Dispatcher) dispatch(ctx context.Context, payload *whatsapp.WebhookPayload) (string, error) {
	for _, st := range payload.Statuses() {
		if len(st.Errors) == 0 {
			continue
		}
		log.Warn().
			Str("messageId", st.ID).
			Str("status", st.Status).
			Int("code", st.Errors[0].Code).
			Str("title", st.Errors[0].Title).
			Msg("outbound message failed at provider")
	}

	msg, profileName, ok := payload.FirstMessage()
	if !ok {
		return ResultNoMessage, nil
	}

	phone := util.NormalizeE164(msg.From)
	if phone == "" {
		log.Warn().Str("messageId", msg.ID).Msg("inbound message without sender")
		return ResultNoMessage, nil
	}

	if !d.dedupe.Claim(ctx, msg.ID) {
		log.Debug().Str("messageId", msg.ID).Msg("duplicate delivery ignored")
		return ResultDuplicate, nil
	}

	var name *string
	if profileName != "" {
		name = &profileName
	}
	contact, err := d.contacts.TouchInbound(ctx, phone, name)
	if err != nil {
		log.Error().Err(err).Str("phone", util.MaskPhone(phone)).Msg("failed to record inbound contact")
	}

	sess := d.sessions.Get(ctx, phone)
	sess = d.restoreLocale(ctx, phone, sess, contact)

	// Hydrate only a session resting in the menu. The auth steps run with no
	// user bound until their code is accepted.
	if sess.User == nil && sess.Flow == model.FlowMenu {
		acct, err := d.accounts.FindAccountByPhone(ctx, phone)
		if err != nil {
			log.Error().Err(err).Str("phone", util.MaskPhone(phone)).Msg("account lookup failed")
		}
		if acct != nil {
			if !acct.Verified {
				if err := d.engine.StartVerification(ctx, phone, sess, acct); err != nil {
					return ResultError, err
				}
				return ResultVerify, nil
			}
			sess, err = d.sessions.Set(ctx, phone, session.Patch{User: acct.SessionUser(), SkipSnapshot: true})
			if err != nil {
				return ResultError, err
			}
			if err := d.contacts.BindUser(ctx, phone, &acct.ID); err != nil {
				log.Warn().Err(err).Str("userId", acct.ID).Msg("failed to bind contact")
			}
		}
	}

	ev := conversation.EventFromMessage(msg)

	if sess.User != nil {
		locked, err := d.security.CheckActivity(ctx, sess.User.ID)
		if err != nil {
			return ResultError, err
		}
		if locked && !conversation.AllowedWhileLocked(sess, ev) {
			if err := d.engine.LockNotice(ctx, phone, sess); err != nil {
				return ResultError, err
			}
			return ResultLocked, nil
		}
	}

	if err := d.engine.Handle(ctx, phone, sess, ev); err != nil {
		return ResultError, err
	}
	return ResultProcessed, nil
}

// restoreLocale applies the contact's saved language to a session that has
// not started anything yet, so a preference outlives session expiry.
func (d *Dispatcher) restoreLocale(ctx context.Context, phone string, sess model.Session, contact *model.Contact) model.Session {
	if contact == nil || contact.Locale == "" || contact.Locale == sess.Locale {
		return sess
	}
	if sess.Flow != model.FlowMenu || len(sess.Data) > 0 {
		return sess
	}
	locale := contact.Locale
	updated, err := d.sessions.Set(ctx, phone, session.Patch{Locale: &locale, SkipSnapshot: true})
	if err != nil {
		log.Warn().Err(err).Str("phone", util.MaskPhone(phone)).Msg("failed to restore locale")
		return sess
	}
	return updated
}
