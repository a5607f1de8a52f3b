package conversation

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/farmgate/whatsapp-engine/internal/i18n"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/session"
	"github.com/farmgate/whatsapp-engine/internal/util"
	"github.com/farmgate/whatsapp-engine/internal/whatsapp"
)

// Menu actions, addressed by menu:<action> buttons.
const (
	actSignup       = "signup"
	actLogin        = "login"
	actFAQ          = "faq"
	actLanguage     = "lang"
	actProduct      = "product"
	actProducts     = "products"
	actRequests     = "requests"
	actOrders       = "orders"
	actTransactions = "transactions"
	actID           = "id"
	actHarvest      = "harvest"
	actMarket       = "market"
	actCart         = "cart"
)

var (
	guestMenu  = []string{actSignup, actLogin, actFAQ}
	sellerMenu = []string{actProduct, actProducts, actRequests, actOrders, actTransactions, actMarket, actID, actFAQ, actLanguage}
	buyerMenu  = []string{actHarvest, actMarket, actCart, actTransactions, actID, actFAQ, actLanguage}
)

func menuButtons(t *Turn, actions []string) []whatsapp.Button {
	out := make([]whatsapp.Button, 0, len(actions))
	for _, a := range actions {
		out = append(out, whatsapp.Button{ID: "menu:" + a, Title: t.T("menu." + a)})
	}
	return out
}

func (e *Engine) showMenu(t *Turn) {
	u := t.User()
	if u == nil {
		t.Buttons(t.T("menu.guest"), menuButtons(t, guestMenu))
		return
	}
	actions := buyerMenu
	if u.AccountType == model.AccountTypeSeller {
		actions = sellerMenu
	}
	t.List(t.T("menu.user", firstName(u.Name)), menuButtons(t, actions))
}

func firstName(name string) string {
	if f := strings.Fields(name); len(f) > 0 {
		return f[0]
	}
	return name
}

func (e *Engine) menuAction(t *Turn, action string) error {
	switch action {
	case actSignup:
		return e.startSignup(t)
	case actLogin:
		return e.startLogin(t)
	case actFAQ:
		return e.showFAQ(t)
	case actLanguage:
		return e.showLanguages(t)
	case actProduct:
		return e.startProduct(t)
	case actProducts:
		return e.showPage(t, listProducts, 0)
	case actRequests:
		return e.showPage(t, listRequests, 0)
	case actOrders:
		return e.showPage(t, listOrders, 0)
	case actTransactions:
		return e.showPage(t, listTransactions, 0)
	case actMarket:
		return e.showPage(t, listMarket, 0)
	case actHarvest:
		return e.startHarvest(t)
	case actCart:
		return e.showCart(t)
	case actID:
		return e.startIDDocument(t)
	}
	return e.stale(t)
}

// menuText answers free text while resting in the menu. The assistant gets
// a chance to answer questions; anything it cannot answer shows the menu.
func (e *Engine) menuText(t *Turn) error {
	question := strings.TrimSpace(t.Ev.Text)
	if question == "" {
		e.showMenu(t)
		return nil
	}

	ctx, cancel := context.WithTimeout(t.ctx, e.opts.AITimeout)
	defer cancel()

	answer, err := e.AI.Answer(ctx, question, t.S.Locale)
	if err != nil {
		log.Warn().Err(err).Str("phone", util.MaskPhone(t.Phone)).Msg("assistant answer failed")
	}
	if err != nil || strings.TrimSpace(answer) == "" {
		e.showMenu(t)
		return nil
	}
	t.Text(answer)
	t.Say("menu.hint")
	return nil
}

// requireUser reports whether the turn has a bound user, telling guests to
// sign up otherwise.
func (e *Engine) requireUser(t *Turn) bool {
	if t.User() != nil {
		return true
	}
	t.Say("auth.required")
	e.showMenu(t)
	return false
}

func (e *Engine) requireRole(t *Turn, role model.AccountType) bool {
	if !e.requireUser(t) {
		return false
	}
	if t.User().AccountType == role {
		return true
	}
	t.Say("role." + string(role))
	e.showMenu(t)
	return false
}

var faqTopics = []string{"fees", "payments", "shipping", "account"}

func (e *Engine) showFAQ(t *Turn) error {
	rows := make([]whatsapp.Button, 0, len(faqTopics))
	for _, topic := range faqTopics {
		rows = append(rows, whatsapp.Button{ID: "faq:" + topic, Title: t.T("faq." + topic + ".title")})
	}
	t.List(t.T("faq.title"), rows)
	return nil
}

func (e *Engine) faqAnswer(t *Turn, topic string) error {
	for _, known := range faqTopics {
		if known == topic {
			t.Say("faq." + topic + ".answer")
			t.Say("menu.hint")
			return nil
		}
	}
	return e.stale(t)
}

func (e *Engine) showLanguages(t *Turn) error {
	t.Buttons(t.T("lang.title"), choices(t, "lang", languages))
	return nil
}

func (e *Engine) setLanguage(t *Turn, locale string) error {
	if !i18n.Supported(locale) {
		return e.stale(t)
	}
	if err := t.set(session.Patch{Locale: &locale}); err != nil {
		return err
	}
	if err := e.Contacts.SetLocale(t.ctx, t.Phone, locale); err != nil {
		return err
	}
	t.Say("lang.set")
	e.showMenu(t)
	return nil
}
