package conversation

import (
	"strings"

	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/session"
)

// Button ids outside the prefix families.
const (
	buttonSkip       = "skip"
	buttonPhotosDone = "photos:done"
)

// escapes work in every step, including strict ones.
var escapes = map[string]func(e *Engine, t *Turn) error{
	"menu":   (*Engine).cmdMenu,
	"cancel": (*Engine).cmdCancel,
	"undo":   (*Engine).cmdUndo,
	"back":   (*Engine).cmdUndo,
	"stop":   (*Engine).cmdStop,
	"start":  (*Engine).cmdStart,
	"unlock": (*Engine).startUnlock,
}

// commands are recognized only while resting in the menu or in a
// non-strict step.
var commands = map[string]func(e *Engine, t *Turn) error{
	"login":    (*Engine).startLogin,
	"signup":   (*Engine).startSignup,
	"upload":   (*Engine).startProduct,
	"lock":     (*Engine).cmdLock,
	"logout":   (*Engine).cmdLogout,
	"help":     (*Engine).cmdHelp,
	"how":      (*Engine).cmdHelp,
	"language": (*Engine).showLanguages,
	"idioma":   (*Engine).showLanguages,
	"hi":       (*Engine).cmdMenu,
	"hello":    (*Engine).cmdMenu,
	"hola":     (*Engine).cmdMenu,
}

func (e *Engine) routeText(t *Turn) error {
	cmd := t.Ev.command()
	if fn, ok := escapes[cmd]; ok {
		return fn(e, t)
	}

	strict := t.S.Flow != model.FlowMenu && e.strict(t.S.Flow)
	if !strict {
		if fn, ok := commands[cmd]; ok {
			return fn(e, t)
		}
		if t.User() != nil {
			handled, err := e.shortcut(t)
			if err != nil || handled {
				return err
			}
		}
	}
	return e.stepText(t, t.Ev.Text)
}

func (e *Engine) routeButton(t *Turn) error {
	id := t.Ev.ButtonID
	switch id {
	case buttonSkip:
		if _, ok := steps[t.S.Flow]; ok {
			return e.stepText(t, "skip")
		}
		return e.stale(t)
	case buttonPhotosDone:
		if t.S.Flow == model.FlowProductPhotos {
			return e.stepText(t, "done")
		}
		return e.stale(t)
	}

	prefix, arg, _ := strings.Cut(id, ":")
	if st, ok := steps[t.S.Flow]; ok && st.picker != "" && st.picker == prefix {
		return e.stepText(t, arg)
	}

	switch prefix {
	case "menu":
		return e.menuAction(t, arg)
	case "page":
		dir, list, _ := strings.Cut(arg, ":")
		return e.turnPage(t, list, dir == "next")
	case "req":
		return e.requestButton(t, arg)
	case "order":
		return e.showOrder(t, arg)
	case "oa":
		action, orderID, _ := strings.Cut(arg, ":")
		return e.orderAction(t, action, orderID)
	case "prod":
		return e.showProduct(t, arg)
	case "mkt":
		return e.showMarketProduct(t, arg)
	case "cart":
		action, productID, _ := strings.Cut(arg, ":")
		if action == "add" {
			return e.startCartAdd(t, productID)
		}
		return e.showCart(t)
	case "txn":
		return e.showTransaction(t, arg)
	case "faq":
		return e.faqAnswer(t, arg)
	case "lang":
		return e.setLanguage(t, arg)
	}
	return e.stale(t)
}

// stale answers a selection that no longer matches the conversation and
// repeats the current question.
func (e *Engine) stale(t *Turn) error {
	e.reject(t, "stale.button")
	return nil
}

func (e *Engine) routeImage(t *Turn) error {
	st, ok := steps[t.S.Flow]
	if !ok || st.image == nil {
		t.Say("image.unexpected")
		return nil
	}
	return st.image(e, t)
}

func (e *Engine) cmdMenu(t *Turn) error {
	if t.S.Flow != model.FlowMenu {
		if err := t.Reset(); err != nil {
			return err
		}
	}
	e.showMenu(t)
	return nil
}

func (e *Engine) cmdCancel(t *Turn) error {
	if err := t.Reset(); err != nil {
		return err
	}
	t.Say("cancelled")
	e.showMenu(t)
	return nil
}

// cmdUndo restores the one-level snapshot and asks the restored step's
// question again.
func (e *Engine) cmdUndo(t *Turn) error {
	p, ok := session.UndoPatch(t.S)
	if !ok {
		t.Say("undo.none")
		return nil
	}
	if err := t.set(p); err != nil {
		return err
	}
	t.Say("undo.done")
	e.prompt(t)
	return nil
}

func (e *Engine) cmdStop(t *Turn) error {
	if err := e.Contacts.OptOut(t.ctx, t.Phone); err != nil {
		return err
	}
	t.Say("stop.done")
	return nil
}

func (e *Engine) cmdStart(t *Turn) error {
	if err := e.Contacts.OptIn(t.ctx, t.Phone); err != nil {
		return err
	}
	t.Say("start.done")
	return nil
}

func (e *Engine) cmdHelp(t *Turn) error {
	t.Say("help")
	return nil
}
