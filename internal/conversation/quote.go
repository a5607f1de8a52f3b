package conversation

import (
	"strings"

	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/whatsapp"
)

// requestButton handles req:<id>, req:quote:<id> and req:ack:<id>.
func (e *Engine) requestButton(t *Turn, arg string) error {
	if !e.requireRole(t, model.AccountTypeSeller) {
		return nil
	}
	action, id, ok := strings.Cut(arg, ":")
	if !ok {
		return e.showRequest(t, arg)
	}

	h, err := e.Market.GetHarvestRequest(t.ctx, id)
	if err != nil {
		return apperrors.Business("get harvest request", err)
	}
	if h == nil || h.Status != "open" {
		t.Say("request.not_found")
		return nil
	}

	switch action {
	case "quote":
		return e.begin(t, seqQuote, map[string]any{
			"quote_request_id":  h.ID,
			"quote_request_ref": h.Reference,
		})
	case "ack":
		if err := e.Market.AcknowledgeHarvestRequest(t.ctx, t.User().ID, h.ID); err != nil {
			return apperrors.Business("acknowledge harvest request", err)
		}
		t.Say("request.acknowledged")
		e.showMenu(t)
		return nil
	}
	return e.stale(t)
}

func (e *Engine) showRequest(t *Turn, id string) error {
	h, err := e.Market.GetHarvestRequest(t.ctx, id)
	if err != nil {
		return apperrors.Business("get harvest request", err)
	}
	if h == nil || h.Status != "open" {
		t.Say("request.not_found")
		return nil
	}

	neededBy, notes := "-", "-"
	if h.NeededBy != nil {
		neededBy = h.NeededBy.Format(dateLayout)
	}
	if h.Notes != nil && *h.Notes != "" {
		notes = *h.Notes
	}
	body := t.T("request.detail", h.Reference, h.Crop, formatNumber(h.Quantity), h.Unit, neededBy, notes)
	t.Buttons(body, []whatsapp.Button{
		{ID: "req:quote:" + h.ID, Title: t.T("request.quote")},
		{ID: "req:ack:" + h.ID, Title: t.T("request.ack")},
		{ID: "menu:" + actRequests, Title: t.T("menu.requests")},
	})
	return nil
}

func (e *Engine) completeQuote(t *Turn) error {
	u := t.User()
	if u == nil {
		return apperrors.MissingRequired("user")
	}
	requestID := t.str("quote_request_id")
	if requestID == "" {
		if err := t.Reset(); err != nil {
			return err
		}
		t.Say("quote.pick_request")
		return e.showPage(t, listRequests, 0)
	}
	price, _ := t.num("quote_price")
	quantity, _ := t.num("quote_quantity")

	q, err := e.Market.CreateQuote(t.ctx, u.ID, model.QuoteInput{
		RequestID:    requestID,
		Price:        price,
		Currency:     t.str("quote_currency"),
		Quantity:     quantity,
		DeliveryDate: t.date("quote_delivery"),
		Notes:        t.optional("quote_notes"),
	})
	if err != nil {
		return apperrors.Business("create quote", err)
	}
	if err := t.Finish(); err != nil {
		return err
	}
	t.Say("quote.created", formatNumber(q.Quantity), formatNumber(q.Price), q.Currency)
	e.showMenu(t)
	return nil
}
