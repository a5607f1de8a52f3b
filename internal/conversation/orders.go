package conversation

import (
	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/whatsapp"
)

// Order actions, addressed by oa:<action>:<order id> buttons.
const (
	orderAccept = "accept"
	orderReject = "reject"
	orderStatus = "status"
)

func (t *Turn) statusLabel(s model.OrderStatus) string {
	return t.T("status." + string(s))
}

// actionable reports whether an order in status s allows action.
func actionable(s model.OrderStatus, action string) bool {
	switch action {
	case orderAccept, orderReject:
		return s == model.OrderStatusPending
	case orderStatus:
		return s == model.OrderStatusAccepted || s == model.OrderStatusShipped
	}
	return false
}

func (e *Engine) findOrder(t *Turn, ref string) (*model.Order, error) {
	o, err := e.Market.GetOrder(t.ctx, t.User().ID, ref)
	if err != nil {
		return nil, apperrors.Business("get order", err)
	}
	return o, nil
}

func (e *Engine) showOrder(t *Turn, id string) error {
	if !e.requireRole(t, model.AccountTypeSeller) {
		return nil
	}
	o, err := e.findOrder(t, id)
	if err != nil {
		return err
	}
	if o == nil {
		t.Say("order.not_found")
		return nil
	}

	body := t.T("order.detail", o.Reference, o.ProductName, formatNumber(o.Quantity), o.Unit,
		o.BuyerName, formatNumber(o.Total), o.Currency, t.statusLabel(o.Status))

	var buttons []whatsapp.Button
	if actionable(o.Status, orderAccept) {
		buttons = append(buttons,
			whatsapp.Button{ID: "oa:" + orderAccept + ":" + o.ID, Title: t.T("order.accept")},
			whatsapp.Button{ID: "oa:" + orderReject + ":" + o.ID, Title: t.T("order.reject")},
		)
	}
	if actionable(o.Status, orderStatus) {
		buttons = append(buttons, whatsapp.Button{ID: "oa:" + orderStatus + ":" + o.ID, Title: t.T("order.update")})
	}
	if len(buttons) == 0 {
		t.Text(body)
		return nil
	}
	t.Buttons(body, buttons)
	return nil
}

func orderSequence(action string) string {
	switch action {
	case orderAccept:
		return seqOrderAccept
	case orderReject:
		return seqOrderReject
	}
	return seqOrderStatus
}

func orderData(o *model.Order) map[string]any {
	return map[string]any{"order_id": o.ID, "order_ref": o.Reference}
}

func (e *Engine) orderAction(t *Turn, action, id string) error {
	if !e.requireRole(t, model.AccountTypeSeller) {
		return nil
	}
	switch action {
	case orderAccept, orderReject, orderStatus:
	default:
		return e.stale(t)
	}
	o, err := e.findOrder(t, id)
	if err != nil {
		return err
	}
	if o == nil {
		t.Say("order.not_found")
		return nil
	}
	if !actionable(o.Status, action) {
		t.Say("order.not_actionable", o.Reference, t.statusLabel(o.Status))
		return nil
	}
	return e.begin(t, orderSequence(action), orderData(o))
}

// orderDone reports the outcome of an order transition. A conflict means the
// order moved on since the seller opened it.
func (e *Engine) orderDone(t *Turn, o *model.Order, err error, okKey string, args ...any) error {
	if err != nil {
		if apperrors.GetCode(err) != apperrors.ErrCodeConflict {
			return apperrors.Business("order transition", err)
		}
		current, ferr := e.findOrder(t, t.str("order_id"))
		if ferr != nil {
			return ferr
		}
		if ferr := t.Finish(); ferr != nil {
			return ferr
		}
		if current == nil {
			t.Say("order.not_found")
		} else {
			t.Say("order.not_actionable", current.Reference, t.statusLabel(current.Status))
		}
		e.showMenu(t)
		return nil
	}
	if err := t.Finish(); err != nil {
		return err
	}
	t.Say(okKey, append([]any{o.Reference}, args...)...)
	e.showMenu(t)
	return nil
}

func (e *Engine) completeAccept(t *Turn) error {
	eta := t.date("order_eta")
	if eta == nil {
		return apperrors.MissingRequired("eta")
	}
	o, err := e.Market.AcceptOrder(t.ctx, t.User().ID, t.str("order_id"), model.OrderAcceptance{
		ETA:      *eta,
		Shipping: t.optional("order_shipping"),
	})
	return e.orderDone(t, o, err, "order.accepted")
}

func (e *Engine) completeReject(t *Turn) error {
	o, err := e.Market.RejectOrder(t.ctx, t.User().ID, t.str("order_id"), t.str("order_reject_reason"))
	return e.orderDone(t, o, err, "order.rejected")
}

func (e *Engine) completeStatus(t *Turn) error {
	status := model.OrderStatus(t.str("order_status"))
	var tracking *string
	if status == model.OrderStatusShipped {
		tracking = t.optional("order_tracking")
	}
	o, err := e.Market.UpdateOrderStatus(t.ctx, t.User().ID, t.str("order_id"), status, tracking)
	if err != nil {
		return e.orderDone(t, nil, err, "")
	}
	return e.orderDone(t, o, nil, "order.updated", t.statusLabel(o.Status))
}
