package conversation

import (
	"fmt"
	"strings"

	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/whatsapp"
)

func (e *Engine) findProduct(t *Turn, id string) (*model.Product, error) {
	p, err := e.Market.GetProduct(t.ctx, id)
	if err != nil {
		return nil, apperrors.Business("get product", err)
	}
	return p, nil
}

// showProduct shows one of the seller's own listings.
func (e *Engine) showProduct(t *Turn, id string) error {
	if !e.requireRole(t, model.AccountTypeSeller) {
		return nil
	}
	p, err := e.findProduct(t, id)
	if err != nil {
		return err
	}
	if p == nil || p.SellerID != t.User().ID {
		return e.stale(t)
	}
	t.Say("product.detail", p.Name, t.T("cat."+p.Category), formatNumber(p.Price), formatNumber(p.Quantity), p.Unit)
	return nil
}

func (e *Engine) showMarketProduct(t *Turn, id string) error {
	if !e.requireUser(t) {
		return nil
	}
	p, err := e.findProduct(t, id)
	if err != nil {
		return err
	}
	if p == nil {
		return e.stale(t)
	}
	body := t.T("market.detail", p.Name, formatNumber(p.Price), p.Unit, formatNumber(p.Quantity), p.Unit)
	if t.User().AccountType != model.AccountTypeBuyer {
		t.Text(body)
		return nil
	}
	t.Buttons(body, []whatsapp.Button{
		{ID: "cart:add:" + p.ID, Title: t.T("cart.add")},
		{ID: "cart:view", Title: t.T("cart.view")},
		{ID: "menu:" + actMarket, Title: t.T("menu.market")},
	})
	return nil
}

func (e *Engine) startCartAdd(t *Turn, productID string) error {
	if !e.requireRole(t, model.AccountTypeBuyer) {
		return nil
	}
	p, err := e.findProduct(t, productID)
	if err != nil {
		return err
	}
	if p == nil {
		return e.stale(t)
	}
	if err := t.Start(model.FlowCartQuantity, map[string]any{
		"cart_product_id":   p.ID,
		"cart_product_name": p.Name,
		"cart_product_unit": p.Unit,
	}); err != nil {
		return err
	}
	e.prompt(t)
	return nil
}

func (e *Engine) promptCartQuantity(t *Turn) {
	t.Say("cart.quantity", t.str("cart_product_unit"), t.str("cart_product_name"))
}

func (e *Engine) cartQuantity(t *Turn, raw string) error {
	u := t.User()
	if u == nil {
		return e.cmdMenu(t)
	}
	q, ok := parseNumber(raw, true)
	if !ok {
		e.reject(t, "invalid.quantity")
		return nil
	}

	err := e.Market.SetCartItem(t.ctx, u.ID, t.str("cart_product_id"), q)
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidInput:
		e.reject(t, "cart.stock")
		return nil
	case apperrors.ErrCodeNotFound:
		if err := t.Reset(); err != nil {
			return err
		}
		return e.stale(t)
	}
	if err != nil {
		return apperrors.Business("set cart item", err)
	}

	if err := t.Finish(); err != nil {
		return err
	}
	if q == 0 {
		t.Say("cart.removed")
	} else {
		t.Say("cart.updated")
	}
	return e.showCart(t)
}

func (e *Engine) showCart(t *Turn) error {
	if !e.requireRole(t, model.AccountTypeBuyer) {
		return nil
	}
	items, err := e.Market.ListCart(t.ctx, t.User().ID)
	if err != nil {
		return apperrors.Business("list cart", err)
	}
	if len(items) == 0 {
		t.Say("cart.empty")
		e.showMenu(t)
		return nil
	}

	var (
		lines []string
		total float64
	)
	for _, it := range items {
		sub := it.Price * it.Quantity
		total += sub
		lines = append(lines, fmt.Sprintf("• %s: %s %s × %s = %s",
			it.ProductName, formatNumber(it.Quantity), it.Unit, formatNumber(it.Price), formatMoney(sub)))
	}
	t.Buttons(t.T("cart.summary", strings.Join(lines, "\n"), formatMoney(total)), []whatsapp.Button{
		{ID: "menu:" + actMarket, Title: t.T("menu.market")},
		{ID: "menu:" + actHarvest, Title: t.T("menu.harvest")},
	})
	return nil
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func (e *Engine) showTransaction(t *Turn, id string) error {
	if !e.requireUser(t) {
		return nil
	}
	txn, err := e.Market.GetTransaction(t.ctx, t.User().ID, id)
	if err != nil {
		return apperrors.Business("get transaction", err)
	}
	if txn == nil {
		t.Say("txn.not_found")
		return nil
	}
	if t.S.Flow == model.FlowTransactionLookup {
		if err := t.Finish(); err != nil {
			return err
		}
	}
	t.Say("txn.detail", txn.Reference, formatMoney(txn.Amount), txn.Currency, txn.Status,
		txn.CreatedAt.Format(dateLayout))
	return nil
}

func (e *Engine) transactionLookup(t *Turn, raw string) error {
	ref := strings.TrimSpace(raw)
	if ref == "" {
		e.prompt(t)
		return nil
	}
	return e.showTransaction(t, ref)
}
