package conversation

import (
	"fmt"

	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/whatsapp"
)

// Paged lists. Each keeps its cursor under page_<list> in session data.
const (
	listRequests     = "requests"
	listOrders       = "orders"
	listProducts     = "products"
	listTransactions = "transactions"
	listMarket       = "market"
)

func pageKey(list string) string {
	return "page_" + list
}

// page is one fetched page rendered as list rows.
type page struct {
	title string
	empty string
	rows  []whatsapp.Button
}

func (e *Engine) turnPage(t *Turn, list string, forward bool) error {
	cur, _ := t.num(pageKey(list))
	next := int(cur)
	if forward {
		next++
	} else {
		next--
	}
	if next < 0 {
		next = 0
	}
	return e.showPage(t, list, next)
}

// showPage fetches and renders page n of list and records the cursor. The
// next-page row is offered only after a full page.
func (e *Engine) showPage(t *Turn, list string, n int) error {
	var (
		p   *page
		err error
	)
	switch list {
	case listRequests:
		if !e.requireRole(t, model.AccountTypeSeller) {
			return nil
		}
		p, err = e.requestsPage(t, n)
	case listOrders:
		if !e.requireRole(t, model.AccountTypeSeller) {
			return nil
		}
		p, err = e.ordersPage(t, n)
	case listProducts:
		if !e.requireRole(t, model.AccountTypeSeller) {
			return nil
		}
		p, err = e.productsPage(t, n)
	case listTransactions:
		if !e.requireUser(t) {
			return nil
		}
		p, err = e.transactionsPage(t, n)
	case listMarket:
		if !e.requireUser(t) {
			return nil
		}
		p, err = e.marketPage(t, n)
	default:
		return e.stale(t)
	}
	if err != nil {
		return err
	}
	if len(p.rows) == 0 && n == 0 {
		t.Say(p.empty)
		return nil
	}

	cursor := map[string]any{pageKey(list): n}
	if list == listTransactions {
		err = t.Goto(model.FlowTransactionLookup, cursor)
	} else {
		err = t.Merge(cursor)
	}
	if err != nil {
		return err
	}

	full := len(p.rows) == e.opts.PageSize
	rows := p.rows
	if n > 0 {
		rows = append(rows, whatsapp.Button{ID: fmt.Sprintf("page:prev:%s", list), Title: t.T("page.prev")})
	}
	if full {
		rows = append(rows, whatsapp.Button{ID: fmt.Sprintf("page:next:%s", list), Title: t.T("page.next")})
	}

	if len(p.rows) == 0 {
		t.List(t.T("list.end"), rows)
		return nil
	}
	t.List(t.T(p.title, n+1), rows)
	return nil
}

func (e *Engine) offset(n int) int {
	return n * e.opts.PageSize
}

func (e *Engine) requestsPage(t *Turn, n int) (*page, error) {
	items, err := e.Market.ListOpenHarvestRequests(t.ctx, e.opts.PageSize, e.offset(n))
	if err != nil {
		return nil, apperrors.Business("list harvest requests", err)
	}
	p := &page{title: "requests.title", empty: "requests.empty"}
	for _, h := range items {
		p.rows = append(p.rows, whatsapp.Button{
			ID:          "req:" + h.ID,
			Title:       h.Crop,
			Description: fmt.Sprintf("%s · %s %s", h.Reference, formatNumber(h.Quantity), h.Unit),
		})
	}
	return p, nil
}

func (e *Engine) ordersPage(t *Turn, n int) (*page, error) {
	items, err := e.Market.ListPendingOrders(t.ctx, t.User().ID, e.opts.PageSize, e.offset(n))
	if err != nil {
		return nil, apperrors.Business("list orders", err)
	}
	p := &page{title: "orders.title", empty: "orders.empty"}
	for _, o := range items {
		p.rows = append(p.rows, whatsapp.Button{
			ID:          "order:" + o.ID,
			Title:       o.Reference,
			Description: fmt.Sprintf("%s · %s %s · %s", o.ProductName, formatNumber(o.Quantity), o.Unit, t.statusLabel(o.Status)),
		})
	}
	return p, nil
}

func (e *Engine) productsPage(t *Turn, n int) (*page, error) {
	items, err := e.Market.ListSellerProducts(t.ctx, t.User().ID, e.opts.PageSize, e.offset(n))
	if err != nil {
		return nil, apperrors.Business("list products", err)
	}
	p := &page{title: "products.title", empty: "products.empty"}
	for _, pr := range items {
		p.rows = append(p.rows, whatsapp.Button{
			ID:          "prod:" + pr.ID,
			Title:       pr.Name,
			Description: fmt.Sprintf("%s %s · %s", formatNumber(pr.Quantity), pr.Unit, formatNumber(pr.Price)),
		})
	}
	return p, nil
}

func (e *Engine) transactionsPage(t *Turn, n int) (*page, error) {
	items, err := e.Market.ListTransactions(t.ctx, t.User().ID, e.opts.PageSize, e.offset(n))
	if err != nil {
		return nil, apperrors.Business("list transactions", err)
	}
	p := &page{title: "txn.title", empty: "txn.empty"}
	for _, txn := range items {
		p.rows = append(p.rows, whatsapp.Button{
			ID:          "txn:" + txn.ID,
			Title:       txn.Reference,
			Description: fmt.Sprintf("%s %s · %s", formatMoney(txn.Amount), txn.Currency, txn.Status),
		})
	}
	return p, nil
}

func (e *Engine) marketPage(t *Turn, n int) (*page, error) {
	items, err := e.Market.BrowseProducts(t.ctx, e.opts.PageSize, e.offset(n))
	if err != nil {
		return nil, apperrors.Business("browse products", err)
	}
	p := &page{title: "market.title", empty: "market.empty"}
	for _, pr := range items {
		p.rows = append(p.rows, whatsapp.Button{
			ID:          "mkt:" + pr.ID,
			Title:       pr.Name,
			Description: fmt.Sprintf("%s / %s · %s %s", formatNumber(pr.Price), pr.Unit, formatNumber(pr.Quantity), pr.Unit),
		})
	}
	return p, nil
}
