package conversation

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/farmgate/whatsapp-engine/internal/ai"
	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/util"
)

// extraction holds the four candidate drafts for one message. Any of them
// may be nil.
type extraction struct {
	product *ai.ProductDraft
	harvest *ai.HarvestDraft
	quote   *ai.QuoteDraft
	order   *ai.OrderActionDraft
}

type candidate struct {
	seq   string
	score int
}

// best returns the highest scoring candidate. Ties go to the earlier kind.
func (x extraction) best() candidate {
	all := []candidate{
		{seqProduct, x.product.Score()},
		{seqHarvest, x.harvest.Score()},
		{seqQuote, x.quote.Score()},
		{seqOrderAccept, x.order.Score()},
	}
	top := all[0]
	for _, c := range all[1:] {
		if c.score > top.score {
			top = c
		}
	}
	return top
}

// extract runs the extractors concurrently. A failing extractor only loses
// its own candidate.
func (e *Engine) extract(ctx context.Context, phone, text string) extraction {
	ctx, cancel := context.WithTimeout(ctx, e.opts.AITimeout)
	defer cancel()

	var x extraction
	g, gctx := errgroup.WithContext(ctx)
	logErr := func(kind string, err error) {
		if err != nil {
			log.Warn().Err(err).Str("phone", util.MaskPhone(phone)).Str("kind", kind).Msg("extraction failed")
		}
	}
	g.Go(func() error {
		d, err := e.AI.ExtractProduct(gctx, text)
		logErr(seqProduct, err)
		x.product = d
		return nil
	})
	g.Go(func() error {
		d, err := e.AI.ExtractHarvest(gctx, text)
		logErr(seqHarvest, err)
		x.harvest = d
		return nil
	})
	g.Go(func() error {
		d, err := e.AI.ExtractQuote(gctx, text)
		logErr(seqQuote, err)
		x.quote = d
		return nil
	})
	g.Go(func() error {
		d, err := e.AI.ExtractOrderAction(gctx, text)
		logErr("order", err)
		x.order = d
		return nil
	})
	_ = g.Wait()
	return x
}

// shortcut tries to turn free text into a structured operation. It reports
// whether the message was consumed.
func (e *Engine) shortcut(t *Turn) (bool, error) {
	text := strings.TrimSpace(t.Ev.Text)
	if text == "" {
		return false, nil
	}
	x := e.extract(t.ctx, t.Phone, text)
	top := x.best()
	if top.score < e.opts.ShortcutThreshold {
		shortcutCounter.WithLabelValues("none").Inc()
		return false, nil
	}

	var (
		seq  string
		data map[string]any
		err  error
	)
	switch top.seq {
	case seqProduct:
		seq, data, err = e.productShortcut(t, x.product)
	case seqHarvest:
		seq, data = e.harvestShortcut(t, x.harvest)
	case seqQuote:
		seq, data, err = e.quoteShortcut(t, x.quote)
	default:
		seq, data, err = e.orderShortcut(t, x.order)
	}
	if err != nil {
		return true, err
	}
	switch {
	case seq == "" && data == nil:
		shortcutCounter.WithLabelValues("skipped").Inc()
		return false, nil
	case seq == "":
		// The turn was answered already, by a verification challenge.
		shortcutCounter.WithLabelValues("verify").Inc()
		return true, nil
	}

	completed, err := e.prefill(t, seq, data)
	if completed {
		shortcutCounter.WithLabelValues("completed").Inc()
	} else {
		shortcutCounter.WithLabelValues("prefilled").Inc()
	}
	log.Info().
		Str("phone", util.MaskPhone(t.Phone)).
		Str("flow", seq).
		Int("score", top.score).
		Bool("completed", completed).
		Msg("ai shortcut")
	return true, err
}

func (t *Turn) isRole(role model.AccountType) bool {
	u := t.User()
	return u != nil && u.AccountType == role
}

func putText(data map[string]any, key, raw string, max int) {
	if s, ok := cleanText(raw, max); ok {
		data[key] = s
	}
}

func putNumber(data map[string]any, key string, v *float64) {
	if v != nil && *v > 0 {
		data[key] = *v
	}
}

func putChoice(data map[string]any, key, raw string, valid func(string) (string, bool)) {
	if v, ok := valid(raw); ok {
		data[key] = v
	}
}

func putDate(data map[string]any, key, raw string) {
	if d, ok := parseDate(raw); ok {
		data[key] = d.Format(dateLayout)
	}
}

// productShortcut returns an empty sequence with non-nil data when it
// answered the turn itself.
func (e *Engine) productShortcut(t *Turn, d *ai.ProductDraft) (string, map[string]any, error) {
	if !t.isRole(model.AccountTypeSeller) {
		return "", nil, nil
	}
	u := t.User()
	paired, err := e.Security.IsPaired(t.ctx, u.ID, t.Phone)
	if err != nil {
		return "", nil, err
	}
	if !paired {
		return "", map[string]any{}, e.beginVerify(t, u.ID, u.Email, seqProduct)
	}

	data := map[string]any{}
	putText(data, "product_name", d.Name, 80)
	putChoice(data, "product_category", d.Category, validCategory)
	putText(data, "product_description", d.Description, 500)
	putNumber(data, "product_price", d.Price)
	putNumber(data, "product_quantity", d.Quantity)
	if d.Unit != "" {
		if v, reject := unitParser(t, d.Unit); reject == "" {
			data["product_unit"] = v
		}
	}
	return seqProduct, data, nil
}

func (e *Engine) harvestShortcut(t *Turn, d *ai.HarvestDraft) (string, map[string]any) {
	if !t.isRole(model.AccountTypeBuyer) {
		return "", nil
	}
	data := map[string]any{}
	putText(data, "harvest_crop", d.Crop, 80)
	putNumber(data, "harvest_quantity", d.Quantity)
	if d.Unit != "" {
		if v, reject := unitParser(t, d.Unit); reject == "" {
			data["harvest_unit"] = v
		}
	}
	putDate(data, "harvest_needed_by", d.NeededBy)
	putText(data, "harvest_notes", d.Notes, 500)
	return seqHarvest, data
}

func (e *Engine) quoteShortcut(t *Turn, d *ai.QuoteDraft) (string, map[string]any, error) {
	if !t.isRole(model.AccountTypeSeller) || strings.TrimSpace(d.RequestRef) == "" {
		return "", nil, nil
	}
	h, err := e.Market.GetHarvestRequest(t.ctx, strings.TrimSpace(d.RequestRef))
	if err != nil {
		return "", nil, apperrors.Business("get harvest request", err)
	}
	if h == nil || h.Status != "open" {
		return "", nil, nil
	}

	data := map[string]any{"quote_request_id": h.ID, "quote_request_ref": h.Reference}
	putNumber(data, "quote_price", d.Price)
	putChoice(data, "quote_currency", d.Currency, validCurrency)
	putNumber(data, "quote_quantity", d.Quantity)
	return seqQuote, data, nil
}

func (e *Engine) orderShortcut(t *Turn, d *ai.OrderActionDraft) (string, map[string]any, error) {
	if !t.isRole(model.AccountTypeSeller) || !d.ValidAction() || strings.TrimSpace(d.OrderRef) == "" {
		return "", nil, nil
	}
	o, err := e.findOrder(t, strings.TrimSpace(d.OrderRef))
	if err != nil {
		return "", nil, err
	}
	if o == nil || !actionable(o.Status, d.Action) {
		return "", nil, nil
	}

	data := orderData(o)
	switch d.Action {
	case orderAccept:
		putDate(data, "order_eta", d.ETA)
	case orderReject:
		putText(data, "order_reject_reason", d.Reason, 300)
	case orderStatus:
		putChoice(data, "order_status", d.Status, validSettableStatus)
	}
	return orderSequence(d.Action), data, nil
}
