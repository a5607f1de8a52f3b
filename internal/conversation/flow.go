package conversation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/whatsapp"
)

// parser validates one answer. A nil value with an empty reject key means
// the optional field was skipped.
type parser func(t *Turn, raw string) (value any, reject string)

// step is one row of the transition table: what a flow stores, how it asks,
// and how it consumes text and images.
type step struct {
	flow     model.Flow
	key      string
	required bool
	parse    parser
	prompt   func(e *Engine, t *Turn)
	// picker is the button id prefix whose selections answer this step.
	picker string
	// when reports whether the step applies to the data collected so far.
	when  func(d fields) bool
	text  func(e *Engine, t *Turn, raw string) error
	image func(e *Engine, t *Turn) error
	seq   *sequence
}

func (st *step) applies(d fields) bool {
	return st.when == nil || st.when(d)
}

// sequence is an ordered multi-step flow that ends in one operation.
type sequence struct {
	name     string
	steps    []*step
	complete func(e *Engine, t *Turn) error
}

func (s *sequence) after(cur *step) []*step {
	for i, st := range s.steps {
		if st == cur {
			return s.steps[i+1:]
		}
	}
	return nil
}

// ready reports whether every applicable required field is present.
func (s *sequence) ready(d fields) bool {
	for _, st := range s.steps {
		if st.required && st.applies(d) && !d.has(st.key) {
			return false
		}
	}
	return true
}

// firstMissing returns the first applicable step whose field is absent.
func (s *sequence) firstMissing(d fields) *step {
	for _, st := range s.steps {
		if st.key != "" && st.applies(d) && !d.has(st.key) {
			return st
		}
	}
	return nil
}

// fields is a read view over session data.
type fields map[string]any

func (d fields) has(key string) bool {
	_, ok := d[key]
	return ok
}

func (d fields) str(key string) string {
	switch v := d[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func (d fields) num(key string) (float64, bool) {
	switch v := d[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// with returns a copy of d with data merged in. Nil values remove keys.
func (d fields) with(data map[string]any) fields {
	out := make(fields, len(d)+len(data))
	for k, v := range d {
		out[k] = v
	}
	for k, v := range data {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// Sequence names, also used as metric labels.
const (
	seqSignup      = "signup"
	seqProduct     = "product"
	seqHarvest     = "harvest"
	seqQuote       = "quote"
	seqOrderAccept = "order_accept"
	seqOrderReject = "order_reject"
	seqOrderStatus = "order_status"
)

var (
	steps     map[model.Flow]*step
	sequences map[string]*sequence
)

func init() {
	steps, sequences = buildTable()
}

func buildTable() (map[model.Flow]*step, map[string]*sequence) {
	seqs := []*sequence{
		{
			name: seqSignup,
			steps: []*step{
				{flow: model.FlowSignupName, key: "signup_name", required: true, parse: textParser(80), prompt: ask("signup.name")},
				{flow: model.FlowSignupEmail, key: "signup_email", required: true, text: (*Engine).signupEmail, prompt: ask("signup.email")},
				{flow: model.FlowSignupCountry, key: "signup_country", required: true, parse: countryParser, picker: pickCountry,
					prompt: askChoice("signup.country", pickCountry, countries)},
				{flow: model.FlowSignupType, key: "signup_type", required: true, parse: choiceParser(accountTypes, nil), picker: pickAccount,
					prompt: askChoice("signup.type", pickAccount, accountTypes)},
			},
			complete: (*Engine).completeSignup,
		},
		{
			name: seqProduct,
			steps: []*step{
				{flow: model.FlowProductName, key: "product_name", required: true, parse: textParser(80), prompt: ask("product.name")},
				{flow: model.FlowProductCategory, key: "product_category", required: true, parse: choiceParser(categories, nil), picker: pickCategory,
					prompt: askChoice("product.category", pickCategory, categories)},
				{flow: model.FlowProductDescription, key: "product_description", parse: optionalText(500), prompt: askSkip("product.description")},
				{flow: model.FlowProductPrice, key: "product_price", required: true, parse: numberParser, prompt: ask("product.price")},
				{flow: model.FlowProductQuantity, key: "product_quantity", required: true, parse: numberParser, prompt: ask("product.quantity")},
				{flow: model.FlowProductUnit, key: "product_unit", required: true, parse: unitParser, picker: pickUnit,
					prompt: askChoice("product.unit", pickUnit, units)},
				{flow: model.FlowProductPhotos, text: (*Engine).photosText, image: (*Engine).productPhoto, prompt: (*Engine).promptPhotos},
			},
			complete: (*Engine).completeProduct,
		},
		{
			name: seqHarvest,
			steps: []*step{
				{flow: model.FlowHarvestCrop, key: "harvest_crop", required: true, parse: textParser(80), prompt: ask("harvest.crop")},
				{flow: model.FlowHarvestWindow, key: "harvest_needed_by", parse: dateParser(true), prompt: askSkip("harvest.window")},
				{flow: model.FlowHarvestQuantity, key: "harvest_quantity", required: true, parse: numberParser, prompt: ask("harvest.quantity")},
				{flow: model.FlowHarvestUnit, key: "harvest_unit", required: true, parse: unitParser, picker: pickUnit,
					prompt: askChoice("harvest.unit", pickUnit, units)},
				{flow: model.FlowHarvestNotes, key: "harvest_notes", parse: optionalText(500), prompt: askSkip("harvest.notes")},
			},
			complete: (*Engine).completeHarvest,
		},
		{
			name: seqQuote,
			steps: []*step{
				{flow: model.FlowQuotePrice, key: "quote_price", required: true, parse: numberParser, prompt: ask("quote.price")},
				{flow: model.FlowQuoteCurrency, key: "quote_currency", required: true, parse: currencyParser, picker: pickCurrency,
					prompt: askChoice("quote.currency", pickCurrency, currencies)},
				{flow: model.FlowQuoteQuantity, key: "quote_quantity", required: true, parse: numberParser, prompt: ask("quote.quantity")},
				{flow: model.FlowQuoteDelivery, key: "quote_delivery", parse: dateParser(true), prompt: askSkip("quote.delivery")},
				{flow: model.FlowQuoteNotes, key: "quote_notes", parse: optionalText(500), prompt: askSkip("quote.notes")},
			},
			complete: (*Engine).completeQuote,
		},
		{
			name: seqOrderAccept,
			steps: []*step{
				{flow: model.FlowOrderAcceptETA, key: "order_eta", required: true, parse: dateParser(false), prompt: ask("order.eta")},
				{flow: model.FlowOrderShipping, key: "order_shipping", parse: optionalText(120), prompt: askSkip("order.shipping")},
			},
			complete: (*Engine).completeAccept,
		},
		{
			name: seqOrderReject,
			steps: []*step{
				{flow: model.FlowOrderRejectReason, key: "order_reject_reason", required: true, parse: textParser(300), prompt: ask("order.reject_reason")},
			},
			complete: (*Engine).completeReject,
		},
		{
			name: seqOrderStatus,
			steps: []*step{
				{flow: model.FlowOrderUpdateStatus, key: "order_status", required: true, parse: choiceParser(orderStatuses, nil), picker: pickStatus,
					prompt: askChoice("order.status", pickStatus, orderStatuses)},
				{flow: model.FlowOrderTracking, key: "order_tracking", parse: optionalText(120), prompt: askSkip("order.tracking"),
					when: func(d fields) bool { return d.str("order_status") == string(model.OrderStatusShipped) }},
			},
			complete: (*Engine).completeStatus,
		},
	}

	standalone := []*step{
		{flow: model.FlowSignupOTP, text: (*Engine).signupOTP, prompt: ask("otp.prompt")},
		{flow: model.FlowLoginEmail, text: (*Engine).loginEmail, prompt: ask("login.email")},
		{flow: model.FlowLoginOTP, text: (*Engine).loginOTP, prompt: ask("otp.prompt")},
		{flow: model.FlowVerifyOTP, text: (*Engine).verifyOTP, prompt: ask("otp.prompt")},
		{flow: model.FlowUnlockOTP, text: (*Engine).unlockOTP, prompt: ask("otp.prompt")},
		{flow: model.FlowTransactionLookup, text: (*Engine).transactionLookup, prompt: ask("txn.lookup")},
		{flow: model.FlowCartQuantity, text: (*Engine).cartQuantity, prompt: (*Engine).promptCartQuantity},
		{flow: model.FlowIDDocument, text: (*Engine).idDocumentText, image: (*Engine).idDocument, prompt: ask("id.prompt")},
	}

	table := make(map[model.Flow]*step)
	bySeq := make(map[string]*sequence, len(seqs))
	for _, seq := range seqs {
		bySeq[seq.name] = seq
		for _, st := range seq.steps {
			st.seq = seq
			table[st.flow] = st
		}
	}
	for _, st := range standalone {
		table[st.flow] = st
	}
	return table, bySeq
}

// prompt asks the question for the session's current step, or shows the
// menu when resting.
func (e *Engine) prompt(t *Turn) {
	if st, ok := steps[t.S.Flow]; ok && st.prompt != nil {
		st.prompt(e, t)
		return
	}
	e.showMenu(t)
}

// stepText feeds free text to the current step.
func (e *Engine) stepText(t *Turn, raw string) error {
	st, ok := steps[t.S.Flow]
	if !ok {
		return e.menuText(t)
	}
	if st.text != nil {
		return st.text(e, t, raw)
	}
	v, reject := st.parse(t, raw)
	if reject != "" {
		e.reject(t, reject)
		return nil
	}
	return e.advance(t, st, map[string]any{st.key: v})
}

// reject sends a corrective message and repeats the prompt without
// advancing.
func (e *Engine) reject(t *Turn, key string, args ...any) {
	t.Say(key, args...)
	e.prompt(t)
}

// advance stores data for the current step and moves to the next step that
// still needs an answer. Past the last step the sequence completes.
func (e *Engine) advance(t *Turn, st *step, data map[string]any) error {
	view := fields(t.S.Data).with(data)
	for _, next := range st.seq.after(st) {
		if !next.applies(view) {
			continue
		}
		if next.key != "" && view.has(next.key) {
			continue
		}
		if err := t.Goto(next.flow, data); err != nil {
			return err
		}
		e.prompt(t)
		return nil
	}
	if err := t.Merge(data); err != nil {
		return err
	}
	return st.seq.complete(e, t)
}

// begin starts seq at its first step with data as the only session data.
func (e *Engine) begin(t *Turn, name string, data map[string]any) error {
	seq := sequences[name]
	if err := t.Start(seq.steps[0].flow, data); err != nil {
		return err
	}
	e.prompt(t)
	return nil
}

// prefill starts seq with data already collected. A complete set performs
// the operation right away; otherwise the flow resumes at the first missing
// field.
func (e *Engine) prefill(t *Turn, name string, data map[string]any) (completed bool, err error) {
	seq := sequences[name]
	view := fields{}.with(data)
	if seq.ready(view) {
		if err := t.Start(t.S.Flow, data); err != nil {
			return false, err
		}
		return true, seq.complete(e, t)
	}
	next := seq.firstMissing(view)
	if err := t.Start(next.flow, data); err != nil {
		return false, err
	}
	t.Say("shortcut.prefilled")
	e.prompt(t)
	return false, nil
}

func ask(key string) func(e *Engine, t *Turn) {
	return func(_ *Engine, t *Turn) {
		t.Say(key)
	}
}

func askSkip(key string) func(e *Engine, t *Turn) {
	return func(_ *Engine, t *Turn) {
		t.Buttons(t.T(key), []whatsapp.Button{{ID: buttonSkip, Title: t.T("button.skip")}})
	}
}

func askChoice(key, prefix string, opts []option) func(e *Engine, t *Turn) {
	return func(_ *Engine, t *Turn) {
		rows := choices(t, prefix, opts)
		if len(rows) <= whatsapp.MaxReplyButtons {
			t.Buttons(t.T(key), rows)
			return
		}
		t.List(t.T(key), rows)
	}
}

func textParser(max int) parser {
	return func(_ *Turn, raw string) (any, string) {
		s, ok := cleanText(raw, max)
		if !ok {
			return nil, "invalid.text"
		}
		return s, ""
	}
}

func optionalText(max int) parser {
	required := textParser(max)
	return func(t *Turn, raw string) (any, string) {
		if isSkip(raw) {
			return nil, ""
		}
		return required(t, raw)
	}
}

func numberParser(_ *Turn, raw string) (any, string) {
	v, ok := parseNumber(raw, false)
	if !ok {
		return nil, "invalid.number"
	}
	return v, ""
}

func dateParser(optional bool) parser {
	return func(_ *Turn, raw string) (any, string) {
		if optional && isSkip(raw) {
			return nil, ""
		}
		d, ok := parseDate(raw)
		if !ok {
			if optional {
				return nil, "invalid.date"
			}
			return nil, "invalid.date_req"
		}
		return d.Format(dateLayout), ""
	}
}

// choiceParser accepts one of opts, or anything free accepts.
func choiceParser(opts []option, free func(string) (string, bool)) parser {
	return func(_ *Turn, raw string) (any, string) {
		if v, ok := matchOption(opts, raw); ok {
			return v, ""
		}
		if free != nil {
			if v, ok := free(raw); ok {
				return v, ""
			}
		}
		return nil, "invalid.choice"
	}
}

// Units outside the picker are accepted as typed.
var unitParser = choiceParser(units, func(raw string) (string, bool) {
	s, ok := cleanText(raw, 20)
	if !ok || isSkip(s) || !hasLetter.MatchString(s) {
		return "", false
	}
	return strings.ToLower(s), true
})

var hasLetter = regexp.MustCompile(`\pL`)

var currencyParser = choiceParser(currencies, validCurrency)

var countryParser = choiceParser(countries, func(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if !countryCode.MatchString(s) {
		return "", false
	}
	return strings.ToUpper(s), true
})
