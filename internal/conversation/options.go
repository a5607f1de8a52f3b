package conversation

import (
	"regexp"
	"strings"

	"github.com/farmgate/whatsapp-engine/internal/i18n"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/whatsapp"
)

// option is a fixed choice offered through a picker. Label is a translation
// key when localized is set and a literal title otherwise.
type option struct {
	value     string
	label     string
	localized bool
	aliases   []string
}

func (o option) title(t *Turn) string {
	if o.localized {
		return t.T(o.label)
	}
	return o.label
}

// Picker button prefixes.
const (
	pickCategory = "cat"
	pickUnit     = "unit"
	pickCurrency = "cur"
	pickCountry  = "country"
	pickAccount  = "acct"
	pickStatus   = "status"
)

var categories = []option{
	{value: "vegetables", label: "cat.vegetables", localized: true, aliases: []string{"vegetable", "veg"}},
	{value: "fruits", label: "cat.fruits", localized: true, aliases: []string{"fruit"}},
	{value: "grains", label: "cat.grains", localized: true, aliases: []string{"grain", "cereal", "cereals"}},
	{value: "livestock", label: "cat.livestock", localized: true},
	{value: "dairy", label: "cat.dairy", localized: true},
	{value: "other", label: "cat.other", localized: true},
}

var units = []option{
	{value: "kg", label: "unit.kg", localized: true, aliases: []string{"kgs", "kilo", "kilos", "kilogram", "kilograms"}},
	{value: "ton", label: "unit.ton", localized: true, aliases: []string{"tons", "tonne", "tonnes", "t"}},
	{value: "lb", label: "unit.lb", localized: true, aliases: []string{"lbs", "pound", "pounds"}},
	{value: "crate", label: "unit.crate", localized: true, aliases: []string{"crates", "box", "boxes"}},
	{value: "bunch", label: "unit.bunch", localized: true, aliases: []string{"bunches"}},
	{value: "dozen", label: "unit.dozen", localized: true, aliases: []string{"dozens"}},
	{value: "unit", label: "unit.unit", localized: true, aliases: []string{"units", "piece", "pieces", "pcs"}},
}

var currencies = []option{
	{value: "USD", label: "USD", aliases: []string{"$", "dollar", "dollars"}},
	{value: "EUR", label: "EUR", aliases: []string{"€", "euro", "euros"}},
	{value: "MXN", label: "MXN", aliases: []string{"peso", "pesos"}},
	{value: "KES", label: "KES", aliases: []string{"ksh", "shilling", "shillings"}},
	{value: "NGN", label: "NGN", aliases: []string{"naira"}},
	{value: "INR", label: "INR", aliases: []string{"rupee", "rupees"}},
}

var countries = []option{
	{value: "US", label: "United States", aliases: []string{"usa"}},
	{value: "MX", label: "México", aliases: []string{"mexico"}},
	{value: "CO", label: "Colombia"},
	{value: "KE", label: "Kenya"},
	{value: "NG", label: "Nigeria"},
	{value: "IN", label: "India"},
	{value: "ES", label: "España", aliases: []string{"spain", "espana"}},
}

var accountTypes = []option{
	{value: string(model.AccountTypeSeller), label: "acct.seller", localized: true, aliases: []string{"sell", "vendedor", "vendo"}},
	{value: string(model.AccountTypeBuyer), label: "acct.buyer", localized: true, aliases: []string{"buy", "comprador", "compro"}},
}

var orderStatuses = []option{
	{value: string(model.OrderStatusShipped), label: "status.shipped", localized: true},
	{value: string(model.OrderStatusDelivered), label: "status.delivered", localized: true},
	{value: string(model.OrderStatusCancelled), label: "status.cancelled", localized: true},
}

var languages = []option{
	{value: model.LocaleEnglish, label: "English"},
	{value: model.LocaleSpanish, label: "Español"},
}

var (
	currencyCode = regexp.MustCompile(`^[A-Za-z]{3}$`)
	countryCode  = regexp.MustCompile(`^[A-Za-z]{2}$`)
)

// matchOption finds the option named by raw: its value, an alias, or its
// label in any supported locale.
func matchOption(opts []option, raw string) (string, bool) {
	in := strings.ToLower(strings.TrimSpace(raw))
	if in == "" {
		return "", false
	}
	for _, o := range opts {
		if in == strings.ToLower(o.value) {
			return o.value, true
		}
		for _, a := range o.aliases {
			if in == a {
				return o.value, true
			}
		}
		if !o.localized {
			if in == strings.ToLower(o.label) {
				return o.value, true
			}
			continue
		}
		for _, locale := range []string{model.LocaleEnglish, model.LocaleSpanish} {
			if in == strings.ToLower(i18n.T(locale, o.label)) {
				return o.value, true
			}
		}
	}
	return "", false
}

// choices renders opts as picker buttons with ids of the form prefix:value.
func choices(t *Turn, prefix string, opts []option) []whatsapp.Button {
	out := make([]whatsapp.Button, 0, len(opts))
	for _, o := range opts {
		out = append(out, whatsapp.Button{ID: prefix + ":" + o.value, Title: o.title(t)})
	}
	return out
}

func validCategory(raw string) (string, bool) {
	return matchOption(categories, raw)
}

func validCurrency(raw string) (string, bool) {
	if v, ok := matchOption(currencies, raw); ok {
		return v, true
	}
	s := strings.TrimSpace(raw)
	if currencyCode.MatchString(s) {
		return strings.ToUpper(s), true
	}
	return "", false
}

func validSettableStatus(raw string) (string, bool) {
	return matchOption(orderStatuses, raw)
}
