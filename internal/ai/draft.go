package ai

import "strings"

// ProductDraft is a product listing recognized in free text.
type ProductDraft struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Quantity    *float64 `json:"quantity"`
	Unit        string   `json:"unit"`
}

// HarvestDraft is a buyer's harvest request recognized in free text.
type HarvestDraft struct {
	Crop     string   `json:"crop"`
	Quantity *float64 `json:"quantity"`
	Unit     string   `json:"unit"`
	NeededBy string   `json:"needed_by"`
	Notes    string   `json:"notes"`
}

// QuoteDraft is a seller's quote against a harvest request.
type QuoteDraft struct {
	RequestRef string   `json:"request_ref"`
	Price      *float64 `json:"price"`
	Currency   string   `json:"currency"`
	Quantity   *float64 `json:"quantity"`
}

// Order actions.
const (
	ActionAccept = "accept"
	ActionReject = "reject"
	ActionStatus = "status"
)

// OrderActionDraft is an instruction to act on an order.
type OrderActionDraft struct {
	OrderRef string `json:"order_ref"`
	Action   string `json:"action"`
	ETA      string `json:"eta"`
	Reason   string `json:"reason"`
	Status   string `json:"status"`
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}

func positive(v *float64) bool {
	return v != nil && *v > 0
}

func count(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

// Score counts populated required fields. Required reports how many there are.

func (d *ProductDraft) Score() int {
	if d == nil {
		return 0
	}
	return count(present(d.Name), present(d.Category), positive(d.Price), positive(d.Quantity), present(d.Unit))
}

func (d *ProductDraft) Required() int { return 5 }

func (d *HarvestDraft) Score() int {
	if d == nil {
		return 0
	}
	return count(present(d.Crop), positive(d.Quantity), present(d.Unit))
}

func (d *HarvestDraft) Required() int { return 3 }

func (d *QuoteDraft) Score() int {
	if d == nil {
		return 0
	}
	return count(present(d.RequestRef), positive(d.Price), present(d.Currency), positive(d.Quantity))
}

func (d *QuoteDraft) Required() int { return 4 }

// ValidAction reports whether Action names a known order action.
func (d *OrderActionDraft) ValidAction() bool {
	switch d.Action {
	case ActionAccept, ActionReject, ActionStatus:
		return true
	}
	return false
}

func (d *OrderActionDraft) detail() bool {
	switch d.Action {
	case ActionAccept:
		return present(d.ETA)
	case ActionReject:
		return present(d.Reason)
	case ActionStatus:
		return present(d.Status)
	}
	return false
}

func (d *OrderActionDraft) Score() int {
	if d == nil {
		return 0
	}
	return count(present(d.OrderRef), d.ValidAction(), d.detail())
}

func (d *OrderActionDraft) Required() int { return 3 }
