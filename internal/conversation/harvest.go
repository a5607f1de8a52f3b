package conversation

import (
	"time"

	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/model"
)

func (e *Engine) startHarvest(t *Turn) error {
	if !e.requireRole(t, model.AccountTypeBuyer) {
		return nil
	}
	return e.begin(t, seqHarvest, nil)
}

// date reads a YYYY-MM-DD value stored by a date step.
func (t *Turn) date(key string) *time.Time {
	d, ok := parseDate(t.str(key))
	if !ok {
		return nil
	}
	return &d
}

func (e *Engine) completeHarvest(t *Turn) error {
	u := t.User()
	if u == nil {
		return apperrors.MissingRequired("user")
	}
	quantity, _ := t.num("harvest_quantity")

	h, err := e.Market.CreateHarvestRequest(t.ctx, u.ID, model.HarvestInput{
		Crop:     t.str("harvest_crop"),
		Quantity: quantity,
		Unit:     t.str("harvest_unit"),
		NeededBy: t.date("harvest_needed_by"),
		Notes:    t.optional("harvest_notes"),
	})
	if err != nil {
		return apperrors.Business("create harvest request", err)
	}
	if err := t.Finish(); err != nil {
		return err
	}
	t.Say("harvest.created", h.Reference, formatNumber(h.Quantity), h.Unit, h.Crop)
	e.showMenu(t)
	return nil
}
