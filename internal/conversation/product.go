package conversation

import (
	"strings"

	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/whatsapp"
)

const productPhotosKey = "product_photos"

// startProduct opens the listing flow. A seller whose phone is not paired
// verifies first and lands back here afterwards.
func (e *Engine) startProduct(t *Turn) error {
	if !e.requireRole(t, model.AccountTypeSeller) {
		return nil
	}
	u := t.User()
	paired, err := e.Security.IsPaired(t.ctx, u.ID, t.Phone)
	if err != nil {
		return err
	}
	if !paired {
		return e.beginVerify(t, u.ID, u.Email, seqProduct)
	}
	return e.begin(t, seqProduct, nil)
}

func (e *Engine) promptPhotos(t *Turn) {
	t.Buttons(t.T("product.photos", e.opts.MaxPhotos), []whatsapp.Button{
		{ID: buttonPhotosDone, Title: t.T("button.done")},
		{ID: buttonSkip, Title: t.T("button.skip")},
	})
}

func (e *Engine) photosText(t *Turn, raw string) error {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "done", "skip", "listo":
		return sequences[seqProduct].complete(e, t)
	}
	e.prompt(t)
	return nil
}

func (e *Engine) productPhoto(t *Turn) error {
	if !isPhoto(t.Ev.MimeType) {
		t.Say("image.unsupported")
		return nil
	}
	photos := t.stringList(productPhotosKey)
	if len(photos) >= e.opts.MaxPhotos {
		t.Say("product.photos_full")
		return nil
	}

	key, err := e.storeMedia(t, mediaProducts)
	if err != nil {
		return err
	}
	photos = append(photos, key)
	if err := t.Merge(map[string]any{productPhotosKey: photos}); err != nil {
		return err
	}
	if len(photos) >= e.opts.MaxPhotos {
		t.Say("product.photos_full")
		return nil
	}
	t.Say("product.photo_saved", len(photos))
	return nil
}

func (e *Engine) completeProduct(t *Turn) error {
	u := t.User()
	if u == nil {
		return apperrors.MissingRequired("user")
	}
	price, _ := t.num("product_price")
	quantity, _ := t.num("product_quantity")

	p, err := e.Market.CreateProduct(t.ctx, u.ID, model.ProductInput{
		Name:        t.str("product_name"),
		Category:    t.str("product_category"),
		Description: t.optional("product_description"),
		Price:       price,
		Quantity:    quantity,
		Unit:        t.str("product_unit"),
		Photos:      t.stringList(productPhotosKey),
	})
	if err != nil {
		return apperrors.Business("create product", err)
	}
	if err := t.Finish(); err != nil {
		return err
	}
	t.Say("product.created", p.Name, formatNumber(p.Quantity), p.Unit, formatNumber(p.Price))
	e.showMenu(t)
	return nil
}
