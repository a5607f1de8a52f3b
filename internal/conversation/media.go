package conversation

import (
	"strings"

	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/model"
)

// Object key prefixes in the media bucket.
const (
	mediaProducts = "products"
	mediaIdentity = "identity"
)

func isPhoto(mime string) bool {
	switch strings.ToLower(mime) {
	case "image/jpeg", "image/png", "image/webp":
		return true
	}
	return false
}

// storeMedia copies an inbound attachment to the bucket and returns its
// object key. Without a bucket the WhatsApp media id is kept instead.
func (e *Engine) storeMedia(t *Turn, prefix string) (string, error) {
	if e.Media == nil {
		return t.Ev.MediaID, nil
	}
	m, err := e.Downloader.DownloadMedia(t.ctx, t.Ev.MediaID)
	if err != nil {
		return "", apperrors.External("whatsapp media", err)
	}
	mime := m.MimeType
	if mime == "" {
		mime = t.Ev.MimeType
	}
	key, err := e.Media.Put(t.ctx, prefix, t.User().ID, m.Data, mime)
	if err != nil {
		return "", apperrors.External("media store", err)
	}
	return key, nil
}

func (e *Engine) startIDDocument(t *Turn) error {
	if !e.requireUser(t) {
		return nil
	}
	if err := t.Start(model.FlowIDDocument, nil); err != nil {
		return err
	}
	e.prompt(t)
	return nil
}

func (e *Engine) idDocumentText(t *Turn, _ string) error {
	e.prompt(t)
	return nil
}

func (e *Engine) idDocument(t *Turn) error {
	if t.User() == nil {
		return e.cmdMenu(t)
	}
	mime := strings.ToLower(t.Ev.MimeType)
	if !isPhoto(mime) && mime != "application/pdf" {
		e.reject(t, "image.unsupported")
		return nil
	}
	key, err := e.storeMedia(t, mediaIdentity)
	if err != nil {
		return err
	}
	if err := e.Market.AttachIDDocument(t.ctx, t.User().ID, key); err != nil {
		return apperrors.Business("attach id document", err)
	}
	if err := t.Finish(); err != nil {
		return err
	}
	t.Say("id.saved")
	e.showMenu(t)
	return nil
}
