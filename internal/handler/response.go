package handler

import (
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/httputil"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

// writeError logs unexpected failures before writing the mapped status.
func writeError(w http.ResponseWriter, err error, msg string) {
	if code := apperrors.GetCode(err); code == apperrors.ErrCodeInternal || code == apperrors.ErrCodeDatabase {
		log.Error().Err(err).Msg(msg)
	}
	httputil.WriteError(w, err)
}
