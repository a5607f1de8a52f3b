package httputil

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
)

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Code    apperrors.ErrorCode `json:"code"`
	Details any                 `json:"details,omitempty"`
}

var codeStatus = map[apperrors.ErrorCode]int{
	apperrors.ErrCodeValidation:      http.StatusBadRequest,
	apperrors.ErrCodeInvalidInput:    http.StatusBadRequest,
	apperrors.ErrCodeMissingRequired: http.StatusBadRequest,
	apperrors.ErrCodeOTPInvalid:      http.StatusBadRequest,
	apperrors.ErrCodeOTPExpired:      http.StatusBadRequest,

	apperrors.ErrCodeUnauthorized: http.StatusUnauthorized,
	apperrors.ErrCodeInvalidToken: http.StatusUnauthorized,
	apperrors.ErrCodeTokenExpired: http.StatusUnauthorized,

	apperrors.ErrCodeForbidden:     http.StatusForbidden,
	apperrors.ErrCodeSignature:     http.StatusForbidden,
	apperrors.ErrCodeNotPaired:     http.StatusForbidden,
	apperrors.ErrCodeAccountLocked: http.StatusForbidden,

	apperrors.ErrCodeNotFound: http.StatusNotFound,

	apperrors.ErrCodeAlreadyExists:     http.StatusConflict,
	apperrors.ErrCodeConflict:          http.StatusConflict,
	apperrors.ErrCodeDuplicateDelivery: http.StatusConflict,

	apperrors.ErrCodeRateLimitExceeded: http.StatusTooManyRequests,
	apperrors.ErrCodeOTPExhausted:      http.StatusTooManyRequests,

	apperrors.ErrCodeExternal:             http.StatusBadGateway,
	apperrors.ErrCodeUpstreamTokenExpired: http.StatusBadGateway,
	apperrors.ErrCodeUpstreamSendFailed:   http.StatusBadGateway,
	apperrors.ErrCodeBusiness:             http.StatusBadGateway,
}

// StatusFor maps an error code to its HTTP status. Unknown codes are 500.
func StatusFor(code apperrors.ErrorCode) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteError renders err with the status for its code. Errors that are not
// AppErrors are reported as a generic internal error.
func WriteError(w http.ResponseWriter, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal("An unexpected error occurred")
	}
	WriteErrorWithStatus(w, StatusFor(appErr.Code), appErr)
}

func WriteErrorWithStatus(w http.ResponseWriter, status int, err *apperrors.AppError) {
	WriteJSON(w, status, ErrorResponse{
		Error:   err.Message,
		Code:    err.Code,
		Details: err.Details,
	})
}
