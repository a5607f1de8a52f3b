package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/queue"
	"github.com/farmgate/whatsapp-engine/internal/service"
	"github.com/farmgate/whatsapp-engine/internal/util"
)

type adminOperations interface {
	RotateToken(ctx context.Context, token string) error
	GetStats(ctx context.Context) (*service.Stats, error)
	DeadLetters(ctx context.Context, limit int) ([]queue.Job, error)
	DeliveryHistory(ctx context.Context, phone string, limit, offset int) ([]model.OutboundLog, error)
}

type orderNotifier interface {
	NotifyNewOrder(ctx context.Context, sellerID string, order model.Order) (service.DeliveryPath, error)
	NotifyOrderStatus(ctx context.Context, sellerID string, order model.Order) (service.DeliveryPath, error)
}

const (
	orderEventNew    = "new_order"
	orderEventStatus = "status_changed"
)

// AdminHandler serves operator endpoints. Authentication is applied by the
// caller's middleware stack.
type AdminHandler struct {
	admin    adminOperations
	notifier orderNotifier
}

func NewAdminHandler(admin adminOperations, notifier orderNotifier) *AdminHandler {
	return &AdminHandler{admin: admin, notifier: notifier}
}

func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/token", h.RotateToken)

	r.Get("/queue/stats", h.Stats)
	r.Get("/queue/dead-letters", h.DeadLetters)
	r.Get("/deliveries", h.Deliveries)

	r.Post("/notifications/order", h.NotifyOrder)

	return r
}

func (h *AdminHandler) RotateToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"), "")
		return
	}

	if err := h.admin.RotateToken(r.Context(), req.Token); err != nil {
		writeError(w, err, "failed to rotate token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.GetStats(r.Context())
	if err != nil {
		writeError(w, err, "failed to get queue stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) DeadLetters(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	jobs, err := h.admin.DeadLetters(r.Context(), limit)
	if err != nil {
		writeError(w, err, "failed to list dead letters")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": jobs,
		"total": len(jobs),
	})
}

func (h *AdminHandler) Deliveries(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r)
	phone := util.NormalizeE164(r.URL.Query().Get("phone"))
	if phone == "" {
		writeError(w, apperrors.MissingRequired("phone"), "")
		return
	}

	logs, err := h.admin.DeliveryHistory(r.Context(), phone, p.Limit, p.Offset)
	if err != nil {
		writeError(w, err, "failed to list deliveries")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": logs,
		"total": len(logs),
	})
}

// NotifyOrder lets the marketplace backend push an order event to the seller.
func (h *AdminHandler) NotifyOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Event string      `json:"event"`
		Order model.Order `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"), "")
		return
	}
	if req.Order.SellerID == "" {
		writeError(w, apperrors.MissingRequired("order.sellerId"), "")
		return
	}
	if req.Order.Reference == "" {
		writeError(w, apperrors.MissingRequired("order.reference"), "")
		return
	}

	var (
		path service.DeliveryPath
		err  error
	)
	switch req.Event {
	case orderEventNew:
		path, err = h.notifier.NotifyNewOrder(r.Context(), req.Order.SellerID, req.Order)
	case orderEventStatus:
		if req.Order.Status == "" {
			writeError(w, apperrors.MissingRequired("order.status"), "")
			return
		}
		path, err = h.notifier.NotifyOrderStatus(r.Context(), req.Order.SellerID, req.Order)
	default:
		writeError(w, apperrors.InvalidInput("event", "must be new_order or status_changed"), "")
		return
	}
	if err != nil {
		writeError(w, err, "failed to notify seller")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"path": string(path)})
}
