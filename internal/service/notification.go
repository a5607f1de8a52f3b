package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/farmgate/whatsapp-engine/internal/audit"
	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/i18n"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/util"
	"github.com/farmgate/whatsapp-engine/internal/whatsapp"
)

// Pre-approved template names registered with the provider.
const (
	TemplateNewOrder    = "new_order_alert"
	TemplateOrderStatus = "order_status_update"
)

type recipientDirectory interface {
	LastInbound(ctx context.Context, phone string) (*time.Time, error)
	IsOptedOut(ctx context.Context, phone string) (bool, error)
	PhoneForUser(ctx context.Context, userID string) (string, error)
	Find(ctx context.Context, phone string) (*model.Contact, error)
}

type pairingChecker interface {
	IsPaired(ctx context.Context, userID, phone string) (bool, error)
}

type messageSender interface {
	Send(ctx context.Context, msg whatsapp.Message) error
}

// Notification is a proactive message with both renderings: Text for the
// free-form path and Template plus Params for the templated path.
type Notification struct {
	To       string
	Locale   string
	Text     string
	Template string
	Params   []string
}

// DeliveryPath is the rendering chosen for a notification.
type DeliveryPath string

const (
	PathSuppressed DeliveryPath = "suppressed"
	PathFreeForm   DeliveryPath = "free_form"
	PathTemplate   DeliveryPath = "template"
)

// WithinWindow reports whether last falls inside the responsiveness window
// ending at now. A contact that never wrote is outside.
func WithinWindow(last *time.Time, now time.Time, window time.Duration) bool {
	if last == nil {
		return false
	}
	return now.Sub(*last) < window
}

// TemplateLanguage maps a session locale to the provider's template language tag.
func TemplateLanguage(locale string) string {
	switch locale {
	case model.LocaleSpanish:
		return "es"
	default:
		return "en_US"
	}
}

// NotificationService sends proactive messages, picking free-form or template
// delivery from the recipient's last inbound time.
type NotificationService struct {
	contacts recipientDirectory
	pairing  pairingChecker
	sender   messageSender
	window   time.Duration
	now      func() time.Time
}

func NewNotificationService(contacts recipientDirectory, pairing pairingChecker, sender messageSender, window time.Duration) *NotificationService {
	return &NotificationService{
		contacts: contacts,
		pairing:  pairing,
		sender:   sender,
		window:   window,
		now:      time.Now,
	}
}

// Deliver sends n. Opted-out recipients are skipped with a warning and no error.
func (s *NotificationService) Deliver(ctx context.Context, n Notification) (DeliveryPath, error) {
	optedOut, err := s.contacts.IsOptedOut(ctx, n.To)
	if err != nil {
		return "", err
	}
	if optedOut {
		log.Warn().
			Str("phone", util.MaskPhone(n.To)).
			Str("template", n.Template).
			Msg("recipient opted out, notification suppressed")
		notificationsCounter.WithLabelValues(string(PathSuppressed)).Inc()
		return PathSuppressed, nil
	}

	last, err := s.contacts.LastInbound(ctx, n.To)
	if err != nil {
		return "", err
	}

	if WithinWindow(last, s.now(), s.window) {
		if err := s.sender.Send(ctx, whatsapp.NewText(util.WaID(n.To), n.Text)); err != nil {
			return "", err
		}
		notificationsCounter.WithLabelValues(string(PathFreeForm)).Inc()
		return PathFreeForm, nil
	}

	msg := whatsapp.NewTemplate(util.WaID(n.To), n.Template, TemplateLanguage(n.Locale), n.Params...)
	if err := s.sender.Send(ctx, msg); err != nil {
		return "", err
	}
	notificationsCounter.WithLabelValues(string(PathTemplate)).Inc()
	return PathTemplate, nil
}

// pairedRecipient resolves the phone bound to userID and confirms it is the
// number the user last verified from.
func (s *NotificationService) pairedRecipient(ctx context.Context, userID string) (string, string, error) {
	phone, err := s.contacts.PhoneForUser(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("find user phone: %w", err)
	}
	if phone == "" {
		return "", "", apperrors.NotFound("WhatsApp contact")
	}

	paired, err := s.pairing.IsPaired(ctx, userID, phone)
	if err != nil {
		return "", "", err
	}
	if !paired {
		audit.Log(ctx, audit.Event{
			Type:    audit.EventPairingMismatch,
			UserID:  userID,
			Phone:   util.MaskPhone(phone),
			Details: map[string]interface{}{"action": "notification_withheld"},
		})
		return "", "", apperrors.NotPaired()
	}

	locale := model.LocaleEnglish
	if c, err := s.contacts.Find(ctx, phone); err == nil && c != nil && c.Locale != "" {
		locale = c.Locale
	}
	return phone, locale, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// NotifyNewOrder alerts the seller that a buyer placed an order.
func (s *NotificationService) NotifyNewOrder(ctx context.Context, sellerID string, order model.Order) (DeliveryPath, error) {
	phone, locale, err := s.pairedRecipient(ctx, sellerID)
	if err != nil {
		return "", err
	}

	quantity := formatAmount(order.Quantity) + " " + order.Unit
	total := formatAmount(order.Total) + " " + order.Currency
	return s.Deliver(ctx, Notification{
		To:       phone,
		Locale:   locale,
		Text:     i18n.T(locale, "notify.new_order", order.Reference, order.ProductName, quantity, order.BuyerName, total),
		Template: TemplateNewOrder,
		Params:   []string{order.Reference, order.ProductName, quantity, order.BuyerName, total},
	})
}

// NotifyOrderStatus tells the seller an order moved to a new status.
func (s *NotificationService) NotifyOrderStatus(ctx context.Context, sellerID string, order model.Order) (DeliveryPath, error) {
	phone, locale, err := s.pairedRecipient(ctx, sellerID)
	if err != nil {
		return "", err
	}

	status := i18n.T(locale, "status."+string(order.Status))
	return s.Deliver(ctx, Notification{
		To:       phone,
		Locale:   locale,
		Text:     i18n.T(locale, "notify.order_status", order.Reference, status),
		Template: TemplateOrderStatus,
		Params:   []string{order.Reference, status},
	})
}
