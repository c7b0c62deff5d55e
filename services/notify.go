package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/modernwebbuilds/forkitt-api/initializers"
	"github.com/modernwebbuilds/forkitt-api/models"
	"github.com/modernwebbuilds/forkitt-api/utils"
)

const optinTemplateAction = "optin_template"

// WhatsappSender is the provider surface the dispatcher needs: free-form
// send, the consent-establishing template, and delivery-status lookup.
type WhatsappSender interface {
	Provider() string
	SendWhatsapp(to, body string) (string, error)
	SendWhatsappTemplate(to string, vars map[string]string) (string, error)
	FetchMessageStatus(sid string) (string, error)
}

type SMSSender interface {
	Provider() string
	SendSMS(to, body string) (string, error)
}

type EmailSender interface {
	Provider() string
	SendEmail(to, subject, body string) (string, error)
}

// Dispatcher fans one logical notification out to WhatsApp, SMS and email.
// Every channel is best-effort and isolated: a provider failure is logged to
// the message audit and swallowed, never propagated to the business
// operation that triggered it.
type Dispatcher struct {
	db       *gorm.DB
	whatsapp WhatsappSender
	sms      SMSSender
	email    EmailSender

	pollAttempts   int
	pollInterval   time.Duration
	optinDedupSpan time.Duration

	wg sync.WaitGroup
}

func NewDispatcher(db *gorm.DB, whatsapp WhatsappSender, sms SMSSender, email EmailSender) *Dispatcher {
	return &Dispatcher{
		db:             db,
		whatsapp:       whatsapp,
		sms:            sms,
		email:          email,
		pollAttempts:   5,
		pollInterval:   2500 * time.Millisecond,
		optinDedupSpan: 12 * time.Hour,
	}
}

// Wait blocks until background delivery polls finish. Used on shutdown and
// in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) logOutbound(provider, channel, to, subject, body, orderNumber, action, status string, meta map[string]any) {
	entry := models.MessageLog{
		Provider:    provider,
		Channel:     channel,
		Direction:   models.DirectionOutbound,
		ToAddr:      to,
		Subject:     subject,
		BodyText:    capText(body, 5000),
		OrderNumber: orderNumber,
		Action:      action,
		Status:      status,
	}
	if meta != nil {
		if raw, err := json.Marshal(meta); err == nil {
			entry.Meta = datatypes.JSON(raw)
		}
	}
	if err := d.db.Create(&entry).Error; err != nil {
		initializers.Log.Errorw("failed to record outbound message", "error", err, "to", to, "channel", channel)
	}
	utils.NotificationsSent.WithLabelValues(channel, status).Inc()
}

func capText(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// SendWhatsapp delivers business content to an opted-in number. Numbers
// without consent get the opt-in template instead and the business content
// is dropped; free-form content must never reach them.
func (d *Dispatcher) SendWhatsapp(to, body, orderNumber string) {
	phone := NormalizePhone(to)
	if phone == "" || d.whatsapp == nil {
		return
	}
	if !IsWhatsappOptedIn(d.db, phone) {
		d.sendOptinTemplate(phone, orderNumber)
		return
	}

	sid, err := d.whatsapp.SendWhatsapp(phone, body)
	if err != nil {
		initializers.Log.Warnw("whatsapp send failed", "to", phone, "error", err)
		d.logOutbound(d.whatsapp.Provider(), models.ChannelWhatsapp, phone, "", body, orderNumber, "",
			models.MessageStatusError, map[string]any{"error": err.Error()})
		return
	}
	d.logOutbound(d.whatsapp.Provider(), models.ChannelWhatsapp, phone, "", body, orderNumber, "",
		models.MessageStatusOK, map[string]any{"message_sid": sid})

	d.pollDelivery(phone, sid, orderNumber)
}

// sendOptinTemplate asks the number for consent, at most once per dedup
// window so a flapping provider cannot spam templates.
func (d *Dispatcher) sendOptinTemplate(phone, orderNumber string) {
	since := time.Now().Add(-d.optinDedupSpan)
	var recent int64
	d.db.Model(&models.MessageLog{}).
		Where("channel = ? AND direction = ? AND to_addr = ? AND action = ? AND created_at > ?",
			models.ChannelWhatsapp, models.DirectionOutbound, phone, optinTemplateAction, since).
		Count(&recent)
	if recent > 0 {
		initializers.Log.Debugw("opt-in template already sent recently, skipping", "to", phone)
		return
	}

	sid, err := d.whatsapp.SendWhatsappTemplate(phone, map[string]string{"1": orderNumber})
	if err != nil {
		initializers.Log.Warnw("opt-in template send failed", "to", phone, "error", err)
		d.logOutbound(d.whatsapp.Provider(), models.ChannelWhatsapp, phone, "", "", orderNumber, optinTemplateAction,
			models.MessageStatusError, map[string]any{"error": err.Error()})
		return
	}
	d.logOutbound(d.whatsapp.Provider(), models.ChannelWhatsapp, phone, "", "", orderNumber, optinTemplateAction,
		models.MessageStatusOK, map[string]any{"message_sid": sid})
}

// pollDelivery watches a sent message for a bounded window and falls back to
// the opt-in template when the provider reports it undeliverable. Runs as a
// best-effort background task; it never blocks the caller.
func (d *Dispatcher) pollDelivery(phone, sid, orderNumber string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		budget := time.Duration(d.pollAttempts+1) * d.pollInterval
		ctx, cancel := context.WithTimeout(context.Background(), budget+5*time.Second)
		defer cancel()

		for attempt := 0; attempt < d.pollAttempts; attempt++ {
			select {
			case <-ctx.Done():
				return
			case <-time.After(d.pollInterval):
			}

			status, err := d.whatsapp.FetchMessageStatus(sid)
			if err != nil {
				initializers.Log.Debugw("message status fetch failed", "sid", sid, "error", err)
				continue
			}
			switch status {
			case "delivered", "read":
				return
			case "failed", "undelivered":
				initializers.Log.Infow("whatsapp delivery failed, falling back to opt-in template",
					"to", phone, "sid", sid, "delivery_status", status)
				d.logOutbound(d.whatsapp.Provider(), models.ChannelWhatsapp, phone, "", "", orderNumber, "",
					models.MessageStatusError, map[string]any{"message_sid": sid, "delivery_status": status})
				d.sendOptinTemplate(phone, orderNumber)
				return
			}
		}
	}()
}

func (d *Dispatcher) SendSMS(to, body, orderNumber string) {
	phone := NormalizePhone(to)
	if phone == "" || d.sms == nil {
		return
	}
	sid, err := d.sms.SendSMS(phone, body)
	if err != nil {
		initializers.Log.Warnw("sms send failed", "to", phone, "error", err)
		d.logOutbound(d.sms.Provider(), models.ChannelSMS, phone, "", body, orderNumber, "",
			models.MessageStatusError, map[string]any{"error": err.Error()})
		return
	}
	d.logOutbound(d.sms.Provider(), models.ChannelSMS, phone, "", body, orderNumber, "",
		models.MessageStatusOK, map[string]any{"message_sid": sid})
}

func (d *Dispatcher) SendEmail(to, subject, body, orderNumber string) {
	if to == "" || d.email == nil {
		return
	}
	id, err := d.email.SendEmail(to, subject, body)
	if err != nil {
		initializers.Log.Warnw("email send failed", "to", to, "error", err)
		d.logOutbound(d.email.Provider(), models.ChannelEmail, to, subject, body, orderNumber, "",
			models.MessageStatusError, map[string]any{"error": err.Error()})
		return
	}
	d.logOutbound(d.email.Provider(), models.ChannelEmail, to, subject, body, orderNumber, "",
		models.MessageStatusOK, map[string]any{"message_id": id})
}

func channelEnabled(preference, channel string) bool {
	return preference == "" || preference == "both" || preference == channel
}

// NotifyNewOrder tells the restaurant owner about a fresh order, including
// the one-click accept/reject links built from the owner action token.
func (d *Dispatcher) NotifyNewOrder(order *models.Order, restaurant *models.Restaurant) {
	var items strings.Builder
	for _, line := range order.OrderItems {
		fmt.Fprintf(&items, "  %dx %s - £%.2f\n", line.Quantity, line.ItemName, line.UnitPrice*float64(line.Quantity))
	}

	base := os.Getenv("PUBLIC_BASE_URL")
	confirmURL := fmt.Sprintf("%s/orders/%s/owner-action?action=confirmed&token=%s", base, order.OrderNumber, order.OwnerActionToken)
	cancelURL := fmt.Sprintf("%s/orders/%s/owner-action?action=cancelled&token=%s", base, order.OrderNumber, order.OwnerActionToken)

	message := fmt.Sprintf(
		"New order %s!\n\n%s\nSubtotal: £%.2f\nPickup: %s\nCustomer: %s (%s)\n",
		order.OrderNumber, items.String(), order.Subtotal, order.PickupTime,
		order.CustomerName, order.CustomerPhone,
	)
	if order.SpecialInstructions != "" {
		message += fmt.Sprintf("Notes: %s\n", order.SpecialInstructions)
	}
	message += fmt.Sprintf("\nAccept: %s\nReject: %s", confirmURL, cancelURL)

	if restaurant.WhatsappNumber != "" && channelEnabled(restaurant.NotificationChannel, models.ChannelWhatsapp) {
		d.SendWhatsapp(restaurant.WhatsappNumber, message, order.OrderNumber)
	}
	if restaurant.OwnerEmail != "" && channelEnabled(restaurant.NotificationChannel, models.ChannelEmail) {
		subject := fmt.Sprintf("New Order %s - %s", order.OrderNumber, restaurant.Name)
		d.SendEmail(restaurant.OwnerEmail, subject, message, order.OrderNumber)
	}
}

// NotifyCustomerStatus tells the customer about a status change. SMS is
// gated by the per-order opt-in the customer set at checkout; WhatsApp by
// the platform-wide consent record.
func (d *Dispatcher) NotifyCustomerStatus(order *models.Order, restaurantName string) {
	messages := map[string]string{
		models.StatusConfirmed: fmt.Sprintf(
			"Your order %s at %s is confirmed!\nPickup at: %s\nPay at the restaurant. See you soon!",
			order.OrderNumber, restaurantName, order.PickupTime),
		models.StatusReady: fmt.Sprintf(
			"Your order %s at %s is ready for collection!\nPlease pick it up as soon as possible.",
			order.OrderNumber, restaurantName),
		models.StatusCancelled: fmt.Sprintf(
			"Your order %s at %s has been cancelled.\nPlease contact the restaurant for details.",
			order.OrderNumber, restaurantName),
	}
	message, ok := messages[order.Status]
	if !ok {
		return
	}

	d.SendWhatsapp(order.CustomerPhone, message, order.OrderNumber)
	if order.SMSOptin {
		d.SendSMS(order.CustomerPhone, message, order.OrderNumber)
	}
	if order.CustomerEmail != "" {
		subject := fmt.Sprintf("Order %s - %s", order.OrderNumber, titleCase(order.Status))
		d.SendEmail(order.CustomerEmail, subject, message, order.OrderNumber)
	}
}

// NotifyTimeChanged tells the customer the owner moved their pickup slot.
func (d *Dispatcher) NotifyTimeChanged(order *models.Order, restaurantName, note string) {
	message := fmt.Sprintf(
		"Update on your order %s at %s: pickup time is now %s.",
		order.OrderNumber, restaurantName, order.PickupTime)
	if note != "" {
		message += fmt.Sprintf("\nNote from the restaurant: %s", note)
	}

	d.SendWhatsapp(order.CustomerPhone, message, order.OrderNumber)
	if order.SMSOptin {
		d.SendSMS(order.CustomerPhone, message, order.OrderNumber)
	}
	if order.CustomerEmail != "" {
		d.SendEmail(order.CustomerEmail, fmt.Sprintf("Order %s - Pickup time changed", order.OrderNumber), message, order.OrderNumber)
	}
}

// NotifyFollowup is the one-shot post-pickup nudge sent by the sweeper.
func (d *Dispatcher) NotifyFollowup(order *models.Order, restaurantName string) {
	message := fmt.Sprintf(
		"Hi %s, how was your order %s from %s? We'd love to see you again soon!",
		order.CustomerName, order.OrderNumber, restaurantName)

	d.SendWhatsapp(order.CustomerPhone, message, order.OrderNumber)
	if order.SMSOptin {
		d.SendSMS(order.CustomerPhone, message, order.OrderNumber)
	}
}

// SendDirect delivers an owner-written message to one recipient over the
// selected channels. Returns the number of sends attempted; WhatsApp counts
// only when the number has consented.
func (d *Dispatcher) SendDirect(phone, email string, channels []string, message, restaurantName string) int {
	sent := 0
	for _, channel := range channels {
		switch channel {
		case models.ChannelWhatsapp:
			if phone != "" && IsWhatsappOptedIn(d.db, phone) {
				d.SendWhatsapp(phone, message, "")
				sent++
			}
		case models.ChannelSMS:
			if phone != "" {
				d.SendSMS(phone, message, "")
				sent++
			}
		case models.ChannelEmail:
			if email != "" {
				d.SendEmail(email, fmt.Sprintf("Message from %s", restaurantName), message, "")
				sent++
			}
		}
	}
	return sent
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
