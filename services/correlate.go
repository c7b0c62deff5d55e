package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/modernwebbuilds/forkitt-api/initializers"
	"github.com/modernwebbuilds/forkitt-api/models"
	"github.com/modernwebbuilds/forkitt-api/utils"
)

// orderNumberRe matches the wire-visible order number contract (AB-001).
// Prefixes run two or three letters, suffixes grow past three digits.
var orderNumberRe = regexp.MustCompile(`\b[A-Z]{2,3}-[0-9]{3,}\b`)

// InboundOutcome is the result of correlating one inbound payload. Status is
// ok or ignored; only malformed or unauthenticated payloads are hard
// failures, and those never reach the correlator.
type InboundOutcome struct {
	Status      string
	Detail      string
	OrderNumber string
	Action      string
	Order       *models.Order
}

func (o InboundOutcome) String() string {
	if o.Status == models.MessageStatusOK {
		return fmt.Sprintf("ok: %s -> %s", o.OrderNumber, o.Action)
	}
	return "ignored: " + o.Detail
}

// ExtractOrderNumber finds an order-number pattern anywhere in free text.
func ExtractOrderNumber(text string) string {
	return orderNumberRe.FindString(text)
}

// ExtractAction classifies free text into a target status by keyword family.
func ExtractAction(text string) string {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "confirm") || strings.Contains(t, "accept") || strings.Contains(t, "approve"):
		return models.StatusConfirmed
	case strings.Contains(t, "cancel") || strings.Contains(t, "reject") || strings.Contains(t, "decline"):
		return models.StatusCancelled
	}
	return ""
}

// HandleInbound recovers an order number and an intended action from a reply
// payload, feeds the order engine, and records the attempt in the message
// log whatever the outcome. Business-logic mismatches degrade to ignored so
// webhook processing stays idempotent.
func HandleInbound(db *gorm.DB, provider, channel, fromAddr, toAddr, subject, text string, meta map[string]any) InboundOutcome {
	haystack := subject + "\n" + text

	outcome := InboundOutcome{Status: models.MessageStatusIgnored}
	outcome.OrderNumber = ExtractOrderNumber(haystack)
	if outcome.OrderNumber == "" {
		outcome.Detail = "no order number"
		logInbound(db, provider, channel, fromAddr, toAddr, subject, text, outcome, meta)
		return outcome
	}

	outcome.Action = ExtractAction(haystack)
	if outcome.Action == "" {
		outcome.Detail = "no action"
		logInbound(db, provider, channel, fromAddr, toAddr, subject, text, outcome, meta)
		return outcome
	}

	order, err := GetOrderByNumber(db, outcome.OrderNumber)
	if err != nil {
		outcome.Detail = fmt.Sprintf("order not found (%s)", outcome.OrderNumber)
		logInbound(db, provider, channel, fromAddr, toAddr, subject, text, outcome, meta)
		return outcome
	}

	updated, err := AdvanceStatus(db, order.ID, outcome.Action, order.RestaurantID)
	if err != nil {
		outcome.Detail = err.Error()
		if meta == nil {
			meta = map[string]any{}
		}
		meta["error"] = err.Error()
		logInbound(db, provider, channel, fromAddr, toAddr, subject, text, outcome, meta)
		return outcome
	}

	outcome.Status = models.MessageStatusOK
	outcome.Order = updated
	logInbound(db, provider, channel, fromAddr, toAddr, subject, text, outcome, meta)
	return outcome
}

func logInbound(db *gorm.DB, provider, channel, fromAddr, toAddr, subject, text string, outcome InboundOutcome, meta map[string]any) {
	entry := models.MessageLog{
		Provider:    provider,
		Channel:     channel,
		Direction:   models.DirectionInbound,
		FromAddr:    fromAddr,
		ToAddr:      toAddr,
		Subject:     capText(subject, 500),
		BodyText:    capText(text, 10000),
		OrderNumber: outcome.OrderNumber,
		Action:      outcome.Action,
		Status:      outcome.Status,
	}
	if meta != nil {
		if raw, err := json.Marshal(meta); err == nil {
			entry.Meta = datatypes.JSON(raw)
		}
	}
	if err := db.Create(&entry).Error; err != nil {
		initializers.Log.Errorw("failed to record inbound message", "error", err, "provider", provider)
	}

	utils.InboundWebhooks.WithLabelValues(provider, outcome.Status).Inc()
	initializers.Log.Infow("inbound message processed",
		"provider", provider,
		"channel", channel,
		"from", fromAddr,
		"outcome", outcome.String(),
	)
}
