package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/modernwebbuilds/forkitt-api/initializers"
	"github.com/modernwebbuilds/forkitt-api/models"
	"github.com/modernwebbuilds/forkitt-api/providers"
	"github.com/modernwebbuilds/forkitt-api/services"
)

func topupCredits() float64 {
	if v := os.Getenv("TOPUP_CREDITS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 10.0
}

func webhookURL(ctx *gin.Context) string {
	if base := os.Getenv("PUBLIC_BASE_URL"); base != "" {
		return strings.TrimSuffix(base, "/") + ctx.Request.RequestURI
	}
	scheme := "https"
	if proto := ctx.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + ctx.Request.Host + ctx.Request.RequestURI
}

const emptyTwiml = `<?xml version='1.0' encoding='UTF-8'?><Response></Response>`

func twimlReply(text string) string {
	if text == "" {
		return emptyTwiml
	}
	return `<?xml version='1.0' encoding='UTF-8'?><Response><Message>` + text + `</Message></Response>`
}

// TwilioWhatsappInbound receives inbound WhatsApp traffic. Any message is an
// implicit opt-in unless it matches the opt-out vocabulary; either way the
// text is handed to the correlator to see whether it resolves to an order
// action. Twilio expects TwiML back on 200 whatever the business outcome.
func TwilioWhatsappInbound(dispatcher *services.Dispatcher, twilio *providers.TwilioClient) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if err := ctx.Request.ParseForm(); err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Malformed form body")
			return
		}
		form := ctx.Request.PostForm

		if os.Getenv("TWILIO_VALIDATE_SIGNATURE") == "true" {
			params := make(map[string]string, len(form))
			for key, values := range form {
				if len(values) > 0 {
					params[key] = values[0]
				}
			}
			signature := ctx.GetHeader("X-Twilio-Signature")
			if !twilio.ValidateSignature(webhookURL(ctx), params, signature) {
				sendErrorResponse(ctx, http.StatusForbidden, "Invalid Twilio signature")
				return
			}
		}

		from := form.Get("From")
		to := form.Get("To")
		body := strings.TrimSpace(form.Get("Body"))
		buttonText := strings.TrimSpace(form.Get("ButtonText"))
		buttonPayload := strings.TrimSpace(form.Get("ButtonPayload"))

		choice := buttonText
		if choice == "" {
			choice = buttonPayload
		}
		if choice == "" {
			choice = body
		}

		var reply string
		if choice != "" {
			if services.IsOptOutText(choice) {
				if err := services.SetWhatsappOptin(initializers.DB, from, false, "twilio_quick_reply"); err != nil {
					initializers.Log.Errorw("failed to record opt-out", "error", err)
				}
				reply = "No problem. You will not receive WhatsApp order updates. Send any message to opt back in."
			} else {
				if err := services.SetWhatsappOptin(initializers.DB, from, true, "twilio_quick_reply"); err != nil {
					initializers.Log.Errorw("failed to record opt-in", "error", err)
				}
				reply = "Thanks! You'll now receive order updates via WhatsApp. Reply STOP to opt out."
			}
		}

		outcome := services.HandleInbound(initializers.DB,
			models.ProviderTwilio, models.ChannelWhatsapp, from, to, "", body+"\n"+buttonText,
			map[string]any{
				"message_sid":    form.Get("MessageSid"),
				"button_text":    buttonText,
				"button_payload": buttonPayload,
			})
		if outcome.Status == models.MessageStatusOK {
			order := outcome.Order
			go dispatcher.NotifyCustomerStatus(order, restaurantName(order.RestaurantID))
		}

		ctx.Data(http.StatusOK, "application/xml", []byte(twimlReply(reply)))
	}
}

// SendgridInbound is the email reply entry point (SendGrid Inbound Parse).
// Authentication is a shared-secret query token; everything past that is
// soft — the endpoint answers 200 with a plain-text outcome so the provider
// never retries business mismatches.
func SendgridInbound(dispatcher *services.Dispatcher) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		expected := os.Getenv("SENDGRID_INBOUND_TOKEN")
		if expected == "" {
			sendErrorResponse(ctx, http.StatusInternalServerError, "SENDGRID_INBOUND_TOKEN is not set on server")
			return
		}
		if ctx.Query("token") != expected {
			sendErrorResponse(ctx, http.StatusUnauthorized, "Invalid inbound token")
			return
		}

		subject := ctx.PostForm("subject")
		text := ctx.PostForm("text")
		html := ctx.PostForm("html")
		fromEmail := ctx.PostForm("from")
		toEmail := ctx.PostForm("to")

		outcome := services.HandleInbound(initializers.DB,
			models.ProviderSendgrid, models.ChannelEmail, fromEmail, toEmail, subject, text+"\n"+html,
			map[string]any{"message_id": ctx.PostForm("message_id")})
		if outcome.Status == models.MessageStatusOK {
			order := outcome.Order
			go dispatcher.NotifyCustomerStatus(order, restaurantName(order.RestaurantID))
		}

		ctx.String(http.StatusOK, outcome.String())
	}
}

// StripeWebhook credits a restaurant after a completed topup checkout.
func StripeWebhook(ctx *gin.Context) {
	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if secret == "" {
		initializers.Log.Warn("STRIPE_WEBHOOK_SECRET not configured, rejecting webhook")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Webhook secret not configured")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, 1<<16))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid payload")
		return
	}

	event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), secret)
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid signature")
		return
	}

	if event.Type == "checkout.session.completed" {
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Invalid event payload")
			return
		}

		restaurantID, err := strconv.ParseUint(session.Metadata["restaurant_id"], 10, 64)
		if err != nil {
			initializers.Log.Warnw("stripe checkout completed without restaurant_id metadata", "session", session.ID)
		} else {
			newBalance, err := services.AddCredits(initializers.DB, uint(restaurantID), topupCredits(), models.ReasonStripeTopup)
			if err != nil {
				initializers.Log.Errorw("stripe topup failed", "restaurant_id", restaurantID, "error", err)
			} else {
				initializers.Log.Infow("stripe topup applied",
					"restaurant_id", restaurantID, "session", session.ID, "new_balance", newBalance)
			}
		}
	}

	ctx.Status(http.StatusOK)
}
