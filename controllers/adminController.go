package controllers

import (
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"

	"github.com/modernwebbuilds/forkitt-api/initializers"
	"github.com/modernwebbuilds/forkitt-api/models"
	"github.com/modernwebbuilds/forkitt-api/services"
)

const magicLinkTTL = 15 * time.Minute

func restaurantFromContext(ctx *gin.Context) models.Restaurant {
	return ctx.MustGet("restaurant").(models.Restaurant)
}

// ListAdminOrders returns the acting restaurant's orders, optionally
// filtered by status.
func ListAdminOrders(ctx *gin.Context) {
	restaurant := restaurantFromContext(ctx)

	orders, err := services.ListOrders(initializers.DB, restaurant.ID, ctx.Query("status"))
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"orders": orders})
}

// UpdateOrderStatus advances an order through the state machine on behalf of
// the authenticated restaurant and notifies the customer on success.
func UpdateOrderStatus(dispatcher *services.Dispatcher) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		restaurant := restaurantFromContext(ctx)

		orderID, err := strconv.ParseUint(ctx.Param("orderId"), 10, 64)
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse orderId")
			return
		}

		var body struct {
			Status string `json:"status" binding:"required"`
		}
		if err := ctx.ShouldBindJSON(&body); err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse request body")
			return
		}

		updated, err := services.AdvanceStatus(initializers.DB, uint(orderID), body.Status, restaurant.ID)
		if err != nil {
			respondWithServiceError(ctx, err)
			return
		}

		go dispatcher.NotifyCustomerStatus(updated, restaurant.Name)

		sendJSONResponse(ctx, http.StatusOK, gin.H{"order": updated})
	}
}

// UpdatePickupTime moves an order's pickup slot and tells the customer. Only
// active orders can be rescheduled; the state machine is not involved.
func UpdatePickupTime(dispatcher *services.Dispatcher) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		restaurant := restaurantFromContext(ctx)

		orderID, err := strconv.ParseUint(ctx.Param("orderId"), 10, 64)
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse orderId")
			return
		}

		var body struct {
			PickupTime string `json:"pickupTime" binding:"required"`
			Note       string `json:"note"`
		}
		if err := ctx.ShouldBindJSON(&body); err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "A pickupTime is required")
			return
		}

		var order models.Order
		err = initializers.DB.Where("id = ? AND restaurant_id = ?", uint(orderID), restaurant.ID).
			First(&order).Error
		if err != nil {
			respondWithServiceError(ctx, services.ErrOrderNotFound)
			return
		}
		if order.Status == models.StatusCollected || order.Status == models.StatusCancelled {
			sendErrorResponse(ctx, http.StatusBadRequest, "Cannot reschedule a "+order.Status+" order")
			return
		}

		updates := map[string]any{"pickup_time": body.PickupTime, "owner_note": body.Note}
		if err := initializers.DB.Model(&order).Updates(updates).Error; err != nil {
			initializers.Log.Errorw("pickup time update failed", "order_number", order.OrderNumber, "error", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update pickup time")
			return
		}

		go dispatcher.NotifyTimeChanged(&order, restaurant.Name, body.Note)

		sendJSONResponse(ctx, http.StatusOK, gin.H{"order": order})
	}
}

// ListCustomers aggregates the restaurant's order history into a contact
// list, annotated with each number's platform-wide WhatsApp consent.
func ListCustomers(ctx *gin.Context) {
	restaurant := restaurantFromContext(ctx)

	type customerRow struct {
		CustomerPhone string `json:"phone"`
		CustomerName  string `json:"name"`
		CustomerEmail string `json:"email"`
		Orders        int64  `json:"orders"`
		SmsOptin      int    `json:"-"`
	}
	var rows []customerRow
	err := initializers.DB.Model(&models.Order{}).
		Select("customer_phone, MAX(customer_name) as customer_name, MAX(customer_email) as customer_email, COUNT(*) as orders, MAX(sms_optin) as sms_optin").
		Where("restaurant_id = ?", restaurant.ID).
		Group("customer_phone").
		Scan(&rows).Error
	if err != nil {
		initializers.Log.Errorw("customer aggregation failed", "error", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to fetch customers")
		return
	}

	customers := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, gin.H{
			"phone":         row.CustomerPhone,
			"name":          row.CustomerName,
			"email":         row.CustomerEmail,
			"orders":        row.Orders,
			"smsOptin":      row.SmsOptin > 0,
			"whatsappOptin": services.IsWhatsappOptedIn(initializers.DB, row.CustomerPhone),
		})
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"customers": customers})
}

// SendCustomerMessage fans an owner-written message out to selected
// customers. Gated on a positive credit balance like order intake.
func SendCustomerMessage(dispatcher *services.Dispatcher) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		restaurant := restaurantFromContext(ctx)

		var body struct {
			Message    string `json:"message" binding:"required"`
			Recipients []struct {
				Phone    string   `json:"phone"`
				Email    string   `json:"email"`
				Channels []string `json:"channels"`
			} `json:"recipients" binding:"required,min=1"`
		}
		if err := ctx.ShouldBindJSON(&body); err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Message and recipients are required")
			return
		}

		if !services.HasCredits(initializers.DB, restaurant.ID) {
			sendErrorResponse(ctx, http.StatusPaymentRequired, "Insufficient credits to send messages")
			return
		}

		sent := 0
		for _, recipient := range body.Recipients {
			sent += dispatcher.SendDirect(recipient.Phone, recipient.Email, recipient.Channels, body.Message, restaurant.Name)
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{"ok": true, "sent": sent})
	}
}

// CreateTopupSession opens a Stripe Checkout session for a credit topup; the
// webhook applies the credits once the session completes.
func CreateTopupSession(ctx *gin.Context) {
	secretKey := os.Getenv("STRIPE_SECRET_KEY")
	priceID := os.Getenv("STRIPE_PRICE_ID")
	if secretKey == "" || priceID == "" {
		sendErrorResponse(ctx, http.StatusNotImplemented, "Stripe is not configured")
		return
	}
	stripe.Key = secretKey

	restaurant := restaurantFromContext(ctx)
	base := os.Getenv("FRONTEND_URL")

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(base + "/admin/dashboard?topup=success"),
		CancelURL:  stripe.String(base + "/admin/dashboard?topup=cancel"),
	}
	params.AddMetadata("restaurant_id", strconv.FormatUint(uint64(restaurant.ID), 10))

	checkoutSession, err := session.New(params)
	if err != nil {
		initializers.Log.Errorw("stripe checkout session failed", "error", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to create topup session")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"url": checkoutSession.URL})
}

// RequestMagicLink emails the restaurant owner a short-lived signed sign-in
// link. The response is identical whether or not the email is known.
func RequestMagicLink(dispatcher *services.Dispatcher) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var body struct {
			Email string `json:"email" binding:"required,email"`
		}
		if err := ctx.ShouldBindJSON(&body); err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "A valid email is required")
			return
		}

		reply := gin.H{"message": "If that email is registered, a sign-in link is on its way."}

		var restaurant models.Restaurant
		if err := initializers.DB.Where("owner_email = ?", body.Email).First(&restaurant).Error; err != nil {
			sendJSONResponse(ctx, http.StatusOK, reply)
			return
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"restaurant_id": restaurant.ID,
			"purpose":       "magic_link",
			"iat":           time.Now().Unix(),
			"exp":           time.Now().Add(magicLinkTTL).Unix(),
		})
		signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
		if err != nil {
			initializers.Log.Errorw("magic link signing failed", "error", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Internal server error")
			return
		}

		link := os.Getenv("FRONTEND_URL") + "/admin/magic?token=" + url.QueryEscape(signed)
		message := "Click to sign in to your dashboard: " + link +
			"\n\nThis link expires in 15 minutes. If you didn't request it, ignore this email."
		go dispatcher.SendEmail(restaurant.OwnerEmail, "Your dashboard sign-in link", message, "")

		sendJSONResponse(ctx, http.StatusOK, reply)
	}
}

// VerifyMagicLink swaps a valid magic-link token for the restaurant's admin
// token.
func VerifyMagicLink(ctx *gin.Context) {
	var body struct {
		Token string `json:"token" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Token is required")
		return
	}

	parsed, err := jwt.Parse(body.Token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !parsed.Valid {
		sendErrorResponse(ctx, http.StatusUnauthorized, "Invalid or expired link")
		return
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || claims["purpose"] != "magic_link" {
		sendErrorResponse(ctx, http.StatusUnauthorized, "Invalid or expired link")
		return
	}
	restaurantID, ok := claims["restaurant_id"].(float64)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "Invalid or expired link")
		return
	}

	var restaurant models.Restaurant
	if err := initializers.DB.First(&restaurant, uint(restaurantID)).Error; err != nil {
		sendErrorResponse(ctx, http.StatusUnauthorized, "Invalid or expired link")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"adminToken":   restaurant.AdminToken,
		"restaurantId": restaurant.ID,
	})
}
