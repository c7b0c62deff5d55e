package controllers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modernwebbuilds/forkitt-api/models"
	"github.com/modernwebbuilds/forkitt-api/providers"
	"github.com/modernwebbuilds/forkitt-api/services"
)

func postForm(server *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	server.ServeHTTP(res, req)
	return res
}

func TestSendgridInboundRequiresToken(t *testing.T) {
	db := setupTestDB(t)
	server := gin.New()
	server.POST("/webhooks/sendgrid/inbound", SendgridInbound(newNoopDispatcher(db)))

	form := url.Values{"subject": {"Re: order"}, "text": {"confirm AB-001"}}

	// Unset secret on the server side is a hard failure.
	t.Setenv("SENDGRID_INBOUND_TOKEN", "")
	res := postForm(server, "/webhooks/sendgrid/inbound", form)
	assert.Equal(t, http.StatusInternalServerError, res.Code)

	t.Setenv("SENDGRID_INBOUND_TOKEN", "sekret")

	res = postForm(server, "/webhooks/sendgrid/inbound?token=wrong", form)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	var count int64
	db.Model(&models.MessageLog{}).Count(&count)
	assert.Zero(t, count, "rejected payloads never reach the correlator")
}

func TestSendgridInboundConfirmsOrder(t *testing.T) {
	t.Setenv("SENDGRID_INBOUND_TOKEN", "sekret")

	db := setupTestDB(t)
	restaurant := seedRestaurant(t, db, "Email Eats", 20)
	order := seedOrder(t, db, restaurant.ID, "EE-001", models.StatusPending)

	server := gin.New()
	server.POST("/webhooks/sendgrid/inbound", SendgridInbound(newNoopDispatcher(db)))

	form := url.Values{
		"subject": {"Re: New Order EE-001 - Email Eats"},
		"text":    {"Confirm, we got it"},
		"from":    {"owner@emaileats.example"},
		"to":      {"orders@forkitt.app"},
	}
	res := postForm(server, "/webhooks/sendgrid/inbound?token=sekret", form)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "ok: EE-001 -> confirmed", res.Body.String())

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.StatusConfirmed, stored.Status)
}

func TestSendgridInboundUnknownOrderAnswers200(t *testing.T) {
	t.Setenv("SENDGRID_INBOUND_TOKEN", "sekret")

	db := setupTestDB(t)
	server := gin.New()
	server.POST("/webhooks/sendgrid/inbound", SendgridInbound(newNoopDispatcher(db)))

	form := url.Values{"subject": {""}, "text": {"ZZ-999 please confirm"}}
	res := postForm(server, "/webhooks/sendgrid/inbound?token=sekret", form)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "ignored: order not found (ZZ-999)", res.Body.String())

	var entry models.MessageLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "ZZ-999", entry.OrderNumber)
	assert.Equal(t, models.ProviderSendgrid, entry.Provider)
}

func TestTwilioWhatsappInboundRecordsConsent(t *testing.T) {
	db := setupTestDB(t)
	server := gin.New()
	server.POST("/webhooks/twilio/whatsapp", TwilioWhatsappInbound(newNoopDispatcher(db), providers.NewTwilioClient()))

	form := url.Values{
		"From":       {"whatsapp:+447911123456"},
		"To":         {"whatsapp:+14155238886"},
		"Body":       {"Yes please"},
		"MessageSid": {"SM123"},
	}
	res := postForm(server, "/webhooks/twilio/whatsapp", form)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "application/xml", res.Header().Get("Content-Type"))
	assert.Contains(t, res.Body.String(), "order updates via WhatsApp")
	assert.True(t, services.IsWhatsappOptedIn(db, "+447911123456"))

	// STOP flips the same record back off.
	form.Set("Body", "STOP")
	res = postForm(server, "/webhooks/twilio/whatsapp", form)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "not receive WhatsApp order updates")
	assert.False(t, services.IsWhatsappOptedIn(db, "+447911123456"))
}

func TestTwilioWhatsappInboundButtonReplyActsOnOrder(t *testing.T) {
	db := setupTestDB(t)
	restaurant := seedRestaurant(t, db, "Tap To Confirm", 20)
	order := seedOrder(t, db, restaurant.ID, "TTC-001", models.StatusPending)

	server := gin.New()
	server.POST("/webhooks/twilio/whatsapp", TwilioWhatsappInbound(newNoopDispatcher(db), providers.NewTwilioClient()))

	form := url.Values{
		"From":       {"whatsapp:+447911123456"},
		"To":         {"whatsapp:+14155238886"},
		"Body":       {"Confirm TTC-001"},
		"MessageSid": {"SM124"},
	}
	res := postForm(server, "/webhooks/twilio/whatsapp", form)
	require.Equal(t, http.StatusOK, res.Code)

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.StatusConfirmed, stored.Status)

	var entry models.MessageLog
	require.NoError(t, db.Where("direction = ?", models.DirectionInbound).First(&entry).Error)
	assert.Equal(t, models.MessageStatusOK, entry.Status)
	assert.Equal(t, models.ProviderTwilio, entry.Provider)
}

func TestTwilioWhatsappInboundSignatureEnforced(t *testing.T) {
	t.Setenv("TWILIO_VALIDATE_SIGNATURE", "true")
	t.Setenv("TWILIO_AUTH_TOKEN", "authtoken")

	db := setupTestDB(t)
	server := gin.New()
	server.POST("/webhooks/twilio/whatsapp", TwilioWhatsappInbound(newNoopDispatcher(db), providers.NewTwilioClient()))

	form := url.Values{"From": {"whatsapp:+447911123456"}, "Body": {"hello"}}
	res := postForm(server, "/webhooks/twilio/whatsapp", form)

	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.False(t, services.IsWhatsappOptedIn(db, "+447911123456"))
}
