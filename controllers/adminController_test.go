package controllers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modernwebbuilds/forkitt-api/middlewares"
	"github.com/modernwebbuilds/forkitt-api/models"
)

func adminRequest(method, path, token, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAdminRoutesRequireValidToken(t *testing.T) {
	db := setupTestDB(t)
	seedRestaurant(t, db, "Locked Larder", 20)

	server := gin.New()
	server.GET("/admin/orders", middlewares.RequireRestaurant(), ListAdminOrders)

	res := httptest.NewRecorder()
	server.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/admin/orders", nil))
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = httptest.NewRecorder()
	server.ServeHTTP(res, adminRequest(http.MethodGet, "/admin/orders", "wrong-token", ""))
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestListAdminOrdersScopedToPrincipal(t *testing.T) {
	db := setupTestDB(t)
	mine := seedRestaurant(t, db, "Mine Diner", 20)
	other := seedRestaurant(t, db, "Other Diner", 20)
	seedOrder(t, db, mine.ID, "MD-001", models.StatusPending)
	seedOrder(t, db, other.ID, "OD-001", models.StatusPending)

	server := gin.New()
	server.GET("/admin/orders", middlewares.RequireRestaurant(), ListAdminOrders)

	res := httptest.NewRecorder()
	server.ServeHTTP(res, adminRequest(http.MethodGet, "/admin/orders", mine.AdminToken, ""))

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "MD-001")
	assert.NotContains(t, res.Body.String(), "OD-001")
}

func TestUpdateOrderStatusAsOwner(t *testing.T) {
	db := setupTestDB(t)
	restaurant := seedRestaurant(t, db, "Patch Pantry", 20)
	order := seedOrder(t, db, restaurant.ID, "PP-001", models.StatusPending)

	server := gin.New()
	server.PATCH("/admin/orders/:orderId/status",
		middlewares.RequireRestaurant(), UpdateOrderStatus(newNoopDispatcher(db)))

	path := "/admin/orders/" + strconv.Itoa(int(order.ID)) + "/status"

	res := httptest.NewRecorder()
	server.ServeHTTP(res, adminRequest(http.MethodPatch, path, restaurant.AdminToken, `{"status":"confirmed"}`))
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.StatusConfirmed, stored.Status)

	// Skipping a state is rejected and leaves the order alone.
	res = httptest.NewRecorder()
	server.ServeHTTP(res, adminRequest(http.MethodPatch, path, restaurant.AdminToken, `{"status":"collected"}`))
	assert.Equal(t, http.StatusBadRequest, res.Code)

	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.StatusConfirmed, stored.Status)
}

func TestUpdatePickupTime(t *testing.T) {
	db := setupTestDB(t)
	restaurant := seedRestaurant(t, db, "Shifting Slots", 20)
	order := seedOrder(t, db, restaurant.ID, "SHS-001", models.StatusConfirmed)
	done := seedOrder(t, db, restaurant.ID, "SHS-002", models.StatusCollected)

	server := gin.New()
	server.PATCH("/admin/orders/:orderId/pickup-time",
		middlewares.RequireRestaurant(), UpdatePickupTime(newNoopDispatcher(db)))

	path := "/admin/orders/" + strconv.Itoa(int(order.ID)) + "/pickup-time"
	body := `{"pickupTime":"2026-09-01T19:15:00Z","note":"Running 15 minutes behind"}`
	res := httptest.NewRecorder()
	server.ServeHTTP(res, adminRequest(http.MethodPatch, path, restaurant.AdminToken, body))
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, "2026-09-01T19:15:00Z", stored.PickupTime)
	assert.Equal(t, "Running 15 minutes behind", stored.OwnerNote)

	// Terminal orders cannot be rescheduled.
	path = "/admin/orders/" + strconv.Itoa(int(done.ID)) + "/pickup-time"
	res = httptest.NewRecorder()
	server.ServeHTTP(res, adminRequest(http.MethodPatch, path, restaurant.AdminToken, body))
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestSendCustomerMessageRequiresCredits(t *testing.T) {
	db := setupTestDB(t)
	restaurant := seedRestaurant(t, db, "Skint Skillet", 0)

	server := gin.New()
	server.POST("/admin/customers/message",
		middlewares.RequireRestaurant(), SendCustomerMessage(newNoopDispatcher(db)))

	body := `{"message":"hello","recipients":[{"phone":"+447700900001","channels":["sms"]}]}`
	res := httptest.NewRecorder()
	server.ServeHTTP(res, adminRequest(http.MethodPost, "/admin/customers/message", restaurant.AdminToken, body))

	assert.Equal(t, http.StatusPaymentRequired, res.Code)
}

func TestVerifyMagicLink(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	db := setupTestDB(t)
	restaurant := seedRestaurant(t, db, "Magic Meals", 20)

	server := gin.New()
	server.POST("/admin/magic/verify", VerifyMagicLink)

	sign := func(claims jwt.MapClaims) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
		require.NoError(t, err)
		return signed
	}

	valid := sign(jwt.MapClaims{
		"restaurant_id": restaurant.ID,
		"purpose":       "magic_link",
		"exp":           time.Now().Add(10 * time.Minute).Unix(),
	})
	res := httptest.NewRecorder()
	server.ServeHTTP(res, adminRequest(http.MethodPost, "/admin/magic/verify", "", `{"token":"`+valid+`"}`))
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	assert.Contains(t, res.Body.String(), restaurant.AdminToken)

	expired := sign(jwt.MapClaims{
		"restaurant_id": restaurant.ID,
		"purpose":       "magic_link",
		"exp":           time.Now().Add(-time.Minute).Unix(),
	})
	res = httptest.NewRecorder()
	server.ServeHTTP(res, adminRequest(http.MethodPost, "/admin/magic/verify", "", `{"token":"`+expired+`"}`))
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	wrongPurpose := sign(jwt.MapClaims{
		"restaurant_id": restaurant.ID,
		"purpose":       "password_reset",
		"exp":           time.Now().Add(10 * time.Minute).Unix(),
	})
	res = httptest.NewRecorder()
	server.ServeHTTP(res, adminRequest(http.MethodPost, "/admin/magic/verify", "", `{"token":"`+wrongPurpose+`"}`))
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}
