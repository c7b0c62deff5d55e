package controllers

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/modernwebbuilds/forkitt-api/initializers"
	"github.com/modernwebbuilds/forkitt-api/models"
	"github.com/modernwebbuilds/forkitt-api/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestDB swaps the process-wide DB handle for an isolated in-memory
// database and restores it when the test finishes.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:ctrl_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, initializers.Migrate(db))

	previous := initializers.DB
	initializers.DB = db
	t.Cleanup(func() { initializers.DB = previous })
	return db
}

func newNoopDispatcher(db *gorm.DB) *services.Dispatcher {
	return services.NewDispatcher(db, nil, nil, nil)
}

func seedRestaurant(t *testing.T, db *gorm.DB, name string, credits float64) models.Restaurant {
	t.Helper()

	restaurant := models.Restaurant{
		Name:       name,
		Slug:       strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		AdminToken: "token-" + strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		Credits:    credits,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&restaurant).Error)
	return restaurant
}

func seedMenuItem(t *testing.T, db *gorm.DB, restaurantID uint, name string, price float64) models.MenuItem {
	t.Helper()

	item := models.MenuItem{
		RestaurantID: restaurantID,
		Name:         name,
		Price:        price,
		IsAvailable:  true,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func seedOrder(t *testing.T, db *gorm.DB, restaurantID uint, orderNumber, status string) models.Order {
	t.Helper()

	order := models.Order{
		RestaurantID:     restaurantID,
		OrderNumber:      orderNumber,
		OwnerActionToken: "owner-token-" + orderNumber,
		CustomerName:     "Test Customer",
		CustomerPhone:    "+447700900000",
		PickupTime:       "2026-09-01T18:30:00Z",
		Subtotal:         10.00,
		Status:           status,
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}
