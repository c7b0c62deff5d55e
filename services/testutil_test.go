package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/modernwebbuilds/forkitt-api/initializers"
	"github.com/modernwebbuilds/forkitt-api/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, initializers.Migrate(db))
	return db
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

func seedMenuItem(t *testing.T, db *gorm.DB, restaurantID uint, name string, price float64, available bool) models.MenuItem {
	t.Helper()

	item := models.MenuItem{
		RestaurantID: restaurantID,
		Name:         name,
		Price:        price,
		IsAvailable:  available,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func seedOrder(t *testing.T, db *gorm.DB, restaurantID uint, orderNumber, status string, subtotal float64) models.Order {
	t.Helper()

	order := models.Order{
		RestaurantID:     restaurantID,
		OrderNumber:      orderNumber,
		OwnerActionToken: "test-token-" + orderNumber,
		CustomerName:     "Test Customer",
		CustomerPhone:    "+447700900000",
		PickupTime:       "2026-09-01T18:30:00Z",
		Subtotal:         subtotal,
		Status:           status,
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}
