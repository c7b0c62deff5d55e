package services

import (
	"errors"
	"math"
	"os"
	"strconv"

	"gorm.io/gorm"

	"github.com/modernwebbuilds/forkitt-api/initializers"
	"github.com/modernwebbuilds/forkitt-api/models"
)

// StartingCredits is the balance granted to a brand-new restaurant,
// overridable via STARTING_CREDITS.
func StartingCredits() float64 {
	if v := os.Getenv("STARTING_CREDITS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 5.0
}

func GetCredits(db *gorm.DB, restaurantID uint) float64 {
	var restaurant models.Restaurant
	if err := db.First(&restaurant, restaurantID).Error; err != nil {
		return 0
	}
	return restaurant.Credits
}

// HasCredits is the sole admission gate for order creation and bulk
// customer messaging.
func HasCredits(db *gorm.DB, restaurantID uint) bool {
	return GetCredits(db, restaurantID) > 0
}

// AddCredits appends a credit_log entry and bumps the denormalized balance in
// one atomic operation. Amount must be positive; returns the new balance.
func AddCredits(db *gorm.DB, restaurantID uint, amount float64, reason string) (float64, error) {
	return applyCredits(db, restaurantID, amount, reason, nil)
}

// DeductCredits is AddCredits with the sign flipped. orderID ties commission
// entries to their order; the unique index on (reason, order_id) then rejects
// a second commission for the same order at the store level.
func DeductCredits(db *gorm.DB, restaurantID uint, amount float64, reason string, orderID *uint) (float64, error) {
	return applyCredits(db, restaurantID, -amount, reason, orderID)
}

func applyCredits(db *gorm.DB, restaurantID uint, delta float64, reason string, orderID *uint) (float64, error) {
	var newBalance float64
	err := db.Transaction(func(tx *gorm.DB) error {
		var restaurant models.Restaurant
		if err := tx.First(&restaurant, restaurantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRestaurantNotFound
			}
			return err
		}

		newBalance = math.Round((restaurant.Credits+delta)*100) / 100
		if err := tx.Model(&models.Restaurant{}).
			Where("id = ?", restaurantID).
			Update("credits", newBalance).Error; err != nil {
			return err
		}

		entry := models.CreditLogEntry{
			RestaurantID: restaurantID,
			Amount:       delta,
			Reason:       reason,
			OrderID:      orderID,
			BalanceAfter: newBalance,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return 0, err
	}

	initializers.Log.Infow("credits applied",
		"restaurant_id", restaurantID,
		"amount", delta,
		"reason", reason,
		"balance", newBalance,
	)
	return newBalance, nil
}
