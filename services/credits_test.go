package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modernwebbuilds/forkitt-api/models"
)

func TestStartingCredits(t *testing.T) {
	assert.Equal(t, 5.0, StartingCredits())

	t.Setenv("STARTING_CREDITS", "12.5")
	assert.Equal(t, 12.5, StartingCredits())

	t.Setenv("STARTING_CREDITS", "not-a-number")
	assert.Equal(t, 5.0, StartingCredits())
}

func TestAddCreditsAppendsLedgerEntry(t *testing.T) {
	db := newTestDB(t)
	restaurant := seedRestaurant(t, db, "Topup Tavern", 5)

	balance, err := AddCredits(db, restaurant.ID, 10, models.ReasonStripeTopup)
	require.NoError(t, err)
	assert.Equal(t, 15.0, balance)

	require.NoError(t, db.First(&restaurant, restaurant.ID).Error)
	assert.Equal(t, 15.0, restaurant.Credits)

	var entries []models.CreditLogEntry
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, 10.0, entries[0].Amount)
	assert.Equal(t, models.ReasonStripeTopup, entries[0].Reason)
	assert.Equal(t, 15.0, entries[0].BalanceAfter)
	assert.Nil(t, entries[0].OrderID)
}

func TestDeductCreditsCanGoNegative(t *testing.T) {
	db := newTestDB(t)
	restaurant := seedRestaurant(t, db, "Deficit Deli", 1)

	balance, err := DeductCredits(db, restaurant.ID, 2.5, models.ReasonManualAdjustment, nil)
	require.NoError(t, err)
	assert.Equal(t, -1.5, balance)

	var entry models.CreditLogEntry
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, -2.5, entry.Amount)
	assert.Equal(t, -1.5, entry.BalanceAfter)
}

func TestApplyCreditsUnknownRestaurant(t *testing.T) {
	db := newTestDB(t)

	_, err := AddCredits(db, 777, 10, models.ReasonManualAdjustment)
	assert.ErrorIs(t, err, ErrRestaurantNotFound)

	var count int64
	db.Model(&models.CreditLogEntry{}).Count(&count)
	assert.Zero(t, count)
}

func TestHasCredits(t *testing.T) {
	db := newTestDB(t)
	funded := seedRestaurant(t, db, "Funded Fork", 0.01)
	broke := seedRestaurant(t, db, "Broke Bowl", 0)

	assert.True(t, HasCredits(db, funded.ID))
	assert.False(t, HasCredits(db, broke.ID))
	assert.False(t, HasCredits(db, 9999))
}
