package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/modernwebbuilds/forkitt-api/initializers"
	"github.com/modernwebbuilds/forkitt-api/models"
	"github.com/modernwebbuilds/forkitt-api/services"
	"github.com/modernwebbuilds/forkitt-api/utils"
)

func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

func uniqueSlug(db *gorm.DB, name string) string {
	base := slugify(name)
	if base == "" {
		base = "restaurant"
	}
	slug := base
	for i := 2; ; i++ {
		var count int64
		db.Model(&models.Restaurant{}).Where("slug = ?", slug).Count(&count)
		if count == 0 {
			return slug
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

type restaurantInput struct {
	Name                string `json:"name" binding:"required"`
	Address             string `json:"address"`
	CuisineType         string `json:"cuisineType"`
	Phone               string `json:"phone"`
	WhatsappNumber      string `json:"whatsappNumber"`
	OwnerEmail          string `json:"ownerEmail"`
	NotificationChannel string `json:"notificationChannel"`
}

// CreateRestaurant provisions a restaurant with a fresh admin token and the
// configured starting credit balance.
func CreateRestaurant(ctx *gin.Context) {
	var input restaurantInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	adminToken, err := utils.GenerateCode(16)
	if err != nil {
		sendErrorResponse(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	restaurant := models.Restaurant{
		Name:                input.Name,
		Slug:                uniqueSlug(initializers.DB, input.Name),
		Address:             input.Address,
		CuisineType:         input.CuisineType,
		Phone:               input.Phone,
		WhatsappNumber:      input.WhatsappNumber,
		OwnerEmail:          input.OwnerEmail,
		NotificationChannel: input.NotificationChannel,
		AdminToken:          adminToken,
		Credits:             services.StartingCredits(),
		IsActive:            true,
	}
	if result := initializers.DB.Create(&restaurant); result.Error != nil {
		initializers.Log.Errorw("restaurant creation failed", "error", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to create restaurant")
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{
		"restaurant": restaurant,
		"adminToken": adminToken,
	})
}

func ListRestaurants(ctx *gin.Context) {
	var restaurants []models.Restaurant
	if result := initializers.DB.Order("created_at desc").Find(&restaurants); result.Error != nil {
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to fetch restaurants")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"restaurants": restaurants})
}

func UpdateRestaurant(ctx *gin.Context) {
	restaurantID, err := strconv.ParseUint(ctx.Param("restaurantId"), 10, 64)
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse restaurantId")
		return
	}

	var updates map[string]any
	if err := ctx.ShouldBindJSON(&updates); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}
	// The balance and token move only through their own flows.
	delete(updates, "credits")
	delete(updates, "adminToken")
	delete(updates, "admin_token")
	delete(updates, "slug")

	var restaurant models.Restaurant
	if err := initializers.DB.First(&restaurant, uint(restaurantID)).Error; err != nil {
		sendErrorResponse(ctx, http.StatusNotFound, "Restaurant not found")
		return
	}
	if err := initializers.DB.Model(&restaurant).Updates(updates).Error; err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to update restaurant")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"restaurant": restaurant})
}

// AdjustCredits applies a manual balance correction, recorded like any other
// ledger event.
func AdjustCredits(ctx *gin.Context) {
	restaurantID, err := strconv.ParseUint(ctx.Param("restaurantId"), 10, 64)
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse restaurantId")
		return
	}

	var body struct {
		Amount float64 `json:"amount" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "A non-zero amount is required")
		return
	}

	var newBalance float64
	if body.Amount >= 0 {
		newBalance, err = services.AddCredits(initializers.DB, uint(restaurantID), body.Amount, models.ReasonManualAdjustment)
	} else {
		newBalance, err = services.DeductCredits(initializers.DB, uint(restaurantID), -body.Amount, models.ReasonManualAdjustment, nil)
	}
	if err != nil {
		if errors.Is(err, services.ErrRestaurantNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Restaurant not found")
			return
		}
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to adjust credits")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"balance": newBalance})
}

// DeleteRestaurant removes a restaurant and everything hanging off it. This
// cascade is the only path that ever deletes orders.
func DeleteRestaurant(ctx *gin.Context) {
	restaurantID, err := strconv.ParseUint(ctx.Param("restaurantId"), 10, 64)
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse restaurantId")
		return
	}

	err = initializers.DB.Transaction(func(tx *gorm.DB) error {
		var restaurant models.Restaurant
		if err := tx.First(&restaurant, uint(restaurantID)).Error; err != nil {
			return services.ErrRestaurantNotFound
		}

		orderIDs := tx.Model(&models.Order{}).Select("id").Where("restaurant_id = ?", restaurant.ID)
		if err := tx.Unscoped().Where("order_id IN (?)", orderIDs).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		for _, model := range []any{&models.Order{}, &models.MenuItem{}, &models.MenuCategory{}, &models.CreditLogEntry{}} {
			if err := tx.Unscoped().Where("restaurant_id = ?", restaurant.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Unscoped().Delete(&restaurant).Error
	})
	if err != nil {
		if errors.Is(err, services.ErrRestaurantNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Restaurant not found")
			return
		}
		initializers.Log.Errorw("restaurant deletion failed", "error", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to delete restaurant")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Restaurant deleted successfully."})
}
