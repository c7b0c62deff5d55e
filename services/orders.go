package services

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/modernwebbuilds/forkitt-api/initializers"
	"github.com/modernwebbuilds/forkitt-api/models"
	"github.com/modernwebbuilds/forkitt-api/utils"
)

// validTransitions is the whole lifecycle: collected and cancelled are
// terminal, and collecting is the sole trigger for commission.
var validTransitions = map[string][]string{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusReady, models.StatusCancelled},
	models.StatusReady:     {models.StatusCollected},
	models.StatusCollected: {},
	models.StatusCancelled: {},
}

func commissionRate() float64 {
	if v := os.Getenv("COMMISSION_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0.10
}

type OrderLineInput struct {
	MenuItemID uint   `json:"menuItemId" binding:"required"`
	Quantity   int    `json:"quantity"`
	Notes      string `json:"notes"`
}

type CreateOrderInput struct {
	RestaurantID        uint             `json:"restaurantId" binding:"required"`
	CustomerName        string           `json:"customerName" binding:"required"`
	CustomerPhone       string           `json:"customerPhone" binding:"required"`
	CustomerEmail       string           `json:"customerEmail"`
	PickupTime          string           `json:"pickupTime" binding:"required"`
	SpecialInstructions string           `json:"specialInstructions"`
	SMSOptin            bool             `json:"smsOptin"`
	Items               []OrderLineInput `json:"items" binding:"required,min=1,dive"`
}

// orderPrefix derives up to three letters from the restaurant name's
// initials: "Blue Bay Cafe" -> "BBC", "Pizzeria" -> "PI".
func orderPrefix(name string) string {
	var initials []byte
	for _, word := range strings.Fields(name) {
		c := word[0]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c >= 'A' && c <= 'Z' {
			initials = append(initials, c)
		}
		if len(initials) == 3 {
			break
		}
	}
	if len(initials) >= 2 {
		return string(initials)
	}

	initials = initials[:0]
	for i := 0; i < len(name) && len(initials) < 2; i++ {
		c := name[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c >= 'A' && c <= 'Z' {
			initials = append(initials, c)
		}
	}
	if len(initials) == 0 {
		return "XX"
	}
	return string(initials)
}

// generateOrderNumber continues the sequence from the highest existing suffix
// for the prefix, platform-wide. Two restaurants sharing initials share one
// sequence, which is what keeps order numbers globally unique.
func generateOrderNumber(tx *gorm.DB, restaurantName string) (string, error) {
	prefix := orderPrefix(restaurantName)

	var numbers []string
	if err := tx.Model(&models.Order{}).
		Where("order_number LIKE ?", prefix+"-%").
		Pluck("order_number", &numbers).Error; err != nil {
		return "", err
	}

	highest := 0
	for _, number := range numbers {
		suffix := number[strings.LastIndex(number, "-")+1:]
		if n, err := strconv.Atoi(suffix); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s-%03d", prefix, highest+1), nil
}

// CreateOrder validates the basket against the live menu, snapshots prices
// into order lines and inserts order plus lines in one transaction. It sends
// nothing: notification dispatch is the caller's job, after commit.
func CreateOrder(db *gorm.DB, input CreateOrderInput) (*models.Order, error) {
	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		var restaurant models.Restaurant
		if err := tx.First(&restaurant, input.RestaurantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRestaurantNotFound
			}
			return err
		}
		if restaurant.Credits <= 0 {
			return ErrInsufficientCredit
		}

		subtotal := 0.0
		lines := make([]models.OrderItem, 0, len(input.Items))
		for _, line := range input.Items {
			var item models.MenuItem
			err := tx.Where("id = ? AND restaurant_id = ?", line.MenuItemID, input.RestaurantID).
				First(&item).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &ItemNotFoundError{MenuItemID: line.MenuItemID}
				}
				return err
			}
			if !item.IsAvailable {
				return &ItemUnavailableError{Name: item.Name}
			}

			quantity := line.Quantity
			if quantity < 1 {
				quantity = 1
			}
			subtotal += item.Price * float64(quantity)
			lines = append(lines, models.OrderItem{
				MenuItemID: item.ID,
				ItemName:   item.Name,
				UnitPrice:  item.Price,
				Quantity:   quantity,
				Notes:      line.Notes,
			})
		}

		orderNumber, err := generateOrderNumber(tx, restaurant.Name)
		if err != nil {
			return err
		}
		token, err := utils.GenerateCode(24)
		if err != nil {
			return err
		}

		order = models.Order{
			RestaurantID:        restaurant.ID,
			OrderNumber:         orderNumber,
			OwnerActionToken:    token,
			CustomerName:        input.CustomerName,
			CustomerPhone:       input.CustomerPhone,
			CustomerEmail:       input.CustomerEmail,
			PickupTime:          input.PickupTime,
			SpecialInstructions: input.SpecialInstructions,
			Subtotal:            math.Round(subtotal*100) / 100,
			Status:              models.StatusPending,
			StatusChangedAt:     time.Now(),
			SMSOptin:            input.SMSOptin,
			OrderItems:          lines,
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}

	utils.OrdersCreated.Inc()
	initializers.Log.Infow("order created",
		"order_number", order.OrderNumber,
		"restaurant_id", order.RestaurantID,
		"subtotal", order.Subtotal,
	)
	return &order, nil
}

// AdvanceStatus moves an order along the state machine on behalf of
// actingRestaurantID. Orders belonging to another restaurant read as not
// found. Reaching collected deducts the commission inside the same
// transaction as the status write; a repeat call fails the transition check
// before it can ever reach the ledger.
func AdvanceStatus(db *gorm.DB, orderID uint, target string, actingRestaurantID uint) (*models.Order, error) {
	var updated models.Order
	var from string

	err := db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Where("id = ? AND restaurant_id = ?", orderID, actingRestaurantID).
			First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		from = order.Status
		allowed := validTransitions[order.Status]
		if !slices.Contains(allowed, target) {
			return &IllegalTransitionError{From: order.Status, To: target, Allowed: allowed}
		}

		// Conditional on the status we read: of two concurrent advances from
		// the same source state, only one can match this row.
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Updates(map[string]any{
				"status":            target,
				"status_changed_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.First(&order, order.ID).Error; err != nil {
				return err
			}
			return &IllegalTransitionError{From: order.Status, To: target, Allowed: validTransitions[order.Status]}
		}

		if target == models.StatusCollected {
			commission := math.Round(order.Subtotal*commissionRate()*100) / 100
			if commission > 0 {
				if _, err := DeductCredits(tx, order.RestaurantID, commission, models.ReasonCommission, &order.ID); err != nil {
					return err
				}
			}
		}

		return tx.Preload("OrderItems").First(&updated, order.ID).Error
	})
	if err != nil {
		return nil, err
	}

	utils.OrderTransitions.WithLabelValues(from, target).Inc()
	initializers.Log.Infow("order status advanced",
		"order_number", updated.OrderNumber,
		"from", from,
		"to", target,
	)
	return &updated, nil
}

func GetOrderByNumber(db *gorm.DB, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := db.Preload("OrderItems").Where("order_number = ?", orderNumber).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func ListOrders(db *gorm.DB, restaurantID uint, status string) ([]models.Order, error) {
	query := db.Preload("OrderItems").Where("restaurant_id = ?", restaurantID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var orders []models.Order
	if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
