package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusReady     = "ready"
	StatusCollected = "collected"
	StatusCancelled = "cancelled"
)

type Order struct {
	gorm.Model
	RestaurantID        uint        `json:"restaurantId" gorm:"index;not null"`
	OrderNumber         string      `json:"orderNumber" gorm:"uniqueIndex;not null"`
	OwnerActionToken    string      `json:"ownerActionToken,omitempty" gorm:"not null"`
	OwnerNote           string      `json:"ownerNote"`
	CustomerName        string      `json:"customerName" gorm:"not null"`
	CustomerPhone       string      `json:"customerPhone" gorm:"not null"`
	CustomerEmail       string      `json:"customerEmail"`
	PickupTime          string      `json:"pickupTime" gorm:"not null"`
	SpecialInstructions string      `json:"specialInstructions"`
	Subtotal            float64     `json:"subtotal" gorm:"not null"`
	Status              string      `json:"status" gorm:"index;not null;default:pending"`
	StatusChangedAt     time.Time   `json:"statusChangedAt"`
	SMSOptin            bool        `json:"smsOptin"`
	FollowupSent        bool        `json:"followupSent"`
	OrderItems          []OrderItem `json:"orderItems" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem is a snapshot of a menu item at order time. Rows are never
// updated after insert, so later menu price edits cannot touch them.
type OrderItem struct {
	gorm.Model
	OrderID    uint    `json:"orderId" gorm:"index;not null"`
	MenuItemID uint    `json:"menuItemId"`
	ItemName   string  `json:"itemName" gorm:"not null"`
	UnitPrice  float64 `json:"unitPrice" gorm:"not null"`
	Quantity   int     `json:"quantity" gorm:"not null;default:1"`
	Notes      string  `json:"notes"`
}
