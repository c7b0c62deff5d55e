package models

import "gorm.io/gorm"

const (
	ReasonStripeTopup      = "stripe_topup"
	ReasonCommission       = "commission"
	ReasonManualAdjustment = "manual_adjustment"
)

// CreditLogEntry is an append-only record of every balance change. Amount
// carries the applied sign; BalanceAfter is the restaurant balance once the
// entry was applied. OrderID is set on commission entries only, and the
// composite unique index keeps one commission per order even if the state
// machine guard is ever bypassed.
type CreditLogEntry struct {
	gorm.Model
	RestaurantID uint    `json:"restaurantId" gorm:"index;not null"`
	Amount       float64 `json:"amount" gorm:"not null"`
	Reason       string  `json:"reason" gorm:"uniqueIndex:idx_credit_log_reason_order;not null"`
	OrderID      *uint   `json:"orderId" gorm:"uniqueIndex:idx_credit_log_reason_order"`
	BalanceAfter float64 `json:"balanceAfter" gorm:"not null"`
}
