package models

import "time"

// WhatsappOptin is keyed by the normalized phone number and is platform-wide,
// not restaurant-scoped: WhatsApp treats consent per number, so do we.
type WhatsappOptin struct {
	Phone     string    `json:"phone" gorm:"primaryKey"`
	OptedIn   bool      `json:"optedIn" gorm:"not null"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
