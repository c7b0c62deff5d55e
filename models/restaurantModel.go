package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Restaurant struct {
	gorm.Model
	Name                string         `json:"name" gorm:"not null"`
	Slug                string         `json:"slug" gorm:"uniqueIndex;not null"`
	Address             string         `json:"address"`
	CuisineType         string         `json:"cuisineType"`
	Phone               string         `json:"phone"`
	WhatsappNumber      string         `json:"whatsappNumber"`
	OwnerEmail          string         `json:"ownerEmail"`
	NotificationChannel string         `json:"notificationChannel" gorm:"default:both"`
	AdminToken          string         `json:"-" gorm:"uniqueIndex;not null"`
	Credits             float64        `json:"credits"`
	IsActive            bool           `json:"isActive" gorm:"default:true"`
	OpeningHours        datatypes.JSON `json:"openingHours"`
	MenuCategories      []MenuCategory `json:"-" gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE"`
	MenuItems           []MenuItem     `json:"-" gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE"`
}
