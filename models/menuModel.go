package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MenuCategory struct {
	gorm.Model
	RestaurantID uint   `json:"restaurantId" gorm:"index;not null"`
	Name         string `json:"name" gorm:"not null"`
	DisplayOrder int    `json:"displayOrder"`
	IsActive     bool   `json:"isActive" gorm:"default:true"`
}

type MenuItem struct {
	gorm.Model
	RestaurantID uint           `json:"restaurantId" gorm:"index;not null"`
	CategoryID   *uint          `json:"categoryId"`
	Name         string         `json:"name" gorm:"not null"`
	Description  string         `json:"description"`
	Price        float64        `json:"price" gorm:"not null"`
	IsAvailable  bool           `json:"isAvailable" gorm:"default:true"`
	DietaryTags  datatypes.JSON `json:"dietaryTags"`
}
