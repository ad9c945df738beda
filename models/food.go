package models

import (
	"gorm.io/gorm"
)

// FoodItem is a search hit from the food database API, not a persisted row.
type FoodItem struct {
	EdamamFoodID string `json:"food_id"`
	Label        string `json:"label"`
	Category     string `json:"category"`
}

// FoodLog is one analyzed/logged meal entry for a user.
type FoodLog struct {
	gorm.Model
	UserID       uint   `gorm:"index;not null"`
	FoodItem     string `gorm:"not null"`
	MealType     string `gorm:"type:varchar(20);not null"`
	Calories     float64
	ProteinG     float64
	FatG         float64
	CarbsG       float64
	ServingSizeG float64
	ImageURL     string
}
