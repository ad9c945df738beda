package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser         = "user"
	RoleNutritionist = "nutritionist"
)

type User struct {
	gorm.Model
	Role             string `gorm:"type:varchar(20);not null;default:user"`
	Name             string `gorm:"not null"`
	Email            string `gorm:"uniqueIndex;not null"`
	MobileNumber     string `gorm:"uniqueIndex"`
	PasswordHash     string `gorm:"not null"`
	Verified         bool   `gorm:"default:false"`
	Height           float64
	Weight           float64
	HealthConditions string

	SubscriptionStart  *time.Time
	SubscriptionEnd    *time.Time
	SubscriptionActive bool `gorm:"default:false"`
}
