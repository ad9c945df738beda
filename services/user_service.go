package services

import (
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/Roshan11032005/nutri-backend/models"
	"github.com/Roshan11032005/nutri-backend/utils"
)

// ProfileUpdate carries optional profile fields; zero values leave the
// stored value untouched.
type ProfileUpdate struct {
	Name             string  `json:"name"`
	Height           float64 `json:"height"`
	Weight           float64 `json:"weight"`
	HealthConditions string  `json:"health_conditions"`
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) findByID(userID string) (*models.User, error) {
	id, err := strconv.ParseUint(userID, 10, 64)
	if err != nil {
		return nil, ErrUserNotFound
	}
	var user models.User
	if err := s.db.First(&user, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	return &user, nil
}

// GetProfile returns the profile view for the authenticated user, including
// a derived BMI when height and weight are on file.
func (s *UserService) GetProfile(userID string) (map[string]interface{}, error) {
	user, err := s.findByID(userID)
	if err != nil {
		return nil, err
	}

	profile := map[string]interface{}{
		"user_id":           strconv.FormatUint(uint64(user.ID), 10),
		"role":              user.Role,
		"name":              user.Name,
		"email":             user.Email,
		"mobile_number":     user.MobileNumber,
		"verified":          user.Verified,
		"height":            user.Height,
		"weight":            user.Weight,
		"health_conditions": user.HealthConditions,
		"subscription": map[string]interface{}{
			"start":  user.SubscriptionStart,
			"end":    user.SubscriptionEnd,
			"active": user.SubscriptionActive,
		},
	}

	if bmi, err := utils.CalculateBMI(user.Height, user.Weight); err == nil {
		profile["bmi"] = bmi
		profile["bmi_category"] = utils.BMICategory(bmi)
	}
	return profile, nil
}

func (s *UserService) UpdateProfile(userID string, input ProfileUpdate) error {
	user, err := s.findByID(userID)
	if err != nil {
		return err
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Height > 0 {
		user.Height = input.Height
	}
	if input.Weight > 0 {
		user.Weight = input.Weight
	}
	if input.HealthConditions != "" {
		user.HealthConditions = input.HealthConditions
	}

	return s.db.Save(user).Error
}
