package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/Roshan11032005/nutri-backend/models"
	"github.com/Roshan11032005/nutri-backend/utils"
)

var ErrNoFoodRecognized = errors.New("no food recognized in image")

// Default Edamam serving measure, one unit.
const servingMeasureURI = "http://www.edamam.com/ontologies/edamam.owl#Measure_serving"

// MealEstimate is the result of analyzing one meal photo.
type MealEstimate struct {
	FoodItem     string            `json:"food_item"`
	Calories     float64           `json:"estimated_calories"`
	ProteinG     float64           `json:"estimated_protein_g"`
	FatG         float64           `json:"estimated_fat_g"`
	CarbsG       float64           `json:"estimated_carbs_g"`
	ServingSizeG float64           `json:"serving_size_g"`
	ImageURL     string            `json:"image_url,omitempty"`
	Warnings     []utils.Warning   `json:"warnings"`
	LogID        uint              `json:"log_id"`
}

// FoodService combines vision labeling, the nutrition database and the meal
// log: recognize the food in a photo, estimate its nutrients, archive the
// photo and persist a FoodLog row.
type FoodService struct {
	db     *gorm.DB
	edamam *EdamamService
	rek    *RekognitionService
	images *utils.ImageStore
}

func NewFoodService(db *gorm.DB, edamam *EdamamService, rek *RekognitionService, images *utils.ImageStore) *FoodService {
	return &FoodService{db: db, edamam: edamam, rek: rek, images: images}
}

// Search proxies a free-text query to the food database.
func (s *FoodService) Search(ctx context.Context, query string) ([]models.FoodItem, error) {
	return s.edamam.SearchFoods(ctx, query)
}

// Preview returns nutrient totals plus dietary warnings for one food id.
// The measure defaults to one serving.
func (s *FoodService) Preview(ctx context.Context, foodID, measureURI, label string, qty float64) (map[string]float64, []utils.Warning, error) {
	if measureURI == "" {
		measureURI = servingMeasureURI
	}
	if qty <= 0 {
		qty = 1
	}
	nutrients, err := s.edamam.AnalyzeFood(ctx, foodID, measureURI, qty)
	if err != nil {
		return nil, nil, err
	}
	return nutrients, utils.AssessNutrients(label, nutrients), nil
}

// AnalyzeMealImage runs the full image pipeline for a user: label the photo,
// look the top label up in the food database, archive the photo and log the
// meal. The photo upload is best-effort; a failed archive does not lose the
// calorie estimate.
func (s *FoodService) AnalyzeMealImage(ctx context.Context, userID uint, imageData []byte, contentType, mealType string) (*MealEstimate, error) {
	labels, err := s.rek.RecognizeLabels(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("label detection failed: %w", err)
	}
	if len(labels) == 0 {
		return nil, ErrNoFoodRecognized
	}
	foodName := labels[0]

	hits, err := s.edamam.SearchFoods(ctx, foodName)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, ErrNoFoodRecognized
	}

	nutrients, err := s.edamam.AnalyzeFood(ctx, hits[0].EdamamFoodID, servingMeasureURI, 1)
	if err != nil {
		return nil, err
	}

	estimate := &MealEstimate{
		FoodItem:     hits[0].Label,
		Calories:     nutrients["ENERC_KCAL"],
		ProteinG:     nutrients["PROCNT"],
		FatG:         nutrients["FAT"],
		CarbsG:       nutrients["CHOCDF"],
		ServingSizeG: nutrients["SERVING_SIZE_G"],
		Warnings:     utils.AssessNutrients(hits[0].Label, nutrients),
	}

	if url, err := s.images.UploadMealImage(ctx, imageData, contentType, userID); err != nil {
		slog.Warn("meal photo archive failed", "userId", userID, "error", err)
	} else {
		estimate.ImageURL = url
	}

	entry := models.FoodLog{
		UserID:       userID,
		FoodItem:     estimate.FoodItem,
		MealType:     mealType,
		Calories:     estimate.Calories,
		ProteinG:     estimate.ProteinG,
		FatG:         estimate.FatG,
		CarbsG:       estimate.CarbsG,
		ServingSizeG: estimate.ServingSizeG,
		ImageURL:     estimate.ImageURL,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("food log write failed: %w", err)
	}
	estimate.LogID = entry.ID

	slog.Info("meal analyzed", "userId", userID, "food", estimate.FoodItem, "calories", estimate.Calories)
	return estimate, nil
}
