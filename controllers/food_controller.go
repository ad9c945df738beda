package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Roshan11032005/nutri-backend/middlewares"
	"github.com/Roshan11032005/nutri-backend/services"
	"github.com/Roshan11032005/nutri-backend/utils"
)

var validMealTypes = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

type FoodController struct {
	food *services.FoodService
}

func NewFoodController(food *services.FoodService) *FoodController {
	return &FoodController{food: food}
}

// Search proxies a free-text food query.
func (ctl *FoodController) Search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		utils.SendJSON(c, http.StatusBadRequest, gin.H{"error": "Query parameter required"})
		return
	}

	results, err := ctl.food.Search(c.Request.Context(), query)
	if err != nil {
		slog.Error("food search failed", "query", query, "error", err)
		utils.SendJSON(c, http.StatusInternalServerError, gin.H{"error": "Failed to fetch from Edamam API"})
		return
	}
	utils.SendJSON(c, http.StatusOK, gin.H{"results": results})
}

type PreviewInput struct {
	FoodID     string  `json:"food_id" binding:"required"`
	MeasureURI string  `json:"measure_uri"`
	Label      string  `json:"label"`
	Quantity   float64 `json:"quantity"`
}

// Preview returns nutrient totals and dietary warnings for a food id
// before the user commits it to their log.
func (ctl *FoodController) Preview(c *gin.Context) {
	var input PreviewInput
	if err := c.ShouldBindBodyWithJSON(&input); err != nil {
		utils.SendJSON(c, http.StatusBadRequest, gin.H{"error": "food_id is required"})
		return
	}

	nutrients, warnings, err := ctl.food.Preview(c.Request.Context(), input.FoodID, input.MeasureURI, input.Label, input.Quantity)
	if err != nil {
		slog.Error("food preview failed", "foodId", input.FoodID, "error", err)
		utils.SendJSON(c, http.StatusInternalServerError, gin.H{"error": "Failed to fetch from Edamam API"})
		return
	}
	utils.SendJSON(c, http.StatusOK, gin.H{"nutrients": nutrients, "warnings": warnings})
}

type AnalyzeImageInput struct {
	ImageBase64 string `json:"image_base64"`
	MealType    string `json:"meal_type"`
}

// AnalyzeImage runs the image calorie tracker for the authenticated user.
func (ctl *FoodController) AnalyzeImage(c *gin.Context) {
	var input AnalyzeImageInput
	if err := c.ShouldBindBodyWithJSON(&input); err != nil || input.ImageBase64 == "" || input.MealType == "" {
		utils.SendJSON(c, http.StatusBadRequest, gin.H{
			"error": "Missing required data.",
			"tip":   "Request body must contain image_base64 and meal_type.",
		})
		return
	}

	mealType := strings.ToLower(input.MealType)
	if !validMealTypes[mealType] {
		utils.SendJSON(c, http.StatusBadRequest, gin.H{
			"error": "Invalid meal_type provided. Must be one of: breakfast, lunch, dinner, snack",
		})
		return
	}

	imageData, contentType, err := utils.DecodeDataURI(input.ImageBase64)
	if err != nil {
		utils.SendJSON(c, http.StatusBadRequest, gin.H{"error": "Invalid image data"})
		return
	}

	userID, err := strconv.ParseUint(c.GetString(middlewares.CtxUserID), 10, 64)
	if err != nil {
		utils.SendJSON(c, http.StatusBadRequest, gin.H{"error": "Invalid user_id format."})
		return
	}

	estimate, err := ctl.food.AnalyzeMealImage(c.Request.Context(), uint(userID), imageData, contentType, mealType)
	if errors.Is(err, services.ErrNoFoodRecognized) {
		utils.SendJSON(c, http.StatusUnprocessableEntity, gin.H{"error": "Could not recognize food in the image"})
		return
	}
	if err != nil {
		slog.Error("image analysis failed", "userId", userID, "error", err)
		utils.SendJSON(c, http.StatusInternalServerError, gin.H{"error": "Image analysis failed"})
		return
	}

	utils.SendJSON(c, http.StatusOK, estimate)
}
