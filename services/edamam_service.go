package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/Roshan11032005/nutri-backend/models"
)

const (
	edamamParserURL    = "https://api.edamam.com/api/food-database/v2/parser"
	edamamNutrientsURL = "https://api.edamam.com/api/food-database/v2/nutrients"
)

// EdamamService proxies the Edamam food database API: free-text search and
// per-ingredient nutrient analysis.
type EdamamService struct {
	appID        string
	appKey       string
	parserURL    string
	nutrientsURL string
	client       *http.Client
}

func NewEdamamService() *EdamamService {
	return &EdamamService{
		appID:        os.Getenv("EDAMAM_APP_ID"),
		appKey:       os.Getenv("EDAMAM_APP_KEY"),
		parserURL:    edamamParserURL,
		nutrientsURL: edamamNutrientsURL,
		client:       &http.Client{Timeout: 10 * time.Second},
	}
}

type foodParserResponse struct {
	Hints []struct {
		Food struct {
			FoodID   string `json:"foodId"`
			Label    string `json:"label"`
			Category string `json:"category"`
		} `json:"food"`
	} `json:"hints"`
}

// SearchFoods calls the parser endpoint for a free-text query.
func (s *EdamamService) SearchFoods(ctx context.Context, query string) ([]models.FoodItem, error) {
	u := fmt.Sprintf("%s?ingr=%s&app_id=%s&app_key=%s",
		s.parserURL, url.QueryEscape(query), s.appID, s.appKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	body, err := s.do(req)
	if err != nil {
		return nil, err
	}

	var pr foodParserResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("failed to parse Edamam parser JSON: %w", err)
	}

	results := make([]models.FoodItem, 0, len(pr.Hints))
	for _, h := range pr.Hints {
		results = append(results, models.FoodItem{
			EdamamFoodID: h.Food.FoodID,
			Label:        h.Food.Label,
			Category:     h.Food.Category,
		})
	}
	return results, nil
}

type nutritionResponse struct {
	TotalNutrients map[string]struct {
		Quantity float64 `json:"quantity"`
	} `json:"totalNutrients"`
}

// AnalyzeFood fetches per-serving nutrient totals for one food id, flattened
// to a code -> quantity map.
func (s *EdamamService) AnalyzeFood(ctx context.Context, foodID, measureURI string, qty float64) (map[string]float64, error) {
	payload := map[string]interface{}{
		"ingredients": []map[string]interface{}{{
			"quantity":   qty,
			"measureURI": measureURI,
			"foodId":     foodID,
		}},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s?app_id=%s&app_key=%s", s.nutrientsURL, s.appID, s.appKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := s.do(req)
	if err != nil {
		return nil, err
	}

	var nr nutritionResponse
	if err := json.Unmarshal(body, &nr); err != nil {
		return nil, fmt.Errorf("failed to parse nutrition JSON: %w", err)
	}

	nut := make(map[string]float64, len(nr.TotalNutrients))
	for k, v := range nr.TotalNutrients {
		nut[k] = v.Quantity
	}
	return nut, nil
}

func (s *EdamamService) do(req *http.Request) ([]byte, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Edamam API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Edamam response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("edamam API error %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
