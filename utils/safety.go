package utils

import (
	"fmt"
	"strings"
)

type WarningSeverity string

const (
	SeverityInfo    WarningSeverity = "info"
	SeverityCaution WarningSeverity = "caution"
	SeverityHigh    WarningSeverity = "high"
)

// Warning is a structured dietary finding attached to a nutrition preview.
type Warning struct {
	Code     string          `json:"code"`
	Severity WarningSeverity `json:"severity"`
	Message  string          `json:"message"`
}

// Daily reference limits for a 2000 kcal pattern (DGA 2020-2025).
const (
	sodiumDailyLimitMg   = 2300.0
	addedSugarDailyLimG  = 50.0 // 10% of 2000 kcal at 4 kcal/g
	satFatDailyLimG      = 22.0 // 10% of 2000 kcal at 9 kcal/g
	highShareOfDailyLim  = 0.40
	elevatedShareOfDaily = 0.20
)

// AssessNutrients flags a serving's share of daily sodium, sugar and
// saturated-fat limits. Nutrient keys follow Edamam codes; missing keys
// produce no findings.
func AssessNutrients(foodName string, nutrients map[string]float64) []Warning {
	warnings := []Warning{}

	if w := shareWarning("sodium", nutrients["NA"], sodiumDailyLimitMg); w != nil {
		warnings = append(warnings, *w)
	}
	if w := shareWarning("sugar", nutrients["SUGAR"], addedSugarDailyLimG); w != nil {
		warnings = append(warnings, *w)
	}
	if w := shareWarning("saturated fat", nutrients["FASAT"], satFatDailyLimG); w != nil {
		warnings = append(warnings, *w)
	}

	kcal := nutrients["ENERC_KCAL"]
	fiber := nutrients["FIBTG"]
	if kcal > 0 && fiber > 0 && (fiber/kcal)*100 >= 2.5 {
		warnings = append(warnings, Warning{
			Code:     "fiber_high_positive",
			Severity: SeverityInfo,
			Message:  "Good fiber density — supports a healthy dietary pattern.",
		})
	}

	if looksHighSatSource(strings.ToLower(foodName)) && nutrients["FASAT"] <= 0 {
		warnings = append(warnings, Warning{
			Code:     "satfat_source_heuristic",
			Severity: SeverityInfo,
			Message:  "Likely high in saturated fat — consider leaner cuts or plant oils.",
		})
	}

	return warnings
}

func shareWarning(metric string, value, dailyLimit float64) *Warning {
	if value <= 0 || dailyLimit <= 0 {
		return nil
	}
	share := value / dailyLimit
	code := strings.ReplaceAll(metric, " ", "_")
	switch {
	case share >= highShareOfDailyLim:
		return &Warning{
			Code:     code + "_very_high",
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("Very high %s for one serving (~%.0f%% of the daily limit).", metric, share*100),
		}
	case share >= elevatedShareOfDaily:
		return &Warning{
			Code:     code + "_high",
			Severity: SeverityCaution,
			Message:  fmt.Sprintf("High %s for one serving (~%.0f%% of the daily limit).", metric, share*100),
		}
	}
	return nil
}

func looksHighSatSource(name string) bool {
	for _, s := range []string{"butter", "ghee", "cream", "cheese", "bacon", "sausage", "lard", "coconut oil"} {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}
