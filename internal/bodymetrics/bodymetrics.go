// Package bodymetrics holds the pure body and goal calculations: BMI with its
// category, and the progress ratio of a goal.
package bodymetrics

import (
	"fmt"
	"math"

	"github.com/2beens/fitassist/internal/apperr"
)

const lbsToKg = 0.453592

type Category struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

var (
	Underweight  = Category{Name: "Underweight", Color: "#1E90FF"}
	NormalWeight = Category{Name: "Normal weight", Color: "#32CD32"}
	Overweight   = Category{Name: "Overweight", Color: "#FFA500"}
	Obese        = Category{Name: "Obese", Color: "#FF6347"}
)

// ComputeBMI returns weight / (height in meters)², rounded to 2 decimals.
func ComputeBMI(weightKg, heightCm float64) (float64, error) {
	if heightCm <= 0 || math.IsNaN(heightCm) {
		return 0, apperr.InvalidInput("height must be positive, got %v", heightCm)
	}
	if weightKg < 0 || math.IsNaN(weightKg) {
		return 0, apperr.InvalidInput("weight must not be negative, got %v", weightKg)
	}

	heightM := heightCm / 100
	return round2(weightKg / (heightM * heightM)), nil
}

// ClassifyBMI uses half-open intervals, a boundary value belongs to the upper category.
func ClassifyBMI(bmi float64) Category {
	switch {
	case bmi < 18.5:
		return Underweight
	case bmi < 25:
		return NormalWeight
	case bmi < 30:
		return Overweight
	default:
		return Obese
	}
}

// GoalProgress is current/target clamped to [0, 1]; 0 when target is 0.
func GoalProgress(current, target float64) float64 {
	if target == 0 {
		return 0
	}
	ratio := current / target
	if ratio < 0 || math.IsNaN(ratio) {
		return 0
	}
	return math.Min(ratio, 1.0)
}

func FormatProgress(current, target float64) string {
	return fmt.Sprintf("%.1f/%.1f", current, target)
}

func KgFromLbs(lbs float64) float64 {
	return lbs * lbsToKg
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatCalories renders burned calories without decimals, "N/A" when unknown (0).
func FormatCalories(calories float64) string {
	if calories <= 0 || math.IsNaN(calories) {
		return "N/A"
	}
	return fmt.Sprintf("%.0f", calories)
}
