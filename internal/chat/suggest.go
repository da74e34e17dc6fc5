package chat

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/2beens/fitassist/internal/bodymetrics"
)

var (
	weightChangeRegex = regexp.MustCompile(`(?i)(lose|gain)\s+(\d+(?:\.\d+)?)\s*(kg|kilograms|lbs|pounds)`)
	exerciseRegex     = regexp.MustCompile(`(?i)(\d+)\s*(minutes|minute|hours|hour)\s+(.*?)\s+per\s+(day|week|month)`)
)

// GoalSuggestion is a goal spotted in a chat message. It is never stored on its own.
type GoalSuggestion struct {
	GoalType    string  `json:"goalType"`
	TargetValue float64 `json:"targetValue"`
	Description string  `json:"description"`
}

// SuggestGoals looks for weight targets ("lose 5 kg", "gain 10 lbs") and exercise
// routines ("30 minutes running per day") in a message. Weights are reported in kg,
// exercise durations in minutes.
func SuggestGoals(message string) []GoalSuggestion {
	suggestions := []GoalSuggestion{}

	weightMatches := weightChangeRegex.FindAllStringSubmatch(message, -1)
	for _, direction := range []string{"lose", "gain"} {
		for _, m := range weightMatches {
			if !strings.EqualFold(m[1], direction) {
				continue
			}
			value, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			if unit := strings.ToLower(m[3]); unit == "lbs" || unit == "pounds" {
				value = bodymetrics.KgFromLbs(value)
			}
			suggestions = append(suggestions, GoalSuggestion{
				GoalType:    "weight_" + direction,
				TargetValue: value,
				Description: "Goal: " + message,
			})
		}
	}

	for _, m := range exerciseRegex.FindAllStringSubmatch(message, -1) {
		duration, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if strings.HasPrefix(strings.ToLower(m[2]), "hour") {
			duration *= 60
		}
		exercise, frequency := m[3], strings.ToLower(m[4])
		suggestions = append(suggestions, GoalSuggestion{
			GoalType:    "exercise",
			TargetValue: float64(duration),
			Description: fmt.Sprintf("Aim to do %s for %d minutes per %s. Extracted from: %s", exercise, duration, frequency, message),
		})
	}

	return suggestions
}
