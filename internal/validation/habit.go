package validation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/habitloop/habitloop/internal/model"
)

// ValidateHabitName validates a habit name
func ValidateHabitName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return errors.New("habit name is required")
	}

	if len(trimmed) > 100 {
		return errors.New("habit name is too long (max 100 characters)")
	}

	return nil
}

// ValidateCategory validates a habit category
func ValidateCategory(category string) error {
	if len(strings.TrimSpace(category)) > 100 {
		return errors.New("category is too long (max 100 characters)")
	}

	return nil
}

// ValidateHabitType checks the type against the known habit types
func ValidateHabitType(habitType string) error {
	if !model.ValidHabitType(habitType) {
		return fmt.Errorf("invalid habit type: %q (must be checkbox, duration, or rating)", habitType)
	}

	return nil
}

// ValidateDuration validates a duration value in minutes
func ValidateDuration(minutes int) error {
	if minutes < 0 {
		return errors.New("duration must not be negative")
	}

	if minutes > 24*60 {
		return errors.New("duration must not exceed 24 hours")
	}

	return nil
}

// ValidateRating validates a rating value: 0 to 5 in steps of 0.5
func ValidateRating(rating float64) error {
	if rating < 0 || rating > 5 {
		return errors.New("rating must be between 0 and 5")
	}

	// Steps of 0.5: doubling must yield a whole number
	doubled := rating * 2
	if math.Abs(doubled-math.Round(doubled)) > 1e-9 {
		return errors.New("rating must be in steps of 0.5")
	}

	return nil
}
