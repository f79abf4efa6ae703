package model

import (
	"time"
)

const (
	HabitTypeCheckbox = "checkbox"
	HabitTypeDuration = "duration"
	HabitTypeRating   = "rating"

	DefaultCategory = "Uncategorized"
)

// TypeOrder is the canonical habit-type precedence used when ordering
// habits inside a category: checkbox first, then duration, then rating.
var TypeOrder = map[string]int{
	HabitTypeCheckbox: 1,
	HabitTypeDuration: 2,
	HabitTypeRating:   3,
}

// Habit is a user-defined recurring activity tracked daily.
// HabitType is immutable after creation; Active=false means archived
// (hidden from the daily view, history retained).
type Habit struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"-"`
	Name            string    `db:"name" json:"name"`
	Category        string    `db:"category" json:"category"`
	HabitType       string    `db:"habit_type" json:"habit_type"`
	DefaultDuration *int      `db:"default_duration" json:"default_duration"`
	DefaultRating   *float64  `db:"default_rating" json:"default_rating"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

func ValidHabitType(t string) bool {
	_, ok := TypeOrder[t]
	return ok
}
