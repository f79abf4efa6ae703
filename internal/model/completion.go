package model

// HabitCompletion records a habit's outcome on one calendar date.
// CompletedDate is a date-only string (YYYY-MM-DD); at most one row
// exists per (habit_id, completed_date).
//
// Duration is set only for duration habits, Rating only for rating
// habits; checkbox completions carry neither.
type HabitCompletion struct {
	ID            string   `db:"id" json:"id"`
	HabitID       string   `db:"habit_id" json:"habit_id"`
	UserID        string   `db:"user_id" json:"-"`
	CompletedDate string   `db:"completed_date" json:"completed_date"`
	Duration      *int     `db:"duration" json:"duration"`
	Rating        *float64 `db:"rating" json:"rating"`
}
