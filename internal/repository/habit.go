package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/habitloop/habitloop/internal/model"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
)

type HabitRepository interface {
	Create(habit *model.Habit) error
	ByID(userID, habitID string) (*model.Habit, error)
	ByUser(userID string, active bool) ([]*model.Habit, error)
	// ActiveAsOf returns the user's active habits created at or before
	// cutoff, so the daily view only shows habits that existed on that day.
	ActiveAsOf(userID string, cutoff time.Time) ([]*model.Habit, error)
	// AllAsOf is the degraded variant used when the active column is
	// missing: no active filter, every habit treated as active.
	AllAsOf(userID string, cutoff time.Time) ([]*model.Habit, error)
	Update(habit *model.Habit) error
	SetActive(userID, habitID string, active bool) error
	Delete(userID, habitID string) error
	UsersWithActiveDurationHabits() ([]string, error)
}

type habitRepository struct {
	db *sqlx.DB
}

func NewHabitRepository(db *sqlx.DB) HabitRepository {
	return &habitRepository{db: db}
}

func (r *habitRepository) Create(habit *model.Habit) error {
	query := `INSERT INTO habits (id, user_id, name, category, habit_type, default_duration, default_rating, active, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(query,
		habit.ID,
		habit.UserID,
		habit.Name,
		habit.Category,
		habit.HabitType,
		habit.DefaultDuration,
		habit.DefaultRating,
		habit.Active,
		habit.CreatedAt,
	)

	return err
}

func (r *habitRepository) ByID(userID, habitID string) (*model.Habit, error) {
	habit := &model.Habit{}
	query := `SELECT * FROM habits WHERE id = $1 AND user_id = $2`

	err := r.db.Get(habit, query, habitID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrHabitNotFound
	}

	return habit, err
}

func (r *habitRepository) ByUser(userID string, active bool) ([]*model.Habit, error) {
	var habits []*model.Habit
	query := `SELECT * FROM habits WHERE user_id = $1 AND active = $2 ORDER BY category, name`

	err := r.db.Select(&habits, query, userID, active)
	if err != nil {
		return nil, err
	}

	return habits, nil
}

func (r *habitRepository) ActiveAsOf(userID string, cutoff time.Time) ([]*model.Habit, error) {
	var habits []*model.Habit
	query := `SELECT * FROM habits WHERE user_id = $1 AND active = TRUE AND created_at <= $2 ORDER BY category, name`

	err := r.db.Select(&habits, query, userID, cutoff)
	if err != nil {
		return nil, err
	}

	return habits, nil
}

func (r *habitRepository) AllAsOf(userID string, cutoff time.Time) ([]*model.Habit, error) {
	var habits []*model.Habit
	query := `SELECT * FROM habits WHERE user_id = $1 AND created_at <= $2 ORDER BY category, name`

	err := r.db.Select(&habits, query, userID, cutoff)
	if err != nil {
		return nil, err
	}

	return habits, nil
}

// Update changes the editable fields. habit_type is immutable after
// creation and active is only changed through SetActive.
func (r *habitRepository) Update(habit *model.Habit) error {
	query := `UPDATE habits
	          SET name = $1, category = $2, default_duration = $3, default_rating = $4
	          WHERE id = $5 AND user_id = $6`

	result, err := r.db.Exec(query,
		habit.Name,
		habit.Category,
		habit.DefaultDuration,
		habit.DefaultRating,
		habit.ID,
		habit.UserID,
	)

	if err != nil {
		return err
	}

	return requireHabitRow(result)
}

func (r *habitRepository) SetActive(userID, habitID string, active bool) error {
	query := `UPDATE habits SET active = $1 WHERE id = $2 AND user_id = $3`

	result, err := r.db.Exec(query, active, habitID, userID)
	if err != nil {
		return err
	}

	return requireHabitRow(result)
}

func (r *habitRepository) Delete(userID, habitID string) error {
	query := `DELETE FROM habits WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(query, habitID, userID)

	if err != nil {
		return err
	}

	return requireHabitRow(result)
}

func (r *habitRepository) UsersWithActiveDurationHabits() ([]string, error) {
	var userIDs []string
	query := `SELECT DISTINCT user_id FROM habits WHERE active = TRUE AND habit_type = $1`

	err := r.db.Select(&userIDs, query, model.HabitTypeDuration)
	if err != nil {
		return nil, err
	}

	return userIDs, nil
}

func requireHabitRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrHabitNotFound
	}
	return nil
}
