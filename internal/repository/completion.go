package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/habitloop/habitloop/internal/model"
)

var (
	ErrCompletionNotFound = errors.New("completion not found")
)

type CompletionRepository interface {
	// Upsert writes the single completion row for (habit, date),
	// replacing the stored value if a row already exists.
	Upsert(completion *model.HabitCompletion) error
	// InsertIfMissing writes the row only when none exists yet. Used by
	// end-of-day finalization so it never clobbers a real value.
	InsertIfMissing(completion *model.HabitCompletion) error
	Delete(userID, habitID, date string) error
	ByDate(userID, date string) ([]*model.HabitCompletion, error)
	InRange(userID, from, to string) ([]*model.HabitCompletion, error)
	DeleteByHabit(userID, habitID string) error
}

type completionRepository struct {
	db *sqlx.DB
}

func NewCompletionRepository(db *sqlx.DB) CompletionRepository {
	return &completionRepository{db: db}
}

// Upsert relies on the UNIQUE (habit_id, completed_date) constraint: the
// insert and the conflict update are one statement, so two concurrent
// writers cannot leave duplicate rows behind.
func (r *completionRepository) Upsert(completion *model.HabitCompletion) error {
	if completion.ID == "" {
		completion.ID = uuid.New().String()
	}

	query := `INSERT INTO habit_completions (id, habit_id, user_id, completed_date, duration, rating)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (habit_id, completed_date)
	          DO UPDATE SET duration = excluded.duration, rating = excluded.rating`

	_, err := r.db.Exec(query,
		completion.ID,
		completion.HabitID,
		completion.UserID,
		completion.CompletedDate,
		completion.Duration,
		completion.Rating,
	)

	return err
}

func (r *completionRepository) InsertIfMissing(completion *model.HabitCompletion) error {
	if completion.ID == "" {
		completion.ID = uuid.New().String()
	}

	query := `INSERT INTO habit_completions (id, habit_id, user_id, completed_date, duration, rating)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (habit_id, completed_date) DO NOTHING`

	_, err := r.db.Exec(query,
		completion.ID,
		completion.HabitID,
		completion.UserID,
		completion.CompletedDate,
		completion.Duration,
		completion.Rating,
	)

	return err
}

func (r *completionRepository) Delete(userID, habitID, date string) error {
	query := `DELETE FROM habit_completions WHERE habit_id = $1 AND user_id = $2 AND completed_date = $3`

	// Deleting an absent row is not an error: unchecking an already
	// unchecked habit is a no-op.
	_, err := r.db.Exec(query, habitID, userID, date)
	return err
}

func (r *completionRepository) ByDate(userID, date string) ([]*model.HabitCompletion, error) {
	var completions []*model.HabitCompletion
	query := `SELECT * FROM habit_completions WHERE user_id = $1 AND completed_date = $2`

	err := r.db.Select(&completions, query, userID, date)
	if err != nil {
		return nil, err
	}

	return completions, nil
}

func (r *completionRepository) InRange(userID, from, to string) ([]*model.HabitCompletion, error) {
	var completions []*model.HabitCompletion
	query := `SELECT * FROM habit_completions
	          WHERE user_id = $1 AND completed_date >= $2 AND completed_date <= $3
	          ORDER BY completed_date`

	err := r.db.Select(&completions, query, userID, from, to)
	if err != nil {
		return nil, err
	}

	return completions, nil
}

func (r *completionRepository) DeleteByHabit(userID, habitID string) error {
	query := `DELETE FROM habit_completions WHERE habit_id = $1 AND user_id = $2`
	_, err := r.db.Exec(query, habitID, userID)
	return err
}
