package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitloop/habitloop/internal/model"
)

func TestUpsertKeepsSingleRowPerDate(t *testing.T) {
	conn := newTestDB(t)
	user := createTestUser(t, conn)
	habit := createTestHabit(t, conn, user.ID, "Piano", "Music", model.HabitTypeDuration)
	repo := NewCompletionRepository(conn)

	first := 45
	require.NoError(t, repo.Upsert(&model.HabitCompletion{
		HabitID:       habit.ID,
		UserID:        user.ID,
		CompletedDate: "2026-08-30",
		Duration:      &first,
	}))

	second := 30
	require.NoError(t, repo.Upsert(&model.HabitCompletion{
		HabitID:       habit.ID,
		UserID:        user.ID,
		CompletedDate: "2026-08-30",
		Duration:      &second,
	}))

	completions, err := repo.ByDate(user.ID, "2026-08-30")
	require.NoError(t, err)
	require.Len(t, completions, 1)
	require.NotNil(t, completions[0].Duration)
	assert.Equal(t, 30, *completions[0].Duration)
}

func TestInsertIfMissingNeverOverwrites(t *testing.T) {
	conn := newTestDB(t)
	user := createTestUser(t, conn)
	habit := createTestHabit(t, conn, user.ID, "Run", "Fitness", model.HabitTypeDuration)
	repo := NewCompletionRepository(conn)

	logged := 25
	require.NoError(t, repo.Upsert(&model.HabitCompletion{
		HabitID:       habit.ID,
		UserID:        user.ID,
		CompletedDate: "2026-08-30",
		Duration:      &logged,
	}))

	zero := 0
	require.NoError(t, repo.InsertIfMissing(&model.HabitCompletion{
		HabitID:       habit.ID,
		UserID:        user.ID,
		CompletedDate: "2026-08-30",
		Duration:      &zero,
	}))

	completions, err := repo.ByDate(user.ID, "2026-08-30")
	require.NoError(t, err)
	require.Len(t, completions, 1)
	assert.Equal(t, 25, *completions[0].Duration)
}

func TestDeleteAbsentRowIsNoop(t *testing.T) {
	conn := newTestDB(t)
	user := createTestUser(t, conn)
	habit := createTestHabit(t, conn, user.ID, "Read", "Mind", model.HabitTypeCheckbox)
	repo := NewCompletionRepository(conn)

	assert.NoError(t, repo.Delete(user.ID, habit.ID, "2026-08-30"))
}

func TestInRangeOrdersByDate(t *testing.T) {
	conn := newTestDB(t)
	user := createTestUser(t, conn)
	habit := createTestHabit(t, conn, user.ID, "Read", "Mind", model.HabitTypeCheckbox)
	repo := NewCompletionRepository(conn)

	for _, date := range []string{"2026-08-15", "2026-08-01", "2026-08-31"} {
		require.NoError(t, repo.Upsert(&model.HabitCompletion{
			HabitID:       habit.ID,
			UserID:        user.ID,
			CompletedDate: date,
		}))
	}

	completions, err := repo.InRange(user.ID, "2026-08-01", "2026-08-31")
	require.NoError(t, err)
	require.Len(t, completions, 3)
	assert.Equal(t, "2026-08-01", completions[0].CompletedDate)
	assert.Equal(t, "2026-08-15", completions[1].CompletedDate)
	assert.Equal(t, "2026-08-31", completions[2].CompletedDate)

	// Boundaries are inclusive
	completions, err = repo.InRange(user.ID, "2026-08-02", "2026-08-30")
	require.NoError(t, err)
	require.Len(t, completions, 1)
	assert.Equal(t, "2026-08-15", completions[0].CompletedDate)
}

func TestDeleteByHabitClearsHistory(t *testing.T) {
	conn := newTestDB(t)
	user := createTestUser(t, conn)
	habit := createTestHabit(t, conn, user.ID, "Read", "Mind", model.HabitTypeCheckbox)
	repo := NewCompletionRepository(conn)

	require.NoError(t, repo.Upsert(&model.HabitCompletion{
		HabitID:       habit.ID,
		UserID:        user.ID,
		CompletedDate: "2026-08-30",
	}))

	require.NoError(t, repo.DeleteByHabit(user.ID, habit.ID))

	completions, err := repo.ByDate(user.ID, "2026-08-30")
	require.NoError(t, err)
	assert.Empty(t, completions)
}
