package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitloop/habitloop/internal/model"
)

func TestHabitByIDScopesToUser(t *testing.T) {
	conn := newTestDB(t)
	owner := createTestUser(t, conn)
	other := createTestUser(t, conn)
	habit := createTestHabit(t, conn, owner.ID, "Piano", "Music", model.HabitTypeDuration)
	repo := NewHabitRepository(conn)

	got, err := repo.ByID(owner.ID, habit.ID)
	require.NoError(t, err)
	assert.Equal(t, habit.ID, got.ID)

	_, err = repo.ByID(other.ID, habit.ID)
	assert.ErrorIs(t, err, ErrHabitNotFound)
}

func TestHabitUpdateDoesNotTouchTypeOrActive(t *testing.T) {
	conn := newTestDB(t)
	user := createTestUser(t, conn)
	habit := createTestHabit(t, conn, user.ID, "Piano", "Music", model.HabitTypeDuration)
	repo := NewHabitRepository(conn)

	habit.Name = "Guitar"
	habit.Category = "Hobby"
	habit.HabitType = model.HabitTypeRating // must be ignored
	require.NoError(t, repo.Update(habit))

	got, err := repo.ByID(user.ID, habit.ID)
	require.NoError(t, err)
	assert.Equal(t, "Guitar", got.Name)
	assert.Equal(t, "Hobby", got.Category)
	assert.Equal(t, model.HabitTypeDuration, got.HabitType)
	assert.True(t, got.Active)
}

func TestHabitSetActive(t *testing.T) {
	conn := newTestDB(t)
	user := createTestUser(t, conn)
	habit := createTestHabit(t, conn, user.ID, "Piano", "Music", model.HabitTypeCheckbox)
	repo := NewHabitRepository(conn)

	require.NoError(t, repo.SetActive(user.ID, habit.ID, false))

	active, err := repo.ByUser(user.ID, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	archived, err := repo.ByUser(user.ID, false)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, habit.ID, archived[0].ID)

	assert.ErrorIs(t, repo.SetActive(user.ID, "missing", true), ErrHabitNotFound)
}

func TestActiveAsOfExcludesLaterHabits(t *testing.T) {
	conn := newTestDB(t)
	user := createTestUser(t, conn)
	repo := NewHabitRepository(conn)

	old := &model.Habit{
		ID:        "habit-old",
		UserID:    user.ID,
		Name:      "Read",
		Category:  "Mind",
		HabitType: model.HabitTypeCheckbox,
		Active:    true,
		CreatedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(old))

	fresh := &model.Habit{
		ID:        "habit-new",
		UserID:    user.ID,
		Name:      "Run",
		Category:  "Fitness",
		HabitType: model.HabitTypeCheckbox,
		Active:    true,
		CreatedAt: time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(fresh))

	habits, err := repo.ActiveAsOf(user.ID, time.Date(2026, 8, 10, 23, 59, 59, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, "habit-old", habits[0].ID)
}

func TestHabitDeleteCascadesCompletions(t *testing.T) {
	conn := newTestDB(t)
	user := createTestUser(t, conn)
	habit := createTestHabit(t, conn, user.ID, "Piano", "Music", model.HabitTypeCheckbox)
	habitRepo := NewHabitRepository(conn)
	completionRepo := NewCompletionRepository(conn)

	require.NoError(t, completionRepo.Upsert(&model.HabitCompletion{
		HabitID:       habit.ID,
		UserID:        user.ID,
		CompletedDate: "2026-08-30",
	}))

	require.NoError(t, habitRepo.Delete(user.ID, habit.ID))

	completions, err := completionRepo.ByDate(user.ID, "2026-08-30")
	require.NoError(t, err)
	assert.Empty(t, completions)
}

func TestUsersWithActiveDurationHabits(t *testing.T) {
	conn := newTestDB(t)
	withDuration := createTestUser(t, conn)
	withoutDuration := createTestUser(t, conn)
	createTestHabit(t, conn, withDuration.ID, "Piano", "Music", model.HabitTypeDuration)
	createTestHabit(t, conn, withoutDuration.ID, "Read", "Mind", model.HabitTypeCheckbox)
	repo := NewHabitRepository(conn)

	userIDs, err := repo.UsersWithActiveDurationHabits()
	require.NoError(t, err)
	assert.Equal(t, []string{withDuration.ID}, userIDs)
}
