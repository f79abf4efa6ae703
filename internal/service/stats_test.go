package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitloop/habitloop/internal/model"
	"github.com/habitloop/habitloop/internal/repository"
)

func TestAggregate(t *testing.T) {
	checked := func(dates ...string) []*model.HabitCompletion {
		var rows []*model.HabitCompletion
		for _, d := range dates {
			rows = append(rows, &model.HabitCompletion{CompletedDate: d})
		}
		return rows
	}

	t.Run("checkbox counts rows", func(t *testing.T) {
		assert.Equal(t, 3.0, aggregate(model.HabitTypeCheckbox, checked("2026-08-01", "2026-08-02", "2026-08-03")))
		assert.Equal(t, 0.0, aggregate(model.HabitTypeCheckbox, nil))
	})

	t.Run("duration sums minutes with nulls as zero", func(t *testing.T) {
		rows := []*model.HabitCompletion{
			{CompletedDate: "2026-08-01", Duration: intPtr(45)},
			{CompletedDate: "2026-08-02"},
			{CompletedDate: "2026-08-03", Duration: intPtr(30)},
		}
		assert.Equal(t, 75.0, aggregate(model.HabitTypeDuration, rows))
		assert.Equal(t, 0.0, aggregate(model.HabitTypeDuration, nil))
	})

	t.Run("rating averages non-null values rounded to one decimal", func(t *testing.T) {
		rows := []*model.HabitCompletion{
			{CompletedDate: "2026-08-01", Rating: floatPtr(4.5)},
			{CompletedDate: "2026-08-02", Rating: floatPtr(3.0)},
			{CompletedDate: "2026-08-03"},
			{CompletedDate: "2026-08-04", Rating: floatPtr(2.5)},
		}
		// (4.5 + 3.0 + 2.5) / 3 = 3.333... -> 3.3
		assert.Equal(t, 3.3, aggregate(model.HabitTypeRating, rows))
	})

	t.Run("rating with no values is zero", func(t *testing.T) {
		rows := []*model.HabitCompletion{{CompletedDate: "2026-08-01"}}
		assert.Equal(t, 0.0, aggregate(model.HabitTypeRating, rows))
	})
}

func TestMonthlyStats(t *testing.T) {
	env := newTestEnv(t)
	piano := env.createHabit(t, "Piano", "Music", model.HabitTypeDuration)
	read := env.createHabit(t, "Read", "Mind", model.HabitTypeCheckbox)
	completionRepo := repository.NewCompletionRepository(env.conn)

	insert := func(habitID, date string, duration *int) {
		require.NoError(t, completionRepo.Upsert(&model.HabitCompletion{
			HabitID:       habitID,
			UserID:        env.userID,
			CompletedDate: date,
			Duration:      duration,
		}))
	}

	insert(piano.ID, "2026-08-01", intPtr(45))
	insert(piano.ID, "2026-08-15", intPtr(30))
	insert(read.ID, "2026-08-10", nil)
	// Outside the month, must not count
	insert(piano.ID, "2026-07-31", intPtr(60))

	stats, err := env.stats.Monthly(env.userID, 2026, time.August)
	require.NoError(t, err)
	require.Len(t, stats.Groups, 2)

	assert.Equal(t, "Mind", stats.Groups[0].Category)
	assert.Equal(t, 1.0, stats.Groups[0].Habits[0].Value)

	assert.Equal(t, "Music", stats.Groups[1].Category)
	assert.Equal(t, 75.0, stats.Groups[1].Habits[0].Value)

	// Recomputing gives the same result
	again, err := env.stats.Monthly(env.userID, 2026, time.August)
	require.NoError(t, err)
	assert.Equal(t, stats, again)
}

func TestMonthlyStatsArchivedHabitVisibility(t *testing.T) {
	env := newTestEnv(t)
	withHistory := env.createHabit(t, "Piano", "Music", model.HabitTypeCheckbox)
	noHistory := env.createHabit(t, "Run", "Fitness", model.HabitTypeCheckbox)
	completionRepo := repository.NewCompletionRepository(env.conn)

	require.NoError(t, completionRepo.Upsert(&model.HabitCompletion{
		HabitID:       withHistory.ID,
		UserID:        env.userID,
		CompletedDate: "2026-08-05",
	}))

	require.NoError(t, env.habits.Archive(env.userID, withHistory.ID))
	require.NoError(t, env.habits.Archive(env.userID, noHistory.ID))

	stats, err := env.stats.Monthly(env.userID, 2026, time.August)
	require.NoError(t, err)

	// Archived habit with completions in the month still shows up;
	// archived habit without any does not.
	require.Len(t, stats.Groups, 1)
	assert.Equal(t, "Music", stats.Groups[0].Category)
}

func TestTrendStats(t *testing.T) {
	env := newTestEnv(t)
	piano := env.createHabit(t, "Piano", "Music", model.HabitTypeDuration)
	completionRepo := repository.NewCompletionRepository(env.conn)

	insert := func(date string, minutes int) {
		require.NoError(t, completionRepo.Upsert(&model.HabitCompletion{
			HabitID:       piano.ID,
			UserID:        env.userID,
			CompletedDate: date,
			Duration:      &minutes,
		}))
	}

	// Clock is fixed at 2026-08-30, so the 6-month window is Mar..Aug
	insert("2026-08-10", 30)
	insert("2026-08-20", 15)
	insert("2026-06-05", 60)
	insert("2026-02-01", 99) // outside window

	stats, err := env.stats.Trend(env.userID, 6)
	require.NoError(t, err)
	require.Len(t, stats.Months, 6)
	assert.Equal(t, time.March, stats.Months[0].Month)
	assert.Equal(t, time.August, stats.Months[5].Month)

	require.Len(t, stats.Series, 1)
	values := stats.Series[0].Values
	require.Len(t, values, 6)
	assert.Equal(t, []float64{0, 0, 0, 60, 0, 45}, values)
}

func TestTrendRejectsOtherWindows(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.stats.Trend(env.userID, 3)
	assert.ErrorIs(t, err, ErrInvalidTrendWindow)

	_, err = env.stats.Trend(env.userID, 12)
	assert.NoError(t, err)
}
