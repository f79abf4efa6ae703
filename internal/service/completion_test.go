package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitloop/habitloop/internal/clock"
	"github.com/habitloop/habitloop/internal/model"
)

func TestSetCompletionCheckbox(t *testing.T) {
	env := newTestEnv(t)
	habit := env.createHabit(t, "Read", "Mind", model.HabitTypeCheckbox)
	today := clock.Today(env.clock)

	completion, err := env.completions.SetCompletion(env.userID, habit.ID, SetCompletionInput{
		Date:    today,
		Checked: true,
	})
	require.NoError(t, err)
	require.NotNil(t, completion)
	assert.Nil(t, completion.Duration)
	assert.Nil(t, completion.Rating)

	view, err := env.completions.Day(env.userID, today)
	require.NoError(t, err)
	require.Len(t, view.Groups, 1)
	require.Len(t, view.Groups[0].Habits, 1)
	assert.True(t, view.Groups[0].Habits[0].Completed)

	// Uncheck removes the row
	completion, err = env.completions.SetCompletion(env.userID, habit.ID, SetCompletionInput{
		Date:    today,
		Checked: false,
	})
	require.NoError(t, err)
	assert.Nil(t, completion)

	view, err = env.completions.Day(env.userID, today)
	require.NoError(t, err)
	assert.False(t, view.Groups[0].Habits[0].Completed)
}

func TestSetCompletionDurationReplacesValue(t *testing.T) {
	env := newTestEnv(t)
	habit := env.createHabit(t, "Piano", "Music", model.HabitTypeDuration)
	today := clock.Today(env.clock)

	_, err := env.completions.SetCompletion(env.userID, habit.ID, SetCompletionInput{
		Date:     today,
		Checked:  true,
		Duration: intPtr(45),
	})
	require.NoError(t, err)

	_, err = env.completions.SetCompletion(env.userID, habit.ID, SetCompletionInput{
		Date:     today,
		Checked:  true,
		Duration: intPtr(30),
	})
	require.NoError(t, err)

	view, err := env.completions.Day(env.userID, today)
	require.NoError(t, err)
	item := view.Groups[0].Habits[0]
	require.NotNil(t, item.Duration)
	assert.Equal(t, 30, *item.Duration)
}

func TestSetCompletionUsesHabitDefaults(t *testing.T) {
	env := newTestEnv(t)
	habit, err := env.habits.Create(env.userID, CreateHabitInput{
		Name:            "Meditate",
		Category:        "Mind",
		HabitType:       model.HabitTypeDuration,
		DefaultDuration: intPtr(20),
	})
	require.NoError(t, err)
	today := clock.Today(env.clock)

	completion, err := env.completions.SetCompletion(env.userID, habit.ID, SetCompletionInput{
		Date:    today,
		Checked: true,
	})
	require.NoError(t, err)
	require.NotNil(t, completion.Duration)
	assert.Equal(t, 20, *completion.Duration)
}

func TestSetCompletionRejectsOtherDates(t *testing.T) {
	env := newTestEnv(t)
	habit := env.createHabit(t, "Read", "Mind", model.HabitTypeCheckbox)

	_, err := env.completions.SetCompletion(env.userID, habit.ID, SetCompletionInput{
		Date:    clock.Yesterday(env.clock),
		Checked: true,
	})
	assert.ErrorIs(t, err, ErrNotToday)

	_, err = env.completions.SetCompletion(env.userID, habit.ID, SetCompletionInput{
		Date:    "2030-01-01",
		Checked: true,
	})
	assert.ErrorIs(t, err, ErrNotToday)

	_, err = env.completions.SetCompletion(env.userID, habit.ID, SetCompletionInput{
		Date:    "not-a-date",
		Checked: true,
	})
	assert.Error(t, err)
}

func TestSetCompletionRejectsArchivedHabit(t *testing.T) {
	env := newTestEnv(t)
	habit := env.createHabit(t, "Read", "Mind", model.HabitTypeCheckbox)
	require.NoError(t, env.habits.Archive(env.userID, habit.ID))

	_, err := env.completions.SetCompletion(env.userID, habit.ID, SetCompletionInput{
		Date:    clock.Today(env.clock),
		Checked: true,
	})
	assert.ErrorIs(t, err, ErrHabitArchived)
}

func TestSetCompletionClampsRating(t *testing.T) {
	env := newTestEnv(t)
	habit := env.createHabit(t, "Mood", "Health", model.HabitTypeRating)
	today := clock.Today(env.clock)

	completion, err := env.completions.SetCompletion(env.userID, habit.ID, SetCompletionInput{
		Date:    today,
		Checked: true,
		Rating:  floatPtr(7.3),
	})
	require.NoError(t, err)
	require.NotNil(t, completion.Rating)
	assert.Equal(t, 5.0, *completion.Rating)

	completion, err = env.completions.SetCompletion(env.userID, habit.ID, SetCompletionInput{
		Date:    today,
		Checked: true,
		Rating:  floatPtr(3.3),
	})
	require.NoError(t, err)
	assert.Equal(t, 3.5, *completion.Rating)
}

func TestFinalizeDayFillsMissingDurations(t *testing.T) {
	env := newTestEnv(t)
	logged := env.createHabit(t, "Piano", "Music", model.HabitTypeDuration)
	missed := env.createHabit(t, "Run", "Fitness", model.HabitTypeDuration)
	checkbox := env.createHabit(t, "Read", "Mind", model.HabitTypeCheckbox)
	today := clock.Today(env.clock)

	_, err := env.completions.SetCompletion(env.userID, logged.ID, SetCompletionInput{
		Date:     today,
		Checked:  true,
		Duration: intPtr(45),
	})
	require.NoError(t, err)

	require.NoError(t, env.completions.FinalizeDay(env.userID, today))

	view, err := env.completions.Day(env.userID, today)
	require.NoError(t, err)

	byName := map[string]*DayHabit{}
	for _, group := range view.Groups {
		for _, item := range group.Habits {
			byName[item.Habit.Name] = item
		}
	}

	// Logged value untouched
	require.NotNil(t, byName["Piano"].Duration)
	assert.Equal(t, 45, *byName["Piano"].Duration)

	// Missed duration habit got a zero row
	require.True(t, byName["Run"].Completed)
	require.NotNil(t, byName["Run"].Duration)
	assert.Equal(t, 0, *byName["Run"].Duration)

	// Checkbox habits are untouched by finalization
	assert.False(t, byName["Read"].Completed)
	_ = checkbox
	_ = missed

	// Finalizing again changes nothing
	require.NoError(t, env.completions.FinalizeDay(env.userID, today))
	view, err = env.completions.Day(env.userID, today)
	require.NoError(t, err)
	for _, group := range view.Groups {
		for _, item := range group.Habits {
			if item.Habit.Name == "Piano" {
				assert.Equal(t, 45, *item.Duration)
			}
		}
	}
}

func TestDayViewGroupingAndOrder(t *testing.T) {
	env := newTestEnv(t)
	env.createHabit(t, "Stretch", "Fitness", model.HabitTypeRating)
	env.createHabit(t, "Run", "Fitness", model.HabitTypeDuration)
	env.createHabit(t, "Pushups", "Fitness", model.HabitTypeCheckbox)
	env.createHabit(t, "Journal", "Calm", model.HabitTypeCheckbox)
	today := clock.Today(env.clock)

	view, err := env.completions.Day(env.userID, today)
	require.NoError(t, err)
	require.Len(t, view.Groups, 2)

	// Categories alphabetical
	assert.Equal(t, "Calm", view.Groups[0].Category)
	assert.Equal(t, "Fitness", view.Groups[1].Category)

	// Within a category: checkbox, then duration, then rating
	fitness := view.Groups[1].Habits
	require.Len(t, fitness, 3)
	assert.Equal(t, "Pushups", fitness[0].Habit.Name)
	assert.Equal(t, "Run", fitness[1].Habit.Name)
	assert.Equal(t, "Stretch", fitness[2].Habit.Name)

	assert.False(t, view.ReadOnly)

	past, err := env.completions.Day(env.userID, clock.Yesterday(env.clock))
	require.NoError(t, err)
	assert.True(t, past.ReadOnly)
}

func TestDayViewExcludesArchivedHabits(t *testing.T) {
	env := newTestEnv(t)
	kept := env.createHabit(t, "Read", "Mind", model.HabitTypeCheckbox)
	archived := env.createHabit(t, "Run", "Fitness", model.HabitTypeCheckbox)
	require.NoError(t, env.habits.Archive(env.userID, archived.ID))

	view, err := env.completions.Day(env.userID, clock.Today(env.clock))
	require.NoError(t, err)
	require.Len(t, view.Groups, 1)
	require.Len(t, view.Groups[0].Habits, 1)
	assert.Equal(t, kept.ID, view.Groups[0].Habits[0].Habit.ID)
}
