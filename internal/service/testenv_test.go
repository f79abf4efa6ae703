package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/habitloop/habitloop/internal/db"
	"github.com/habitloop/habitloop/internal/model"
	"github.com/habitloop/habitloop/internal/repository"
)

// fakeClock is a settable clock for simulating date rollover.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.now = t
}

// testEnv wires the habit domain services over an in-memory database.
type testEnv struct {
	conn        *sqlx.DB
	clock       *fakeClock
	habits      *HabitService
	completions *CompletionService
	stats       *StatsService
	userID      string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, err := sqlx.Connect("sqlite", ":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	require.NoError(t, db.RunMigrations(conn.DB, "sqlite"))
	t.Cleanup(func() { _ = conn.Close() })

	c := &fakeClock{now: time.Date(2026, 8, 30, 12, 0, 0, 0, time.Local)}

	habitRepo := repository.NewHabitRepository(conn)
	completionRepo := repository.NewCompletionRepository(conn)
	maintenanceRepo := repository.NewMaintenanceRepository(conn)

	habits := NewHabitService(habitRepo, completionRepo, maintenanceRepo)
	completions := NewCompletionService(habits, completionRepo, habitRepo, c)
	stats := NewStatsService(habits, completionRepo, c)

	userRepo := repository.NewUserRepository(conn)
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        "tester@example.com",
		PasswordHash: "x",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, userRepo.Create(user))

	return &testEnv{
		conn:        conn,
		clock:       c,
		habits:      habits,
		completions: completions,
		stats:       stats,
		userID:      user.ID,
	}
}

func (e *testEnv) createHabit(t *testing.T, name, category, habitType string) *model.Habit {
	t.Helper()

	habit, err := e.habits.Create(e.userID, CreateHabitInput{
		Name:      name,
		Category:  category,
		HabitType: habitType,
	})
	require.NoError(t, err)

	// Creation uses the wall clock; backdate so the habit exists on the
	// fake clock's current date.
	_, err = e.conn.Exec(`UPDATE habits SET created_at = $1 WHERE id = $2`,
		e.clock.now.AddDate(0, -13, 0), habit.ID)
	require.NoError(t, err)
	habit.CreatedAt = e.clock.now.AddDate(0, -13, 0)

	return habit
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
