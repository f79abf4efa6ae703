package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/habitloop/habitloop/internal/db"
	"github.com/habitloop/habitloop/internal/model"
)

// newTestDB opens an in-memory sqlite database with the full migration
// set applied.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := sqlx.Connect("sqlite", ":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)

	// In-memory sqlite databases are per-connection
	conn.SetMaxOpenConns(1)

	require.NoError(t, db.RunMigrations(conn.DB, "sqlite"))

	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func createTestUser(t *testing.T, conn *sqlx.DB) *model.User {
	t.Helper()

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        uuid.New().String() + "@example.com",
		PasswordHash: "x",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, NewUserRepository(conn).Create(user))
	return user
}

func createTestHabit(t *testing.T, conn *sqlx.DB, userID, name, category, habitType string) *model.Habit {
	t.Helper()

	habit := &model.Habit{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Category:  category,
		HabitType: habitType,
		Active:    true,
		CreatedAt: time.Now(),
	}
	require.NoError(t, NewHabitRepository(conn).Create(habit))
	return habit
}
