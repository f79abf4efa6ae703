package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/habitloop/habitloop/internal/db"
	"github.com/habitloop/habitloop/internal/repository"
)

func TestAddHabitsActiveColumn(t *testing.T) {
	conn, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	require.NoError(t, db.RunMigrations(conn.DB, "sqlite"))
	t.Cleanup(func() { _ = conn.Close() })

	h := NewMaintenanceHandler(repository.NewMaintenanceRepository(conn))

	// Migrations already added the column: 207
	req := httptest.NewRequest(http.MethodPost, "/api/maintenance/habits-active-column", nil)
	rec := httptest.NewRecorder()
	h.AddHabitsActiveColumn(rec, req)
	assert.Equal(t, http.StatusMultiStatus, rec.Code)
	assert.JSONEq(t, `{"status": "column already exists"}`, rec.Body.String())

	// Remove the column: repair succeeds with 200
	_, err = conn.Exec(`DROP INDEX habits_active_idx`)
	require.NoError(t, err)
	_, err = conn.Exec(`ALTER TABLE habits DROP COLUMN active`)
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	h.AddHabitsActiveColumn(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "column added"}`, rec.Body.String())
}
