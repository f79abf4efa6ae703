package repository

import (
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrColumnExists reports that the schema repair found nothing to do.
	ErrColumnExists = errors.New("column already exists")
)

// MaintenanceRepository performs best-effort schema repair for databases
// created before the habits.active column existed.
type MaintenanceRepository interface {
	AddHabitsActiveColumn() error
}

type maintenanceRepository struct {
	db *sqlx.DB
}

func NewMaintenanceRepository(db *sqlx.DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

func (r *maintenanceRepository) AddHabitsActiveColumn() error {
	_, err := r.db.Exec(`ALTER TABLE habits ADD COLUMN active BOOLEAN NOT NULL DEFAULT TRUE`)
	if err != nil {
		// SQLite: "duplicate column name", PostgreSQL: "already exists"
		errStr := err.Error()
		if strings.Contains(errStr, "duplicate column") || strings.Contains(errStr, "already exists") {
			return ErrColumnExists
		}
		return err
	}

	_, err = r.db.Exec(`CREATE INDEX IF NOT EXISTS habits_active_idx ON habits(active)`)
	return err
}

// IsMissingColumnError matches store errors caused by querying a column
// that does not exist, which triggers the repair-and-retry path.
func IsMissingColumnError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "column")
}
