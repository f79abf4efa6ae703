package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/habitloop/habitloop/internal/render"
	"github.com/habitloop/habitloop/internal/repository"
)

type MaintenanceHandler struct {
	maintenanceRepo repository.MaintenanceRepository
}

func NewMaintenanceHandler(maintenanceRepo repository.MaintenanceRepository) *MaintenanceHandler {
	return &MaintenanceHandler{
		maintenanceRepo: maintenanceRepo,
	}
}

// AddHabitsActiveColumn repairs databases created before habits gained
// the active column. 200 = column added, 207 = already present,
// 500 = the ALTER failed.
func (h *MaintenanceHandler) AddHabitsActiveColumn(w http.ResponseWriter, r *http.Request) {
	err := h.maintenanceRepo.AddHabitsActiveColumn()
	if err != nil {
		if errors.Is(err, repository.ErrColumnExists) {
			render.JSON(w, http.StatusMultiStatus, map[string]string{
				"status": "column already exists",
			})
			return
		}
		slog.Error("failed to add habits.active column", "error", err)
		render.Error(w, http.StatusInternalServerError, "migration failed")
		return
	}

	slog.Info("habits.active column added via maintenance endpoint")
	render.JSON(w, http.StatusOK, map[string]string{"status": "column added"})
}
