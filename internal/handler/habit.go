package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/habitloop/habitloop/internal/ctxkeys"
	"github.com/habitloop/habitloop/internal/render"
	"github.com/habitloop/habitloop/internal/repository"
	"github.com/habitloop/habitloop/internal/service"
)

type HabitHandler struct {
	habitService *service.HabitService
}

func NewHabitHandler(habitService *service.HabitService) *HabitHandler {
	return &HabitHandler{
		habitService: habitService,
	}
}

func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	archived := r.URL.Query().Get("archived") == "true"

	habits, err := h.habitService.List(user.ID, archived)
	if err != nil {
		slog.Error("failed to list habits", "error", err, "user_id", user.ID)
		render.Error(w, http.StatusInternalServerError, "failed to load habits")
		return
	}

	render.JSON(w, http.StatusOK, map[string]any{"habits": habits})
}

type createHabitRequest struct {
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	HabitType       string   `json:"habit_type"`
	DefaultDuration *int     `json:"default_duration"`
	DefaultRating   *float64 `json:"default_rating"`
}

func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req createHabitRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	habit, err := h.habitService.Create(user.ID, service.CreateHabitInput{
		Name:            req.Name,
		Category:        req.Category,
		HabitType:       req.HabitType,
		DefaultDuration: req.DefaultDuration,
		DefaultRating:   req.DefaultRating,
	})
	if err != nil {
		if isValidationError(err) {
			render.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to create habit", "error", err, "user_id", user.ID)
		render.Error(w, http.StatusInternalServerError, "failed to create habit")
		return
	}

	render.JSON(w, http.StatusCreated, map[string]any{"habit": habit})
}

type updateHabitRequest struct {
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	DefaultDuration *int     `json:"default_duration"`
	DefaultRating   *float64 `json:"default_rating"`
}

func (h *HabitHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	habitID := r.PathValue("id")

	var req updateHabitRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	habit, err := h.habitService.Update(user.ID, habitID, service.UpdateHabitInput{
		Name:            req.Name,
		Category:        req.Category,
		DefaultDuration: req.DefaultDuration,
		DefaultRating:   req.DefaultRating,
	})
	if err != nil {
		if errors.Is(err, repository.ErrHabitNotFound) {
			render.Error(w, http.StatusNotFound, "habit not found")
			return
		}
		if isValidationError(err) {
			render.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to update habit", "error", err, "user_id", user.ID, "habit_id", habitID)
		render.Error(w, http.StatusInternalServerError, "failed to update habit")
		return
	}

	render.JSON(w, http.StatusOK, map[string]any{"habit": habit})
}

func (h *HabitHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *HabitHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *HabitHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	user := ctxkeys.User(r.Context())
	habitID := r.PathValue("id")

	var err error
	if active {
		err = h.habitService.Restore(user.ID, habitID)
	} else {
		err = h.habitService.Archive(user.ID, habitID)
	}

	if err != nil {
		if errors.Is(err, repository.ErrHabitNotFound) {
			render.Error(w, http.StatusNotFound, "habit not found")
			return
		}
		slog.Error("failed to change habit state", "error", err, "user_id", user.ID, "habit_id", habitID)
		render.Error(w, http.StatusInternalServerError, "failed to update habit")
		return
	}

	render.JSON(w, http.StatusOK, map[string]bool{"active": active})
}

func (h *HabitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	habitID := r.PathValue("id")

	err := h.habitService.Delete(user.ID, habitID)
	if err != nil {
		if errors.Is(err, repository.ErrHabitNotFound) {
			render.Error(w, http.StatusNotFound, "habit not found")
			return
		}
		slog.Error("failed to delete habit", "error", err, "user_id", user.ID, "habit_id", habitID)
		render.Error(w, http.StatusInternalServerError, "failed to delete habit")
		return
	}

	render.JSON(w, http.StatusOK, map[string]string{"message": "habit deleted"})
}
