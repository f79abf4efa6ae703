package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/habitloop/habitloop/internal/clock"
	"github.com/habitloop/habitloop/internal/ctxkeys"
	"github.com/habitloop/habitloop/internal/render"
	"github.com/habitloop/habitloop/internal/repository"
	"github.com/habitloop/habitloop/internal/service"
)

type CompletionHandler struct {
	completionService *service.CompletionService
	clock             clock.Clock
}

func NewCompletionHandler(completionService *service.CompletionService, c clock.Clock) *CompletionHandler {
	return &CompletionHandler{
		completionService: completionService,
		clock:             c,
	}
}

// Today serves the daily checklist. An optional date query shows a past
// day read-only.
func (h *CompletionHandler) Today(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	date := r.URL.Query().Get("date")
	if date == "" {
		date = clock.Today(h.clock)
	} else if _, err := clock.ParseDate(date); err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.completionService.Day(user.ID, date)
	if err != nil {
		slog.Error("failed to build day view", "error", err, "user_id", user.ID, "date", date)
		render.Error(w, http.StatusInternalServerError, "failed to load day")
		return
	}

	render.JSON(w, http.StatusOK, view)
}

type setCompletionRequest struct {
	Date     string   `json:"date"`
	Checked  bool     `json:"checked"`
	Duration *int     `json:"duration"`
	Rating   *float64 `json:"rating"`
}

func (h *CompletionHandler) SetCompletion(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	habitID := r.PathValue("id")

	var req setCompletionRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	completion, err := h.completionService.SetCompletion(user.ID, habitID, service.SetCompletionInput{
		Date:     req.Date,
		Checked:  req.Checked,
		Duration: req.Duration,
		Rating:   req.Rating,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotToday):
			render.Error(w, http.StatusUnprocessableEntity, "completions can only be changed for today")
		case errors.Is(err, service.ErrHabitArchived):
			render.Error(w, http.StatusUnprocessableEntity, "habit is archived")
		case errors.Is(err, repository.ErrHabitNotFound):
			render.Error(w, http.StatusNotFound, "habit not found")
		default:
			if isValidationError(err) {
				render.Error(w, http.StatusBadRequest, err.Error())
				return
			}
			slog.Error("failed to set completion", "error", err, "user_id", user.ID, "habit_id", habitID)
			render.Error(w, http.StatusInternalServerError, "failed to save completion")
		}
		return
	}

	render.JSON(w, http.StatusOK, map[string]any{"completion": completion})
}

// Finalize closes out the previous day on demand. The background worker
// does the same on rollover; this endpoint lets a client force it.
func (h *CompletionHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	date := clock.Yesterday(h.clock)
	err := h.completionService.FinalizeDay(user.ID, date)
	if err != nil {
		slog.Error("failed to finalize day", "error", err, "user_id", user.ID, "date", date)
		render.Error(w, http.StatusInternalServerError, "failed to finalize day")
		return
	}

	render.JSON(w, http.StatusOK, map[string]string{"finalized_date": date})
}
