package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/habitloop/habitloop/internal/clock"
	"github.com/habitloop/habitloop/internal/ctxkeys"
	"github.com/habitloop/habitloop/internal/render"
	"github.com/habitloop/habitloop/internal/service"
)

type StatsHandler struct {
	statsService *service.StatsService
	clock        clock.Clock
}

func NewStatsHandler(statsService *service.StatsService, c clock.Clock) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		clock:        c,
	}
}

// Monthly serves the aggregate view for one calendar month, defaulting
// to the current one.
func (h *StatsHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	current := clock.CurrentMonth(h.clock)
	year := current.Year
	month := current.Month

	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 2000 || y > 2200 {
			render.Error(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = y
	}
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			render.Error(w, http.StatusBadRequest, "invalid month")
			return
		}
		month = time.Month(m)
	}

	stats, err := h.statsService.Monthly(user.ID, year, month)
	if err != nil {
		if errors.Is(err, service.ErrInvalidMonth) {
			render.Error(w, http.StatusBadRequest, "invalid month")
			return
		}
		slog.Error("failed to compute monthly stats", "error", err, "user_id", user.ID)
		render.Error(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	render.JSON(w, http.StatusOK, stats)
}

// Trend serves per-habit aggregates over the trailing 6 or 12 months.
func (h *StatsHandler) Trend(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	months := 6
	if v := r.URL.Query().Get("months"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			render.Error(w, http.StatusBadRequest, "invalid months value")
			return
		}
		months = m
	}

	stats, err := h.statsService.Trend(user.ID, months)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTrendWindow) {
			render.Error(w, http.StatusBadRequest, "months must be 6 or 12")
			return
		}
		slog.Error("failed to compute trend stats", "error", err, "user_id", user.ID)
		render.Error(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	render.JSON(w, http.StatusOK, stats)
}
