package routes

import (
	"net/http"

	"github.com/habitloop/habitloop/internal/app"
	"github.com/habitloop/habitloop/internal/handler"
	"github.com/habitloop/habitloop/internal/middleware"
	"github.com/habitloop/habitloop/internal/render"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	account := handler.NewAccountHandler(app.AuthService, app.UserService, app.ProfileService)
	habit := handler.NewHabitHandler(app.HabitService)
	completion := handler.NewCompletionHandler(app.CompletionService, app.Clock)
	stats := handler.NewStatsHandler(app.StatsService, app.Clock)
	maintenance := handler.NewMaintenanceHandler(app.MaintenanceRepo)

	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("POST /api/auth/signup", rateLimiter(middleware.RequireGuest(auth.SignUp)))
	mux.HandleFunc("POST /api/auth/login", rateLimiter(middleware.RequireGuest(auth.Login)))
	mux.HandleFunc("POST /api/auth/logout", auth.Logout)
	mux.HandleFunc("POST /api/auth/forgot-password", rateLimiter(middleware.RequireGuest(auth.ForgotPassword)))
	mux.HandleFunc("POST /api/auth/reset-password", rateLimiter(auth.ResetPassword))
	mux.HandleFunc("GET /api/auth/verify-email/{token}", auth.VerifyEmail)
	mux.HandleFunc("GET /api/auth/verify-email-change/{token}", auth.VerifyEmailChange)

	// Account
	mux.HandleFunc("GET /api/me", middleware.RequireAuth(account.Me))
	mux.HandleFunc("PATCH /api/me", middleware.RequireAuth(account.UpdateMe))
	mux.HandleFunc("POST /api/me/avatar", middleware.RequireAuth(account.UploadAvatar))
	mux.HandleFunc("DELETE /api/me/avatar", middleware.RequireAuth(account.RemoveAvatar))
	mux.HandleFunc("DELETE /api/me", middleware.RequireAuth(account.DeleteAccount))

	// Habits
	mux.HandleFunc("GET /api/habits", middleware.RequireAuth(habit.List))
	mux.HandleFunc("POST /api/habits", middleware.RequireAuth(habit.Create))
	mux.HandleFunc("PATCH /api/habits/{id}", middleware.RequireAuth(habit.Update))
	mux.HandleFunc("POST /api/habits/{id}/archive", middleware.RequireAuth(habit.Archive))
	mux.HandleFunc("POST /api/habits/{id}/restore", middleware.RequireAuth(habit.Restore))
	mux.HandleFunc("DELETE /api/habits/{id}", middleware.RequireAuth(habit.Delete))

	// Daily view + completions
	mux.HandleFunc("GET /api/today", middleware.RequireAuth(completion.Today))
	mux.HandleFunc("PUT /api/habits/{id}/completion", middleware.RequireAuth(completion.SetCompletion))
	mux.HandleFunc("POST /api/today/finalize", middleware.RequireAuth(completion.Finalize))

	// Stats
	mux.HandleFunc("GET /api/stats/monthly", middleware.RequireAuth(stats.Monthly))
	mux.HandleFunc("GET /api/stats/trend", middleware.RequireAuth(stats.Trend))

	// Maintenance
	mux.HandleFunc("POST /api/maintenance/habits-active-column", middleware.RequireAuth(maintenance.AddHabitsActiveColumn))

	// 404
	mux.HandleFunc("/{path...}", func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, http.StatusNotFound, "not found")
	})

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.CSRFProtection(app.Cfg.IsProduction()),
		middleware.AuthMiddleware(app.AuthService, app.UserService, app.ProfileService),
	)
}
