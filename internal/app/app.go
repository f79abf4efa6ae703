package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/habitloop/habitloop/internal/clock"
	"github.com/habitloop/habitloop/internal/config"
	"github.com/habitloop/habitloop/internal/db"
	"github.com/habitloop/habitloop/internal/repository"
	"github.com/habitloop/habitloop/internal/service"
	"github.com/habitloop/habitloop/internal/storage"
)

type App struct {
	Cfg               *config.Config
	DB                *sqlx.DB
	Clock             clock.Clock
	AuthService       *service.AuthService
	UserService       *service.UserService
	ProfileService    *service.ProfileService
	EmailService      *service.EmailService
	HabitService      *service.HabitService
	CompletionService *service.CompletionService
	StatsService      *service.StatsService
	Finalizer         *service.Finalizer
	MaintenanceRepo   repository.MaintenanceRepository
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	profileRepository := repository.NewProfileRepository(database)
	tokenRepository := repository.NewTokenRepository(database)
	habitRepository := repository.NewHabitRepository(database)
	completionRepository := repository.NewCompletionRepository(database)
	maintenanceRepository := repository.NewMaintenanceRepository(database)

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	c := clock.System{}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(
		userRepository,
		tokenRepository,
		profileRepository,
		emailService,
		cfg.JWTSecret,
		cfg.IsProduction(),
		cfg.JWTExpiry,
		cfg.TokenEmailVerifyExpiry,
		cfg.TokenPasswordResetExpiry,
		cfg.TokenEmailChangeExpiry,
	)
	profileService := service.NewProfileService(profileRepository, fileStorage)
	userService := service.NewUserService(userRepository, profileRepository, profileService, emailService)
	habitService := service.NewHabitService(habitRepository, completionRepository, maintenanceRepository)
	completionService := service.NewCompletionService(habitService, completionRepository, habitRepository, c)
	statsService := service.NewStatsService(habitService, completionRepository, c)
	finalizer := service.NewFinalizer(completionService, c, cfg.FinalizerInterval)

	return &App{
		Cfg:               cfg,
		DB:                database,
		Clock:             c,
		AuthService:       authService,
		UserService:       userService,
		ProfileService:    profileService,
		EmailService:      emailService,
		HabitService:      habitService,
		CompletionService: completionService,
		StatsService:      statsService,
		Finalizer:         finalizer,
		MaintenanceRepo:   maintenanceRepository,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
