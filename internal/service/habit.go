package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/habitloop/habitloop/internal/model"
	"github.com/habitloop/habitloop/internal/repository"
	"github.com/habitloop/habitloop/internal/validation"
)

var (
	ErrHabitTypeImmutable = errors.New("habit type cannot be changed")
)

type HabitService struct {
	habitRepo       repository.HabitRepository
	completionRepo  repository.CompletionRepository
	maintenanceRepo repository.MaintenanceRepository
}

func NewHabitService(
	habitRepo repository.HabitRepository,
	completionRepo repository.CompletionRepository,
	maintenanceRepo repository.MaintenanceRepository,
) *HabitService {
	return &HabitService{
		habitRepo:       habitRepo,
		completionRepo:  completionRepo,
		maintenanceRepo: maintenanceRepo,
	}
}

// CreateHabitInput carries the user-editable habit fields.
type CreateHabitInput struct {
	Name            string
	Category        string
	HabitType       string
	DefaultDuration *int
	DefaultRating   *float64
}

func (s *HabitService) Create(userID string, input CreateHabitInput) (*model.Habit, error) {
	name := strings.TrimSpace(input.Name)
	if err := validation.ValidateHabitName(name); err != nil {
		return nil, err
	}

	category := strings.TrimSpace(input.Category)
	if err := validation.ValidateCategory(category); err != nil {
		return nil, err
	}
	if category == "" {
		category = model.DefaultCategory
	}

	if err := validation.ValidateHabitType(input.HabitType); err != nil {
		return nil, err
	}

	if err := validateDefaults(input.HabitType, input.DefaultDuration, input.DefaultRating); err != nil {
		return nil, err
	}

	habit := &model.Habit{
		ID:              uuid.New().String(),
		UserID:          userID,
		Name:            name,
		Category:        category,
		HabitType:       input.HabitType,
		DefaultDuration: input.DefaultDuration,
		DefaultRating:   input.DefaultRating,
		Active:          true,
		CreatedAt:       time.Now(),
	}

	err := s.habitRepo.Create(habit)
	if err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	slog.Info("habit created", "user_id", userID, "habit_id", habit.ID, "type", habit.HabitType)
	return habit, nil
}

func (s *HabitService) ByID(userID, habitID string) (*model.Habit, error) {
	return s.habitRepo.ByID(userID, habitID)
}

// List returns the user's habits, active or archived.
func (s *HabitService) List(userID string, archived bool) ([]*model.Habit, error) {
	habits, err := s.habitRepo.ByUser(userID, !archived)
	if err == nil {
		return habits, nil
	}
	if !repository.IsMissingColumnError(err) {
		return nil, err
	}

	// Old databases predate the active column. Repair once, retry, and
	// if that still fails treat every habit as active.
	s.repairActiveColumn()

	habits, err = s.habitRepo.ByUser(userID, !archived)
	if err == nil {
		return habits, nil
	}
	if !repository.IsMissingColumnError(err) {
		return nil, err
	}

	if archived {
		return []*model.Habit{}, nil
	}
	return s.habitRepo.AllAsOf(userID, time.Now())
}

// ActiveAsOf returns the habits that were active and already created on
// the given day, with the same repair-and-degrade path as List.
func (s *HabitService) ActiveAsOf(userID string, cutoff time.Time) ([]*model.Habit, error) {
	habits, err := s.habitRepo.ActiveAsOf(userID, cutoff)
	if err == nil {
		return habits, nil
	}
	if !repository.IsMissingColumnError(err) {
		return nil, err
	}

	s.repairActiveColumn()

	habits, err = s.habitRepo.ActiveAsOf(userID, cutoff)
	if err == nil {
		return habits, nil
	}
	if !repository.IsMissingColumnError(err) {
		return nil, err
	}

	return s.habitRepo.AllAsOf(userID, cutoff)
}

func (s *HabitService) repairActiveColumn() {
	err := s.maintenanceRepo.AddHabitsActiveColumn()
	if err != nil && !errors.Is(err, repository.ErrColumnExists) {
		slog.Warn("failed to add habits.active column", "error", err)
	}
}

// UpdateHabitInput carries the fields editable after creation.
// The habit type is immutable.
type UpdateHabitInput struct {
	Name            string
	Category        string
	DefaultDuration *int
	DefaultRating   *float64
}

func (s *HabitService) Update(userID, habitID string, input UpdateHabitInput) (*model.Habit, error) {
	habit, err := s.habitRepo.ByID(userID, habitID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if err := validation.ValidateHabitName(name); err != nil {
		return nil, err
	}

	category := strings.TrimSpace(input.Category)
	if err := validation.ValidateCategory(category); err != nil {
		return nil, err
	}
	if category == "" {
		category = model.DefaultCategory
	}

	if err := validateDefaults(habit.HabitType, input.DefaultDuration, input.DefaultRating); err != nil {
		return nil, err
	}

	habit.Name = name
	habit.Category = category
	habit.DefaultDuration = input.DefaultDuration
	habit.DefaultRating = input.DefaultRating

	err = s.habitRepo.Update(habit)
	if err != nil {
		return nil, fmt.Errorf("failed to update habit: %w", err)
	}

	return habit, nil
}

// Archive hides the habit from the daily view. History is retained.
func (s *HabitService) Archive(userID, habitID string) error {
	return s.habitRepo.SetActive(userID, habitID, false)
}

func (s *HabitService) Restore(userID, habitID string) error {
	return s.habitRepo.SetActive(userID, habitID, true)
}

// Delete permanently removes the habit and its completion history.
func (s *HabitService) Delete(userID, habitID string) error {
	err := s.completionRepo.DeleteByHabit(userID, habitID)
	if err != nil {
		return fmt.Errorf("failed to delete completions: %w", err)
	}

	err = s.habitRepo.Delete(userID, habitID)
	if err != nil {
		return err
	}

	slog.Info("habit deleted", "user_id", userID, "habit_id", habitID)
	return nil
}

// validateDefaults checks the type-specific default value. Defaults for
// the other types are rejected rather than silently dropped.
func validateDefaults(habitType string, defaultDuration *int, defaultRating *float64) error {
	switch habitType {
	case model.HabitTypeDuration:
		if defaultRating != nil {
			return errors.New("default rating is only valid for rating habits")
		}
		if defaultDuration != nil {
			return validation.ValidateDuration(*defaultDuration)
		}
	case model.HabitTypeRating:
		if defaultDuration != nil {
			return errors.New("default duration is only valid for duration habits")
		}
		if defaultRating != nil {
			return validation.ValidateRating(*defaultRating)
		}
	default:
		if defaultDuration != nil || defaultRating != nil {
			return errors.New("checkbox habits do not take default values")
		}
	}
	return nil
}
