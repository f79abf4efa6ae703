package service

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/habitloop/habitloop/internal/clock"
	"github.com/habitloop/habitloop/internal/model"
	"github.com/habitloop/habitloop/internal/repository"
)

var (
	ErrNotToday      = errors.New("completions can only be changed for today")
	ErrHabitArchived = errors.New("habit is archived")
)

type CompletionService struct {
	habits         *HabitService
	completionRepo repository.CompletionRepository
	habitRepo      repository.HabitRepository
	clock          clock.Clock
}

func NewCompletionService(
	habits *HabitService,
	completionRepo repository.CompletionRepository,
	habitRepo repository.HabitRepository,
	c clock.Clock,
) *CompletionService {
	return &CompletionService{
		habits:         habits,
		completionRepo: completionRepo,
		habitRepo:      habitRepo,
		clock:          c,
	}
}

// SetCompletionInput sets or clears a habit's completion for a date.
// Duration and Rating override the habit defaults when provided.
type SetCompletionInput struct {
	Date     string
	Checked  bool
	Duration *int
	Rating   *float64
}

// SetCompletion writes the completion state for (habit, date). Only the
// clock's current date is writable; past days are finalized history.
// The write is idempotent: the row ends up reflecting the input no
// matter what was stored before.
func (s *CompletionService) SetCompletion(userID, habitID string, input SetCompletionInput) (*model.HabitCompletion, error) {
	if _, err := clock.ParseDate(input.Date); err != nil {
		return nil, err
	}

	if input.Date != clock.Today(s.clock) {
		return nil, ErrNotToday
	}

	habit, err := s.habitRepo.ByID(userID, habitID)
	if err != nil {
		return nil, err
	}
	if !habit.Active {
		return nil, ErrHabitArchived
	}

	if !input.Checked {
		err := s.completionRepo.Delete(userID, habitID, input.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to clear completion: %w", err)
		}
		return nil, nil
	}

	completion := &model.HabitCompletion{
		HabitID:       habitID,
		UserID:        userID,
		CompletedDate: input.Date,
	}

	switch habit.HabitType {
	case model.HabitTypeDuration:
		minutes := 0
		if input.Duration != nil {
			minutes = *input.Duration
		} else if habit.DefaultDuration != nil {
			minutes = *habit.DefaultDuration
		}
		if minutes < 0 {
			minutes = 0
		}
		completion.Duration = &minutes
	case model.HabitTypeRating:
		rating := 0.0
		if input.Rating != nil {
			rating = *input.Rating
		} else if habit.DefaultRating != nil {
			rating = *habit.DefaultRating
		}
		rating = clampRating(rating)
		completion.Rating = &rating
	}

	err = s.completionRepo.Upsert(completion)
	if err != nil {
		return nil, fmt.Errorf("failed to save completion: %w", err)
	}

	return completion, nil
}

// clampRating snaps a rating into [0, 5] in steps of 0.5.
func clampRating(rating float64) float64 {
	if rating < 0 {
		return 0
	}
	if rating > 5 {
		return 5
	}
	return math.Round(rating*2) / 2
}

// FinalizeDay closes out a finished date: every active duration habit
// without a completion on that date gets a zero-minute row. Existing
// rows are never touched, so finalizing is idempotent.
func (s *CompletionService) FinalizeDay(userID, date string) error {
	cutoff, err := clock.EndOfDay(date)
	if err != nil {
		return err
	}

	habits, err := s.habits.ActiveAsOf(userID, cutoff)
	if err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}

	for _, habit := range habits {
		if habit.HabitType != model.HabitTypeDuration {
			continue
		}

		zero := 0
		completion := &model.HabitCompletion{
			HabitID:       habit.ID,
			UserID:        userID,
			CompletedDate: date,
			Duration:      &zero,
		}
		if err := s.completionRepo.InsertIfMissing(completion); err != nil {
			return fmt.Errorf("failed to finalize habit %s: %w", habit.ID, err)
		}
	}

	return nil
}

// FinalizeAllUsers runs FinalizeDay for everyone with active duration
// habits. Failures are logged per user and do not stop the sweep.
func (s *CompletionService) FinalizeAllUsers(date string) {
	userIDs, err := s.habitRepo.UsersWithActiveDurationHabits()
	if err != nil {
		slog.Error("failed to list users for finalization", "error", err, "date", date)
		return
	}

	for _, userID := range userIDs {
		if err := s.FinalizeDay(userID, date); err != nil {
			slog.Error("failed to finalize day for user", "error", err, "user_id", userID, "date", date)
		}
	}
}

// DayHabit is one habit in the daily view with its completion state.
type DayHabit struct {
	Habit     *model.Habit `json:"habit"`
	Completed bool         `json:"completed"`
	Duration  *int         `json:"duration,omitempty"`
	Rating    *float64     `json:"rating,omitempty"`
}

// CategoryGroup holds one category's habits in display order.
type CategoryGroup struct {
	Category string      `json:"category"`
	Habits   []*DayHabit `json:"habits"`
}

// DayView is the daily checklist for one date.
type DayView struct {
	Date     string           `json:"date"`
	ReadOnly bool             `json:"read_only"`
	Groups   []*CategoryGroup `json:"groups"`
}

// Day builds the checklist for a date: habits that were active and
// already created on that day, joined with the day's completions,
// grouped by category and ordered by type then name.
func (s *CompletionService) Day(userID, date string) (*DayView, error) {
	cutoff, err := clock.EndOfDay(date)
	if err != nil {
		return nil, err
	}

	habits, err := s.habits.ActiveAsOf(userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}

	completions, err := s.completionRepo.ByDate(userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load completions: %w", err)
	}

	byHabit := make(map[string]*model.HabitCompletion, len(completions))
	for _, c := range completions {
		byHabit[c.HabitID] = c
	}

	view := &DayView{
		Date:     date,
		ReadOnly: date != clock.Today(s.clock),
		Groups:   groupHabits(habits, byHabit),
	}
	return view, nil
}

func groupHabits(habits []*model.Habit, byHabit map[string]*model.HabitCompletion) []*CategoryGroup {
	grouped := make(map[string][]*DayHabit)
	for _, habit := range habits {
		item := &DayHabit{Habit: habit}
		if c, ok := byHabit[habit.ID]; ok {
			item.Completed = true
			item.Duration = c.Duration
			item.Rating = c.Rating
		}
		grouped[habit.Category] = append(grouped[habit.Category], item)
	}

	categories := make([]string, 0, len(grouped))
	for category := range grouped {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	groups := make([]*CategoryGroup, 0, len(categories))
	for _, category := range categories {
		items := grouped[category]
		sort.SliceStable(items, func(i, j int) bool {
			a, b := items[i].Habit, items[j].Habit
			if model.TypeOrder[a.HabitType] != model.TypeOrder[b.HabitType] {
				return model.TypeOrder[a.HabitType] < model.TypeOrder[b.HabitType]
			}
			return a.Name < b.Name
		})
		groups = append(groups, &CategoryGroup{Category: category, Habits: items})
	}

	return groups
}
