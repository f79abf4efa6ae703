package service

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/habitloop/habitloop/internal/clock"
	"github.com/habitloop/habitloop/internal/model"
	"github.com/habitloop/habitloop/internal/repository"
)

var (
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidTrendWindow = errors.New("trend window must be 6 or 12 months")
)

type StatsService struct {
	habits         *HabitService
	completionRepo repository.CompletionRepository
	clock          clock.Clock
}

func NewStatsService(habits *HabitService, completionRepo repository.CompletionRepository, c clock.Clock) *StatsService {
	return &StatsService{
		habits:         habits,
		completionRepo: completionRepo,
		clock:          c,
	}
}

// HabitStat is one habit's aggregate over a window: count of completions
// for checkbox habits, total minutes for duration habits, mean rating
// (1 decimal) for rating habits.
type HabitStat struct {
	Habit *model.Habit `json:"habit"`
	Value float64      `json:"value"`
}

// StatGroup holds one category's stats in display order.
type StatGroup struct {
	Category string       `json:"category"`
	Habits   []*HabitStat `json:"habits"`
}

// MonthlyStats is the aggregate view for one calendar month.
type MonthlyStats struct {
	Year   int          `json:"year"`
	Month  time.Month   `json:"month"`
	Groups []*StatGroup `json:"groups"`
}

// Monthly aggregates the user's completions for one calendar month.
// Archived habits appear only when they have completions in the month.
func (s *StatsService) Monthly(userID string, year int, month time.Month) (*MonthlyStats, error) {
	if month < time.January || month > time.December {
		return nil, ErrInvalidMonth
	}

	window := clock.Month{Year: year, Month: month}
	from, to := window.Range()

	habits, completions, err := s.load(userID, from, to)
	if err != nil {
		return nil, err
	}

	byHabit := completionsByHabit(completions)

	grouped := make(map[string][]*HabitStat)
	for _, habit := range habits {
		rows := byHabit[habit.ID]
		if !habit.Active && len(rows) == 0 {
			continue
		}
		grouped[habit.Category] = append(grouped[habit.Category], &HabitStat{
			Habit: habit,
			Value: aggregate(habit.HabitType, rows),
		})
	}

	return &MonthlyStats{
		Year:   year,
		Month:  month,
		Groups: sortGroups(grouped),
	}, nil
}

// TrendSeries is one habit's aggregate per trailing month, oldest first.
type TrendSeries struct {
	Habit  *model.Habit `json:"habit"`
	Values []float64    `json:"values"`
}

// TrendStats covers the trailing n calendar months ending with the
// current one.
type TrendStats struct {
	Months []clock.Month  `json:"months"`
	Series []*TrendSeries `json:"series"`
}

// Trend aggregates per habit per trailing calendar month. Only 6- and
// 12-month windows are supported.
func (s *StatsService) Trend(userID string, months int) (*TrendStats, error) {
	if months != 6 && months != 12 {
		return nil, ErrInvalidTrendWindow
	}

	window := clock.TrailingMonths(s.clock, months)
	from, _ := window[0].Range()
	_, to := window[len(window)-1].Range()

	habits, completions, err := s.load(userID, from, to)
	if err != nil {
		return nil, err
	}

	byHabit := completionsByHabit(completions)

	series := make([]*TrendSeries, 0, len(habits))
	for _, habit := range habits {
		rows := byHabit[habit.ID]
		if !habit.Active && len(rows) == 0 {
			continue
		}

		values := make([]float64, len(window))
		for i, m := range window {
			mFrom, mTo := m.Range()
			var monthRows []*model.HabitCompletion
			for _, c := range rows {
				if c.CompletedDate >= mFrom && c.CompletedDate <= mTo {
					monthRows = append(monthRows, c)
				}
			}
			values[i] = aggregate(habit.HabitType, monthRows)
		}

		series = append(series, &TrendSeries{Habit: habit, Values: values})
	}

	sort.SliceStable(series, func(i, j int) bool {
		return habitLess(series[i].Habit, series[j].Habit)
	})

	return &TrendStats{Months: window, Series: series}, nil
}

// load fetches all habits (active and archived) plus the window's
// completions. Any fetch failure aborts the computation.
func (s *StatsService) load(userID, from, to string) ([]*model.Habit, []*model.HabitCompletion, error) {
	active, err := s.habits.List(userID, false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load habits: %w", err)
	}
	archived, err := s.habits.List(userID, true)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load archived habits: %w", err)
	}

	completions, err := s.completionRepo.InRange(userID, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load completions: %w", err)
	}

	return append(active, archived...), completions, nil
}

// aggregate computes one habit's value over a set of completions:
// checkbox habits count rows, duration habits sum minutes (null rows
// count as zero), rating habits average the non-null ratings rounded to
// one decimal (zero when none).
func aggregate(habitType string, completions []*model.HabitCompletion) float64 {
	switch habitType {
	case model.HabitTypeDuration:
		total := 0
		for _, c := range completions {
			if c.Duration != nil {
				total += *c.Duration
			}
		}
		return float64(total)
	case model.HabitTypeRating:
		sum := 0.0
		n := 0
		for _, c := range completions {
			if c.Rating != nil {
				sum += *c.Rating
				n++
			}
		}
		if n == 0 {
			return 0
		}
		return math.Round(sum/float64(n)*10) / 10
	default:
		return float64(len(completions))
	}
}

func completionsByHabit(completions []*model.HabitCompletion) map[string][]*model.HabitCompletion {
	byHabit := make(map[string][]*model.HabitCompletion)
	for _, c := range completions {
		byHabit[c.HabitID] = append(byHabit[c.HabitID], c)
	}
	return byHabit
}

func habitLess(a, b *model.Habit) bool {
	if a.Category != b.Category {
		return a.Category < b.Category
	}
	if model.TypeOrder[a.HabitType] != model.TypeOrder[b.HabitType] {
		return model.TypeOrder[a.HabitType] < model.TypeOrder[b.HabitType]
	}
	return a.Name < b.Name
}

func sortGroups(grouped map[string][]*HabitStat) []*StatGroup {
	categories := make([]string, 0, len(grouped))
	for category := range grouped {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	groups := make([]*StatGroup, 0, len(categories))
	for _, category := range categories {
		stats := grouped[category]
		sort.SliceStable(stats, func(i, j int) bool {
			return habitLess(stats[i].Habit, stats[j].Habit)
		})
		groups = append(groups, &StatGroup{Category: category, Habits: stats})
	}
	return groups
}
