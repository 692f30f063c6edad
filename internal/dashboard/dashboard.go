// Package dashboard narrows and orders the completed interviews list.
package dashboard

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/interview"
)

// Filter is a named predicate over completed sessions.
type Filter interface {
	Name() string
	// Disable keeps the filter in the list but makes Run skip it.
	Disable(reason string)
	Status() Status
	Keep(item interview.CompletedSession) bool
}

type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// Stage reports what one enabled filter did.
type Stage struct {
	Filter  string
	Before  int
	Dropped int
}

type Result struct {
	Items  []interview.CompletedSession
	Stages []Stage
}

// Query is a dashboard request: filters applied in field order, then sorting.
type Query struct {
	Search   string
	MinScore int
	Since    time.Time
	SortBy   SortField
	Order    SortOrder
}

func (q Query) Filters() []Filter {
	return []Filter{NewSearch(q.Search), NewMinScore(q.MinScore), NewSince(q.Since)}
}

// List filters and sorts items for q. items is not modified.
func List(ctx context.Context, logger *zap.Logger, q Query, items []interview.CompletedSession) (Result, error) {
	res, err := Run(ctx, logger, q.Filters(), items)
	if err != nil {
		return Result{}, err
	}
	Sort(res.Items, q.SortBy, q.Order)
	return res, nil
}

// Run applies the enabled filters in order to a copy of items.
func Run(ctx context.Context, logger *zap.Logger, filters []Filter, items []interview.CompletedSession) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	current := append([]interview.CompletedSession(nil), items...)
	stages := make([]Stage, 0, len(filters))
	for _, f := range filters {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		status := f.Status()
		if !status.Enabled {
			logger.Debug("filter disabled", zap.String("name", status.Name), zap.String("reason", status.Reason))
			continue
		}

		left := current[:0:0]
		for _, item := range current {
			if f.Keep(item) {
				left = append(left, item)
			}
		}

		stage := Stage{Filter: status.Name, Before: len(current), Dropped: len(current) - len(left)}
		logger.Debug("filter step",
			zap.String("name", stage.Filter),
			zap.Int("initial", stage.Before),
			zap.Int("dropped", stage.Dropped),
			zap.Int("left", len(left)),
		)
		stages = append(stages, stage)
		current = left
	}

	return Result{Items: current, Stages: stages}, nil
}

func DisableByName(filters []Filter, name, reason string) {
	for _, f := range filters {
		if f.Name() == name {
			f.Disable(reason)
		}
	}
}

func Describe(filters []Filter) []Status {
	statuses := make([]Status, 0, len(filters))
	for _, f := range filters {
		statuses = append(statuses, f.Status())
	}
	return statuses
}
