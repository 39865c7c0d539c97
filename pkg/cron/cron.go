package cron

import (
	"fmt"
	"sync"
	"time"

	robfig "github.com/robfig/cron/v3"
)

// Evaluator is the "next occurrence after an instant" capability the
// recurrence expander depends on. Implementations must evaluate the
// expression against the wall clock of the given instant's location, so that
// "hour 18" means 18:00 local regardless of UTC offset.
type Evaluator interface {
	// Validate reports whether expr is a well-formed cron expression.
	Validate(expr string) error
	// Next returns the first occurrence strictly after the given instant,
	// evaluated in that instant's location. The zero time means the
	// expression never fires again within the evaluator's search horizon.
	Next(expr string, after time.Time) (time.Time, error)
}

// standardEvaluator evaluates five-field cron expressions via robfig/cron.
// Parsed schedules are cached per expression; the set of expressions in the
// system is small (one per schedule).
type standardEvaluator struct {
	parser robfig.Parser
	cache  sync.Map // expr → robfig.Schedule
}

// NewEvaluator returns the standard five-field cron evaluator.
func NewEvaluator() Evaluator {
	return &standardEvaluator{
		parser: robfig.NewParser(
			robfig.Minute | robfig.Hour | robfig.Dom | robfig.Month | robfig.Dow,
		),
	}
}

func (e *standardEvaluator) schedule(expr string) (robfig.Schedule, error) {
	if cached, ok := e.cache.Load(expr); ok {
		return cached.(robfig.Schedule), nil
	}
	sched, err := e.parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse cron %q: %w", expr, err)
	}
	e.cache.Store(expr, sched)
	return sched, nil
}

func (e *standardEvaluator) Validate(expr string) error {
	_, err := e.schedule(expr)
	return err
}

func (e *standardEvaluator) Next(expr string, after time.Time) (time.Time, error) {
	sched, err := e.schedule(expr)
	if err != nil {
		return time.Time{}, err
	}
	// robfig resolves the local wall-clock time first and converts to an
	// absolute instant afterwards, which keeps local start hours stable
	// across DST transitions.
	return sched.Next(after), nil
}
