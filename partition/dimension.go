// Package partition computes partition value sequences and composite
// keyspaces. A dimension produces a finite, ordered value sequence:
// categorical dimensions enumerate their configured categories, time
// dimensions enumerate period starts from start_date through the period
// containing "now".
package partition

import (
	"fmt"
	"time"

	"github.com/justapithecus/seam/config"
	"github.com/justapithecus/seam/types"
)

// DateLayout is the ISO date layout used for all partition values.
const DateLayout = "2006-01-02"

// Clock supplies the current time. Injectable so time-bounded sequences
// are testable; defaults to time.Now.
type Clock func() time.Time

// Dimension is a resolved partition dimension: a named, ordered generator
// of concrete partition values.
type Dimension struct {
	Name string
	Type types.PartitionType

	categories []string
	start      time.Time
	now        Clock
}

// NewDimension resolves a dimension spec. Categorical dimensions must carry
// a non-empty category list; time dimensions must carry a parseable
// start_date. Violations are ConfigErrors.
func NewDimension(spec config.Partition, now Clock) (*Dimension, error) {
	if now == nil {
		now = time.Now
	}

	d := &Dimension{Name: spec.Name, Type: spec.Type, now: now}

	switch spec.Type {
	case types.PartitionCategorical:
		if len(spec.Config.Categories) == 0 {
			return nil, config.NewConfigError("partition "+spec.Name,
				"categorical dimension requires a non-empty category list", nil)
		}
		d.categories = append([]string(nil), spec.Config.Categories...)

	case types.PartitionMonthly, types.PartitionWeekly:
		start, err := time.Parse(DateLayout, spec.Config.StartDate)
		if err != nil {
			return nil, config.NewConfigError("partition "+spec.Name,
				fmt.Sprintf("unparsable start_date %q", spec.Config.StartDate), err)
		}
		d.start = start

	default:
		return nil, config.NewConfigError("partition "+spec.Name,
			fmt.Sprintf("unknown partition_type %q", spec.Type), nil)
	}

	return d, nil
}

// Values returns the dimension's value sequence, in order:
//   - categorical: the category list in declared order
//   - monthly: first-of-month ISO dates from start_date through the current month
//   - weekly: Monday ISO dates from the week containing start_date through the
//     current week
//
// Time sequences are ascending and re-evaluated against the clock on each call.
func (d *Dimension) Values() []string {
	switch d.Type {
	case types.PartitionCategorical:
		return append([]string(nil), d.categories...)
	case types.PartitionMonthly:
		return monthStarts(d.start, d.now())
	case types.PartitionWeekly:
		return weekStarts(d.start, d.now())
	}
	return nil
}

// monthStarts enumerates first-of-month dates from the month containing
// start (inclusive) through the month containing now (inclusive).
func monthStarts(start, now time.Time) []string {
	cursor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var values []string
	for !cursor.After(end) {
		values = append(values, cursor.Format(DateLayout))
		cursor = cursor.AddDate(0, 1, 0)
	}
	return values
}

// weekStarts enumerates Monday dates from the week containing start
// (inclusive) through the week containing now (inclusive).
func weekStarts(start, now time.Time) []string {
	cursor := mondayOf(start)
	end := mondayOf(now)

	var values []string
	for !cursor.After(end) {
		values = append(values, cursor.Format(DateLayout))
		cursor = cursor.AddDate(0, 0, 7)
	}
	return values
}

// mondayOf returns the Monday of the ISO week containing t, at UTC midnight.
func mondayOf(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
