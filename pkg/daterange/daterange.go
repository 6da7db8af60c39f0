// Package daterange resolves the named ranges sent by the POS screens
// ("today", "thisMonth", "thisYear", "custom") into concrete bounds.
package daterange

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const (
	Today     = "today"
	ThisMonth = "thisMonth"
	ThisYear  = "thisYear"
	Custom    = "custom"
)

// Range is a half-open interval [From, To).
type Range struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range.
func (r *Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

// Resolve turns a named range into bounds in loc. An empty name means no
// filter and returns (nil, nil).
func Resolve(name, start, end string, loc *time.Location, now time.Time) (*Range, error) {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)

	switch name {
	case "":
		return nil, nil
	case Today:
		from := startOfDay(now)
		return &Range{From: from, To: from.AddDate(0, 0, 1)}, nil
	case ThisMonth:
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return &Range{From: from, To: from.AddDate(0, 1, 0)}, nil
	case ThisYear:
		from := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return &Range{From: from, To: from.AddDate(1, 0, 0)}, nil
	case Custom:
		return custom(start, end, loc)
	default:
		return nil, fmt.Errorf("unknown date range %q", name)
	}
}

func custom(start, end string, loc *time.Location) (*Range, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return nil, fmt.Errorf("custom date range needs both startDate and endDate")
	}

	from, err := dateparse.ParseIn(start, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid startDate: %w", err)
	}
	to, err := dateparse.ParseIn(end, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid endDate: %w", err)
	}

	// A bare date as the end bound covers that whole day.
	if isDateOnly(end) {
		to = startOfDay(to.In(loc)).AddDate(0, 0, 1)
	}
	if !to.After(from) {
		return nil, fmt.Errorf("endDate must be after startDate")
	}
	return &Range{From: from, To: to}, nil
}

func isDateOnly(s string) bool {
	return len(s) == len("2006-01-02") && !strings.ContainsAny(s, "T: ")
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
