package deals

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm/clause"
)

const (
	GroupOpen    = 0
	GroupExpired = 1
)

// OpenPolicy decides up to which deadline a deal still counts as open.
type OpenPolicy int

const (
	// StrictOpen: open while deadline >= today.
	StrictOpen OpenPolicy = iota
	// GraceOpen: open while deadline >= today - 1 day.
	GraceOpen
)

func (p OpenPolicy) String() string {
	if p == GraceOpen {
		return "grace"
	}
	return "strict"
}

// ParseOpenPolicy accepts "strict" or "grace" (empty means strict).
func ParseOpenPolicy(s string) (OpenPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return StrictOpen, nil
	case "grace":
		return GraceOpen, nil
	}
	return StrictOpen, fmt.Errorf("unknown open policy %q", s)
}

// Threshold is the earliest deadline that is still open on the given day.
func (p OpenPolicy) Threshold(today time.Time) time.Time {
	if p == GraceOpen {
		return today.AddDate(0, 0, -1)
	}
	return today
}

// Classify returns GroupOpen or GroupExpired for a deadline.
func (p OpenPolicy) Classify(deadline, today time.Time) int {
	if CalendarDay(deadline).Before(p.Threshold(today)) {
		return GroupExpired
	}
	return GroupOpen
}

// GroupExpr is the SQL form of Classify.
func (p OpenPolicy) GroupExpr(today time.Time) clause.Expr {
	return clause.Expr{
		SQL:  "CASE WHEN " + ColumnDeadline + " >= ? THEN 0 ELSE 1 END",
		Vars: []interface{}{p.Threshold(today)},
	}
}

// CalendarDay drops the clock part of t, keeping its calendar date, as UTC midnight.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today is the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc != nil {
		now = now.In(loc)
	}
	return CalendarDay(now)
}

// DaysRemaining is -1 once the deadline has passed, 0 on the deadline itself.
func DaysRemaining(deadline, today time.Time) int {
	d := CalendarDay(deadline)
	if d.Before(today) {
		return -1
	}
	return int(d.Sub(today).Hours() / 24)
}
