package deals

import (
	"fmt"

	"gorm.io/gorm/clause"
)

// Stage says where a predicate is applied relative to GROUP BY.
type Stage int

const (
	StageWhere Stage = iota
	StageHaving
)

// Predicate selects the rows from a Boundary onwards in filter order.
type Predicate struct {
	Expr  clause.Expr
	Stage Stage
}

func (p Predicate) IsZero() bool {
	return p.Expr.SQL == ""
}

// BuildBoundary renders
//
//	(group = g AND (key PAST k OR (key = k AND id <= i))) OR group > g
//
// where PAST is "<" for descending keys and ">" for ascending ones. The cursor is the
// over-fetched row of the previous page, so it opens the next page itself; every row
// the previous page served sorts strictly before it.
func BuildBoundary(spec FilterSpec, group clause.Expr, b Boundary) Predicate {
	g := "(" + group.SQL + ")"
	vars := make([]interface{}, 0, 2*len(group.Vars)+5)

	var same string
	vars = append(vars, group.Vars...)
	vars = append(vars, b.Group)
	if spec.Column == ColumnID {
		same = fmt.Sprintf("%s = ? AND %s <= ?", g, ColumnID)
		vars = append(vars, b.ID)
	} else {
		past := "<"
		if spec.Direction == Asc {
			past = ">"
		}
		same = fmt.Sprintf("%s = ? AND (%s %s ? OR (%s = ? AND %s <= ?))", g, spec.Column, past, spec.Column, ColumnID)
		vars = append(vars, b.Key, b.Key, b.ID)
	}
	vars = append(vars, group.Vars...)
	vars = append(vars, b.Group)

	stage := StageWhere
	// An aggregate key only exists after GROUP BY, so its boundary has to be a HAVING
	// condition. Filtering it in WHERE would compare against per-row values instead.
	if spec.Aggregate {
		stage = StageHaving
	}
	return Predicate{
		Expr:  clause.Expr{SQL: fmt.Sprintf("((%s) OR %s > ?)", same, g), Vars: vars},
		Stage: stage,
	}
}
