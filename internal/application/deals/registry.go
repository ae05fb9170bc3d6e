package deals

import "strings"

// Direction is the sort direction of a filter's primary key.
type Direction int

const (
	Desc Direction = iota
	Asc
)

func (d Direction) String() string {
	if d == Asc {
		return "ASC"
	}
	return "DESC"
}

// SQL expressions the page query is written against. The alias is projected by the
// item store and only ever used in ORDER BY.
const (
	ColumnID       = "buys.buy_id"
	ColumnDeadline = "buys.deadline"
	ColumnDiscount = "products.discount_percent"
	ColumnLikes    = "COUNT(likes.like_id)"
	GroupAlias     = "deal_group"
)

// Filter names accepted by FetchPage.
const (
	FilterPopularity    = "popularity"
	FilterEndingSoonest = "endingSoonest"
	FilterDiscount      = "discount"
	FilterNewest        = "newest"
)

// FilterSpec describes how one filter orders deals after the open/expired group.
// Key reads the same value from a resolved cursor item that Column computes in SQL.
type FilterSpec struct {
	Name      string
	Column    string
	Direction Direction
	Aggregate bool
	Key       func(CursorItem) interface{}
}

// Ordering returns the ORDER BY terms: group, primary key, then id as the tie-break.
func (f FilterSpec) Ordering() []string {
	order := []string{GroupAlias + " ASC", f.Column + " " + f.Direction.String()}
	if f.Column != ColumnID {
		order = append(order, ColumnID+" DESC")
	}
	return order
}

var registry = map[string]FilterSpec{}

func register(spec FilterSpec, aliases ...string) {
	registry[strings.ToLower(spec.Name)] = spec
	for _, a := range aliases {
		registry[strings.ToLower(a)] = spec
	}
}

func init() {
	// "like" and "endDate" are the names the web client has always sent.
	register(FilterSpec{
		Name:      FilterPopularity,
		Column:    ColumnLikes,
		Direction: Desc,
		Aggregate: true,
		Key:       func(it CursorItem) interface{} { return it.LikeCount },
	}, "like")
	register(FilterSpec{
		Name:      FilterEndingSoonest,
		Column:    ColumnDeadline,
		Direction: Asc,
		Key:       func(it CursorItem) interface{} { return CalendarDay(it.Deadline) },
	}, "endDate")
	register(FilterSpec{
		Name:      FilterDiscount,
		Column:    ColumnDiscount,
		Direction: Desc,
		Key:       func(it CursorItem) interface{} { return it.DiscountPercent },
	})
	register(FilterSpec{
		Name:      FilterNewest,
		Column:    ColumnID,
		Direction: Desc,
		Key:       func(it CursorItem) interface{} { return it.ID },
	})
}

// LookupFilter returns the spec registered under name (case-insensitive).
func LookupFilter(name string) (FilterSpec, error) {
	spec, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return FilterSpec{}, &InvalidFilterError{Filter: name}
	}
	return spec, nil
}
