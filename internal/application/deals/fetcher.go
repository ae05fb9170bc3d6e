package deals

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"
)

// PageFetcher composes the page query and runs it with one extra row of over-fetch.
type PageFetcher struct {
	Items   ItemStore
	Catalog CatalogFilters
}

// Query builds the PageQuery for a request. A nil boundary means the first page.
func (f PageFetcher) Query(spec FilterSpec, req Request, today time.Time, boundary *Boundary) PageQuery {
	group := req.Policy.GroupExpr(today)

	var filters []clause.Expr
	if req.Category != "" {
		filters = append(filters, f.Catalog.InCategory(req.Category))
	}
	if req.ActiveOnly {
		filters = append(filters, clause.Expr{
			SQL:  ColumnDeadline + " >= ?",
			Vars: []interface{}{req.Policy.Threshold(today)},
		})
	}
	if req.Keyword != "" {
		filters = append(filters, f.Catalog.MatchesKeyword(req.Keyword))
	}

	q := PageQuery{
		Group:    group,
		Filters:  filters,
		Order:    spec.Ordering(),
		Limit:    req.Limit + 1,
		ViewerID: req.ViewerID,
	}
	if boundary != nil {
		q.Boundary = BuildBoundary(spec, group, *boundary)
	}
	return q
}

// Fetch returns up to limit+1 rows in page order.
func (f PageFetcher) Fetch(ctx context.Context, q PageQuery) ([]Row, error) {
	rows, err := f.Items.FetchRows(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch deals page: %w", err)
	}
	return rows, nil
}
