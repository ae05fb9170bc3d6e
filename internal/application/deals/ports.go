package deals

import (
	"context"
	"time"

	"gorm.io/gorm/clause"
)

type (
	ItemID = uint64
	UserID = uint64
)

// CursorItem is the live state of the buy a cursor points at, like count included.
type CursorItem struct {
	ID              ItemID    `gorm:"column:buy_id"`
	Deadline        time.Time `gorm:"column:deadline"`
	DiscountPercent int       `gorm:"column:discount_percent"`
	LikeCount       int64     `gorm:"column:like_count"`
}

// Row is one grouped row of a page query.
type Row struct {
	ID              ItemID    `gorm:"column:buy_id"`
	ProductName     string    `gorm:"column:product_name"`
	ProductImg      string    `gorm:"column:product_img"`
	OriginalPrice   int       `gorm:"column:original_price"`
	SalePrice       int       `gorm:"column:sale_price"`
	DiscountPercent int       `gorm:"column:discount_percent"`
	Skeleton        int       `gorm:"column:skeleton"`
	NowCount        int       `gorm:"column:now_count"`
	Deadline        time.Time `gorm:"column:deadline"`
	LikeCount       int64     `gorm:"column:like_count"`
	ReviewCount     int64     `gorm:"column:review_count"`
	IsLiked         bool      `gorm:"column:is_liked"`
	Group           int       `gorm:"column:deal_group"`
}

// DetailRow carries the product and buy columns of a single deal.
type DetailRow struct {
	ID              ItemID    `gorm:"column:buy_id"`
	Title           string    `gorm:"column:title"`
	ProductName     string    `gorm:"column:product_name"`
	ProductImg      string    `gorm:"column:product_img"`
	DetailImg       string    `gorm:"column:detail_img"`
	OriginalPrice   int       `gorm:"column:original_price"`
	SalePrice       int       `gorm:"column:sale_price"`
	DiscountPercent int       `gorm:"column:discount_percent"`
	StoreName       string    `gorm:"column:store_name"`
	Skeleton        int       `gorm:"column:skeleton"`
	NowCount        int       `gorm:"column:now_count"`
	Deadline        time.Time `gorm:"column:deadline"`
	ReviewCount     int64     `gorm:"column:review_count"`
}

// PageQuery is everything the item store needs to run one page fetch.
// Filters and a WHERE-stage Boundary go before GROUP BY, a HAVING-stage Boundary after it.
type PageQuery struct {
	Group    clause.Expr
	Filters  []clause.Expr
	Boundary Predicate
	Order    []string
	Limit    int
	ViewerID *UserID
}

// ItemStore reads buys.
type ItemStore interface {
	FindCursor(ctx context.Context, id ItemID) (CursorItem, error)
	FetchRows(ctx context.Context, q PageQuery) ([]Row, error)
	FindDetail(ctx context.Context, id ItemID) (DetailRow, error)
}

// RatingStore batch-loads rating histograms.
type RatingStore interface {
	Histograms(ctx context.Context, ids []ItemID) (map[ItemID]Histogram, error)
}

// LikeStore answers like-relation questions.
type LikeStore interface {
	CountFor(ctx context.Context, id ItemID) (int64, error)
	HasLiked(ctx context.Context, viewer UserID, id ItemID) (bool, error)
	Toggle(ctx context.Context, viewer UserID, id ItemID) (bool, error)
}

// CatalogFilters builds the category and keyword pre-filters; the engine treats them as opaque.
type CatalogFilters interface {
	InCategory(name string) clause.Expr
	MatchesKeyword(keyword string) clause.Expr
	CategoriesOf(ctx context.Context, id ItemID) ([]string, error)
}
