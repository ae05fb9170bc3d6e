package deals

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Service serves ranked, cursor-paginated deal listings and single deals.
// It keeps no state between calls; every page is built from live reads.
type Service struct {
	Items   ItemStore
	Ratings RatingStore
	Likes   LikeStore
	Catalog CatalogFilters

	Location *time.Location
	Timeout  time.Duration
	MaxLimit int
	Now      func() time.Time
}

// Request is one FetchPage call. Category, Keyword, Cursor and ViewerID are optional.
type Request struct {
	Filter     string
	Category   string
	ActiveOnly bool
	Keyword    string
	Cursor     *ItemID
	Limit      int
	ViewerID   *UserID
	Policy     OpenPolicy
}

func (s *Service) today() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return Today(now(), s.Location)
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout > 0 {
		return context.WithTimeout(ctx, s.Timeout)
	}
	return context.WithCancel(ctx)
}

// FetchPage returns the page that starts at req.Cursor (or the first page when nil).
// Either the whole page is returned or an error; storage errors are not retried.
func (s *Service) FetchPage(ctx context.Context, req Request) (*Page, error) {
	spec, err := LookupFilter(req.Filter)
	if err != nil {
		return nil, err
	}
	if req.Limit < 1 {
		return nil, ErrInvalidLimit
	}
	if s.MaxLimit > 0 && req.Limit > s.MaxLimit {
		req.Limit = s.MaxLimit
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	today := s.today()

	boundary, err := CursorResolver{Items: s.Items}.Resolve(ctx, spec, req.Policy, today, req.Cursor)
	if err != nil {
		return nil, err
	}

	fetcher := PageFetcher{Items: s.Items, Catalog: s.Catalog}
	rows, err := fetcher.Fetch(ctx, fetcher.Query(spec, req, today, boundary))
	if err != nil {
		return nil, err
	}

	// Histograms for the over-fetched row are loaded too; it keeps this to one call per page.
	ratings, err := RatingAggregator{Ratings: s.Ratings}.Load(ctx, rows)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Assemble(rows, req.Limit, ratings, req.ViewerID != nil, today), nil
}

// DealDetail is the full view of one deal.
type DealDetail struct {
	BuyID           ItemID   `json:"buyId"`
	Title           string   `json:"title"`
	ProductName     string   `json:"productName"`
	ProductImg      string   `json:"productImg"`
	ProductDetail   string   `json:"productDetail"`
	OriginalPrice   int      `json:"originalPrice"`
	SalePrice       int      `json:"salePrice"`
	DiscountPercent int      `json:"discountPercent"`
	StoreName       string   `json:"storeName"`
	Skeleton        int      `json:"skeleton"`
	NowCount        int      `json:"nowCount"`
	Deadline        string   `json:"deadline"`
	ExpireDate      int      `json:"expireDate"`
	LikeCount       int64    `json:"likeCount"`
	IsLiked         *bool    `json:"isLiked"`
	ReviewCount     int64    `json:"reviewCount"`
	RatingCount     [5]int   `json:"ratingCount"`
	Rating          float64  `json:"rating"`
	Category        []string `json:"category"`
}

// GetDeal loads one deal. IsLiked stays nil without a viewer.
func (s *Service) GetDeal(ctx context.Context, id ItemID, viewer *UserID) (*DealDetail, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row, err := s.Items.FindDetail(ctx, id)
	if errors.Is(err, ErrItemNotFound) {
		return nil, ErrDealNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load deal %d: %w", id, err)
	}
	likes, err := s.Likes.CountFor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count likes for deal %d: %w", id, err)
	}
	var liked *bool
	if viewer != nil {
		v, err := s.Likes.HasLiked(ctx, *viewer, id)
		if err != nil {
			return nil, fmt.Errorf("check like for deal %d: %w", id, err)
		}
		liked = &v
	}
	hs, err := s.Ratings.Histograms(ctx, []ItemID{id})
	if err != nil {
		return nil, fmt.Errorf("load rating histogram: %w", err)
	}
	categories, err := s.Catalog.CategoriesOf(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load categories for deal %d: %w", id, err)
	}
	if categories == nil {
		categories = []string{}
	}

	h := hs[id]
	today := s.today()
	return &DealDetail{
		BuyID:           row.ID,
		Title:           row.Title,
		ProductName:     row.ProductName,
		ProductImg:      row.ProductImg,
		ProductDetail:   row.DetailImg,
		OriginalPrice:   row.OriginalPrice,
		SalePrice:       row.SalePrice,
		DiscountPercent: row.DiscountPercent,
		StoreName:       row.StoreName,
		Skeleton:        row.Skeleton,
		NowCount:        row.NowCount,
		Deadline:        CalendarDay(row.Deadline).Format(time.DateOnly),
		ExpireDate:      DaysRemaining(row.Deadline, today),
		LikeCount:       likes,
		IsLiked:         liked,
		ReviewCount:     row.ReviewCount,
		RatingCount:     h.FiveToOne(),
		Rating:          h.Average(),
		Category:        categories,
	}, nil
}

// ToggleLike flips the viewer's like on a deal and reports whether it is now liked.
func (s *Service) ToggleLike(ctx context.Context, viewer UserID, id ItemID) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.Items.FindCursor(ctx, id); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return false, ErrDealNotFound
		}
		return false, fmt.Errorf("load deal %d: %w", id, err)
	}
	liked, err := s.Likes.Toggle(ctx, viewer, id)
	if err != nil {
		return false, fmt.Errorf("toggle like on deal %d: %w", id, err)
	}
	return liked, nil
}
