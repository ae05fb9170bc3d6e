package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"dutchie-backend/internal/application/deals"
	"dutchie-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var testToday = time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

func setupDealsTest(t *testing.T) (*gorm.DB, *deals.Service) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, AutoMigrate(db))

	svc := &deals.Service{
		Items:    &DealStore{DB: db},
		Ratings:  &RatingStore{DB: db},
		Likes:    &LikeStore{DB: db},
		Catalog:  Catalog{DB: db},
		Location: time.UTC,
		Timeout:  5 * time.Second,
		MaxLimit: 100,
		Now:      func() time.Time { return testToday.Add(15 * time.Hour) },
	}
	return db, svc
}

type seedBuy struct {
	ID         uint64
	DaysLeft   int
	Likes      int
	Discount   int
	Title      string
	Tags       string
	Categories []string
}

func seed(t *testing.T, db *gorm.DB, b seedBuy) {
	t.Helper()
	p := domain.Product{
		ProductID:       b.ID,
		ProductName:     fmt.Sprintf("product-%d", b.ID),
		ProductImg:      fmt.Sprintf("https://img.dutchie.kr/%d.png", b.ID),
		OriginalPrice:   10000,
		SalePrice:       10000 - 100*b.Discount,
		DiscountPercent: b.Discount,
		StoreName:       "store",
	}
	require.NoError(t, db.Create(&p).Error)
	title := b.Title
	if title == "" {
		title = fmt.Sprintf("deal %d", b.ID)
	}
	buy := domain.Buy{
		BuyID:     b.ID,
		ProductID: p.ProductID,
		Title:     title,
		Deadline:  datatypes.Date(testToday.AddDate(0, 0, b.DaysLeft)),
		Skeleton:  10,
		NowCount:  3,
		Tags:      b.Tags,
	}
	require.NoError(t, db.Create(&buy).Error)
	for i := 0; i < b.Likes; i++ {
		require.NoError(t, db.Create(&domain.Like{UserID: uint64(1000 + i), BuyID: b.ID}).Error)
	}
	for _, name := range b.Categories {
		var cat domain.Category
		require.NoError(t, db.Where(domain.Category{Name: name}).FirstOrCreate(&cat).Error)
		require.NoError(t, db.Create(&domain.BuyCategory{BuyID: b.ID, CategoryID: cat.CategoryID}).Error)
	}
}

func ids(p *deals.Page) []uint64 {
	out := make([]uint64, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, it.BuyID)
	}
	return out
}

func walk(t *testing.T, svc *deals.Service, req deals.Request) []uint64 {
	t.Helper()
	var all []uint64
	req.Cursor = nil
	for pages := 0; ; pages++ {
		require.Less(t, pages, 100, "cursor chain does not terminate")
		page, err := svc.FetchPage(context.Background(), req)
		require.NoError(t, err)
		require.LessOrEqual(t, len(page.Items), req.Limit)
		all = append(all, ids(page)...)
		if page.NextCursor == nil {
			return all
		}
		req.Cursor = page.NextCursor
	}
}

func TestFetchPage_PopularityTieAcrossGroups(t *testing.T) {
	db, svc := setupDealsTest(t)
	seed(t, db, seedBuy{ID: 3, DaysLeft: -1, Likes: 10})
	seed(t, db, seedBuy{ID: 5, DaysLeft: 2, Likes: 10})
	ctx := context.Background()

	p1, err := svc.FetchPage(ctx, deals.Request{Filter: "popularity", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []uint64{5}, ids(p1))
	require.NotNil(t, p1.NextCursor)
	assert.Equal(t, uint64(3), *p1.NextCursor)

	p2, err := svc.FetchPage(ctx, deals.Request{Filter: "popularity", Limit: 1, Cursor: p1.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, []uint64{3}, ids(p2))
	assert.Nil(t, p2.NextCursor)
	assert.Equal(t, -1, p2.Items[0].ExpireDate)
	assert.Equal(t, int64(10), p2.Items[0].LikeCount)
}

func seedMixed(t *testing.T, db *gorm.DB) []uint64 {
	rows := []seedBuy{
		{ID: 1, DaysLeft: 3, Likes: 2, Discount: 10},
		{ID: 2, DaysLeft: -2, Likes: 5, Discount: 30},
		{ID: 3, DaysLeft: 3, Likes: 2, Discount: 10},
		{ID: 4, DaysLeft: 0, Likes: 0, Discount: 50},
		{ID: 5, DaysLeft: 1, Likes: 5, Discount: 30},
		{ID: 6, DaysLeft: -1, Likes: 0, Discount: 10},
		{ID: 7, DaysLeft: 3, Likes: 2, Discount: 50},
		{ID: 8, DaysLeft: -2, Likes: 2, Discount: 0},
		{ID: 9, DaysLeft: 7, Likes: 0, Discount: 30},
		{ID: 10, DaysLeft: 1, Likes: 1, Discount: 10},
		{ID: 11, DaysLeft: -5, Likes: 5, Discount: 50},
	}
	all := make([]uint64, 0, len(rows))
	for _, r := range rows {
		seed(t, db, r)
		all = append(all, r.ID)
	}
	return all
}

func TestFetchPage_ChainCompleteness(t *testing.T) {
	db, svc := setupDealsTest(t)
	all := seedMixed(t, db)

	for _, filter := range []string{"popularity", "endingSoonest", "discount", "newest"} {
		reference, err := svc.FetchPage(context.Background(), deals.Request{Filter: filter, Limit: 100})
		require.NoError(t, err)
		require.Nil(t, reference.NextCursor)
		require.ElementsMatch(t, all, ids(reference), filter)

		for _, limit := range []int{1, 2, 3, 4, 10, 11, 12} {
			t.Run(fmt.Sprintf("%s/limit=%d", filter, limit), func(t *testing.T) {
				got := walk(t, svc, deals.Request{Filter: filter, Limit: limit})
				assert.Equal(t, ids(reference), got)
			})
		}
	}
}

func TestFetchPage_OrderWithinGroups(t *testing.T) {
	db, svc := setupDealsTest(t)
	seedMixed(t, db)
	ctx := context.Background()

	page, err := svc.FetchPage(ctx, deals.Request{Filter: "popularity", Limit: 100})
	require.NoError(t, err)
	// open: 5(5) 7,3,1(2) 10(1) 9,4(0); expired: 11,2(5) 8(2) 6(0)
	assert.Equal(t, []uint64{5, 7, 3, 1, 10, 9, 4, 11, 2, 8, 6}, ids(page))

	page, err = svc.FetchPage(ctx, deals.Request{Filter: "endingSoonest", Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, []uint64{4, 10, 5, 7, 3, 1, 9, 11, 8, 2, 6}, ids(page))

	page, err = svc.FetchPage(ctx, deals.Request{Filter: "discount", Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, []uint64{7, 4, 9, 5, 10, 3, 1, 11, 2, 6, 8}, ids(page))

	page, err = svc.FetchPage(ctx, deals.Request{Filter: "newest", Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, []uint64{10, 9, 7, 5, 4, 3, 1, 11, 8, 6, 2}, ids(page))
}

func TestFetchPage_ActiveOnlyAndGracePolicy(t *testing.T) {
	db, svc := setupDealsTest(t)
	seed(t, db, seedBuy{ID: 1, DaysLeft: 1})
	seed(t, db, seedBuy{ID: 2, DaysLeft: -1})
	seed(t, db, seedBuy{ID: 3, DaysLeft: -3})
	ctx := context.Background()

	page, err := svc.FetchPage(ctx, deals.Request{Filter: "newest", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3, 2}, ids(page))

	page, err = svc.FetchPage(ctx, deals.Request{Filter: "newest", Limit: 10, Policy: deals.GraceOpen})
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 1, 3}, ids(page))

	page, err = svc.FetchPage(ctx, deals.Request{Filter: "newest", Limit: 10, ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, ids(page))

	page, err = svc.FetchPage(ctx, deals.Request{Filter: "newest", Limit: 10, ActiveOnly: true, Policy: deals.GraceOpen})
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 1}, ids(page))
}

func TestFetchPage_ViewerAndZeroLikeItems(t *testing.T) {
	db, svc := setupDealsTest(t)
	seed(t, db, seedBuy{ID: 1, DaysLeft: 2, Likes: 0})
	seed(t, db, seedBuy{ID: 2, DaysLeft: 2, Likes: 2})
	seed(t, db, seedBuy{ID: 3, DaysLeft: 2, Likes: 0})
	require.NoError(t, db.Create(&domain.Like{UserID: 77, BuyID: 3}).Error)
	ctx := context.Background()

	viewer := uint64(77)
	page, err := svc.FetchPage(ctx, deals.Request{Filter: "popularity", Limit: 10, ViewerID: &viewer})
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 3, 1}, ids(page))
	liked := map[uint64]bool{}
	for _, it := range page.Items {
		liked[it.BuyID] = it.IsLiked
	}
	assert.Equal(t, map[uint64]bool{1: false, 2: false, 3: true}, liked)
	assert.Equal(t, int64(0), page.Items[2].LikeCount)

	anon, err := svc.FetchPage(ctx, deals.Request{Filter: "popularity", Limit: 10})
	require.NoError(t, err)
	for _, it := range anon.Items {
		assert.False(t, it.IsLiked)
	}
}

func TestFetchPage_CategoryAndKeyword(t *testing.T) {
	db, svc := setupDealsTest(t)
	seed(t, db, seedBuy{ID: 1, DaysLeft: 2, Title: "Jeju tangerines", Tags: "fruit,citrus", Categories: []string{"food"}})
	seed(t, db, seedBuy{ID: 2, DaysLeft: 2, Title: "Laundry pods", Tags: "home", Categories: []string{"living"}})
	seed(t, db, seedBuy{ID: 3, DaysLeft: 2, Title: "Apple box", Tags: "fruit", Categories: []string{"food", "gift"}})
	ctx := context.Background()

	page, err := svc.FetchPage(ctx, deals.Request{Filter: "newest", Limit: 10, Category: "food"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 1}, ids(page))

	page, err = svc.FetchPage(ctx, deals.Request{Filter: "newest", Limit: 10, Keyword: "fruit"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 1}, ids(page))

	page, err = svc.FetchPage(ctx, deals.Request{Filter: "newest", Limit: 10, Keyword: "Laundry"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{2}, ids(page))

	page, err = svc.FetchPage(ctx, deals.Request{Filter: "newest", Limit: 10, Category: "nothing"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Nil(t, page.NextCursor)
}

func TestFetchPage_KeywordWildcardsMatchLiterally(t *testing.T) {
	db, svc := setupDealsTest(t)
	seed(t, db, seedBuy{ID: 1, DaysLeft: 2, Title: "50% off rice"})
	seed(t, db, seedBuy{ID: 2, DaysLeft: 2, Title: "Laundry pods"})
	seed(t, db, seedBuy{ID: 3, DaysLeft: 2, Title: "a_b", Tags: `c:\temp`})
	ctx := context.Background()

	for kw, want := range map[string][]uint64{
		"%":       {1},
		"50%":     {1},
		"_":       {3},
		"a_b":     {3},
		`\`:       {3},
		"0% off":  {1},
		"pods":    {2},
		"%_%":     {},
		`\%`:      {},
		"rice%":   {},
		"Laundry": {2},
	} {
		page, err := svc.FetchPage(ctx, deals.Request{Filter: "newest", Limit: 10, Keyword: kw})
		require.NoError(t, err, kw)
		assert.Equal(t, want, ids(page), kw)
	}
}

// Pre-filters and the open policy sit next to the boundary predicate; walking every
// combination must still visit each matching buy exactly once.
func TestFetchPage_ChainCompletenessWithPreFilters(t *testing.T) {
	db, svc := setupDealsTest(t)
	type expect struct{ active, all []uint64 }
	var want expect
	for i := 1; i <= 30; i++ {
		b := seedBuy{
			ID:         uint64(i),
			DaysLeft:   i%5 - 3,
			Likes:      i % 4,
			Discount:   (i % 3) * 20,
			Tags:       "frozen",
			Categories: []string{"living"},
		}
		if i%2 == 0 {
			b.Tags = "fresh,local"
		}
		if i%3 != 0 {
			b.Categories = []string{"food"}
		}
		seed(t, db, b)
		if i%2 == 0 && i%3 != 0 {
			want.all = append(want.all, b.ID)
			if b.DaysLeft >= -1 {
				want.active = append(want.active, b.ID)
			}
		}
	}
	require.NotEqual(t, len(want.all), len(want.active))

	for _, activeOnly := range []bool{true, false} {
		expected := want.all
		if activeOnly {
			expected = want.active
		}
		for _, filter := range []string{"popularity", "endingSoonest", "discount", "newest"} {
			base := deals.Request{
				Filter:     filter,
				Category:   "food",
				Keyword:    "fresh",
				ActiveOnly: activeOnly,
				Policy:     deals.GraceOpen,
			}
			full := base
			full.Limit = 100
			reference, err := svc.FetchPage(context.Background(), full)
			require.NoError(t, err)
			require.ElementsMatch(t, expected, ids(reference), filter)

			for _, limit := range []int{1, 2, 3, 4, len(expected)} {
				t.Run(fmt.Sprintf("%s/active=%t/limit=%d", filter, activeOnly, limit), func(t *testing.T) {
					req := base
					req.Limit = limit
					assert.Equal(t, ids(reference), walk(t, svc, req))
				})
			}
		}
	}
}

func TestFindCursor_IncludesLikeCount(t *testing.T) {
	db, _ := setupDealsTest(t)
	seed(t, db, seedBuy{ID: 1, DaysLeft: 2, Likes: 3, Discount: 40})
	seed(t, db, seedBuy{ID: 2, DaysLeft: -1})
	store := &DealStore{DB: db}
	ctx := context.Background()

	it, err := store.FindCursor(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), it.ID)
	assert.Equal(t, int64(3), it.LikeCount)
	assert.Equal(t, 40, it.DiscountPercent)

	it, err = store.FindCursor(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), it.LikeCount)

	_, err = store.FindCursor(ctx, 9)
	assert.ErrorIs(t, err, deals.ErrItemNotFound)
}

func TestFetchPage_MissingCursorServesFirstPage(t *testing.T) {
	db, svc := setupDealsTest(t)
	seedMixed(t, db)
	ctx := context.Background()

	first, err := svc.FetchPage(ctx, deals.Request{Filter: "discount", Limit: 3})
	require.NoError(t, err)
	gone := uint64(999)
	again, err := svc.FetchPage(ctx, deals.Request{Filter: "discount", Limit: 3, Cursor: &gone})
	require.NoError(t, err)
	assert.Equal(t, ids(first), ids(again))
	assert.Equal(t, *first.NextCursor, *again.NextCursor)
}

func TestFetchPage_RatingsAndReviews(t *testing.T) {
	db, svc := setupDealsTest(t)
	seed(t, db, seedBuy{ID: 1, DaysLeft: 2})
	seed(t, db, seedBuy{ID: 2, DaysLeft: 2})
	require.NoError(t, db.Create(&domain.Score{BuyID: 1, Five: 1, Three: 1}).Error)
	require.NoError(t, db.Create(&domain.Review{BuyID: 1, UserID: 1, Rating: 5}).Error)
	deleted := domain.Review{BuyID: 1, UserID: 2, Rating: 3}
	require.NoError(t, db.Create(&deleted).Error)
	require.NoError(t, db.Delete(&deleted).Error)

	page, err := svc.FetchPage(context.Background(), deals.Request{Filter: "newest", Limit: 10})
	require.NoError(t, err)
	require.Equal(t, []uint64{2, 1}, ids(page))
	assert.Equal(t, 0.0, page.Items[0].Rating)
	assert.Equal(t, int64(0), page.Items[0].ReviewCount)
	assert.Equal(t, 4.0, page.Items[1].Rating)
	assert.Equal(t, int64(1), page.Items[1].ReviewCount)
	assert.Equal(t, 2, page.Items[1].ExpireDate)
}

func TestGetDeal(t *testing.T) {
	db, svc := setupDealsTest(t)
	seed(t, db, seedBuy{ID: 4, DaysLeft: 0, Likes: 3, Discount: 20, Title: "Rice 10kg", Categories: []string{"food", "gift"}})
	require.NoError(t, db.Create(&domain.Score{BuyID: 4, Five: 2, One: 1}).Error)
	ctx := context.Background()

	d, err := svc.GetDeal(ctx, 4, nil)
	require.NoError(t, err)
	assert.Equal(t, "Rice 10kg", d.Title)
	assert.Equal(t, "2026-10-17", d.Deadline)
	assert.Equal(t, 0, d.ExpireDate)
	assert.Equal(t, int64(3), d.LikeCount)
	assert.Nil(t, d.IsLiked)
	assert.Equal(t, [5]int{2, 0, 0, 0, 1}, d.RatingCount)
	assert.InDelta(t, 11.0/3.0, d.Rating, 1e-9)
	assert.Equal(t, []string{"food", "gift"}, d.Category)

	viewer := uint64(1000)
	d, err = svc.GetDeal(ctx, 4, &viewer)
	require.NoError(t, err)
	require.NotNil(t, d.IsLiked)
	assert.True(t, *d.IsLiked)

	_, err = svc.GetDeal(ctx, 404, nil)
	assert.ErrorIs(t, err, deals.ErrDealNotFound)
}

func TestToggleLike(t *testing.T) {
	db, svc := setupDealsTest(t)
	seed(t, db, seedBuy{ID: 1, DaysLeft: 2})
	ctx := context.Background()

	liked, err := svc.ToggleLike(ctx, 7, 1)
	require.NoError(t, err)
	assert.True(t, liked)
	n, err := (&LikeStore{DB: db}).CountFor(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	liked, err = svc.ToggleLike(ctx, 7, 1)
	require.NoError(t, err)
	assert.False(t, liked)
	n, err = (&LikeStore{DB: db}).CountFor(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = svc.ToggleLike(ctx, 7, 99)
	assert.ErrorIs(t, err, deals.ErrDealNotFound)
}

func TestOpen_SQLiteDSN(t *testing.T) {
	db, err := Open("sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	assert.True(t, db.Migrator().HasTable(&domain.Buy{}))
}
