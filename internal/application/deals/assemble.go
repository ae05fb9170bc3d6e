package deals

import "time"

// ItemView is one deal card. Field names match what the web client already reads.
type ItemView struct {
	BuyID           ItemID  `json:"buyId"`
	ProductName     string  `json:"productName"`
	ProductImg      string  `json:"productImg"`
	ProductPrice    int     `json:"productPrice"`
	DiscountPrice   int     `json:"discountPrice"`
	DiscountPercent int     `json:"discountPercent"`
	Skeleton        int     `json:"skeleton"`
	NowCount        int     `json:"nowCount"`
	ExpireDate      int     `json:"expireDate"`
	LikeCount       int64   `json:"likeCount"`
	IsLiked         bool    `json:"isLiked"`
	Rating          float64 `json:"rating"`
	ReviewCount     int64   `json:"reviewCount"`
}

// Page is one page of a cursor chain. NextCursor is nil on the last page.
type Page struct {
	Items      []ItemView `json:"products"`
	NextCursor *ItemID    `json:"cursor"`
}

// Assemble trims the over-fetched rows to limit and derives the next cursor from the extra row.
func Assemble(rows []Row, limit int, ratings map[ItemID]Histogram, withViewer bool, today time.Time) *Page {
	page := &Page{Items: make([]ItemView, 0, min(len(rows), limit))}
	if len(rows) > limit {
		next := rows[limit].ID
		page.NextCursor = &next
		rows = rows[:limit]
	}
	for _, r := range rows {
		page.Items = append(page.Items, ItemView{
			BuyID:           r.ID,
			ProductName:     r.ProductName,
			ProductImg:      r.ProductImg,
			ProductPrice:    r.OriginalPrice,
			DiscountPrice:   r.SalePrice,
			DiscountPercent: r.DiscountPercent,
			Skeleton:        r.Skeleton,
			NowCount:        r.NowCount,
			ExpireDate:      DaysRemaining(r.Deadline, today),
			LikeCount:       r.LikeCount,
			IsLiked:         withViewer && r.IsLiked,
			Rating:          ratings[r.ID].Average(),
			ReviewCount:     r.ReviewCount,
		})
	}
	return page
}
