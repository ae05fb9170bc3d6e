package deals

import (
	"context"
	"fmt"
)

// Histogram holds rating counts; index 0 is one star, index 4 five stars.
type Histogram [5]int

func (h Histogram) Total() int {
	n := 0
	for _, c := range h {
		n += c
	}
	return n
}

// Average is the count-weighted mean rating, 0 when nobody rated.
func (h Histogram) Average() float64 {
	total := h.Total()
	if total == 0 {
		return 0
	}
	sum := 0
	for i, c := range h {
		sum += (i + 1) * c
	}
	return float64(sum) / float64(total)
}

// FiveToOne returns the counts ordered five stars first, the order the client renders.
func (h Histogram) FiveToOne() [5]int {
	return [5]int{h[4], h[3], h[2], h[1], h[0]}
}

// RatingAggregator loads histograms for a whole page in one call.
type RatingAggregator struct {
	Ratings RatingStore
}

func (a RatingAggregator) Load(ctx context.Context, rows []Row) (map[ItemID]Histogram, error) {
	if len(rows) == 0 {
		return map[ItemID]Histogram{}, nil
	}
	ids := make([]ItemID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	hs, err := a.Ratings.Histograms(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load rating histograms: %w", err)
	}
	return hs, nil
}
