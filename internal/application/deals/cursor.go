package deals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Boundary is a resolved cursor: the current group, key and id of the row that opens the page.
type Boundary struct {
	Group int
	Key   interface{}
	ID    ItemID
}

// CursorResolver turns a cursor id back into a Boundary using current data.
// The item store returns the like count with the cursor row, so every filter costs one read.
type CursorResolver struct {
	Items ItemStore
}

// Resolve returns nil for the first page. A cursor whose buy has been deleted also
// yields nil so the caller restarts from the top instead of failing.
func (r CursorResolver) Resolve(ctx context.Context, spec FilterSpec, policy OpenPolicy, today time.Time, cursor *ItemID) (*Boundary, error) {
	if cursor == nil {
		return nil, nil
	}
	item, err := r.Items.FindCursor(ctx, *cursor)
	if errors.Is(err, ErrItemNotFound) {
		log.Debug().Uint64("cursor", *cursor).Str("filter", spec.Name).Msg("deals: cursor item gone, serving first page")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve cursor %d: %w", *cursor, err)
	}
	return &Boundary{
		Group: policy.Classify(item.Deadline, today),
		Key:   spec.Key(item),
		ID:    item.ID,
	}, nil
}
