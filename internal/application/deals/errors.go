package deals

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidLimit = errors.New("limit must be a positive number")
	ErrDealNotFound = errors.New("Deal not found")

	// ErrItemNotFound is returned by stores when the requested buy does not exist.
	ErrItemNotFound = errors.New("buy not found")
)

// InvalidFilterError reports a filter name that is not registered.
type InvalidFilterError struct {
	Filter string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("Invalid filter: %q", e.Filter)
}
