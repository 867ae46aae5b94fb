package repositories

import "errors"

var (
	// ErrNotFound is returned when a record does not exist or is not visible
	// to the requesting user. Ownership mismatches are deliberately
	// indistinguishable from missing rows.
	ErrNotFound = errors.New("record not found")

	// ErrItemNotInWorkout is returned by Reorder when a submitted item id does
	// not belong to the target workout. The whole reorder is rejected.
	ErrItemNotInWorkout = errors.New("item does not belong to workout")
)
