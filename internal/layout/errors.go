package layout

import "errors"

// ErrOutOfBounds is returned when a position or extent falls outside the
// grid.  Drawing operations never return it; they silently ignore
// off-grid positions because drag painting routinely overshoots.
var ErrOutOfBounds = errors.New("position out of bounds")

// ErrInvalidGroupSize is returned by Merge when the team size is not 2, 3
// or 4 or does not match the number of distinct positions.
var ErrInvalidGroupSize = errors.New("invalid group size")

// ErrNotAllSeats is returned by Merge when a selected position is not a seat.
var ErrNotAllSeats = errors.New("not all positions are seats")

// ErrAlreadyGrouped is returned by Merge when a selected seat already
// belongs to another group.
var ErrAlreadyGrouped = errors.New("seat already grouped")

// ErrGroupNotFound is returned when a group id does not exist in the layout.
var ErrGroupNotFound = errors.New("group not found")

// ErrCorruptLayout is returned by Deserialize when a document violates the
// layout's referential invariants.
var ErrCorruptLayout = errors.New("corrupt layout")
