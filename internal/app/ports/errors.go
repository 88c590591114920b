package ports

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// ErrInvalidWorldSpec is returned by a WorldProvider that cannot host the requested world.
	ErrInvalidWorldSpec = errors.New("invalid world spec")

	// ErrObstacle is how a Body reports a move into a non-traversable tile.
	// The agent stays where it was.
	ErrObstacle = errors.New("obstacle blocked move")
	// ErrResourceAbsent is returned by Collect when nothing with that id is on the current tile.
	ErrResourceAbsent = errors.New("resource not on current tile")
)
