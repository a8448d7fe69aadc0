package progression

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned when an input violates a precondition,
// such as a negative experience gain or a level below 1.
var ErrInvalidArgument = errors.New("invalid argument")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
