package lib

import "fmt"

// WrapError wraps cause underneath a package-level sentinel so callers can
// both errors.Is(err, sentinel) and see the underlying cause in the message.
func WrapError(sentinel, cause error) error {
	return fmt.Errorf("%w: %w", sentinel, cause)
}
