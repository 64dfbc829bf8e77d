package window

import (
	"errors"
	"fmt"
)

var errMismatchedLength = errors.New("window: coefficient count differs from block length")

func validateLength(size int) error {
	if size <= 0 {
		return fmt.Errorf("window: length must be positive: %d", size)
	}
	return nil
}
