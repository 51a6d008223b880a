package persist

import (
	"fmt"

	"github.com/teranos/twitgraph/errors"
)

// HandlingError reports that a message could not be persisted. The message
// is entirely unpersisted; ancestors handled before the failure may still
// have been committed.
type HandlingError struct {
	MessageID string
	Cause     error
}

func (e *HandlingError) Error() string {
	return fmt.Sprintf("handle message %s: %v", e.MessageID, e.Cause)
}

func (e *HandlingError) Unwrap() error { return e.Cause }

// Is makes errors.Is(err, errors.ErrHandling) hold for every HandlingError.
func (e *HandlingError) Is(target error) bool {
	return target == errors.ErrHandling
}
