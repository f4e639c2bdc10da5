package conversation

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyReply reports a provider response without usable text.
	ErrEmptyReply = errors.New("completion returned empty reply")
	// ErrNoCompleter reports a controller built without a provider.
	ErrNoCompleter = errors.New("completion provider unavailable")
)

// RequestFailure records one failed completion. It never reaches the
// transcript; the fallback reply stands in for it there.
type RequestFailure struct {
	Turn  int
	Cause error
	At    time.Time
}

func (f *RequestFailure) Error() string {
	return fmt.Sprintf("completion for turn %d failed: %v", f.Turn, f.Cause)
}

func (f *RequestFailure) Unwrap() error {
	return f.Cause
}
