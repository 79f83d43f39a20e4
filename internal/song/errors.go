package song

import (
	"errors"
	"fmt"
)

// ErrFormat is matched by every *FormatError via errors.Is.
var ErrFormat = errors.New("song: invalid format")

// FormatError reports a malformed song file. Offset is the 1-based index of
// the offending token, or 0 when the input ended early.
type FormatError struct {
	Offset int
	Token  string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Offset == 0 {
		return fmt.Sprintf("song: %s", e.Reason)
	}
	return fmt.Sprintf("song: token %d %q: %s", e.Offset, e.Token, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool { return target == ErrFormat }
