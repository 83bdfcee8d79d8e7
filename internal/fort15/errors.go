package fort15

import (
	"errors"
	"fmt"
)

// ErrMissingTiming marks a run-control file whose output blocks appear
// before DT, STATIM, RNDAY, and DRAMP have all been seen; observation
// windows cannot be computed without them.
var ErrMissingTiming = errors.New("time parameters not yet read")

// ParseError reports a line whose value text cannot be interpreted.
type ParseError struct {
	Path string
	Line int
	What string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s:%d: %s: %v", e.Path, e.Line, e.What, e.Err)
	}
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.What)
}

func (e *ParseError) Unwrap() error { return e.Err }
