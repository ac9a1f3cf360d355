package rc

import "errors"

var (
	// ErrNilSource indicates a build was started without a source.
	ErrNilSource = errors.New("rc: nil source")
)
