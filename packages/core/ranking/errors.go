package ranking

import "errors"

// ErrInvalidArgument is wrapped by every error returned from this package.
var ErrInvalidArgument = errors.New("invalid argument")
