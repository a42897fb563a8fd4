package lambda

import "errors"

// ErrUnknownHandler is returned for a handler name no operation matches.
var ErrUnknownHandler = errors.New("unknown lambda handler")
