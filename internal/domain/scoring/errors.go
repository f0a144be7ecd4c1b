package scoring

import "errors"

// ErrUnknownAccuracyScale is returned for an accuracy scale name that is
// neither percent nor fraction.
var ErrUnknownAccuracyScale = errors.New("unknown accuracy scale")
