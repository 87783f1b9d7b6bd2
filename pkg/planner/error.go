package planner

import "errors"

// ErrModelNotBuilt means a summary or a solve was requested before the model was assembled.
var ErrModelNotBuilt = errors.New("model not built")
