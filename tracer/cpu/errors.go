package cpu

import "errors"

var (
	ErrNotInitialized  = errors.New("cpu tracer: tracer has not been initialized")
	ErrNoSceneData     = errors.New("cpu tracer: no scene data available")
	ErrNoCamera        = errors.New("cpu tracer: no camera data available")
	ErrBlockOutOfRange = errors.New("cpu tracer: block request exceeds frame bounds")
)
