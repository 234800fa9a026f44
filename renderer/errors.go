package renderer

import (
	"errors"
	"fmt"
)

var (
	ErrNoTracers            = errors.New("renderer: no tracers attached")
	ErrSceneNotDefined      = errors.New("renderer: no scene defined")
	ErrCameraNotDefined     = errors.New("renderer: no camera defined")
	ErrLightSamplerNotBuilt = errors.New("renderer: light sampler has not been built")
	ErrInvalidFrameSize     = errors.New("renderer: frame dimensions must be at least 1x1")
	ErrArenaExhausted       = errors.New("renderer: memory arena exhausted")
	ErrClosed               = errors.New("renderer: session is closed")
)

// SceneLoadError is returned when a scene file cannot be read or parsed.
type SceneLoadError struct {
	Path string
	Err  error
}

func (e *SceneLoadError) Error() string {
	return fmt.Sprintf("renderer: could not load scene %q: %v", e.Path, e.Err)
}

func (e *SceneLoadError) Unwrap() error {
	return e.Err
}
