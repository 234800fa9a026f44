package animation

import "errors"

var (
	ErrInvalidFPS           = errors.New("animation: fps must be at least 1")
	ErrFrameIndexOutOfRange = errors.New("animation: frame index does not fit the three digit file name pattern")
	ErrNoSession            = errors.New("animation: no render session attached")
	ErrNoEncoder            = errors.New("animation: no frame encoder attached")
)
