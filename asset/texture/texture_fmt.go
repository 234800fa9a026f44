package texture

// Format describes the precision of the source image a texture was decoded from.
type Format uint32

const (
	Luminance8 Format = iota
	Luminance16
	Rgba8
	Rgba16
)

func (f Format) String() string {
	switch f {
	case Luminance8:
		return "L8"
	case Luminance16:
		return "L16"
	case Rgba8:
		return "RGBA8"
	case Rgba16:
		return "RGBA16"
	}
	return "unknown"
}
