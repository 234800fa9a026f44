package scene

import (
	"github.com/ms-elk/rtcamp11/asset/texture"
	"github.com/ms-elk/rtcamp11/types"
)

// A diffuse surface material with optional emission.
type Material struct {
	Name string

	BaseColor    types.Vec3
	BaseColorTex *texture.Texture

	Emissive types.Vec3
}

// Get the diffuse reflectance at a texture coordinate.
func (m *Material) Albedo(uv types.Vec2) types.Vec3 {
	if m.BaseColorTex == nil {
		return m.BaseColor
	}
	return m.BaseColor.MulVec(m.BaseColorTex.Sample(uv).Vec3())
}

// Returns true if the material emits light.
func (m *Material) IsEmissive() bool {
	return m.Emissive.MaxComponent() > 0
}
