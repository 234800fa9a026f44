package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"

	"github.com/chewxy/math32"
	"github.com/ms-elk/rtcamp11/asset"
	"github.com/ms-elk/rtcamp11/types"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// A texture image and its metadata. Texel data is stored as linear RGBA
// float32 values in row-major order starting at the top-left corner.
type Texture struct {
	Format Format

	Width  uint32
	Height uint32

	Data []float32
}

// Create a new texture from a Resource. If srgb is true the color channels
// are converted from the sRGB transfer curve to linear values.
func New(res *asset.Resource, srgb bool) (*Texture, error) {
	data, err := res.ReadAll()
	if err != nil {
		return nil, err
	}
	tex, err := Decode(data, srgb)
	if err != nil {
		return nil, fmt.Errorf("texture: could not decode %s: %w", res.Path(), err)
	}
	return tex, nil
}

// Decode an encoded png, jpeg, bmp, tiff or webp image.
func Decode(data []byte, srgb bool) (*Texture, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return FromImage(img, srgb), nil
}

// Convert an image.Image to a texture.
func FromImage(img image.Image, srgb bool) *Texture {
	bounds := img.Bounds()
	tex := &Texture{
		Format: formatOf(img),
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Data:   make([]float32, bounds.Dx()*bounds.Dy()*4),
	}

	offset := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
			r, g, b := float32(c.R)/0xffff, float32(c.G)/0xffff, float32(c.B)/0xffff
			if srgb {
				r, g, b = SRGBToLinear(r), SRGBToLinear(g), SRGBToLinear(b)
			}
			tex.Data[offset] = r
			tex.Data[offset+1] = g
			tex.Data[offset+2] = b
			tex.Data[offset+3] = float32(c.A) / 0xffff
			offset += 4
		}
	}

	return tex
}

func formatOf(img image.Image) Format {
	switch img.ColorModel() {
	case color.GrayModel:
		return Luminance8
	case color.Gray16Model:
		return Luminance16
	case color.RGBA64Model, color.NRGBA64Model:
		return Rgba16
	}
	return Rgba8
}

// Convert an sRGB encoded value to linear space.
func SRGBToLinear(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math32.Pow((v+0.055)/1.055, 2.4)
}

// Fetch the texel at (x, y) wrapping coordinates outside the image.
func (t *Texture) texel(x, y int) types.Vec4 {
	w, h := int(t.Width), int(t.Height)
	x, y = ((x%w)+w)%w, ((y%h)+h)%h
	o := (y*w + x) * 4
	return types.XYZW(t.Data[o], t.Data[o+1], t.Data[o+2], t.Data[o+3])
}

// Sample the texture at uv using bilinear filtering and repeat wrapping.
// The v axis points down as in glTF.
func (t *Texture) Sample(uv types.Vec2) types.Vec4 {
	if t.Width == 0 || t.Height == 0 {
		return types.XYZW(1, 1, 1, 1)
	}

	fx := uv[0]*float32(t.Width) - 0.5
	fy := uv[1]*float32(t.Height) - 0.5
	x0, y0 := math32.Floor(fx), math32.Floor(fy)
	tx, ty := fx-x0, fy-y0
	ix, iy := int(x0), int(y0)

	top := t.texel(ix, iy).Mul(1 - tx).Add(t.texel(ix+1, iy).Mul(tx))
	bottom := t.texel(ix, iy+1).Mul(1 - tx).Add(t.texel(ix+1, iy+1).Mul(tx))
	return top.Mul(1 - ty).Add(bottom.Mul(ty))
}
