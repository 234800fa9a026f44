package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ms-elk/rtcamp11/asset"
	"github.com/ms-elk/rtcamp11/types"
	"golang.org/x/image/bmp"
)

func TestRgba8Texture(t *testing.T) {
	imgRes, err := mockImage(t, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	if err != nil {
		t.Fatal(err)
	}

	tex, err := New(imgRes, false)
	if err != nil {
		t.Fatal(err)
	}

	if tex.Width != 1 || tex.Height != 1 {
		t.Fatalf("expected tex dims to be 1x1; got %dx%d", tex.Width, tex.Height)
	}

	if tex.Format != Rgba8 {
		t.Fatalf("expected tex format to be %s; got %s", Rgba8, tex.Format)
	}

	expLen := 4
	if len(tex.Data) != expLen {
		t.Fatalf("expected tex data len to be %d; got %d", expLen, len(tex.Data))
	}
}

func TestRgba16Texture(t *testing.T) {
	imgRes, err := mockImage(t, image.NewRGBA64(image.Rect(0, 0, 2, 1)))
	if err != nil {
		t.Fatal(err)
	}

	tex, err := New(imgRes, false)
	if err != nil {
		t.Fatal(err)
	}

	if tex.Format != Rgba16 {
		t.Fatalf("expected tex format to be %s; got %s", Rgba16, tex.Format)
	}

	expLen := 2 * 4
	if len(tex.Data) != expLen {
		t.Fatalf("expected tex data len to be %d; got %d", expLen, len(tex.Data))
	}
}

func TestStreamHttpTexture(t *testing.T) {
	serverFn := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/texture.bmp" {
			bmp.Encode(w, image.NewRGBA(image.Rect(0, 0, 1, 1)))
		} else {
			http.NotFound(w, r)
		}
	})
	server := httptest.NewServer(serverFn)
	defer server.Close()

	imgRes, err := asset.NewResource(server.URL+"/texture.bmp", nil)
	if err != nil {
		t.Fatal(err)
	}

	tex, err := New(imgRes, true)
	if err != nil {
		t.Fatal(err)
	}

	if tex.Width != 1 || tex.Height != 1 {
		t.Fatalf("expected tex dims to be 1x1; got %dx%d", tex.Width, tex.Height)
	}
}

func TestSampleAndSRGB(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{0, 0, 0, 255})
	img.Set(1, 0, color.NRGBA{255, 255, 255, 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	tex, err := Decode(buf.Bytes(), true)
	if err != nil {
		t.Fatal(err)
	}

	// Texel centers return exact values
	if v := tex.Sample(types.XY(0.25, 0.5)); v[0] != 0 {
		t.Fatalf("expected black texel; got %v", v)
	}
	if v := tex.Sample(types.XY(0.75, 0.5)); v[0] != 1 || v[3] != 1 {
		t.Fatalf("expected white texel; got %v", v)
	}

	// Halfway between the centers
	if v := tex.Sample(types.XY(0.5, 0.5)); v[0] < 0.49 || v[0] > 0.51 {
		t.Fatalf("expected bilinear midpoint close to 0.5; got %v", v)
	}

	if v := SRGBToLinear(0.5); v < 0.21 || v > 0.22 {
		t.Fatalf("expected sRGB 0.5 to map to ~0.214; got %f", v)
	}
}

func mockImage(t *testing.T, img image.Image) (res *asset.Resource, err error) {
	imgFile := filepath.Join(t.TempDir(), "test.png")
	f, err := os.Create(imgFile)
	if err != nil {
		return nil, err
	}

	err = png.Encode(f, img)
	f.Close()
	if err != nil {
		return nil, err
	}

	return asset.NewResource(imgFile, nil)
}
