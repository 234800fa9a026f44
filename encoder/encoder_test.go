package encoder

import (
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestParseFormat(t *testing.T) {
	type spec struct {
		in     string
		exp    Format
		expErr bool
	}
	specs := []spec{
		spec{"png", Png, false},
		spec{"PNG", Png, false},
		spec{"bmp", Bmp, false},
		spec{"tif", Tiff, false},
		spec{"tiff", Tiff, false},
		spec{"jpeg", 0, true},
	}

	for index, s := range specs {
		f, err := ParseFormat(s.in)
		if s.expErr {
			if err == nil {
				t.Fatalf("[spec %d] expected an error", index)
			}
			continue
		}
		if err != nil {
			t.Fatalf("[spec %d] %v", index, err)
		}
		if f != s.exp {
			t.Fatalf("[spec %d] expected format %s; got %s", index, s.exp, f)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	const w, h = 3, 2
	rgb := []uint8{
		255, 0, 0, 0, 255, 0, 0, 0, 255,
		10, 20, 30, 40, 50, 60, 70, 80, 90,
	}

	dir := t.TempDir()
	for _, format := range []Format{Png, Bmp, Tiff} {
		enc, err := New(format)
		if err != nil {
			t.Fatal(err)
		}

		path := filepath.Join(dir, "000."+enc.Ext())
		if err = enc.Encode(path, rgb, w, h); err != nil {
			t.Fatalf("[%s] %v", format, err)
		}

		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		img, name, err := image.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("[%s] %v", format, err)
		}
		if name != format.String() {
			t.Fatalf("[%s] expected decoded format %q; got %q", format, format, name)
		}
		if img.Bounds().Dx() != w || img.Bounds().Dy() != h {
			t.Fatalf("[%s] expected %dx%d image; got %v", format, w, h, img.Bounds())
		}

		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, g, b, a := img.At(x, y).RGBA()
				off := (y*w + x) * 3
				if uint8(r>>8) != rgb[off] || uint8(g>>8) != rgb[off+1] || uint8(b>>8) != rgb[off+2] || a != 0xffff {
					t.Fatalf("[%s] pixel (%d, %d) mismatch", format, x, y)
				}
			}
		}
	}
}

func TestEncodeRejectsBadBuffer(t *testing.T) {
	enc, _ := New(Png)
	path := filepath.Join(t.TempDir(), "000.png")
	if err := enc.Encode(path, make([]uint8, 5), 2, 2); err != ErrBufferSize {
		t.Fatalf("expected error %v; got %v", ErrBufferSize, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected no file to be written")
	}
}

func TestEncodeFailureRemovesFile(t *testing.T) {
	encErr := errors.New("disk full")
	enc := &imageEncoder{
		format: Png,
		encode: func(w io.Writer, img image.Image) error {
			w.Write(make([]byte, 8192))
			return encErr
		},
	}

	path := filepath.Join(t.TempDir(), "000.png")
	if err := enc.Encode(path, make([]uint8, 2*2*3), 2, 2); !errors.Is(err, encErr) {
		t.Fatalf("expected error %v; got %v", encErr, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected partially written file to be removed")
	}
}
