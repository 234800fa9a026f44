// Package encoder writes resolved RGB frames to lossless image files.
package encoder

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

var (
	ErrBufferSize = errors.New("encoder: frame buffer does not match frame dimensions")
)

// The supported output formats.
type Format uint8

const (
	Png Format = iota
	Bmp
	Tiff
)

func (f Format) String() string {
	switch f {
	case Png:
		return "png"
	case Bmp:
		return "bmp"
	case Tiff:
		return "tiff"
	}
	return "unknown"
}

// Parse an output format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "png":
		return Png, nil
	case "bmp":
		return Bmp, nil
	case "tiff", "tif":
		return Tiff, nil
	}
	return 0, fmt.Errorf("encoder: unsupported format %q", name)
}

// An Encoder writes tightly packed row-major RGB frames.
type Encoder interface {
	// Get the file extension (without the leading dot) for encoded frames.
	Ext() string

	// Encode a w x h RGB frame and write it to path.
	Encode(path string, rgb []uint8, w, h uint32) error
}

type imageEncoder struct {
	format Format
	encode func(io.Writer, image.Image) error
}

// Create an encoder for the given format.
func New(format Format) (Encoder, error) {
	enc := &imageEncoder{format: format}
	switch format {
	case Png:
		pngEnc := &png.Encoder{CompressionLevel: png.BestSpeed}
		enc.encode = pngEnc.Encode
	case Bmp:
		enc.encode = bmp.Encode
	case Tiff:
		enc.encode = func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}
	default:
		return nil, fmt.Errorf("encoder: unsupported format %d", format)
	}
	return enc, nil
}

func (enc *imageEncoder) Ext() string {
	return enc.format.String()
}

func (enc *imageEncoder) Encode(path string, rgb []uint8, w, h uint32) error {
	img, err := ToImage(rgb, w, h)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("encoder: %w", err)
	}

	bw := bufio.NewWriter(f)
	if err = enc.encode(bw, img); err == nil {
		err = bw.Flush()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("encoder: could not write %s frame to %s: %w", enc.format, path, err)
	}
	return nil
}

// Wrap a tightly packed RGB buffer into an opaque image.
func ToImage(rgb []uint8, w, h uint32) (*image.NRGBA, error) {
	if uint64(len(rgb)) != uint64(w)*uint64(h)*3 {
		return nil, ErrBufferSize
	}

	img := image.NewNRGBA(image.Rect(0, 0, int(w), int(h)))
	for i, o := 0, 0; i < len(rgb); i, o = i+3, o+4 {
		img.Pix[o] = rgb[i]
		img.Pix[o+1] = rgb[i+1]
		img.Pix[o+2] = rgb[i+2]
		img.Pix[o+3] = 0xff
	}
	return img, nil
}
