package normalize

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	// WebP is not registered by imaging; logos are occasionally served as WebP.
	_ "golang.org/x/image/webp"
)

var (
	// ErrDecode indicates the source bytes are not a supported image encoding.
	ErrDecode = errors.New("decode image")
	// ErrInvalidDimension indicates unusable canvas or margin values.
	ErrInvalidDimension = errors.New("invalid dimension")
)

// Canvas is the fixed output size. The background is always fully transparent.
type Canvas struct {
	Width  int
	Height int
}

// Options controls a normalization run.
type Options struct {
	Canvas Canvas
	Margin int // Pixels reserved on each dimension, split between both edges

	// AllowUpscale lets sources smaller than the available area grow to fit.
	AllowUpscale bool
}

// Result holds the output of a normalization run.
type Result struct {
	Data      []byte // encoded PNG, exactly Canvas.Width x Canvas.Height
	Width     int
	Height    int
	SrcWidth  int
	SrcHeight int
	Bounds    image.Rectangle // where the scaled source was placed
}

// Validate checks the canvas against the margin.
func (c Canvas) Validate(margin int) error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: canvas %dx%d", ErrInvalidDimension, c.Width, c.Height)
	}
	if margin < 0 || margin >= min(c.Width, c.Height) {
		return fmt.Errorf("%w: margin %d for canvas %dx%d", ErrInvalidDimension, margin, c.Width, c.Height)
	}
	return nil
}

// Run decodes src, fits it inside the canvas minus the margin, centers it on a
// transparent background and encodes the result as PNG.
func Run(src []byte, opts Options) (*Result, error) {
	// 1. Validate canvas
	if err := opts.Canvas.Validate(opts.Margin); err != nil {
		return nil, err
	}

	// 2. Decode. EXIF orientation is ignored; pixels are used as stored.
	img, err := imaging.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	srcBounds := img.Bounds()
	if srcBounds.Dx() <= 0 || srcBounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}

	// 3. Scale and composite
	canvas, placed := compose(img, opts)

	// 4. Encode with fixed settings so output is reproducible
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	return &Result{
		Data:      buf.Bytes(),
		Width:     opts.Canvas.Width,
		Height:    opts.Canvas.Height,
		SrcWidth:  srcBounds.Dx(),
		SrcHeight: srcBounds.Dy(),
		Bounds:    placed,
	}, nil
}

func compose(img image.Image, opts Options) (*image.NRGBA, image.Rectangle) {
	c := opts.Canvas
	b := img.Bounds()

	w, h := FitSize(b.Dx(), b.Dy(), c.Width-opts.Margin, c.Height-opts.Margin, opts.AllowUpscale)

	var scaled *image.NRGBA
	if w == b.Dx() && h == b.Dy() {
		scaled = imaging.Clone(img)
	} else {
		scaled = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	out := imaging.New(c.Width, c.Height, color.NRGBA{0, 0, 0, 0})
	pos := Offset(c, w, h)
	placed := image.Rectangle{Min: pos, Max: pos.Add(image.Pt(w, h))}

	// Porter-Duff "over": transparent source pixels leave the canvas untouched.
	draw.Draw(out, placed, scaled, image.Point{}, draw.Over)

	return out, placed
}

// FitSize returns the largest size with the aspect ratio of w x h that fits
// inside maxW x maxH. Without upscale, sizes already inside the box are
// returned unchanged. Results are rounded to the nearest pixel and never
// drop below 1.
func FitSize(w, h, maxW, maxH int, upscale bool) (int, int) {
	if w <= 0 || h <= 0 || maxW <= 0 || maxH <= 0 {
		return w, h
	}
	if !upscale && w <= maxW && h <= maxH {
		return w, h
	}

	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := clamp(int(math.Round(float64(w)*scale)), 1, maxW)
	nh := clamp(int(math.Round(float64(h)*scale)), 1, maxH)
	return nw, nh
}

// Offset returns the top-left point that centers a w x h image on the canvas.
// An odd leftover pixel goes to the top/left padding.
func Offset(c Canvas, w, h int) image.Point {
	return image.Pt((c.Width-w+1)/2, (c.Height-h+1)/2)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
