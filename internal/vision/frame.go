// Package vision holds the frame-level image processing used by room analysis:
// grayscale conversion, Sobel edge detection and floor-plane estimation.
package vision

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
)

// ErrInvalidFrame is returned for frames with bad dimensions or a pixel buffer of
// the wrong size.
var ErrInvalidFrame = errors.New("invalid frame")

// Frame is a raw RGBA pixel buffer, 4 bytes per pixel, rows top to bottom.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewFrame allocates a zeroed (black, transparent) frame.
func NewFrame(width, height int) Frame {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return Frame{Width: width, Height: height, Pix: make([]uint8, width*height*4)}
}

// Validate checks the frame dimensions against its buffer. Frames smaller than
// 3x3 have no interior pixels for the Sobel operator and are rejected.
func (f Frame) Validate() error {
	if f.Width < 3 || f.Height < 3 {
		return fmt.Errorf("%w: %dx%d is smaller than 3x3", ErrInvalidFrame, f.Width, f.Height)
	}
	if want := f.Width * f.Height * 4; len(f.Pix) != want {
		return fmt.Errorf("%w: buffer has %d bytes, want %d", ErrInvalidFrame, len(f.Pix), want)
	}
	return nil
}

// Set writes an opaque pixel.
func (f Frame) Set(x, y int, r, g, b uint8) {
	i := (y*f.Width + x) * 4
	f.Pix[i] = r
	f.Pix[i+1] = g
	f.Pix[i+2] = b
	f.Pix[i+3] = 255
}

// Fill paints the rectangle [x0,x1)x[y0,y1), clipped to the frame.
func (f Frame) Fill(x0, y0, x1, y1 int, r, g, b uint8) {
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, f.Width), min(y1, f.Height)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			f.Set(x, y, r, g, b)
		}
	}
}

// Gray converts the frame to luma with weights 0.299R + 0.587G + 0.114B.
// Alpha is ignored.
func (f Frame) Gray() []float64 {
	gray := make([]float64, f.Width*f.Height)
	for i := range gray {
		p := f.Pix[i*4 : i*4+3]
		gray[i] = 0.299*float64(p[0]) + 0.587*float64(p[1]) + 0.114*float64(p[2])
	}
	return gray
}

// FromImage copies any image.Image into an RGBA frame.
func FromImage(img image.Image) Frame {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != b.Dx()*4 || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	pix := make([]uint8, len(rgba.Pix))
	copy(pix, rgba.Pix)
	return Frame{Width: b.Dx(), Height: b.Dy(), Pix: pix}
}
