package raster

import (
	"image"
	"image/color"
	"image/png"
	"io"
)

// Buffer is a width x height grid of non-premultiplied RGBA pixels.
// Buffers are immutable once a Rasterizer returns them.
type Buffer struct {
	width  int
	height int
	data   []uint8 // RGBA, 4 bytes per pixel
}

// NewBuffer creates a transparent buffer.
func NewBuffer(width, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Buffer{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// FromImage copies any image into a new buffer.
func FromImage(img image.Image) *Buffer {
	b := img.Bounds()
	buf := NewBuffer(b.Dx(), b.Dy())
	if rgba, ok := img.(*image.NRGBA); ok {
		for y := 0; y < buf.height; y++ {
			row := rgba.Pix[rgba.PixOffset(b.Min.X, b.Min.Y+y):]
			copy(buf.data[y*buf.width*4:(y+1)*buf.width*4], row[:buf.width*4])
		}
		return buf
	}
	for y := 0; y < buf.height; y++ {
		for x := 0; x < buf.width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			i := (y*buf.width + x) * 4
			buf.data[i+0] = c.R
			buf.data[i+1] = c.G
			buf.data[i+2] = c.B
			buf.data[i+3] = c.A
		}
	}
	return buf
}

// Width returns the width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the height in pixels.
func (b *Buffer) Height() int { return b.height }

// Pix returns the raw pixel data, row-major, 4 bytes per pixel. The slice
// must not be modified.
func (b *Buffer) Pix() []uint8 { return b.data }

// Alpha returns the alpha of the pixel at (x, y), or 0 outside the buffer.
func (b *Buffer) Alpha(x, y int) uint8 {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return 0
	}
	return b.data[(y*b.width+x)*4+3]
}

// At implements the image.Image interface.
func (b *Buffer) At(x, y int) color.Color {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return color.NRGBA{}
	}
	i := (y*b.width + x) * 4
	return color.NRGBA{R: b.data[i], G: b.data[i+1], B: b.data[i+2], A: b.data[i+3]}
}

// Bounds implements the image.Image interface.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// ColorModel implements the image.Image interface.
func (b *Buffer) ColorModel() color.Model {
	return color.NRGBAModel
}

// ToImage returns a copy of the buffer as an image.NRGBA.
func (b *Buffer) ToImage() *image.NRGBA {
	img := image.NewNRGBA(b.Bounds())
	copy(img.Pix, b.data)
	return img
}

// EncodePNG writes the buffer as a PNG image.
func (b *Buffer) EncodePNG(w io.Writer) error {
	return png.Encode(w, b.ToImage())
}
