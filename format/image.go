package format

import (
	"image"
	"image/color"

	"github.com/srlehn/drmfb/internal/errors"
)

// Image is a draw.Image over pixel memory in a kernel pixel format,
// e.g. a mapped dumb buffer. Pixels are stored little endian.
type Image struct {
	Pix    []byte
	Stride int // bytes per row
	Rect   image.Rectangle
	Format FourCC

	bytesPP int
}

// NewImage wraps pix. pix must hold Rect.Dy() rows of stride bytes.
func NewImage(pix []byte, stride int, rect image.Rectangle, f FourCC) (*Image, error) {
	bpp := int(f.BitsPerPixel()) / 8
	if bpp == 0 {
		return nil, errors.Errorf(`no pixel layout for format %s`, f)
	}
	if stride < rect.Dx()*bpp {
		return nil, errors.Errorf(`stride %d too small for width %d`, stride, rect.Dx())
	}
	if need := (rect.Dy()-1)*stride + rect.Dx()*bpp; rect.Dy() > 0 && len(pix) < need {
		return nil, errors.Errorf(`pixel buffer too small: %d < %d`, len(pix), need)
	}
	return &Image{Pix: pix, Stride: stride, Rect: rect, Format: f, bytesPP: bpp}, nil
}

func (p *Image) ColorModel() color.Model { return color.RGBAModel }
func (p *Image) Bounds() image.Rectangle { return p.Rect }

func (p *Image) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*p.bytesPP
}

func (p *Image) At(x, y int) color.Color { return p.RGBAAt(x, y) }

func (p *Image) RGBAAt(x, y int) color.RGBA {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return color.RGBA{}
	}
	s := p.Pix[p.PixOffset(x, y):]
	switch p.Format {
	case XBGR8888:
		return color.RGBA{R: s[0], G: s[1], B: s[2], A: 0xff}
	case XRGB8888:
		return color.RGBA{R: s[2], G: s[1], B: s[0], A: 0xff}
	case ARGB8888:
		return color.RGBA{R: s[2], G: s[1], B: s[0], A: s[3]}
	case BGR888:
		return color.RGBA{R: s[0], G: s[1], B: s[2], A: 0xff}
	case BGR565:
		v := uint16(s[0]) | uint16(s[1])<<8
		r, g, b := uint8(v&0x1f), uint8(v>>5&0x3f), uint8(v>>11)
		return color.RGBA{R: r<<3 | r>>2, G: g<<2 | g>>4, B: b<<3 | b>>2, A: 0xff}
	}
	return color.RGBA{}
}

func (p *Image) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	p.SetRGBA(x, y, color.RGBAModel.Convert(c).(color.RGBA))
}

// SetRGBA stores c. Formats without alpha store the premultiplied color
// as if composed on black.
func (p *Image) SetRGBA(x, y int, c color.RGBA) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	s := p.Pix[p.PixOffset(x, y):]
	switch p.Format {
	case XBGR8888:
		s[0], s[1], s[2], s[3] = c.R, c.G, c.B, 0xff
	case XRGB8888:
		s[0], s[1], s[2], s[3] = c.B, c.G, c.R, 0xff
	case ARGB8888:
		s[0], s[1], s[2], s[3] = c.B, c.G, c.R, c.A
	case BGR888:
		s[0], s[1], s[2] = c.R, c.G, c.B
	case BGR565:
		v := uint16(c.R>>3) | uint16(c.G>>2)<<5 | uint16(c.B>>3)<<11
		s[0], s[1] = byte(v), byte(v>>8)
	}
}
