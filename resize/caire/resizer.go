// Package caire resizes with seam carving (content-aware image resizing).
// It is slow and meant for small size changes.
package caire

import (
	"image"

	"github.com/esimov/caire"
	"golang.org/x/image/draw"

	"github.com/srlehn/drmfb/internal/errors"
	"github.com/srlehn/drmfb/resize"
)

func init() { resize.Register(`caire`, &Resizer{}) }

type Resizer struct{}

var _ resize.Resizer = (*Resizer)(nil)

func (r *Resizer) Resize(img image.Image, size image.Point) (image.Image, error) {
	p := &caire.Processor{
		BlurRadius:     1,
		SobelThreshold: 4,
		NewWidth:       size.X,
		NewHeight:      size.Y,
	}
	nimg, ok := img.(*image.NRGBA)
	if !ok {
		b := img.Bounds()
		nimg = image.NewNRGBA(image.Rectangle{Max: b.Size()})
		draw.Draw(nimg, nimg.Bounds(), img, b.Min, draw.Src)
	}
	m, err := p.Resize(nimg)
	if err != nil {
		return nil, errors.New(err)
	}
	return m, nil
}
