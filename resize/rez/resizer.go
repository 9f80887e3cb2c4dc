package rez

import (
	"image"

	"github.com/bamiaux/rez"

	"github.com/srlehn/drmfb/internal/errors"
	"github.com/srlehn/drmfb/resize"
)

func init() { resize.Register(`rez`, &Resizer{}) }

// Resizer uses "github.com/bamiaux/rez".
// Only *image.RGBA, *image.NRGBA, *image.YCbCr and *image.Gray sources are
// supported.
type Resizer struct{}

var _ resize.Resizer = (*Resizer)(nil)

func (r *Resizer) Resize(img image.Image, size image.Point) (image.Image, error) {
	m := image.NewRGBA(image.Rectangle{Max: size})
	if err := rez.Convert(m, img, rez.NewBilinearFilter()); err != nil {
		return nil, errors.New(err)
	}
	return m, nil
}
