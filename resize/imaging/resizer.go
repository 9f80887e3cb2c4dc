package imaging

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/srlehn/drmfb/resize"
)

func init() { resize.Register(`imaging`, &Resizer{}) }

// Resizer uses "github.com/disintegration/imaging"
type Resizer struct{}

var _ resize.Resizer = (*Resizer)(nil)

func (r *Resizer) Resize(img image.Image, size image.Point) (image.Image, error) {
	return imaging.Resize(img, size.X, size.Y, imaging.Lanczos), nil
}
