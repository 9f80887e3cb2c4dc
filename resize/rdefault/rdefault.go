// Package rdefault picks a fast resizer for the source image.
package rdefault

import (
	"image"
	"runtime"

	"github.com/srlehn/drmfb/resize"
	"github.com/srlehn/drmfb/resize/rez"
	"github.com/srlehn/drmfb/resize/xdraw"
)

func init() { resize.Register(`default`, &Resizer{}) }

type Resizer struct{}

var _ resize.Resizer = (*Resizer)(nil)

func (r *Resizer) Resize(img image.Image, size image.Point) (image.Image, error) {
	if runtime.GOARCH == `amd64` {
		switch img.(type) {
		case *image.YCbCr, *image.RGBA, *image.NRGBA, *image.Gray:
			// rez has SIMD assembly on amd64
			if m, err := (&rez.Resizer{}).Resize(img, size); err == nil {
				return m, nil
			}
		}
	}
	return xdraw.ApproxBiLinear().Resize(img, size)
}
