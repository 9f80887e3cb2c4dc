// Package resize scales images to the resolution of a display mode.
//
// The implementations live in the sub packages and register themselves
// under a name when imported.
package resize

import (
	"image"
	"image/color"
	"slices"
	"sync"

	"golang.org/x/image/draw"

	"github.com/srlehn/drmfb/internal/consts"
	"github.com/srlehn/drmfb/internal/errors"
)

// Resizer resizes images
type Resizer interface {
	Resize(img image.Image, size image.Point) (image.Image, error)
}

var (
	resizersMu sync.RWMutex
	resizers   = make(map[string]Resizer)
)

// Register makes a resizer available by name. A later registration
// replaces an earlier one.
func Register(name string, rsz Resizer) {
	if len(name) == 0 || rsz == nil {
		return
	}
	resizersMu.Lock()
	defer resizersMu.Unlock()
	resizers[name] = rsz
}

func Get(name string) (Resizer, error) {
	resizersMu.RLock()
	defer resizersMu.RUnlock()
	rsz, ok := resizers[name]
	if !ok {
		return nil, errors.Errorf(`unknown resizer %q`, name)
	}
	return rsz, nil
}

// Names lists the registered resizers.
func Names() []string {
	resizersMu.RLock()
	defer resizersMu.RUnlock()
	names := make([]string, 0, len(resizers))
	for name := range resizers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Fit returns the largest size with the aspect ratio of src that fits
// into dst.
func Fit(src, dst image.Point) image.Point {
	if src.X <= 0 || src.Y <= 0 || dst.X <= 0 || dst.Y <= 0 {
		return image.Point{}
	}
	// compare src.X/src.Y with dst.X/dst.Y without rounding
	if src.X*dst.Y > dst.X*src.Y {
		return image.Point{X: dst.X, Y: max(1, src.Y*dst.X/src.X)}
	}
	return image.Point{X: max(1, src.X*dst.Y/src.Y), Y: dst.Y}
}

// Letterbox scales img to fit into size keeping its aspect ratio and
// centers it on a black canvas of size.
// A nil Resizer crops instead of scaling.
func Letterbox(img image.Image, size image.Point, rsz Resizer) (*image.RGBA, error) {
	if img == nil {
		return nil, errors.New(consts.ErrNilImage)
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, errors.Errorf(`invalid size %v`, size)
	}
	canvas := image.NewRGBA(image.Rectangle{Max: size})
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	b := img.Bounds()
	target := Fit(b.Size(), size)
	scaled := img
	if rsz != nil && target != b.Size() {
		m, err := rsz.Resize(img, target)
		if err != nil {
			return nil, errors.New(err)
		}
		scaled = m
	}
	sb := scaled.Bounds()
	offset := size.Sub(sb.Size()).Div(2)
	if offset.X < 0 {
		offset.X = 0
	}
	if offset.Y < 0 {
		offset.Y = 0
	}
	dst := image.Rectangle{Min: offset, Max: offset.Add(sb.Size())}.Intersect(canvas.Bounds())
	draw.Draw(canvas, dst, scaled, sb.Min, draw.Over)
	return canvas, nil
}
