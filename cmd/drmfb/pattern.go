package main

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/srlehn/drmfb/internal/errors"
)

// patternRenderer draws the flip test pattern: color bars, a bar sweeping
// across the screen and the frame counter.
type patternRenderer struct {
	ctx  *gg.Context
	face font.Face
	size image.Point
}

func newPatternRenderer(size image.Point) (*patternRenderer, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, errors.Errorf(`invalid pattern size %v`, size)
	}
	goFont, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.New(err)
	}
	face := truetype.NewFace(goFont, &truetype.Options{Size: max(8, float64(size.Y)/16)})
	ctx := gg.NewContext(size.X, size.Y)
	ctx.SetFontFace(face)
	return &patternRenderer{ctx: ctx, face: face, size: size}, nil
}

var barColors = [...][3]float64{
	{0.75, 0.75, 0.75},
	{0.75, 0.75, 0},
	{0, 0.75, 0.75},
	{0, 0.75, 0},
	{0.75, 0, 0.75},
	{0.75, 0, 0},
	{0, 0, 0.75},
}

// Render draws frame n of total and returns the image. The image is reused
// by the next call.
func (p *patternRenderer) Render(n, total int) image.Image {
	c := p.ctx
	w, h := float64(p.size.X), float64(p.size.Y)
	c.SetRGB(0, 0, 0)
	c.Clear()

	barW := w / float64(len(barColors))
	for i, col := range barColors {
		c.SetRGB(col[0], col[1], col[2])
		c.DrawRectangle(float64(i)*barW, 0, math.Ceil(barW), h*2/3)
		c.Fill()
	}

	// sweeping bar: tearing shows up as a broken edge
	period := 120
	x := float64(n%period) / float64(period) * w
	c.SetRGB(1, 1, 1)
	c.DrawRectangle(x, 0, max(4, w/100), h)
	c.Fill()

	c.SetRGB(1, 1, 1)
	label := fmt.Sprintf(`frame %d`, n+1)
	if total > 0 {
		label = fmt.Sprintf(`frame %d/%d`, n+1, total)
	}
	c.DrawStringAnchored(label, w/2, h*5/6, 0.5, 0.5)
	return c.Image()
}

func (p *patternRenderer) Close() error { return p.face.Close() }
