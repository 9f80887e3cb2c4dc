package main

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlehn/drmfb/format"
)

func TestPatternRenderer(t *testing.T) {
	p, err := newPatternRenderer(image.Pt(140, 80))
	require.NoError(t, err)
	defer p.Close()

	img := p.Render(0, 10)
	assert.Equal(t, image.Rect(0, 0, 140, 80), img.Bounds())
	// sweeping bar starts at the left edge
	r, g, b, _ := img.At(1, 70).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})
	// second color bar is yellow
	assert.Equal(t, color.RGBAModel.Convert(img.At(30, 10)).(color.RGBA).B, uint8(0))

	_, err = newPatternRenderer(image.Point{})
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := parseFormat(` RGB565 `)
	require.NoError(t, err)
	assert.Equal(t, format.RGB565, f)
	for _, name := range formatNames() {
		_, err := parseFormat(name)
		assert.NoError(t, err, name)
	}
	_, err = parseFormat(`yuv420`)
	assert.Error(t, err)
}
