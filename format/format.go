// Package format maps platform color formats to the pixel formats the
// kernel accepts for framebuffer objects.
package format

import (
	"strconv"
)

// HAL is a platform graphics color format code.
type HAL uint32

const (
	RGBA8888 HAL = 1
	RGBX8888 HAL = 2
	RGB888   HAL = 3
	RGB565   HAL = 4
	BGRA8888 HAL = 5
)

func (f HAL) String() string {
	switch f {
	case RGBA8888:
		return `RGBA_8888`
	case RGBX8888:
		return `RGBX_8888`
	case RGB888:
		return `RGB_888`
	case RGB565:
		return `RGB_565`
	case BGRA8888:
		return `BGRA_8888`
	}
	return `HAL(` + strconv.FormatUint(uint64(f), 10) + `)`
}

// FourCC is a kernel pixel format code (drm_fourcc.h).
type FourCC uint32

func fourcc(a, b, c, d byte) FourCC {
	return FourCC(uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24)
}

// Unsupported is returned by Translate for formats without a mapping.
const Unsupported FourCC = 0

var (
	XBGR8888 = fourcc('X', 'B', '2', '4')
	ARGB8888 = fourcc('A', 'R', '2', '4')
	XRGB8888 = fourcc('X', 'R', '2', '4')
	BGR888   = fourcc('B', 'G', '2', '4')
	BGR565   = fourcc('B', 'G', '1', '6')
)

func (f FourCC) String() string {
	if f == Unsupported {
		return `unsupported`
	}
	return string([]byte{byte(f), byte(f >> 8), byte(f >> 16), byte(f >> 24)})
}

// BitsPerPixel returns the storage size of one pixel, 0 if unknown.
func (f FourCC) BitsPerPixel() uint32 {
	switch f {
	case XBGR8888, ARGB8888, XRGB8888:
		return 32
	case BGR888:
		return 24
	case BGR565:
		return 16
	}
	return 0
}

// Translate returns the framebuffer pixel format for a platform format.
// RGBA_8888 drops its alpha channel: older hardware (e.g. Intel GPUs)
// can't blend alpha on primary planes.
func Translate(f HAL) FourCC {
	switch f {
	case RGBA8888, RGBX8888:
		return XBGR8888
	case RGB888:
		return BGR888
	case RGB565:
		return BGR565
	case BGRA8888:
		return ARGB8888
	}
	return Unsupported
}
