// Package display drives a single output of a DRM card: it finds the
// connected connector and a CRTC for it, selects a mode, registers client
// buffers as framebuffer objects and swaps them in with page flips.
package display

import (
	"time"

	"github.com/srlehn/drmfb/drm"
	"github.com/srlehn/drmfb/format"
)

// Device is the part of a DRM card used by this package.
// *drm.Card implements it.
type Device interface {
	Resources() (*drm.Resources, error)
	Connector(id uint32) (*drm.Connector, error)
	Encoder(id uint32) (*drm.Encoder, error)
	SetCrtc(crtcID, fbID uint32, connectors []uint32, mode *drm.ModeInfo) error
	PageFlip(crtcID, fbID, flags uint32, userData uint64) error
	// HandleEvent reads the event stream once and reports flip completions
	// to onFlip. A timeout <= 0 blocks.
	HandleEvent(timeout time.Duration, onFlip drm.PageFlipHandler) error
	PrimeFDToHandle(fd int) (uint32, error)
	AddFB2(cmd *drm.FramebufferCmd) (uint32, error)
	RmFB(fbID uint32) error
}

var _ Device = (*drm.Card)(nil)

// Usage holds the allocation usage bits of a buffer.
type Usage uint32

// UsageHWFB marks buffers allocated for scanout (GRALLOC_USAGE_HW_FB).
// Only these are imported.
const UsageHWFB Usage = 0x00000200

// Buffer is a client allocated graphics buffer.
// FramebufferID is filled in by ImportBuffer and read by Post.
type Buffer struct {
	Width, Height uint32
	Stride        uint32 // bytes per row
	Format        format.HAL
	Usage         Usage
	PrimeFD       int

	FramebufferID uint32
}
