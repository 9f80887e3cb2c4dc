package display

import (
	"log/slog"

	"github.com/google/btree"

	"github.com/srlehn/drmfb/drm"
	"github.com/srlehn/drmfb/format"
	"github.com/srlehn/drmfb/internal/errors"
	"github.com/srlehn/drmfb/internal/logx"
)

// RegistryEntry maps a buffer handle of the card to its framebuffer object
// and the layout it was registered with.
type RegistryEntry struct {
	Handle        uint32
	FramebufferID uint32

	Width, Height uint32
	Stride        uint32
	Format        format.HAL
}

func (e RegistryEntry) sameLayout(buf *Buffer) bool {
	return e.Width == buf.Width && e.Height == buf.Height && e.Stride == buf.Stride && e.Format == buf.Format
}

func lessEntry(a, b RegistryEntry) bool { return a.Handle < b.Handle }

// Registry registers scanout buffers as framebuffer objects, once per
// buffer handle. Entries live until the buffer is released; a handle coming
// back with another layout belongs to a new buffer and is registered again.
// A Registry is not safe for concurrent use.
type Registry struct {
	dev     Device
	entries *btree.BTreeG[RegistryEntry]
	logger  logx.LoggerProvider

	beforeRemove func(fbID uint32)
}

func NewRegistry(dev Device, logger logx.LoggerProvider) *Registry {
	return &Registry{
		dev:     dev,
		entries: btree.NewG(8, lessEntry),
		logger:  logger,
	}
}

func (r *Registry) Logger() *slog.Logger {
	if r == nil || r.logger == nil {
		return nil
	}
	return r.logger.Logger()
}

// Import stores the framebuffer id of buf in buf.FramebufferID,
// registering the buffer with the card on first use.
// Buffers without UsageHWFB are ignored.
func (r *Registry) Import(buf *Buffer) error {
	if r == nil || r.dev == nil {
		return errors.NilReceiver()
	}
	if buf == nil {
		return errors.NilParam()
	}
	if buf.Usage&UsageHWFB == 0 {
		return nil
	}
	handle, err := r.dev.PrimeFDToHandle(buf.PrimeFD)
	if err != nil {
		logx.Error(`failed to get handle from prime fd`, r, `prime_fd`, buf.PrimeFD, `error`, err)
		return errors.WithCause(ErrImportFailed, err)
	}
	if e, ok := r.entries.Get(RegistryEntry{Handle: handle}); ok {
		if e.sameLayout(buf) {
			buf.FramebufferID = e.FramebufferID
			return nil
		}
		logx.Info(`buffer handle reused with another layout`, r, `handle`, handle, `fb`, e.FramebufferID)
		if err := r.Forget(handle); err != nil {
			return errors.WithCause(ErrImportFailed, err)
		}
	}
	pixelFormat := format.Translate(buf.Format)
	if pixelFormat == format.Unsupported {
		logx.Error(`unsupported framebuffer format`, r, `format`, buf.Format)
		return errors.WithCause(ErrUnsupportedFormat, errors.Errorf(`format %s`, buf.Format))
	}
	cmd := &drm.FramebufferCmd{
		Width:       buf.Width,
		Height:      buf.Height,
		PixelFormat: uint32(pixelFormat),
		Handles:     [4]uint32{handle},
		Pitches:     [4]uint32{buf.Stride},
	}
	fbID, err := r.dev.AddFB2(cmd)
	if err != nil {
		logx.Error(`failed to add framebuffer`, r, `handle`, handle, `error`, err)
		return errors.WithCause(ErrImportFailed, err)
	}
	r.entries.ReplaceOrInsert(RegistryEntry{
		Handle:        handle,
		FramebufferID: fbID,
		Width:         buf.Width,
		Height:        buf.Height,
		Stride:        buf.Stride,
		Format:        buf.Format,
	})
	buf.FramebufferID = fbID
	logx.Debug(`framebuffer added`, r, `handle`, handle, `fb`, fbID, `format`, pixelFormat,
		`width`, buf.Width, `height`, buf.Height)
	return nil
}

// OnRemove sets a function called with the framebuffer id before its
// framebuffer object is removed.
func (r *Registry) OnRemove(fn func(fbID uint32)) {
	if r != nil {
		r.beforeRemove = fn
	}
}

// Forget removes the framebuffer object registered for a buffer handle.
// Unknown handles are ignored.
func (r *Registry) Forget(handle uint32) error {
	if r == nil || r.dev == nil {
		return errors.NilReceiver()
	}
	e, ok := r.entries.Delete(RegistryEntry{Handle: handle})
	if !ok {
		return nil
	}
	if r.beforeRemove != nil {
		r.beforeRemove(e.FramebufferID)
	}
	if err := r.dev.RmFB(e.FramebufferID); err != nil {
		logx.Error(`failed to remove framebuffer`, r, `handle`, handle, `fb`, e.FramebufferID, `error`, err)
		return errors.WithCause(ErrReleaseFailed, err)
	}
	logx.Debug(`framebuffer removed`, r, `handle`, handle, `fb`, e.FramebufferID)
	return nil
}

// Release forgets the registration of buf and clears buf.FramebufferID.
// buf must still hold its prime fd.
func (r *Registry) Release(buf *Buffer) error {
	if r == nil || r.dev == nil {
		return errors.NilReceiver()
	}
	if buf == nil {
		return errors.NilParam()
	}
	if buf.Usage&UsageHWFB == 0 || buf.FramebufferID == 0 {
		return nil
	}
	handle, err := r.dev.PrimeFDToHandle(buf.PrimeFD)
	if err != nil {
		return errors.WithCause(ErrReleaseFailed, err)
	}
	if err := r.Forget(handle); err != nil {
		return err
	}
	buf.FramebufferID = 0
	return nil
}

// Lookup returns the framebuffer id registered for a buffer handle.
func (r *Registry) Lookup(handle uint32) (uint32, bool) {
	if r == nil || r.entries == nil {
		return 0, false
	}
	e, ok := r.entries.Get(RegistryEntry{Handle: handle})
	return e.FramebufferID, ok
}

func (r *Registry) Len() int {
	if r == nil || r.entries == nil {
		return 0
	}
	return r.entries.Len()
}

// Entries returns all registrations ordered by handle.
func (r *Registry) Entries() []RegistryEntry {
	if r == nil || r.entries == nil {
		return nil
	}
	ret := make([]RegistryEntry, 0, r.entries.Len())
	r.entries.Ascend(func(e RegistryEntry) bool {
		ret = append(ret, e)
		return true
	})
	return ret
}
