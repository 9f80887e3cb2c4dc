// Package dumb allocates CPU mapped scanout buffers on a card and exports
// them as prime file descriptors, standing in for a graphics allocator.
package dumb

import (
	"image"

	"golang.org/x/sys/unix"

	"github.com/srlehn/drmfb/display"
	"github.com/srlehn/drmfb/drm"
	"github.com/srlehn/drmfb/format"
	"github.com/srlehn/drmfb/internal/errors"
)

// Card is the part of *drm.Card used for dumb buffers.
type Card interface {
	CreateDumb(width, height, bpp uint32) (*drm.DumbBuffer, error)
	MapDumb(db *drm.DumbBuffer) ([]byte, error)
	UnmapDumb(data []byte) error
	DestroyDumb(handle uint32) error
	PrimeHandleToFD(handle, flags uint32) (int, error)
}

var _ Card = (*drm.Card)(nil)

// Importer registers buffers for scanout, *display.Framebuffer implements it.
type Importer interface {
	ImportBuffer(buf *display.Buffer) error
	ReleaseBuffer(buf *display.Buffer) error
}

var _ Importer = (*display.Framebuffer)(nil)

// Buffer is a mapped dumb buffer. Its Image draws directly into the
// scanout memory.
type Buffer struct {
	card   Card
	dumb   *drm.DumbBuffer
	data   []byte
	img    *format.Image
	buf    display.Buffer
	fb     Importer
	closed bool
}

// Allocate creates a width x height buffer in the platform format f.
func Allocate(card Card, width, height uint32, f format.HAL) (_ *Buffer, err error) {
	if card == nil {
		return nil, errors.NilParam()
	}
	wire := format.Translate(f)
	bpp := wire.BitsPerPixel()
	if bpp == 0 {
		return nil, errors.WithCause(display.ErrUnsupportedFormat, errors.Errorf(`format %s`, f))
	}
	db, err := card.CreateDumb(width, height, bpp)
	if err != nil {
		return nil, err
	}
	b := &Buffer{card: card, dumb: db}
	defer func() {
		if err != nil {
			err = errors.Join(err, b.Close())
		}
	}()
	b.data, err = card.MapDumb(db)
	if err != nil {
		return nil, err
	}
	b.img, err = format.NewImage(b.data, int(db.Pitch), image.Rect(0, 0, int(width), int(height)), wire)
	if err != nil {
		return nil, err
	}
	fd, err := card.PrimeHandleToFD(db.Handle, drm.CloExec|drm.RDWR)
	if err != nil {
		return nil, err
	}
	b.buf = display.Buffer{
		Width:   width,
		Height:  height,
		Stride:  db.Pitch,
		Format:  f,
		Usage:   display.UsageHWFB,
		PrimeFD: fd,
	}
	return b, nil
}

// Import registers the buffer with fb. Close releases it there before the
// memory is freed.
func (b *Buffer) Import(fb Importer) error {
	if b == nil || fb == nil {
		return errors.NilParam()
	}
	if err := fb.ImportBuffer(&b.buf); err != nil {
		return err
	}
	b.fb = fb
	return nil
}

// Display returns the buffer description handed to display.Framebuffer.
func (b *Buffer) Display() *display.Buffer { return &b.buf }

func (b *Buffer) Image() *format.Image { return b.img }

func (b *Buffer) Handle() uint32 { return b.dumb.Handle }

// Size is the allocation size in bytes.
func (b *Buffer) Size() uint64 { return b.dumb.Size }

// Close unmaps and destroys the buffer. A framebuffer object created from
// it keeps the memory alive until it is removed.
func (b *Buffer) Close() error {
	if b == nil || b.closed {
		return nil
	}
	b.closed = true
	var errs []error
	if b.fb != nil {
		if err := b.fb.ReleaseBuffer(&b.buf); err != nil {
			errs = append(errs, err)
		}
		b.fb = nil
	}
	if b.buf.PrimeFD > 0 {
		if err := unix.Close(b.buf.PrimeFD); err != nil {
			errs = append(errs, errors.New(err))
		}
		b.buf.PrimeFD = -1
	}
	if b.data != nil {
		if err := b.card.UnmapDumb(b.data); err != nil {
			errs = append(errs, err)
		}
		b.data = nil
		b.img = nil
	}
	if err := b.card.DestroyDumb(b.dumb.Handle); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
