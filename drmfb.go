// Package drmfb presents client buffers on the display connected to a DRM
// card, see package display for the details.
//
//	fb, err := drmfb.Open(``)
//	if err != nil {
//		return err
//	}
//	defer fb.Close()
//	if err := fb.ImportBuffer(buf); err != nil {
//		return err
//	}
//	return fb.Post(buf)
package drmfb

import (
	"log/slog"

	"github.com/srlehn/drmfb/display"
	"github.com/srlehn/drmfb/drm"
	"github.com/srlehn/drmfb/internal/consts"
	"github.com/srlehn/drmfb/internal/environ"
	"github.com/srlehn/drmfb/internal/errors"
	"github.com/srlehn/drmfb/internal/logx"
	"github.com/srlehn/drmfb/internal/propkeys"
)

// Open opens the card at path and its connected display. An empty path
// uses the configured device or /dev/dri/card0.
//
// The configuration is read from $XDG_CONFIG_HOME/drmfb/drmfb.conf and the
// environment (DRMFB_MODE_FORCE, DRMFB_DEVICE, DRMFB_FLIP_TIMEOUT); opts
// are applied afterwards. The card is closed with the Framebuffer.
func Open(path string, opts ...display.Option) (*display.Framebuffer, error) {
	fb, _, err := OpenWithCard(path, opts...)
	return fb, err
}

// OpenWithCard is Open that also returns the card, e.g. for allocating
// buffers on it.
func OpenWithCard(path string, opts ...display.Option) (*display.Framebuffer, *drm.Card, error) {
	pr, err := environ.Load()
	if err != nil {
		return nil, nil, err
	}
	if len(path) == 0 {
		path = DevicePath(pr)
	}
	card, err := drm.OpenCard(path)
	if err != nil {
		return nil, nil, err
	}
	errMaster := card.SetMaster()
	closers := display.CloseWith(card)
	if errMaster == nil {
		closers = display.CloseWith(card, closerFunc(card.DropMaster))
	}
	opts = append([]display.Option{display.SetProperties(pr, true), closers}, opts...)
	fb, err := display.Open(card, opts...)
	if err != nil {
		return nil, nil, err
	}
	// the first opener of a card is master without asking
	logx.IsErr(errMaster, fb, slog.LevelDebug, `device`, path)
	return fb, card, nil
}

// DevicePath returns the configured card, /dev/dri/card0 by default.
func DevicePath(pr environ.Properties) string {
	if pr != nil {
		if p, ok := pr.Property(propkeys.Device); ok && len(p) > 0 {
			return p
		}
	}
	return consts.DefaultDevice
}

type closerFunc func() error

func (f closerFunc) Close() error { return errors.Wrap(f()) }
