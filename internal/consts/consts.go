package consts

import (
	"errors"
)

var (
	ErrNilReceiver          = errors.New(`nil receiver`)
	ErrNilParam             = errors.New(`nil parameter`)
	ErrNilImage             = errors.New(`nil image`)
	ErrPlatformNotSupported = errors.New(`platform not supported`)

	// kernel binding
	ErrEventTimeout = errors.New(`timed out waiting for drm event`)
	ErrShortEvent   = errors.New(`truncated drm event`)

	// initialisation
	ErrNoConnector     = errors.New(`no connected connector found`)
	ErrNoCrtc          = errors.New(`no crtc found for connector`)
	ErrNoPreferredMode = errors.New(`no preferred mode found`)

	// per call
	ErrInvalidSwapInterval = errors.New(`unsupported swap interval`)
	ErrInvalidBuffer       = errors.New(`buffer has no framebuffer`)
	ErrFlipBusy            = errors.New(`page flip busy`)
	ErrFlipFailed          = errors.New(`page flip failed`)
	ErrImportFailed        = errors.New(`buffer import failed`)
	ErrReleaseFailed       = errors.New(`buffer release failed`)
	ErrUnsupportedFormat   = errors.New(`unsupported framebuffer format`)
	ErrCrtcEnable          = errors.New(`failed to enable crtc`)
	ErrCrtcDisable         = errors.New(`failed to disable crtc`)
	ErrClosed              = errors.New(`framebuffer device closed`)
)

const (
	LibraryName = `drmfb`

	DefaultDevice  = `/dev/dri/card0`
	EnvModeForce   = `DRMFB_MODE_FORCE`
	EnvDevice      = `DRMFB_DEVICE`
	EnvFlipTimeout = `DRMFB_FLIP_TIMEOUT`
	ConfigDirName  = LibraryName
	ConfigFile     = LibraryName + `.conf`
)
