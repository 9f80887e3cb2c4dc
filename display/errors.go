package display

import (
	"github.com/srlehn/drmfb/internal/consts"
)

// Open fails with one of these when the card has nothing to drive.
var (
	ErrNoConnector     = consts.ErrNoConnector
	ErrNoCrtc          = consts.ErrNoCrtc
	ErrNoPreferredMode = consts.ErrNoPreferredMode
)

var (
	ErrInvalidSwapInterval = consts.ErrInvalidSwapInterval
	ErrInvalidBuffer       = consts.ErrInvalidBuffer
	ErrFlipBusy            = consts.ErrFlipBusy
	ErrFlipFailed          = consts.ErrFlipFailed
	ErrImportFailed        = consts.ErrImportFailed
	ErrReleaseFailed       = consts.ErrReleaseFailed
	ErrUnsupportedFormat   = consts.ErrUnsupportedFormat
	ErrCrtcEnable          = consts.ErrCrtcEnable
	ErrCrtcDisable         = consts.ErrCrtcDisable
	ErrClosed              = consts.ErrClosed
)
