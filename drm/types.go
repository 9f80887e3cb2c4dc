// Package drm is a small binding to the Linux direct rendering manager
// kernel mode-setting interface (/dev/dri/card*).
//
// Only the requests needed to drive a single output are covered:
// resource/connector/encoder enumeration, CRTC programming, page flips,
// framebuffer registration, prime handle conversion, dumb buffers and the
// event stream delivering flip completions.
package drm

import (
	"bytes"
	"fmt"
	"strconv"
)

const (
	DisplayModeLen = 32

	// mode type bits (drm_mode_modeinfo.type)
	ModeTypeBuiltin   = 1 << 0
	ModeTypePreferred = 1 << 3
	ModeTypeDefault   = 1 << 4
	ModeTypeUserdef   = 1 << 5
	ModeTypeDriver    = 1 << 6

	// page flip flags
	PageFlipEvent = 0x01
	PageFlipAsync = 0x02

	// capabilities (DRM_IOCTL_GET_CAP)
	CapDumbBuffer = 0x1
	CapPrime      = 0x5

	// prime export flags
	CloExec = 0x80000 // O_CLOEXEC
	RDWR    = 0x2     // O_RDWR

	// event types
	EventVBlank        = 0x01
	EventFlipComplete  = 0x02
	EventCrtcSequence  = 0x03
	eventHeaderLen     = 8
	eventVBlankLen     = 32
	eventReadBufferLen = 1024
)

// Connection is the state of a connector.
type Connection uint32

const (
	Connected         Connection = 1
	Disconnected      Connection = 2
	UnknownConnection Connection = 3
)

func (c Connection) String() string {
	switch c {
	case Connected:
		return `connected`
	case Disconnected:
		return `disconnected`
	case UnknownConnection:
		return `unknown`
	}
	return `connection(` + strconv.FormatUint(uint64(c), 10) + `)`
}

// ModeInfo mirrors struct drm_mode_modeinfo and is passed to the kernel as is.
type ModeInfo struct {
	Clock                                         uint32
	Hdisplay, HsyncStart, HsyncEnd, Htotal, Hskew uint16
	Vdisplay, VsyncStart, VsyncEnd, Vtotal, Vscan uint16

	Vrefresh uint32

	Flags uint32
	Type  uint32
	Name  [DisplayModeLen]uint8
}

// IsPreferred reports whether the driver flagged the mode as preferred.
func (m *ModeInfo) IsPreferred() bool { return m != nil && m.Type&ModeTypePreferred != 0 }

func (m *ModeInfo) String() string {
	if m == nil {
		return `<nil>`
	}
	name, _, _ := bytes.Cut(m.Name[:], []byte{0})
	if len(name) > 0 {
		return fmt.Sprintf(`%s@%d`, name, m.Vrefresh)
	}
	return fmt.Sprintf(`%dx%d@%d`, m.Hdisplay, m.Vdisplay, m.Vrefresh)
}

// Resources lists the mode-setting objects of a card in driver order.
type Resources struct {
	Fbs        []uint32
	Crtcs      []uint32
	Connectors []uint32
	Encoders   []uint32

	MinWidth, MaxWidth   uint32
	MinHeight, MaxHeight uint32
}

// Connector describes a physical output path.
type Connector struct {
	ID         uint32
	EncoderID  uint32 // current encoder
	Type       uint32
	TypeID     uint32
	Connection Connection

	WidthMM, HeightMM uint32
	Subpixel          uint32

	Modes    []ModeInfo
	Encoders []uint32
}

// Name returns the connector name as the kernel logs it, e.g. "HDMI-A-1".
func (c *Connector) Name() string {
	if c == nil {
		return `<nil>`
	}
	typ, ok := connectorTypeNames[c.Type]
	if !ok {
		typ = `Unknown`
	}
	return typ + `-` + strconv.FormatUint(uint64(c.TypeID), 10)
}

var connectorTypeNames = map[uint32]string{
	0:  `Unknown`,
	1:  `VGA`,
	2:  `DVI-I`,
	3:  `DVI-D`,
	4:  `DVI-A`,
	5:  `Composite`,
	6:  `SVIDEO`,
	7:  `LVDS`,
	8:  `Component`,
	9:  `DIN`,
	10: `DP`,
	11: `HDMI-A`,
	12: `HDMI-B`,
	13: `TV`,
	14: `eDP`,
	15: `Virtual`,
	16: `DSI`,
	17: `DPI`,
	18: `Writeback`,
	19: `SPI`,
	20: `USB`,
}

// Encoder describes an encoder and the CRTCs it can be driven by.
type Encoder struct {
	ID   uint32
	Type uint32

	CrtcID uint32

	PossibleCrtcs  uint32 // bit i set: Resources.Crtcs[i] can drive this encoder
	PossibleClones uint32
}

// FramebufferCmd describes a framebuffer object for AddFB2.
// Unused planes are left zero.
type FramebufferCmd struct {
	Width, Height uint32
	PixelFormat   uint32 // fourcc
	Flags         uint32
	Handles       [4]uint32
	Pitches       [4]uint32
	Offsets       [4]uint32
	Modifiers     [4]uint64
}

// DumbBuffer is a kernel allocated scanout buffer.
type DumbBuffer struct {
	Handle        uint32
	Width, Height uint32
	BPP           uint32
	Pitch         uint32
	Size          uint64
}

// FlipEvent is delivered when a page flip requested with PageFlipEvent
// has completed.
type FlipEvent struct {
	UserData uint64
	Sec      uint32
	Usec     uint32
	Sequence uint32
	CrtcID   uint32
}

// PageFlipHandler is called for each flip completion read from the card.
type PageFlipHandler func(ev FlipEvent)
