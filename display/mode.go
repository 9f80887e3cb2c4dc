package display

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/srlehn/drmfb/drm"
	"github.com/srlehn/drmfb/internal/errors"
)

// DefaultDPI is reported when the panel does not state its size.
const DefaultDPI = 160

// Mode is a display timing the output can be driven at.
type Mode struct {
	Width, Height uint32
	Refresh       uint32 // Hz
	Preferred     bool

	Info drm.ModeInfo
}

func newMode(m *drm.ModeInfo) Mode {
	return Mode{
		Width:     uint32(m.Hdisplay),
		Height:    uint32(m.Vdisplay),
		Refresh:   m.Vrefresh,
		Preferred: m.IsPreferred(),
		Info:      *m,
	}
}

func (m Mode) String() string { return fmt.Sprintf(`%dx%d@%d`, m.Width, m.Height, m.Refresh) }

// ModeOverride forces a resolution and optionally a refresh rate.
// The zero value selects the preferred mode.
type ModeOverride struct {
	Width, Height uint32
	Refresh       uint32 // 0: any
}

func (o ModeOverride) Active() bool { return o.Width > 0 && o.Height > 0 }

func (o ModeOverride) String() string {
	if !o.Active() {
		return ``
	}
	if o.Refresh == 0 {
		return fmt.Sprintf(`%dx%d`, o.Width, o.Height)
	}
	return fmt.Sprintf(`%dx%d@%d`, o.Width, o.Height, o.Refresh)
}

// ParseModeOverride parses "<width>x<height>" or "<width>x<height>@<refresh>".
// Anything else yields the inactive zero value.
func ParseModeOverride(s string) ModeOverride {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return ModeOverride{}
	}
	res, rate, hasRate := strings.Cut(s, `@`)
	w, h, ok := strings.Cut(res, `x`)
	if !ok {
		return ModeOverride{}
	}
	width, errW := strconv.ParseUint(w, 10, 16)
	height, errH := strconv.ParseUint(h, 10, 16)
	if errW != nil || errH != nil || width == 0 || height == 0 {
		return ModeOverride{}
	}
	o := ModeOverride{Width: uint32(width), Height: uint32(height)}
	if hasRate {
		refresh, err := strconv.ParseUint(rate, 10, 32)
		if err != nil || refresh == 0 {
			return ModeOverride{}
		}
		o.Refresh = uint32(refresh)
	}
	return o
}

// SelectMode returns the first mode of conn matching an active override,
// or else the first mode flagged preferred.
func SelectMode(conn *drm.Connector, override ModeOverride) (Mode, error) {
	if conn == nil {
		return Mode{}, errors.NilParam()
	}
	for i := range conn.Modes {
		m := &conn.Modes[i]
		if override.Active() {
			if uint32(m.Hdisplay) == override.Width && uint32(m.Vdisplay) == override.Height &&
				(override.Refresh == 0 || m.Vrefresh == override.Refresh) {
				return newMode(m), nil
			}
		} else if m.IsPreferred() {
			return newMode(m), nil
		}
	}
	if override.Active() {
		return Mode{}, errors.WithCause(ErrNoPreferredMode, errors.Errorf(`no mode matches %s`, override))
	}
	return Mode{}, errors.New(ErrNoPreferredMode)
}

// Output is the drive path chosen by Open.
type Output struct {
	ConnectorID   uint32
	ConnectorName string
	CrtcID        uint32
	Mode          Mode

	// physical panel size, 0 if unknown
	WidthMM, HeightMM uint32
}

// DPI returns the pixel density of the selected mode on the panel.
func (o Output) DPI() (x, y float64) {
	return dpi(o.Mode.Width, o.WidthMM), dpi(o.Mode.Height, o.HeightMM)
}

func dpi(px, mm uint32) float64 {
	if mm == 0 {
		return DefaultDPI
	}
	return float64(px) * 25.4 / float64(mm)
}
