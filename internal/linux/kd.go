// Package linux switches the virtual terminal between text and graphics
// mode, so the console does not draw its cursor and text over the scanout.
package linux

import (
	"fmt"
)

// KDMode is the display mode of a virtual terminal (KDGETMODE/KDSETMODE).
type KDMode int

const (
	KDText     KDMode = 0x0
	KDGraphics KDMode = 0x1
	KDText0    KDMode = 0x2
	KDText1    KDMode = 0x3
)

func (k KDMode) String() string {
	switch k {
	case KDText:
		return `KD_TEXT`
	case KDGraphics:
		return `KD_GRAPHICS`
	case KDText0:
		return `KD_TEXT0`
	case KDText1:
		return `KD_TEXT1`
	}
	if k >= 0 {
		return fmt.Sprintf(`0x%x`, int(k))
	}
	return fmt.Sprintf(`-0x%x`, -int(k))
}

// ModeRestorer puts the terminal back into the mode it had before
// EnterGraphics. Closing it more than once is a no-op.
type ModeRestorer struct {
	fd       uintptr
	previous KDMode
	done     bool
}

func (r *ModeRestorer) Previous() KDMode {
	if r == nil {
		return -1
	}
	return r.previous
}

func (r *ModeRestorer) Close() error {
	if r == nil || r.done {
		return nil
	}
	r.done = true
	if r.previous == KDGraphics {
		return nil
	}
	return KDSetMode(r.fd, r.previous)
}
