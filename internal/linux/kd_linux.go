//go:build linux

package linux

import (
	"golang.org/x/sys/unix"

	"github.com/srlehn/drmfb/internal/errors"
)

const (
	ioctlKDGetMode = 0x4b3b
	ioctlKDSetMode = 0x4b3a
)

// KDGetMode reports the mode of the virtual terminal behind fd.
// isLinuxConsole is false without an error when fd is not a virtual terminal.
func KDGetMode(fd uintptr) (mode KDMode, isLinuxConsole bool, _ error) {
	m, err := unix.IoctlGetInt(int(fd), ioctlKDGetMode)
	if err == nil {
		return KDMode(m), true, nil
	}
	if errors.Is(err, unix.ENOTTY) || errors.Is(err, unix.EINVAL) {
		return -1, false, nil
	}
	return -1, false, errors.New(err)
}

func KDSetMode(fd uintptr, mode KDMode) error {
	// KDSETMODE takes the mode as the argument value, not a pointer
	if err := unix.IoctlSetInt(int(fd), ioctlKDSetMode, int(mode)); err != nil {
		return errors.New(err)
	}
	return nil
}

// EnterGraphics switches the virtual terminal behind fd to graphics mode.
// It returns a nil restorer when fd is not a virtual terminal.
func EnterGraphics(fd uintptr) (*ModeRestorer, error) {
	mode, ok, err := KDGetMode(fd)
	if err != nil || !ok {
		return nil, err
	}
	r := &ModeRestorer{fd: fd, previous: mode}
	if mode == KDGraphics {
		return r, nil
	}
	if err := KDSetMode(fd, KDGraphics); err != nil {
		return nil, err
	}
	return r, nil
}
