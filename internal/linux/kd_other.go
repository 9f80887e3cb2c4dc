//go:build !linux

package linux

import (
	"github.com/srlehn/drmfb/internal/consts"
	"github.com/srlehn/drmfb/internal/errors"
)

func KDGetMode(fd uintptr) (mode KDMode, isLinuxConsole bool, _ error) {
	return -1, false, errors.New(consts.ErrPlatformNotSupported)
}

func KDSetMode(fd uintptr, mode KDMode) error {
	return errors.New(consts.ErrPlatformNotSupported)
}

func EnterGraphics(fd uintptr) (*ModeRestorer, error) {
	return nil, errors.New(consts.ErrPlatformNotSupported)
}
