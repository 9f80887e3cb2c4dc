//go:build !linux

package drm

import (
	"time"
	"unsafe"

	"github.com/srlehn/drmfb/internal/consts"
)

func ioctl(fd, req uintptr, arg unsafe.Pointer) error { return consts.ErrPlatformNotSupported }

func waitReadable(fd uintptr, timeout time.Duration) (bool, error) {
	return false, consts.ErrPlatformNotSupported
}

func readFd(fd uintptr, p []byte) (int, error) { return 0, consts.ErrPlatformNotSupported }

func mmap(fd uintptr, offset uint64, size int) ([]byte, error) {
	return nil, consts.ErrPlatformNotSupported
}

func munmap(b []byte) error { return consts.ErrPlatformNotSupported }
