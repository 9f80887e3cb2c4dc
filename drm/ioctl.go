package drm

import (
	"unsafe"
)

const ioctlBase = 'd'

// request direction bits of the generic linux ioctl encoding
const (
	iocNone  = 0
	iocWrite = 1
	iocRead  = 2
)

func ioc(dir, nr, size uintptr) uintptr { return dir<<30 | size<<16 | ioctlBase<<8 | nr }

func ioNone(nr uintptr) uintptr { return ioc(iocNone, nr, 0) }

func iowr(nr, size uintptr) uintptr { return ioc(iocRead|iocWrite, nr, size) }

type (
	sysGetCap struct {
		capability uint64
		value      uint64
	}

	sysPrimeHandle struct {
		handle uint32
		flags  uint32
		fd     int32
	}

	sysCardRes struct {
		fbIDPtr              uint64
		crtcIDPtr            uint64
		connectorIDPtr       uint64
		encoderIDPtr         uint64
		countFbs             uint32
		countCrtcs           uint32
		countConnectors      uint32
		countEncoders        uint32
		minWidth, maxWidth   uint32
		minHeight, maxHeight uint32
	}

	sysGetConnector struct {
		encodersPtr   uint64
		modesPtr      uint64
		propsPtr      uint64
		propValuesPtr uint64

		countModes    uint32
		countProps    uint32
		countEncoders uint32

		encoderID       uint32
		connectorID     uint32
		connectorType   uint32
		connectorTypeID uint32

		connection        uint32
		mmWidth, mmHeight uint32
		subpixel          uint32
		pad               uint32
	}

	sysGetEncoder struct {
		encoderID      uint32
		encoderType    uint32
		crtcID         uint32
		possibleCrtcs  uint32
		possibleClones uint32
	}

	sysCrtc struct {
		setConnectorsPtr uint64
		countConnectors  uint32

		crtcID uint32
		fbID   uint32

		x, y uint32

		gammaSize uint32
		modeValid uint32
		mode      ModeInfo
	}

	sysPageFlip struct {
		crtcID   uint32
		fbID     uint32
		flags    uint32
		reserved uint32
		userData uint64
	}

	sysFBCmd2 struct {
		fbID          uint32
		width, height uint32
		pixelFormat   uint32
		flags         uint32
		handles       [4]uint32
		pitches       [4]uint32
		offsets       [4]uint32
		modifier      [4]uint64
	}

	sysCreateDumb struct {
		height, width uint32
		bpp           uint32
		flags         uint32

		handle uint32
		pitch  uint32
		size   uint64
	}

	sysMapDumb struct {
		handle uint32
		pad    uint32
		offset uint64
	}

	sysDestroyDumb struct {
		handle uint32
	}
)

var (
	ioctlSetMaster  = ioNone(0x1e)
	ioctlDropMaster = ioNone(0x1f)

	// DRM_IOWR(0x0c, struct drm_get_cap)
	ioctlGetCap = iowr(0x0c, unsafe.Sizeof(sysGetCap{}))

	// DRM_IOWR(0x2d/0x2e, struct drm_prime_handle)
	ioctlPrimeHandleToFD = iowr(0x2d, unsafe.Sizeof(sysPrimeHandle{}))
	ioctlPrimeFDToHandle = iowr(0x2e, unsafe.Sizeof(sysPrimeHandle{}))

	ioctlModeGetResources = iowr(0xa0, unsafe.Sizeof(sysCardRes{}))
	ioctlModeSetCrtc      = iowr(0xa2, unsafe.Sizeof(sysCrtc{}))
	ioctlModeGetEncoder   = iowr(0xa6, unsafe.Sizeof(sysGetEncoder{}))
	ioctlModeGetConnector = iowr(0xa7, unsafe.Sizeof(sysGetConnector{}))
	ioctlModeRmFB         = iowr(0xaf, unsafe.Sizeof(uint32(0)))
	ioctlModePageFlip     = iowr(0xb0, unsafe.Sizeof(sysPageFlip{}))
	ioctlModeCreateDumb   = iowr(0xb2, unsafe.Sizeof(sysCreateDumb{}))
	ioctlModeMapDumb      = iowr(0xb3, unsafe.Sizeof(sysMapDumb{}))
	ioctlModeDestroyDumb  = iowr(0xb4, unsafe.Sizeof(sysDestroyDumb{}))
	ioctlModeAddFB2       = iowr(0xb8, unsafe.Sizeof(sysFBCmd2{}))
)

func ptrOf[T any](s []T) uint64 {
	if len(s) == 0 {
		return 0
	}
	return uint64(uintptr(unsafe.Pointer(&s[0])))
}
