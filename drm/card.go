package drm

import (
	"os"
	"runtime"
	"time"
	"unsafe"

	"github.com/srlehn/drmfb/internal/consts"
	"github.com/srlehn/drmfb/internal/errors"
)

// ErrTimeout is returned by HandleEvent when no event arrived in time.
var ErrTimeout = consts.ErrEventTimeout

// Card is an open DRM control device.
type Card struct {
	file  *os.File
	owned bool
}

// OpenCard opens a DRM device node, e.g. "/dev/dri/card0".
// The returned Card closes the file on Close.
func OpenCard(path string) (*Card, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.New(err)
	}
	return &Card{file: f, owned: true}, nil
}

// NewCard wraps an already open control device. Close leaves f open.
func NewCard(f *os.File) *Card { return &Card{file: f} }

func (c *Card) File() *os.File {
	if c == nil {
		return nil
	}
	return c.file
}

func (c *Card) Close() error {
	if c == nil || c.file == nil || !c.owned {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return errors.Wrap(err)
}

func (c *Card) ioctl(name string, req uintptr, arg unsafe.Pointer) error {
	if c == nil || c.file == nil {
		return errors.NilReceiver()
	}
	if err := ioctl(c.file.Fd(), req, arg); err != nil {
		return errors.New(os.NewSyscallError(name, err))
	}
	return nil
}

// SetMaster acquires the DRM master role needed for mode setting.
func (c *Card) SetMaster() error {
	return c.ioctl(`DRM_IOCTL_SET_MASTER`, ioctlSetMaster, nil)
}

func (c *Card) DropMaster() error {
	return c.ioctl(`DRM_IOCTL_DROP_MASTER`, ioctlDropMaster, nil)
}

// Capability queries a DRM_CAP_* value.
func (c *Card) Capability(capability uint64) (uint64, error) {
	req := &sysGetCap{capability: capability}
	if err := c.ioctl(`DRM_IOCTL_GET_CAP`, ioctlGetCap, unsafe.Pointer(req)); err != nil {
		return 0, err
	}
	return req.value, nil
}

// Resources returns the mode-setting objects of the card.
func (c *Card) Resources() (*Resources, error) {
	for {
		res := &sysCardRes{}
		if err := c.ioctl(`DRM_IOCTL_MODE_GETRESOURCES`, ioctlModeGetResources, unsafe.Pointer(res)); err != nil {
			return nil, err
		}
		var (
			fbs        = make([]uint32, res.countFbs)
			crtcs      = make([]uint32, res.countCrtcs)
			connectors = make([]uint32, res.countConnectors)
			encoders   = make([]uint32, res.countEncoders)
		)
		fill := &sysCardRes{
			fbIDPtr:         ptrOf(fbs),
			crtcIDPtr:       ptrOf(crtcs),
			connectorIDPtr:  ptrOf(connectors),
			encoderIDPtr:    ptrOf(encoders),
			countFbs:        res.countFbs,
			countCrtcs:      res.countCrtcs,
			countConnectors: res.countConnectors,
			countEncoders:   res.countEncoders,
		}
		err := c.ioctl(`DRM_IOCTL_MODE_GETRESOURCES`, ioctlModeGetResources, unsafe.Pointer(fill))
		runtime.KeepAlive(fbs)
		runtime.KeepAlive(crtcs)
		runtime.KeepAlive(connectors)
		runtime.KeepAlive(encoders)
		if err != nil {
			return nil, err
		}
		// objects appeared in between the two calls (hotplug)
		if fill.countFbs > res.countFbs || fill.countCrtcs > res.countCrtcs ||
			fill.countConnectors > res.countConnectors || fill.countEncoders > res.countEncoders {
			continue
		}
		return &Resources{
			Fbs:        fbs[:fill.countFbs],
			Crtcs:      crtcs[:fill.countCrtcs],
			Connectors: connectors[:fill.countConnectors],
			Encoders:   encoders[:fill.countEncoders],
			MinWidth:   fill.minWidth,
			MaxWidth:   fill.maxWidth,
			MinHeight:  fill.minHeight,
			MaxHeight:  fill.maxHeight,
		}, nil
	}
}

// Connector returns the connector with the given id including its modes.
// The kernel probes the connector if it was not probed before.
func (c *Card) Connector(id uint32) (*Connector, error) {
	for {
		conn := &sysGetConnector{connectorID: id}
		if err := c.ioctl(`DRM_IOCTL_MODE_GETCONNECTOR`, ioctlModeGetConnector, unsafe.Pointer(conn)); err != nil {
			return nil, err
		}
		var (
			modes    = make([]ModeInfo, conn.countModes)
			encoders = make([]uint32, conn.countEncoders)
		)
		fill := &sysGetConnector{
			connectorID:   id,
			modesPtr:      ptrOf(modes),
			encodersPtr:   ptrOf(encoders),
			countModes:    conn.countModes,
			countEncoders: conn.countEncoders,
		}
		err := c.ioctl(`DRM_IOCTL_MODE_GETCONNECTOR`, ioctlModeGetConnector, unsafe.Pointer(fill))
		runtime.KeepAlive(modes)
		runtime.KeepAlive(encoders)
		if err != nil {
			return nil, err
		}
		if fill.countModes > conn.countModes || fill.countEncoders > conn.countEncoders {
			continue
		}
		return &Connector{
			ID:         fill.connectorID,
			EncoderID:  fill.encoderID,
			Type:       fill.connectorType,
			TypeID:     fill.connectorTypeID,
			Connection: Connection(fill.connection),
			WidthMM:    fill.mmWidth,
			HeightMM:   fill.mmHeight,
			Subpixel:   fill.subpixel,
			Modes:      modes[:fill.countModes],
			Encoders:   encoders[:fill.countEncoders],
		}, nil
	}
}

func (c *Card) Encoder(id uint32) (*Encoder, error) {
	enc := &sysGetEncoder{encoderID: id}
	if err := c.ioctl(`DRM_IOCTL_MODE_GETENCODER`, ioctlModeGetEncoder, unsafe.Pointer(enc)); err != nil {
		return nil, err
	}
	return &Encoder{
		ID:             enc.encoderID,
		Type:           enc.encoderType,
		CrtcID:         enc.crtcID,
		PossibleCrtcs:  enc.possibleCrtcs,
		PossibleClones: enc.possibleClones,
	}, nil
}

// SetCrtc programs a CRTC to scan out fbID on the given connectors.
// fbID 0 with no connectors and a nil mode disables the CRTC.
func (c *Card) SetCrtc(crtcID, fbID uint32, connectors []uint32, mode *ModeInfo) error {
	crtc := &sysCrtc{
		crtcID:           crtcID,
		fbID:             fbID,
		setConnectorsPtr: ptrOf(connectors),
		countConnectors:  uint32(len(connectors)),
	}
	if mode != nil {
		crtc.mode = *mode
		crtc.modeValid = 1
	}
	err := c.ioctl(`DRM_IOCTL_MODE_SETCRTC`, ioctlModeSetCrtc, unsafe.Pointer(crtc))
	runtime.KeepAlive(connectors)
	return err
}

// PageFlip schedules fbID to be scanned out at the next vblank.
// With PageFlipEvent set, completion is reported through HandleEvent
// together with userData.
func (c *Card) PageFlip(crtcID, fbID, flags uint32, userData uint64) error {
	req := &sysPageFlip{
		crtcID:   crtcID,
		fbID:     fbID,
		flags:    flags,
		userData: userData,
	}
	return c.ioctl(`DRM_IOCTL_MODE_PAGE_FLIP`, ioctlModePageFlip, unsafe.Pointer(req))
}

// AddFB2 registers a framebuffer object and returns its id.
func (c *Card) AddFB2(cmd *FramebufferCmd) (uint32, error) {
	if cmd == nil {
		return 0, errors.NilParam()
	}
	req := &sysFBCmd2{
		width:       cmd.Width,
		height:      cmd.Height,
		pixelFormat: cmd.PixelFormat,
		flags:       cmd.Flags,
		handles:     cmd.Handles,
		pitches:     cmd.Pitches,
		offsets:     cmd.Offsets,
		modifier:    cmd.Modifiers,
	}
	if err := c.ioctl(`DRM_IOCTL_MODE_ADDFB2`, ioctlModeAddFB2, unsafe.Pointer(req)); err != nil {
		return 0, err
	}
	return req.fbID, nil
}

func (c *Card) RmFB(fbID uint32) error {
	id := fbID
	return c.ioctl(`DRM_IOCTL_MODE_RMFB`, ioctlModeRmFB, unsafe.Pointer(&id))
}

// PrimeFDToHandle resolves a prime (dma-buf) file descriptor to a buffer
// handle local to this card.
func (c *Card) PrimeFDToHandle(fd int) (uint32, error) {
	req := &sysPrimeHandle{fd: int32(fd)}
	if err := c.ioctl(`DRM_IOCTL_PRIME_FD_TO_HANDLE`, ioctlPrimeFDToHandle, unsafe.Pointer(req)); err != nil {
		return 0, err
	}
	return req.handle, nil
}

// PrimeHandleToFD exports a buffer handle as a prime file descriptor.
func (c *Card) PrimeHandleToFD(handle, flags uint32) (int, error) {
	req := &sysPrimeHandle{handle: handle, flags: flags}
	if err := c.ioctl(`DRM_IOCTL_PRIME_HANDLE_TO_FD`, ioctlPrimeHandleToFD, unsafe.Pointer(req)); err != nil {
		return -1, err
	}
	return int(req.fd), nil
}

func (c *Card) CreateDumb(width, height, bpp uint32) (*DumbBuffer, error) {
	req := &sysCreateDumb{width: width, height: height, bpp: bpp}
	if err := c.ioctl(`DRM_IOCTL_MODE_CREATE_DUMB`, ioctlModeCreateDumb, unsafe.Pointer(req)); err != nil {
		return nil, err
	}
	return &DumbBuffer{
		Handle: req.handle,
		Width:  req.width,
		Height: req.height,
		BPP:    req.bpp,
		Pitch:  req.pitch,
		Size:   req.size,
	}, nil
}

// MapDumb maps a dumb buffer into memory.
func (c *Card) MapDumb(db *DumbBuffer) ([]byte, error) {
	if c == nil || c.file == nil {
		return nil, errors.NilReceiver()
	}
	if db == nil {
		return nil, errors.NilParam()
	}
	req := &sysMapDumb{handle: db.Handle}
	if err := c.ioctl(`DRM_IOCTL_MODE_MAP_DUMB`, ioctlModeMapDumb, unsafe.Pointer(req)); err != nil {
		return nil, err
	}
	data, err := mmap(c.file.Fd(), req.offset, int(db.Size))
	if err != nil {
		return nil, errors.New(os.NewSyscallError(`mmap`, err))
	}
	return data, nil
}

func (c *Card) UnmapDumb(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := munmap(data); err != nil {
		return errors.New(os.NewSyscallError(`munmap`, err))
	}
	return nil
}

func (c *Card) DestroyDumb(handle uint32) error {
	req := &sysDestroyDumb{handle: handle}
	return c.ioctl(`DRM_IOCTL_MODE_DESTROY_DUMB`, ioctlModeDestroyDumb, unsafe.Pointer(req))
}

// HandleEvent reads pending events from the card and calls onFlip for each
// completed page flip. Like libdrm's drmHandleEvent() it performs one read.
// A timeout <= 0 blocks until an event arrives, otherwise ErrTimeout is
// returned when nothing arrived in time.
func (c *Card) HandleEvent(timeout time.Duration, onFlip PageFlipHandler) error {
	if c == nil || c.file == nil {
		return errors.NilReceiver()
	}
	fd := c.file.Fd()
	if timeout > 0 {
		ready, err := waitReadable(fd, timeout)
		if err != nil {
			return errors.New(os.NewSyscallError(`poll`, err))
		}
		if !ready {
			return errors.New(ErrTimeout)
		}
	}
	buf := make([]byte, eventReadBufferLen)
	n, err := readFd(fd, buf)
	if err != nil {
		return errors.New(os.NewSyscallError(`read`, err))
	}
	return ParseEvents(buf[:n], onFlip)
}
