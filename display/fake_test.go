package display_test

import (
	"os"
	"syscall"
	"time"

	"github.com/srlehn/drmfb/display"
	"github.com/srlehn/drmfb/drm"
)

const (
	testConnector = 31
	testEncoder   = 40
	testCrtc      = 51
)

type fakeCall struct {
	name       string
	crtc, fb   uint32
	connectors []uint32
	mode       *drm.ModeInfo
	timeout    time.Duration
	cmd        *drm.FramebufferCmd
}

// fakeDevice records the kernel requests. Each HandleEvent call delivers
// the oldest queued flip completion.
type fakeDevice struct {
	res        drm.Resources
	connectors map[uint32]*drm.Connector
	encoders   map[uint32]*drm.Encoder
	handles    map[int]uint32
	nextFB     uint32

	calls   []fakeCall
	queued  []drm.FlipEvent
	held    []drm.FlipEvent
	removed []uint32

	errResources error
	errSetCrtc   error
	errPageFlip  error
	errEvent     error
	errAddFB     error
	errRmFB      error
	dropEvents   bool
	holdEvents   bool // completions wait for release
}

var _ display.Device = (*fakeDevice)(nil)

func mode(w, h uint16, refresh uint32, preferred bool) drm.ModeInfo {
	m := drm.ModeInfo{Hdisplay: w, Vdisplay: h, Vrefresh: refresh}
	if preferred {
		m.Type = drm.ModeTypePreferred | drm.ModeTypeDriver
	}
	return m
}

func testModes() []drm.ModeInfo {
	return []drm.ModeInfo{
		mode(1280, 720, 60, false),
		mode(1920, 1080, 60, true),
		mode(3840, 2160, 30, false),
	}
}

// newFakeDevice has a disconnected connector followed by a connected one
// whose encoder can be driven by the second and third crtc.
func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		res: drm.Resources{
			Crtcs:      []uint32{50, testCrtc, 52},
			Connectors: []uint32{30, testConnector},
			Encoders:   []uint32{testEncoder},
		},
		connectors: map[uint32]*drm.Connector{
			30: {ID: 30, Type: 11, TypeID: 1, Connection: drm.Disconnected, Encoders: []uint32{testEncoder}},
			testConnector: {
				ID: testConnector, Type: 14, TypeID: 1, Connection: drm.Connected,
				WidthMM: 344, HeightMM: 194,
				Encoders: []uint32{testEncoder},
				Modes:    testModes(),
			},
		},
		encoders: map[uint32]*drm.Encoder{
			testEncoder: {ID: testEncoder, PossibleCrtcs: 0b110},
		},
		handles: map[int]uint32{},
		nextFB:  100,
	}
}

func (d *fakeDevice) callNames() []string {
	var names []string
	for _, c := range d.calls {
		names = append(names, c.name)
	}
	return names
}

func (d *fakeDevice) count(name string) int {
	var n int
	for _, c := range d.calls {
		if c.name == name {
			n++
		}
	}
	return n
}

func (d *fakeDevice) reset() { d.calls = nil }

func (d *fakeDevice) Resources() (*drm.Resources, error) {
	d.calls = append(d.calls, fakeCall{name: `Resources`})
	if d.errResources != nil {
		return nil, d.errResources
	}
	res := d.res
	return &res, nil
}

func (d *fakeDevice) Connector(id uint32) (*drm.Connector, error) {
	d.calls = append(d.calls, fakeCall{name: `Connector`})
	conn, ok := d.connectors[id]
	if !ok {
		return nil, os.NewSyscallError(`DRM_IOCTL_MODE_GETCONNECTOR`, syscall.ENOENT)
	}
	c := *conn
	return &c, nil
}

func (d *fakeDevice) Encoder(id uint32) (*drm.Encoder, error) {
	d.calls = append(d.calls, fakeCall{name: `Encoder`})
	enc, ok := d.encoders[id]
	if !ok {
		return nil, os.NewSyscallError(`DRM_IOCTL_MODE_GETENCODER`, syscall.ENOENT)
	}
	e := *enc
	return &e, nil
}

func (d *fakeDevice) SetCrtc(crtcID, fbID uint32, connectors []uint32, mode *drm.ModeInfo) error {
	d.calls = append(d.calls, fakeCall{name: `SetCrtc`, crtc: crtcID, fb: fbID, connectors: connectors, mode: mode})
	return d.errSetCrtc
}

func (d *fakeDevice) PageFlip(crtcID, fbID, flags uint32, userData uint64) error {
	d.calls = append(d.calls, fakeCall{name: `PageFlip`, crtc: crtcID, fb: fbID})
	if d.errPageFlip != nil {
		return d.errPageFlip
	}
	if flags&drm.PageFlipEvent == 0 || d.dropEvents {
		return nil
	}
	ev := drm.FlipEvent{UserData: userData, CrtcID: crtcID}
	if d.holdEvents {
		d.held = append(d.held, ev)
	} else {
		d.queued = append(d.queued, ev)
	}
	return nil
}

// release queues the held completions in submission order.
func (d *fakeDevice) release() {
	d.queued = append(d.queued, d.held...)
	d.held = nil
}

func (d *fakeDevice) HandleEvent(timeout time.Duration, onFlip drm.PageFlipHandler) error {
	d.calls = append(d.calls, fakeCall{name: `HandleEvent`, timeout: timeout})
	if d.errEvent != nil {
		return d.errEvent
	}
	if len(d.queued) == 0 {
		return nil
	}
	ev := d.queued[0]
	d.queued = d.queued[1:]
	onFlip(ev)
	return nil
}

func (d *fakeDevice) PrimeFDToHandle(fd int) (uint32, error) {
	d.calls = append(d.calls, fakeCall{name: `PrimeFDToHandle`})
	h, ok := d.handles[fd]
	if !ok {
		return 0, os.NewSyscallError(`DRM_IOCTL_PRIME_FD_TO_HANDLE`, syscall.EBADF)
	}
	return h, nil
}

func (d *fakeDevice) AddFB2(cmd *drm.FramebufferCmd) (uint32, error) {
	c := *cmd
	d.calls = append(d.calls, fakeCall{name: `AddFB2`, cmd: &c})
	if d.errAddFB != nil {
		return 0, d.errAddFB
	}
	d.nextFB++
	return d.nextFB, nil
}

func (d *fakeDevice) RmFB(fbID uint32) error {
	d.calls = append(d.calls, fakeCall{name: `RmFB`, fb: fbID})
	if d.errRmFB != nil {
		return d.errRmFB
	}
	d.removed = append(d.removed, fbID)
	return nil
}
