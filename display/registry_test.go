package display_test

import (
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlehn/drmfb/display"
	"github.com/srlehn/drmfb/format"
)

func scanoutBuffer(primeFD int) *display.Buffer {
	return &display.Buffer{
		Width:   1920,
		Height:  1080,
		Stride:  1920 * 4,
		Format:  format.RGBA8888,
		Usage:   display.UsageHWFB | 0x3,
		PrimeFD: primeFD,
	}
}

func TestRegistryImport(t *testing.T) {
	dev := newFakeDevice()
	dev.handles[9] = 3
	reg := display.NewRegistry(dev, nil)

	buf := scanoutBuffer(9)
	require.NoError(t, reg.Import(buf))
	assert.Equal(t, uint32(101), buf.FramebufferID)
	require.Equal(t, []string{`PrimeFDToHandle`, `AddFB2`}, dev.callNames())
	cmd := dev.calls[1].cmd
	assert.Equal(t, uint32(1920), cmd.Width)
	assert.Equal(t, uint32(1080), cmd.Height)
	assert.Equal(t, uint32(format.XBGR8888), cmd.PixelFormat)
	assert.Equal(t, [4]uint32{3}, cmd.Handles)
	assert.Equal(t, [4]uint32{1920 * 4}, cmd.Pitches)
	assert.Equal(t, [4]uint32{}, cmd.Offsets)

	fbID, ok := reg.Lookup(3)
	assert.True(t, ok)
	assert.Equal(t, uint32(101), fbID)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryReimport(t *testing.T) {
	dev := newFakeDevice()
	dev.handles[9] = 3
	dev.handles[10] = 3 // second fd of the same buffer
	reg := display.NewRegistry(dev, nil)

	require.NoError(t, reg.Import(scanoutBuffer(9)))
	buf := scanoutBuffer(10)
	require.NoError(t, reg.Import(buf))
	assert.Equal(t, uint32(101), buf.FramebufferID)
	assert.Equal(t, 1, dev.count(`AddFB2`))
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryIgnoresNonScanout(t *testing.T) {
	dev := newFakeDevice()
	dev.handles[9] = 3
	reg := display.NewRegistry(dev, nil)

	buf := scanoutBuffer(9)
	buf.Usage = 0x933 &^ display.UsageHWFB
	require.NoError(t, reg.Import(buf))
	assert.Zero(t, buf.FramebufferID)
	assert.Empty(t, dev.calls)
	assert.Zero(t, reg.Len())
}

func TestRegistryImportErrors(t *testing.T) {
	dev := newFakeDevice()
	dev.handles[9] = 3
	reg := display.NewRegistry(dev, nil)

	// unknown prime fd
	buf := scanoutBuffer(11)
	err := reg.Import(buf)
	assert.ErrorIs(t, err, display.ErrImportFailed)
	assert.ErrorIs(t, err, syscall.EBADF)
	assert.Zero(t, buf.FramebufferID)

	buf = scanoutBuffer(9)
	buf.Format = format.HAL(0x7fa30c06)
	err = reg.Import(buf)
	assert.ErrorIs(t, err, display.ErrUnsupportedFormat)
	assert.Zero(t, buf.FramebufferID)
	assert.Zero(t, dev.count(`AddFB2`))

	dev.errAddFB = os.NewSyscallError(`DRM_IOCTL_MODE_ADDFB2`, syscall.EINVAL)
	buf = scanoutBuffer(9)
	err = reg.Import(buf)
	assert.ErrorIs(t, err, display.ErrImportFailed)
	assert.Zero(t, buf.FramebufferID)
	assert.Zero(t, reg.Len())

	assert.Error(t, reg.Import(nil))
}

func TestRegistryEntriesOrdered(t *testing.T) {
	dev := newFakeDevice()
	reg := display.NewRegistry(dev, nil)
	for fd, handle := range map[int]uint32{20: 8, 21: 2, 22: 5} {
		dev.handles[fd] = handle
	}
	for _, fd := range []int{20, 21, 22} {
		require.NoError(t, reg.Import(scanoutBuffer(fd)))
	}
	entries := reg.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, uint32(2), entries[0].Handle)
	assert.Equal(t, uint32(5), entries[1].Handle)
	assert.Equal(t, uint32(8), entries[2].Handle)
	assert.Equal(t, uint32(101), entries[2].FramebufferID)
}

func TestRegistryHandleReusedByNewBuffer(t *testing.T) {
	dev := newFakeDevice()
	dev.handles[3] = 1
	reg := display.NewRegistry(dev, nil)
	var removed []uint32
	reg.OnRemove(func(fbID uint32) { removed = append(removed, fbID) })

	a := &display.Buffer{Width: 640, Height: 480, Stride: 640 * 4, Format: format.RGBX8888, Usage: display.UsageHWFB, PrimeFD: 3}
	require.NoError(t, reg.Import(a))
	assert.Equal(t, uint32(101), a.FramebufferID)

	// a freed and reallocated buffer gets the same handle back
	dev.handles[4] = 1
	b := &display.Buffer{Width: 1920, Height: 1080, Stride: 1920 * 2, Format: format.RGB565, Usage: display.UsageHWFB, PrimeFD: 4}
	require.NoError(t, reg.Import(b))
	assert.Equal(t, uint32(102), b.FramebufferID)
	assert.Equal(t, 2, dev.count(`AddFB2`))
	assert.Equal(t, []uint32{101}, dev.removed)
	assert.Equal(t, []uint32{101}, removed)

	entries := reg.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, uint32(102), entries[0].FramebufferID)
	assert.Equal(t, uint32(1920), entries[0].Width)
	assert.Equal(t, format.RGB565, entries[0].Format)
}

func TestRegistryRelease(t *testing.T) {
	dev := newFakeDevice()
	dev.handles[9] = 3
	reg := display.NewRegistry(dev, nil)

	buf := scanoutBuffer(9)
	require.NoError(t, reg.Import(buf))
	require.NoError(t, reg.Release(buf))
	assert.Zero(t, buf.FramebufferID)
	assert.Zero(t, reg.Len())
	assert.Equal(t, []uint32{101}, dev.removed)

	// not imported: nothing to do
	dev.reset()
	require.NoError(t, reg.Release(buf))
	assert.Empty(t, dev.calls)
	require.NoError(t, reg.Forget(3))
	assert.Error(t, reg.Release(nil))

	// imported again after release: a new framebuffer object
	require.NoError(t, reg.Import(buf))
	assert.Equal(t, uint32(102), buf.FramebufferID)

	dev.errRmFB = os.NewSyscallError(`DRM_IOCTL_MODE_RMFB`, syscall.ENOENT)
	err := reg.Release(buf)
	assert.ErrorIs(t, err, display.ErrReleaseFailed)
	assert.ErrorIs(t, err, syscall.ENOENT)
}
