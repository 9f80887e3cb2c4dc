package display_test

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlehn/drmfb/display"
	"github.com/srlehn/drmfb/drm"
)

func testOutput() display.Output {
	m := mode(1920, 1080, 60, true)
	return display.Output{
		ConnectorID: testConnector,
		CrtcID:      testCrtc,
		Mode:        display.Mode{Width: 1920, Height: 1080, Refresh: 60, Preferred: true, Info: m},
	}
}

func newTestScheduler() (*display.Scheduler, *fakeDevice) {
	dev := newFakeDevice()
	return display.NewScheduler(dev, testOutput(), nil), dev
}

func TestSchedulerFirstPostEnables(t *testing.T) {
	s, dev := newTestScheduler()
	assert.Equal(t, display.StateDisabled, s.State())

	require.NoError(t, s.Post(7))
	assert.Equal(t, display.StateEnabled, s.State())
	assert.Equal(t, uint32(7), s.Current())
	require.Equal(t, []string{`SetCrtc`}, dev.callNames())
	c := dev.calls[0]
	assert.Equal(t, uint32(testCrtc), c.crtc)
	assert.Equal(t, uint32(7), c.fb)
	assert.Equal(t, []uint32{testConnector}, c.connectors)
	require.NotNil(t, c.mode)
	assert.Equal(t, uint16(1920), c.mode.Hdisplay)
}

func TestSchedulerRepostIsNoop(t *testing.T) {
	s, dev := newTestScheduler()
	require.NoError(t, s.Post(7))
	dev.reset()
	require.NoError(t, s.Post(7))
	assert.Empty(t, dev.calls)
	assert.Equal(t, display.StateEnabled, s.State())
}

func TestSchedulerFlip(t *testing.T) {
	s, dev := newTestScheduler()
	require.NoError(t, s.Post(7))
	dev.reset()

	require.NoError(t, s.Post(8))
	assert.Equal(t, []string{`PageFlip`}, dev.callNames())
	assert.Equal(t, display.StateFlipPending, s.State())
	assert.Equal(t, uint32(7), s.Current())
	assert.Equal(t, uint32(8), s.Pending())

	// the next post drains the completion first
	dev.reset()
	require.NoError(t, s.Post(9))
	assert.Equal(t, []string{`HandleEvent`, `PageFlip`}, dev.callNames())
	assert.Equal(t, uint32(8), s.Current())
	assert.Equal(t, uint32(9), s.Pending())

	s.Await()
	assert.Equal(t, display.StateEnabled, s.State())
	assert.Equal(t, uint32(9), s.Current())
	assert.Zero(t, s.Pending())

	// nothing pending: no wait
	dev.reset()
	s.Await()
	assert.Empty(t, dev.calls)
}

func TestSchedulerAwaitForcesProgress(t *testing.T) {
	s, dev := newTestScheduler()
	dev.dropEvents = true
	require.NoError(t, s.Post(7))
	require.NoError(t, s.Post(8))
	s.Await()
	assert.Equal(t, uint32(8), s.Current())
	assert.Zero(t, s.Pending())
}

func TestSchedulerFlipTimeout(t *testing.T) {
	s, dev := newTestScheduler()
	s.SetFlipTimeout(20 * time.Millisecond)
	require.NoError(t, s.Post(7))
	require.NoError(t, s.Post(8))
	dev.errEvent = drm.ErrTimeout
	dev.reset()

	require.NoError(t, s.Post(9))
	require.Equal(t, []string{`HandleEvent`, `PageFlip`}, dev.callNames())
	assert.Equal(t, 20*time.Millisecond, dev.calls[0].timeout)
	assert.Equal(t, uint32(8), s.Current())
	assert.Equal(t, uint32(9), s.Pending())
}

func TestSchedulerLateCompletionAfterTimeout(t *testing.T) {
	s, dev := newTestScheduler()
	s.SetFlipTimeout(20 * time.Millisecond)
	require.NoError(t, s.Post(7))
	dev.holdEvents = true
	require.NoError(t, s.Post(8))

	// the completion of 8 does not arrive in time
	dev.errEvent = drm.ErrTimeout
	require.NoError(t, s.Post(9))
	assert.Equal(t, uint32(8), s.Current())
	assert.Equal(t, uint32(9), s.Pending())

	// late completion of 8 first, then the one of 9
	dev.errEvent = nil
	dev.release()
	dev.reset()
	s.Await()
	assert.Equal(t, []string{`HandleEvent`, `HandleEvent`}, dev.callNames())
	assert.Equal(t, uint32(9), s.Current())
	assert.Zero(t, s.Pending())
	assert.Empty(t, dev.queued)

	// following flips pair with their own completions
	dev.holdEvents = false
	require.NoError(t, s.Post(10))
	s.Await()
	assert.Equal(t, uint32(10), s.Current())
	assert.Empty(t, dev.queued)
}

func TestSchedulerLateCompletionOnly(t *testing.T) {
	s, dev := newTestScheduler()
	require.NoError(t, s.Post(7))
	dev.holdEvents = true
	require.NoError(t, s.Post(8))
	dev.errEvent = drm.ErrTimeout
	s.SetFlipTimeout(20 * time.Millisecond)
	require.NoError(t, s.Post(9))
	dev.errEvent = nil

	// the completion of 9 never comes: the stale one of 8 must not count
	dev.held = dev.held[:1]
	dev.release()
	dev.reset()
	s.Await()
	assert.Equal(t, uint32(9), s.Current())
	assert.Zero(t, s.Pending())
	assert.Equal(t, 2, dev.count(`HandleEvent`))
}

func TestSchedulerRelease(t *testing.T) {
	s, dev := newTestScheduler()
	require.NoError(t, s.Post(7))
	require.NoError(t, s.Post(8))

	// releasing the buffer being flipped away from waits for the flip
	dev.reset()
	s.Release(7)
	assert.Equal(t, []string{`HandleEvent`}, dev.callNames())
	assert.Equal(t, uint32(8), s.Current())

	dev.reset()
	s.Release(8)
	assert.Empty(t, dev.calls)
	assert.Equal(t, display.StateDisabled, s.State())

	// shown again with a modeset
	require.NoError(t, s.Post(9))
	assert.Equal(t, []string{`SetCrtc`}, dev.callNames())
}

func TestSchedulerFlipBusy(t *testing.T) {
	s, dev := newTestScheduler()
	require.NoError(t, s.Post(7))
	dev.errPageFlip = os.NewSyscallError(`DRM_IOCTL_MODE_PAGE_FLIP`, syscall.EBUSY)

	err := s.Post(8)
	assert.ErrorIs(t, err, display.ErrFlipBusy)
	assert.ErrorIs(t, err, syscall.EBUSY)
	assert.Equal(t, uint32(7), s.Current())
	assert.Equal(t, display.StateEnabled, s.State())
}

func TestSchedulerFlipFailed(t *testing.T) {
	s, dev := newTestScheduler()
	require.NoError(t, s.Post(7))
	dev.errPageFlip = os.NewSyscallError(`DRM_IOCTL_MODE_PAGE_FLIP`, syscall.EINVAL)

	err := s.Post(8)
	assert.ErrorIs(t, err, display.ErrFlipFailed)
	assert.ErrorIs(t, err, syscall.EINVAL)
	assert.Zero(t, s.Current())
	assert.Equal(t, display.StateDisabled, s.State())

	// recovers with a modeset
	dev.errPageFlip = nil
	dev.reset()
	require.NoError(t, s.Post(8))
	assert.Equal(t, []string{`SetCrtc`}, dev.callNames())
}

func TestSchedulerEnableFailed(t *testing.T) {
	s, dev := newTestScheduler()
	dev.errSetCrtc = os.NewSyscallError(`DRM_IOCTL_MODE_SETCRTC`, syscall.EACCES)
	err := s.Post(7)
	assert.ErrorIs(t, err, display.ErrCrtcEnable)
	assert.Equal(t, display.StateDisabled, s.State())

	assert.ErrorIs(t, s.Post(0), display.ErrInvalidBuffer)
}

func TestSchedulerDisable(t *testing.T) {
	s, dev := newTestScheduler()

	// nothing scanned out
	require.NoError(t, s.SetScreenEnabled(false))
	require.NoError(t, s.SetScreenEnabled(true))
	assert.Empty(t, dev.calls)

	require.NoError(t, s.Post(7))
	require.NoError(t, s.Post(8))
	dev.reset()
	require.NoError(t, s.SetScreenEnabled(false))
	require.Equal(t, []string{`HandleEvent`, `SetCrtc`}, dev.callNames())
	c := dev.calls[1]
	assert.Zero(t, c.fb)
	assert.Nil(t, c.connectors)
	assert.Nil(t, c.mode)
	assert.Equal(t, display.StateDisabled, s.State())
	assert.Zero(t, s.Current())

	// enable is deferred to the next post
	dev.reset()
	require.NoError(t, s.SetScreenEnabled(true))
	assert.Empty(t, dev.calls)
	require.NoError(t, s.Post(8))
	assert.Equal(t, []string{`SetCrtc`}, dev.callNames())
}

func TestSchedulerDisableFailed(t *testing.T) {
	s, dev := newTestScheduler()
	require.NoError(t, s.Post(7))
	dev.errSetCrtc = os.NewSyscallError(`DRM_IOCTL_MODE_SETCRTC`, syscall.EINVAL)
	err := s.SetScreenEnabled(false)
	assert.ErrorIs(t, err, display.ErrCrtcDisable)
	assert.Equal(t, uint32(7), s.Current())
	assert.Equal(t, display.StateEnabled, s.State())
}

func TestSchedulerSwapInterval(t *testing.T) {
	s, _ := newTestScheduler()
	for _, n := range []int{-1, 0, 2, 60} {
		assert.ErrorIs(t, s.SetSwapInterval(n), display.ErrInvalidSwapInterval, `interval %d`, n)
		assert.Equal(t, display.SwapInterval, s.SwapInterval())
	}
	assert.NoError(t, s.SetSwapInterval(1))
	assert.NoError(t, s.CompositionComplete())
}
