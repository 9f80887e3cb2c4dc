package drm

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestIoctlRequestCodes(t *testing.T) {
	if unsafe.Sizeof(uintptr(0)) != 8 {
		t.Skip(`request codes below are the 64-bit ones`)
	}
	assert.Equal(t, uintptr(0x641e), ioctlSetMaster)
	assert.Equal(t, uintptr(0xc010640c), ioctlGetCap)
	assert.Equal(t, uintptr(0xc00c642d), ioctlPrimeHandleToFD)
	assert.Equal(t, uintptr(0xc00c642e), ioctlPrimeFDToHandle)
	assert.Equal(t, uintptr(0xc04064a0), ioctlModeGetResources)
	assert.Equal(t, uintptr(0xc06864a2), ioctlModeSetCrtc)
	assert.Equal(t, uintptr(0xc01464a6), ioctlModeGetEncoder)
	assert.Equal(t, uintptr(0xc05064a7), ioctlModeGetConnector)
	assert.Equal(t, uintptr(0xc00464af), ioctlModeRmFB)
	assert.Equal(t, uintptr(0xc01864b0), ioctlModePageFlip)
	assert.Equal(t, uintptr(0xc02064b2), ioctlModeCreateDumb)
	assert.Equal(t, uintptr(0xc01064b3), ioctlModeMapDumb)
	assert.Equal(t, uintptr(0xc00464b4), ioctlModeDestroyDumb)
	assert.Equal(t, uintptr(0xc06864b8), ioctlModeAddFB2)
}

func TestModeInfoLayout(t *testing.T) {
	// struct drm_mode_modeinfo
	assert.Equal(t, uintptr(68), unsafe.Sizeof(ModeInfo{}))
	assert.Equal(t, uintptr(24), unsafe.Offsetof(ModeInfo{}.Vrefresh))
	assert.Equal(t, uintptr(36), unsafe.Offsetof(ModeInfo{}.Name))
}
