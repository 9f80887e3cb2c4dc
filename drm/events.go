package drm

import (
	"encoding/binary"

	"github.com/srlehn/drmfb/internal/consts"
	"github.com/srlehn/drmfb/internal/errors"
)

// ParseEvents decodes the struct drm_event records read from a card and
// dispatches page flip completions to onFlip. Other events are skipped.
func ParseEvents(buf []byte, onFlip PageFlipHandler) error {
	for len(buf) > 0 {
		if len(buf) < eventHeaderLen {
			return errors.New(consts.ErrShortEvent)
		}
		typ := binary.NativeEndian.Uint32(buf[0:4])
		length := int(binary.NativeEndian.Uint32(buf[4:8]))
		if length < eventHeaderLen || length > len(buf) {
			return errors.New(consts.ErrShortEvent)
		}
		if typ == EventFlipComplete {
			if length < eventVBlankLen {
				return errors.New(consts.ErrShortEvent)
			}
			if onFlip != nil {
				onFlip(FlipEvent{
					UserData: binary.NativeEndian.Uint64(buf[8:16]),
					Sec:      binary.NativeEndian.Uint32(buf[16:20]),
					Usec:     binary.NativeEndian.Uint32(buf[20:24]),
					Sequence: binary.NativeEndian.Uint32(buf[24:28]),
					CrtcID:   binary.NativeEndian.Uint32(buf[28:32]),
				})
			}
		}
		buf = buf[length:]
	}
	return nil
}
