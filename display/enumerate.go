package display

import (
	"github.com/srlehn/drmfb/drm"
	"github.com/srlehn/drmfb/internal/errors"
)

// Enumerate returns the first connected connector in driver order and the
// first CRTC that the connector's first encoder can be driven by.
func Enumerate(dev Device) (*drm.Connector, uint32, error) {
	if dev == nil {
		return nil, 0, errors.NilParam()
	}
	res, err := dev.Resources()
	if err != nil {
		return nil, 0, errors.Wrap(err)
	}
	conn, err := findConnector(dev, res)
	if err != nil {
		return nil, 0, err
	}
	crtcID, err := findCrtc(dev, res, conn)
	if err != nil {
		return conn, 0, err
	}
	return conn, crtcID, nil
}

func findConnector(dev Device, res *drm.Resources) (*drm.Connector, error) {
	for _, id := range res.Connectors {
		conn, err := dev.Connector(id)
		if err != nil {
			return nil, errors.Wrap(err)
		}
		if conn != nil && conn.Connection == drm.Connected {
			return conn, nil
		}
	}
	return nil, errors.New(ErrNoConnector)
}

func findCrtc(dev Device, res *drm.Resources, conn *drm.Connector) (uint32, error) {
	if len(conn.Encoders) == 0 {
		return 0, errors.New(ErrNoCrtc)
	}
	enc, err := dev.Encoder(conn.Encoders[0])
	if err != nil {
		return 0, errors.Wrap(err)
	}
	if enc == nil {
		return 0, errors.New(ErrNoCrtc)
	}
	// possible_crtcs is a bitmask over the crtc list, only 32 wide
	for i, crtcID := range res.Crtcs {
		if i >= 32 {
			break
		}
		if enc.PossibleCrtcs&(1<<uint(i)) != 0 {
			return crtcID, nil
		}
	}
	return 0, errors.New(ErrNoCrtc)
}
