package display

import (
	"fmt"

	"github.com/srlehn/drmfb/format"
)

// SwapInterval is the only supported swap interval.
const SwapInterval = 1

// Descriptor describes the framebuffer device to its clients.
// It is built once by Open.
type Descriptor struct {
	Flags         uint32
	Width, Height uint32
	Stride        uint32 // pixels
	Format        format.HAL
	XDPI, YDPI    float64
	FPS           float64

	MinSwapInterval, MaxSwapInterval int
}

// NewDescriptor builds the descriptor of an output.
func NewDescriptor(out Output) Descriptor {
	xdpi, ydpi := out.DPI()
	return Descriptor{
		Width:  out.Mode.Width,
		Height: out.Mode.Height,
		Stride: out.Mode.Width,
		// clients render RGBA, the wire format is chosen per buffer
		Format:          format.RGBA8888,
		XDPI:            xdpi,
		YDPI:            ydpi,
		FPS:             float64(out.Mode.Refresh),
		MinSwapInterval: SwapInterval,
		MaxSwapInterval: SwapInterval,
	}
}

func (d Descriptor) String() string {
	return fmt.Sprintf(`%dx%d stride=%d format=%s dpi=%.1fx%.1f fps=%.0f swap=%d..%d`,
		d.Width, d.Height, d.Stride, d.Format, d.XDPI, d.YDPI, d.FPS, d.MinSwapInterval, d.MaxSwapInterval)
}
