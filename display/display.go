package display

import (
	"log/slog"
	"sync"
	"time"

	"github.com/srlehn/drmfb/internal"
	"github.com/srlehn/drmfb/internal/environ"
	"github.com/srlehn/drmfb/internal/errors"
	"github.com/srlehn/drmfb/internal/logx"
	"github.com/srlehn/drmfb/internal/propkeys"
)

var _ interface {
	logx.LoggerProvider
	environ.Properties
} = (*Framebuffer)(nil)

type properties = environ.Properties

// Framebuffer is an open display. It serialises its operations, so it
// can be shared between goroutines.
type Framebuffer struct {
	properties

	mu     sync.Mutex
	dev    Device
	logger *slog.Logger
	closer internal.Closer
	closed bool

	out   Output
	desc  Descriptor
	sched *Scheduler
	reg   *Registry
}

// Open finds the connected output of dev, selects its mode and returns the
// handle presenting buffers on it. The crtc stays untouched until the
// first Post.
//
// The mode is forced by the propkeys.ModeForce property ("1920x1080@60"),
// the flip wait is bounded by propkeys.FlipTimeout ("500ms").
func Open(dev Device, opts ...Option) (_ *Framebuffer, err error) {
	if dev == nil {
		return nil, errors.NilParam()
	}
	fb := &Framebuffer{
		properties: environ.NewProperties(),
		dev:        dev,
		closer:     internal.NewCloser(),
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, fb.closer.Close())
		}
	}()
	if err := fb.SetOptions(opts...); err != nil {
		return nil, err
	}

	conn, crtcID, err := Enumerate(dev)
	if err != nil {
		logx.IsErr(err, fb, slog.LevelError)
		return nil, err
	}
	override := fb.modeOverride()
	mode, err := SelectMode(conn, override)
	if err != nil {
		logx.IsErr(err, fb, slog.LevelError, `override`, override.String())
		return nil, err
	}
	if override.Active() {
		logx.Info(`forcing mode`, fb, `mode`, mode)
	}
	fb.out = Output{
		ConnectorID:   conn.ID,
		ConnectorName: conn.Name(),
		CrtcID:        crtcID,
		Mode:          mode,
		WidthMM:       conn.WidthMM,
		HeightMM:      conn.HeightMM,
	}
	fb.desc = NewDescriptor(fb.out)
	fb.sched = NewScheduler(dev, fb.out, fb)
	fb.sched.SetFlipTimeout(fb.flipTimeout())
	fb.reg = NewRegistry(dev, fb)
	fb.reg.OnRemove(fb.sched.Release)

	logx.Info(`display opened`, fb, `connector`, fb.out.ConnectorID, `name`, fb.out.ConnectorName,
		`crtc`, fb.out.CrtcID, `mode`, fb.out.Mode)
	return fb, nil
}

func (fb *Framebuffer) modeOverride() ModeOverride {
	s, ok := fb.Property(propkeys.ModeForce)
	if !ok || len(s) == 0 {
		return ModeOverride{}
	}
	o := ParseModeOverride(s)
	if !o.Active() {
		logx.Warn(`ignoring malformed mode override`, fb, `value`, s)
	}
	return o
}

func (fb *Framebuffer) flipTimeout() time.Duration {
	s, ok := fb.Property(propkeys.FlipTimeout)
	if !ok || len(s) == 0 {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		logx.Warn(`ignoring malformed flip timeout`, fb, `value`, s)
		return 0
	}
	return d
}

func (fb *Framebuffer) Logger() *slog.Logger {
	if fb == nil {
		return nil
	}
	return fb.logger
}

func (fb *Framebuffer) check() error {
	if fb == nil || fb.sched == nil {
		return errors.NilReceiver()
	}
	if fb.closed {
		return errors.New(ErrClosed)
	}
	return nil
}

// Post scans out buf. buf must have been imported with ImportBuffer.
func (fb *Framebuffer) Post(buf *Buffer) error {
	if fb == nil {
		return errors.NilReceiver()
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if err := fb.check(); err != nil {
		return err
	}
	if buf == nil || buf.FramebufferID == 0 {
		return errors.New(ErrInvalidBuffer)
	}
	return fb.sched.Post(buf.FramebufferID)
}

// ImportBuffer registers a scanout buffer (UsageHWFB) with the card and
// sets buf.FramebufferID. Other buffers are left alone.
func (fb *Framebuffer) ImportBuffer(buf *Buffer) error {
	if fb == nil {
		return errors.NilReceiver()
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if err := fb.check(); err != nil {
		return err
	}
	return fb.reg.Import(buf)
}

// ReleaseBuffer removes the framebuffer object of an imported buffer and
// clears buf.FramebufferID. It has to be called before the buffer is freed,
// the kernel hands its handle to the next allocation. Releasing the shown
// buffer turns the screen off until the next Post.
func (fb *Framebuffer) ReleaseBuffer(buf *Buffer) error {
	if fb == nil {
		return errors.NilReceiver()
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if err := fb.check(); err != nil {
		return err
	}
	return fb.reg.Release(buf)
}

func (fb *Framebuffer) SetScreenEnabled(enable bool) error {
	if fb == nil {
		return errors.NilReceiver()
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if err := fb.check(); err != nil {
		return err
	}
	return fb.sched.SetScreenEnabled(enable)
}

func (fb *Framebuffer) SetSwapInterval(interval int) error {
	if fb == nil {
		return errors.NilReceiver()
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if err := fb.check(); err != nil {
		return err
	}
	return fb.sched.SetSwapInterval(interval)
}

func (fb *Framebuffer) CompositionComplete() error {
	if fb == nil {
		return errors.NilReceiver()
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if err := fb.check(); err != nil {
		return err
	}
	return fb.sched.CompositionComplete()
}

// Wait blocks until an outstanding page flip has completed.
func (fb *Framebuffer) Wait() error {
	if fb == nil {
		return errors.NilReceiver()
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if err := fb.check(); err != nil {
		return err
	}
	fb.sched.Await()
	return nil
}

func (fb *Framebuffer) Descriptor() Descriptor {
	if fb == nil {
		return Descriptor{}
	}
	return fb.desc
}

func (fb *Framebuffer) Output() Output {
	if fb == nil {
		return Output{}
	}
	return fb.out
}

func (fb *Framebuffer) State() State {
	if fb == nil || fb.sched == nil {
		return StateDisabled
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.sched.State()
}

// Framebuffers lists the imported buffers ordered by handle.
func (fb *Framebuffer) Framebuffers() []RegistryEntry {
	if fb == nil || fb.reg == nil {
		return nil
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.reg.Entries()
}

// Close releases the resources handed over with CloseWith.
// The crtc keeps scanning out the current framebuffer.
func (fb *Framebuffer) Close() error {
	if fb == nil {
		return nil
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.closed {
		return nil
	}
	fb.closed = true
	return fb.closer.Close()
}
