package display

import (
	"log/slog"
	"syscall"
	"time"

	"github.com/srlehn/drmfb/drm"
	"github.com/srlehn/drmfb/internal/errors"
	"github.com/srlehn/drmfb/internal/logx"
)

// State of the scanout.
type State int

const (
	StateDisabled    State = iota // crtc off, nothing scanned out
	StateEnabled                  // a framebuffer is scanned out
	StateFlipPending              // a flip was submitted and has not completed
)

func (s State) String() string {
	switch s {
	case StateDisabled:
		return `disabled`
	case StateEnabled:
		return `enabled`
	case StateFlipPending:
		return `flip pending`
	}
	return `unknown`
}

// Scheduler switches the framebuffer scanned out by the crtc of an output.
// The first buffer enables the crtc, later ones are flipped in at vblank.
// At most one flip is in flight; submitting the next one waits for the
// previous completion. A Scheduler is not safe for concurrent use.
type Scheduler struct {
	dev     Device
	out     Output
	timeout time.Duration
	logger  logx.LoggerProvider

	current  uint32 // scanned out, 0: none
	pending  uint32 // flip target in flight, 0: none
	interval int

	// event user data of the flip in flight, completions carrying
	// anything else belong to flips given up on earlier
	seq   uint64
	stale bool
}

func NewScheduler(dev Device, out Output, logger logx.LoggerProvider) *Scheduler {
	return &Scheduler{
		dev:      dev,
		out:      out,
		logger:   logger,
		interval: SwapInterval,
	}
}

func (s *Scheduler) Logger() *slog.Logger {
	if s == nil || s.logger == nil {
		return nil
	}
	return s.logger.Logger()
}

// SetFlipTimeout bounds the wait for a flip completion. 0 waits forever.
func (s *Scheduler) SetFlipTimeout(d time.Duration) {
	if s == nil || d < 0 {
		return
	}
	s.timeout = d
}

func (s *Scheduler) FlipTimeout() time.Duration { return s.timeout }

func (s *Scheduler) State() State {
	switch {
	case s.pending != 0:
		return StateFlipPending
	case s.current != 0:
		return StateEnabled
	}
	return StateDisabled
}

func (s *Scheduler) Current() uint32 { return s.current }
func (s *Scheduler) Pending() uint32 { return s.pending }

// Post makes fbID the scanned out framebuffer.
func (s *Scheduler) Post(fbID uint32) error {
	if s == nil || s.dev == nil {
		return errors.NilReceiver()
	}
	if fbID == 0 {
		return errors.New(ErrInvalidBuffer)
	}
	if fbID == s.current {
		return nil
	}
	if s.current == 0 {
		return s.enable(fbID)
	}
	return s.flip(fbID)
}

func (s *Scheduler) enable(fbID uint32) error {
	mode := s.out.Mode.Info
	err := s.dev.SetCrtc(s.out.CrtcID, fbID, []uint32{s.out.ConnectorID}, &mode)
	if err != nil {
		logx.Error(`failed to enable crtc`, s, `crtc`, s.out.CrtcID, `fb`, fbID, `error`, err)
		return errors.WithCause(ErrCrtcEnable, err)
	}
	s.current = fbID
	logx.Debug(`crtc enabled`, s, `crtc`, s.out.CrtcID, `fb`, fbID, `mode`, s.out.Mode)
	return nil
}

func (s *Scheduler) flip(fbID uint32) error {
	s.await()
	seq := s.seq + 1
	err := s.dev.PageFlip(s.out.CrtcID, fbID, drm.PageFlipEvent, seq)
	if err != nil {
		logx.Error(`failed to perform page flip`, s, `crtc`, s.out.CrtcID, `fb`, fbID, `error`, err)
		if errors.Is(err, syscall.EBUSY) {
			return errors.WithCause(ErrFlipBusy, err)
		}
		s.current = 0
		return errors.WithCause(ErrFlipFailed, err)
	}
	s.seq = seq
	s.pending = fbID
	return nil
}

// Await blocks until an outstanding flip has completed.
func (s *Scheduler) Await() {
	if s == nil || s.dev == nil {
		return
	}
	s.await()
}

func (s *Scheduler) await() {
	if s.pending == 0 {
		return
	}
	var err error
	start := time.Now()
	for wait := s.timeout; ; wait = s.timeout - time.Since(start) {
		if s.timeout > 0 && wait <= 0 {
			err = errors.New(drm.ErrTimeout)
			break
		}
		s.stale = false
		err = s.dev.HandleEvent(wait, s.handleFlip)
		// only completions of abandoned flips were read: keep waiting
		if err != nil || s.pending == 0 || !s.stale {
			break
		}
	}
	if s.pending == 0 {
		return
	}
	// the flip is assumed done, otherwise no further post could proceed
	logx.Error(`event handling returned without flipping`, s, `pending`, s.pending, `error`, err)
	s.current = s.pending
	s.pending = 0
}

func (s *Scheduler) handleFlip(ev drm.FlipEvent) {
	if s.pending == 0 || ev.UserData != s.seq {
		logx.Debug(`ignoring stale flip completion`, s, `user_data`, ev.UserData, `pending`, s.pending)
		s.stale = true
		return
	}
	s.current = s.pending
	s.pending = 0
}

// Release prepares fbID for removal: a flip to or away from it is waited
// for, and the scanout is marked disabled if fbID is still shown, as the
// kernel turns the crtc off when its framebuffer is removed.
func (s *Scheduler) Release(fbID uint32) {
	if s == nil || s.dev == nil || fbID == 0 {
		return
	}
	if s.pending == fbID || s.current == fbID {
		s.await()
	}
	if s.current == fbID {
		s.current = 0
	}
}

// SetScreenEnabled(false) turns the crtc off. The crtc is enabled again by
// the next Post, so SetScreenEnabled(true) does nothing.
func (s *Scheduler) SetScreenEnabled(enable bool) error {
	if s == nil || s.dev == nil {
		return errors.NilReceiver()
	}
	logx.Info(`updating screen state`, s, `enable`, enable)
	if enable || s.current == 0 {
		return nil
	}
	s.await()
	if err := s.dev.SetCrtc(s.out.CrtcID, 0, nil, nil); err != nil {
		logx.Error(`failed to disable crtc`, s, `crtc`, s.out.CrtcID, `error`, err)
		return errors.WithCause(ErrCrtcDisable, err)
	}
	s.current = 0
	return nil
}

// SetSwapInterval accepts only SwapInterval.
func (s *Scheduler) SetSwapInterval(interval int) error {
	if interval != SwapInterval {
		return errors.WithCause(ErrInvalidSwapInterval, errors.Errorf(`interval %d`, interval))
	}
	if s != nil {
		s.interval = interval
	}
	return nil
}

func (s *Scheduler) SwapInterval() int {
	if s == nil {
		return SwapInterval
	}
	return s.interval
}

// CompositionComplete has nothing to do for a page flipping device.
func (s *Scheduler) CompositionComplete() error { return nil }
