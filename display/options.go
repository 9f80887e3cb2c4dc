package display

import (
	"io"
	"log/slog"
	"time"

	"github.com/srlehn/drmfb/internal/environ"
	"github.com/srlehn/drmfb/internal/errors"
	"github.com/srlehn/drmfb/internal/propkeys"
)

type Option interface {
	ApplyOption(fb *Framebuffer) error
}

var _ Option = (OptFunc)(nil)

type OptFunc func(*Framebuffer) error

func (o OptFunc) ApplyOption(fb *Framebuffer) error { return o(fb) }

var _ Option = (Options)(nil)

type Options []Option

func (o Options) ApplyOption(fb *Framebuffer) error { return fb.SetOptions([]Option(o)...) }

func (fb *Framebuffer) SetOptions(opts ...Option) error {
	if fb == nil {
		return errors.NilReceiver()
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.ApplyOption(fb); err != nil {
			return errors.Wrap(err)
		}
	}
	return nil
}

// SetSLogger enables logging. A nil handler logs to slog.Default().
func SetSLogger(h slog.Handler, enable bool) Option {
	return OptFunc(func(fb *Framebuffer) error {
		if enable {
			if h == nil {
				fb.logger = slog.Default()
			} else {
				fb.logger = slog.New(h)
			}
		} else {
			fb.logger = nil
		}
		return nil
	})
}

// SetProperties replaces the configuration or merges pr into it.
func SetProperties(pr environ.Properties, merge bool) Option {
	return OptFunc(func(fb *Framebuffer) error {
		if pr == nil {
			return nil
		}
		if merge && fb.properties != nil {
			fb.MergeProperties(pr)
		} else {
			fb.properties = pr
		}
		return nil
	})
}

// SetModeOverride forces a mode ("<width>x<height>[@<refresh>]").
func SetModeOverride(mode string) Option {
	return OptFunc(func(fb *Framebuffer) error {
		fb.SetProperty(propkeys.ModeForce, mode)
		return nil
	})
}

// SetFlipTimeout bounds the wait for a page flip completion.
// 0 waits indefinitely.
func SetFlipTimeout(d time.Duration) Option {
	return OptFunc(func(fb *Framebuffer) error {
		if d < 0 {
			return errors.Errorf(`negative flip timeout %s`, d)
		}
		fb.SetProperty(propkeys.FlipTimeout, d.String())
		return nil
	})
}

// CloseWith hands resources over to the Framebuffer. They are closed in
// reverse order by Close or when Open fails.
func CloseWith(closers ...io.Closer) Option {
	return OptFunc(func(fb *Framebuffer) error {
		for _, cl := range closers {
			fb.closer.AddClosers(cl)
		}
		return nil
	})
}
