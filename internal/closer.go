package internal

import (
	"reflect"
	"sync"

	"github.com/srlehn/drmfb/internal/errors"
)

// Closer runs registered teardown functions in reverse order of
// registration. Each registered closer runs at most once.
type Closer interface {
	Close() error
	OnClose(onClose func() error)
	AddClosers(closers ...interface{ Close() error })
}

var _ Closer = (*lifoCloser)(nil)

type lifoCloser struct {
	mu           sync.Mutex
	onCloseFuncs []func() error
	initObjs     map[initObjKey]struct{}
}

type initObjKey struct {
	p uintptr
	t string
}

func NewCloser() Closer { return &lifoCloser{} }

func (c *lifoCloser) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	funcs := c.onCloseFuncs
	c.onCloseFuncs = nil
	c.mu.Unlock()

	var errs []error
	for i := len(funcs) - 1; i > -1; i-- {
		if funcs[i] == nil {
			continue
		}
		if err := funcs[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *lifoCloser) OnClose(onClose func() error) {
	if c == nil || onClose == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onCloseFuncs = append(c.onCloseFuncs, onClose)
}

func (c *lifoCloser) AddClosers(closers ...interface{ Close() error }) {
	if c == nil || len(closers) == 0 {
		return
	}
	for _, cl := range closers {
		if cl == nil {
			continue
		}
		val := reflect.ValueOf(cl)
		if val.Kind() == reflect.Pointer && val.IsNil() {
			continue
		}
		var key initObjKey
		switch val.Kind() {
		case reflect.Pointer, reflect.UnsafePointer, reflect.Chan:
			key = initObjKey{p: val.Pointer(), t: val.Type().String()}
		default:
			// values without identity are never deduplicated
			c.OnClose(cl.Close)
			continue
		}
		c.mu.Lock()
		if c.initObjs == nil {
			c.initObjs = make(map[initObjKey]struct{})
		}
		_, added := c.initObjs[key]
		if !added {
			c.initObjs[key] = struct{}{}
		}
		c.mu.Unlock()
		if added {
			continue
		}
		c.OnClose(func() error {
			defer func() {
				c.mu.Lock()
				delete(c.initObjs, key)
				c.mu.Unlock()
			}()
			return errors.Wrap(cl.Close())
		})
	}
}
