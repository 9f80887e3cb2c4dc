package internal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srlehn/drmfb/internal"
	"github.com/srlehn/drmfb/internal/errors"
)

type countCloser struct {
	n     *[]string
	name  string
	fails bool
}

func (c *countCloser) Close() error {
	*c.n = append(*c.n, c.name)
	if c.fails {
		return errors.Errorf(`%s failed`, c.name)
	}
	return nil
}

func TestCloserOrder(t *testing.T) {
	var order []string
	a := &countCloser{n: &order, name: `a`}
	b := &countCloser{n: &order, name: `b`, fails: true}
	cl := internal.NewCloser()
	cl.AddClosers(a, b, a)
	cl.OnClose(func() error { order = append(order, `f`); return nil })

	err := cl.Close()
	assert.Error(t, err)
	assert.Equal(t, []string{`f`, `b`, `a`}, order)

	// second close is a no-op
	assert.NoError(t, cl.Close())
	assert.Len(t, order, 3)
}

func TestCloserNil(t *testing.T) {
	var a *countCloser
	cl := internal.NewCloser()
	cl.AddClosers(a, nil)
	cl.OnClose(nil)
	assert.NoError(t, cl.Close())
}
