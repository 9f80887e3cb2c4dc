package logx_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srlehn/drmfb/internal/logx"
)

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	prov := logx.Prov(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	logx.Debug(`hidden`, prov)
	logx.Info(`shown`, prov, `crtc`, 31)
	assert.NotContains(t, buf.String(), `hidden`)
	assert.Contains(t, buf.String(), `msg=shown`)
	assert.Contains(t, buf.String(), `crtc=31`)
}

func TestIsErrJoined(t *testing.T) {
	var buf bytes.Buffer
	prov := logx.Prov(slog.New(slog.NewTextHandler(&buf, nil)))
	err := errors.Join(errors.New(`first`), errors.New(`second`))
	assert.True(t, logx.IsErr(err, prov, slog.LevelError))
	assert.Contains(t, buf.String(), `msg=first`)
	assert.Contains(t, buf.String(), `msg=second`)
	assert.False(t, logx.IsErr(nil, prov, slog.LevelError))
}

func TestNilProviders(t *testing.T) {
	assert.NotPanics(t, func() {
		logx.Info(`x`, nil)
		logx.Error(`x`, logx.Prov(nil))
		assert.True(t, logx.IsErr(errors.New(`e`), nil, slog.LevelError))
		logx.Warn(`x`, logx.Prov(logx.Nop()))
	})
}
