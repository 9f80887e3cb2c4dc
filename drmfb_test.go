package drmfb_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlehn/drmfb"
	"github.com/srlehn/drmfb/internal/environ"
	"github.com/srlehn/drmfb/internal/propkeys"
)

func TestDevicePath(t *testing.T) {
	assert.Equal(t, `/dev/dri/card0`, drmfb.DevicePath(nil))
	pr := environ.NewProperties()
	pr.SetProperty(propkeys.Device, `/dev/dri/card1`)
	assert.Equal(t, `/dev/dri/card1`, drmfb.DevicePath(pr))
}

func TestOpenConfiguredDevice(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, `card9`)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, `drmfb`), 0o755))
	conf := "[drm]\ndevice=" + missing + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, `drmfb`, `drmfb.conf`), []byte(conf), 0o644))
	t.Setenv(`XDG_CONFIG_HOME`, dir)
	t.Setenv(`DRMFB_DEVICE`, ``)

	_, err := drmfb.Open(``)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), missing)

	// the environment overrides the config file
	other := filepath.Join(dir, `card8`)
	t.Setenv(`DRMFB_DEVICE`, other)
	_, err = drmfb.Open(``)
	require.Error(t, err)
	assert.Contains(t, err.Error(), other)
}
