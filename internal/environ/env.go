package environ

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rkoesters/xdg/keyfile"

	"github.com/srlehn/drmfb/internal/consts"
	"github.com/srlehn/drmfb/internal/errors"
	"github.com/srlehn/drmfb/internal/propkeys"
)

// envKeys maps environment variables onto configuration keys.
var envKeys = map[string]string{
	consts.EnvModeForce:   propkeys.ModeForce,
	consts.EnvDevice:      propkeys.Device,
	consts.EnvFlipTimeout: propkeys.FlipTimeout,
}

// EnvToProperties stores env under propkeys.EnvPrefix and sets the
// configuration keys of the recognised non-empty DRMFB_* variables.
func EnvToProperties(env []string) Properties {
	pr := NewProperties()
	for _, v := range env {
		if len(v) == 0 {
			continue
		}
		name, value, _ := strings.Cut(v, `=`)
		pr.SetProperty(propkeys.EnvPrefix+name, value)
		if key, ok := envKeys[name]; ok && len(value) > 0 {
			pr.SetProperty(key, value)
		}
	}
	pr.SetProperty(propkeys.EnvIsLoaded, `true`)
	return pr
}

// ReadConfig parses an xdg keyfile. Keys of a group are stored as
// "<group>.<key>", keys before the first group header as they are.
// Dashes in keys separate components like dots do:
//
//	[drm]
//	mode-force=1920x1080@60
func ReadConfig(r io.Reader) (Properties, error) {
	if r == nil {
		return nil, errors.NilParam()
	}
	kf, err := keyfile.New(r)
	if err != nil {
		return nil, errors.New(err)
	}
	pr := NewProperties()
	for _, group := range kf.Groups() {
		for _, key := range kf.Keys(group) {
			name := strings.ReplaceAll(key, `-`, `.`)
			if len(group) > 0 {
				name = group + `.` + name
			}
			pr.SetProperty(name, kf.Value(group, key))
		}
	}
	return pr, nil
}

// ConfigFilePath returns $XDG_CONFIG_HOME/drmfb/drmfb.conf.
func ConfigFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ``, errors.New(err)
	}
	return filepath.Join(dir, consts.ConfigDirName, consts.ConfigFile), nil
}

// Load returns the configuration of the process: the config file (if it
// exists) overridden by the environment.
func Load() (Properties, error) {
	pr := NewProperties()
	path, err := ConfigFilePath()
	if err == nil {
		f, errOpen := os.Open(path)
		switch {
		case errOpen == nil:
			cfg, errRead := ReadConfig(f)
			_ = f.Close()
			if errRead != nil {
				return nil, errors.WithCause(errors.Errorf(`config file %s`, path), errRead)
			}
			pr.MergeProperties(cfg)
			pr.SetProperty(propkeys.ConfigFileLoaded, path)
		case !os.IsNotExist(errOpen):
			return nil, errors.New(errOpen)
		}
	}
	pr.MergeProperties(EnvToProperties(os.Environ()))
	return pr, nil
}
