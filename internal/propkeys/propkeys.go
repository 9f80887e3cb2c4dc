package propkeys

const (
	EnvPrefix     = `env_`
	GeneralPrefix = `general_`
	DRMPrefix     = `drm.`

	// forced display mode: <width>x<height>[@<refresh>]
	ModeForce = DRMPrefix + `mode.force`
	// path of the control device
	Device = DRMPrefix + `device`
	// page flip wait timeout (time.ParseDuration)
	FlipTimeout = DRMPrefix + `flip.timeout`

	ConfigFileLoaded = GeneralPrefix + `configFileLoaded`
	EnvIsLoaded      = GeneralPrefix + `envIsLoaded`
)
