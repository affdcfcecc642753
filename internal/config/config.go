package config

type Config interface {
	EnvConfig
	CorsConfig
	SecurityConfig
	BootstrapConfig
	StoreConfig
	EventsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Security
	Bootstrap
	Store
	Events
}

// New returns a Config backed by environment variables and defaults only.
func New() Config {
	return newMainConfig(source{})
}

// Load returns a Config where values from the YAML file at path fill in
// anything the environment does not set. An empty path behaves like New.
func Load(path string) (Config, error) {
	if path == "" {
		return New(), nil
	}
	values, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return newMainConfig(source{file: values}), nil
}

func newMainConfig(src source) mainConfig {
	return mainConfig{
		EnvVars:   EnvVars{src},
		Cors:      Cors{src},
		Security:  Security{src},
		Bootstrap: Bootstrap{src},
		Store:     Store{src},
		Events:    Events{src},
	}
}
