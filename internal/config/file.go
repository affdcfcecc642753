package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the environment variables as a YAML document.
type fileConfig struct {
	Port     string `yaml:"port"`
	AppName  string `yaml:"app_name"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`

	Cors struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`

	Security struct {
		SessionTTL           int    `yaml:"session_ttl"`
		SessionCookie        string `yaml:"session_cookie"`
		AllowAccountCreation *bool  `yaml:"allow_account_creation"`
	} `yaml:"security"`

	Bootstrap struct {
		RootUser     string `yaml:"root_user"`
		RootPassword string `yaml:"root_password"`
		RecreateRoot *bool  `yaml:"recreate_root"`
	} `yaml:"bootstrap"`

	Store struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"store"`

	Events struct {
		Replay int `yaml:"replay"`
		Buffer int `yaml:"buffer"`
	} `yaml:"events"`
}

func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "[config readFile] failed to read config file")
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, errors.Wrapf(err, "[config readFile] failed to parse %s", path)
	}
	return fc.values(), nil
}

// values flattens the document into the environment variable namespace.
func (fc fileConfig) values() map[string]string {
	v := map[string]string{
		portEnvVar:        fc.Port,
		appNameVar:        fc.AppName,
		envVar:            fc.Env,
		logLevelEnvVar:    fc.LogLevel,
		allowedOriginsVar: strings.Join(fc.Cors.AllowedOrigins, ","),
		"SESSION_COOKIE":  fc.Security.SessionCookie,
		"ROOT_USER":       fc.Bootstrap.RootUser,
		"ROOT_PASSWORD":   fc.Bootstrap.RootPassword,
		"STORE_DRIVER":    fc.Store.Driver,
		"STORE_DSN":       fc.Store.DSN,
	}
	if fc.Security.SessionTTL > 0 {
		v["SESSION_TTL"] = strconv.Itoa(fc.Security.SessionTTL)
	}
	if fc.Security.AllowAccountCreation != nil {
		v["ALLOW_ACCOUNT_CREATION"] = strconv.FormatBool(*fc.Security.AllowAccountCreation)
	}
	if fc.Bootstrap.RecreateRoot != nil {
		v["RECREATE_ROOT"] = strconv.FormatBool(*fc.Bootstrap.RecreateRoot)
	}
	if fc.Events.Replay > 0 {
		v["EVENTS_REPLAY"] = strconv.Itoa(fc.Events.Replay)
	}
	if fc.Events.Buffer > 0 {
		v["EVENTS_BUFFER"] = strconv.Itoa(fc.Events.Buffer)
	}
	return v
}
