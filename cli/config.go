package cli

import (
	"fmt"
	"time"

	"github.com/kbukum/tpictl/api"
	"github.com/kbukum/tpictl/auth"
	"github.com/kbukum/tpictl/config"
	"github.com/kbukum/tpictl/httpclient"
	"github.com/kbukum/tpictl/observability"
	"github.com/kbukum/tpictl/validation"
	"github.com/kbukum/tpictl/version"
)

const (
	defaultHost = "turingpi.local"
	localHost   = "127.0.0.1"
)

// Config is the configuration of a tpi invocation.
type Config struct {
	config.CommonConfig `mapstructure:",squash"`

	Host       string               `yaml:"host" mapstructure:"host" validate:"required"`
	APIVersion string               `yaml:"api_version" mapstructure:"api_version" validate:"oneof=v1 v1-1"`
	Auth       auth.Config          `yaml:"auth" mapstructure:"auth"`
	HTTP       httpclient.Config    `yaml:"http" mapstructure:"http"`
	Tracing    observability.Config `yaml:"tracing" mapstructure:"tracing"`
}

// Defaults returns the default value of every configuration key. Keys
// without a default cannot be overridden from the environment.
func Defaults(onBMC bool) map[string]any {
	host, mode := defaultHost, auth.ModeToken.String()
	if onBMC {
		host, mode = localHost, auth.ModeTrusted.String()
	}
	return map[string]any{
		"host":                 host,
		"api_version":          string(api.V1),
		"verbose":              false,
		"auth.mode":            mode,
		"auth.user":            "",
		"auth.password":        "",
		"auth.cache":           true,
		"auth.cache_file":      "",
		"http.timeout":         30 * time.Second,
		"http.user_agent":      version.UserAgent(),
		"http.tls.skip_verify": true,
		"http.tls.ca_file":     "",
		"http.tls.server_name": "",
		"logging.level":        "warn",
		"logging.format":       "console",
		"logging.output":       "stderr",
		"logging.no_color":     false,
		"tracing.endpoint":     "",
		"tracing.insecure":     true,
		"tracing.sample_rate":  1.0,
		"tracing.interval":     15 * time.Second,
	}
}

// ApplyDefaults fills in values derived from other fields.
func (c *Config) ApplyDefaults() {
	c.CommonConfig.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.HTTP.ApplyDefaults()
	c.Tracing.ApplyDefaults()
	// A CA bundle means the user wants verification.
	if c.HTTP.TLS != nil && c.HTTP.TLS.CAFile != "" {
		c.HTTP.TLS.SkipVerify = false
	}
}

// Validate checks struct tags first, then each section.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.CommonConfig.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	if err := c.Tracing.Validate(); err != nil {
		return err
	}
	if _, err := c.target(); err != nil {
		return fmt.Errorf("host: %w", err)
	}
	return nil
}

func (c *Config) target() (api.Target, error) {
	v, err := api.ParseVersion(c.APIVersion)
	if err != nil {
		return api.Target{}, err
	}
	return api.NewTarget(c.Host, v)
}
