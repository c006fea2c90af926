package auth

import (
	"fmt"

	"github.com/kbukum/tpictl/api"
	"github.com/kbukum/tpictl/httpclient"
)

// Config holds authentication settings loaded from file, env or flags.
type Config struct {
	// Mode is "token" (default) or "trusted".
	Mode string `mapstructure:"mode" validate:"omitempty,oneof=token trusted"`
	// User is the pre-supplied user name.
	User string `mapstructure:"user"`
	// Password is the pre-supplied password.
	Password string `mapstructure:"password"`
	// Cache enables the on-disk token cache.
	Cache bool `mapstructure:"cache"`
	// CacheFile overrides the cache location.
	CacheFile string `mapstructure:"cache_file"`
}

// ApplyDefaults fills in the mode and the cache location.
func (c *Config) ApplyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeToken.String()
	}
	if c.CacheFile == "" {
		if path, err := DefaultCachePath(); err == nil {
			c.CacheFile = path
		}
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, err := ParseMode(c.Mode); err != nil {
		return err
	}
	if c.Password != "" && c.User == "" {
		return fmt.Errorf("auth: password given without a user")
	}
	return nil
}

// New builds the authenticator selected by cfg. prompter may be nil to
// disable interactive login.
func New(cfg Config, target api.Target, client *httpclient.Client, prompter Prompter) (Authenticator, error) {
	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	if mode == ModeTrusted {
		return Trusted, nil
	}

	opts := []Option{WithCredentials(Credentials{Username: cfg.User, Password: cfg.Password})}
	if prompter != nil {
		opts = append(opts, WithPrompter(prompter))
	}
	if cfg.Cache && cfg.CacheFile != "" {
		opts = append(opts, WithStore(NewFileCache(cfg.CacheFile)))
	}
	return NewTokenAuthenticator(target, client, opts...), nil
}
