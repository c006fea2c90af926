// Package config loads command-line configuration from a YAML file, a
// .env file, the environment and command flags.
//
// Precedence, highest first: flags the user set, environment variables,
// the config file, defaults. Environment variables carry the application
// prefix and use underscores for nesting. Only keys that have a default,
// appear in the config file or are bound to a flag are read from the
// environment:
//
//	TPI_HOST=10.0.0.5            -> host
//	TPI_AUTH_USER=root           -> auth.user
//	TPI_HTTP_TLS_SKIP_VERIFY=1   -> http.tls.skip_verify
//
// Usage:
//
//	var cfg cli.Config
//	err := config.LoadConfig("tpi", &cfg,
//	    config.WithConfigFile(path),
//	    config.WithDefaults(map[string]any{"host": "turingpi.local"}),
//	    config.WithFlags(cmd.Flags(), map[string]string{"host": "host"}),
//	)
package config
