package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/tpictl/version"
)

const (
	flagHost       = "host"
	flagAPIVersion = "api-version"
	flagLocal      = "local"
	flagUser       = "user"
	flagPassword   = "password"
	flagConfig     = "config"
	flagVerbose    = "verbose"
	flagTimeout    = "timeout"
	flagNoCache    = "no-cache"
)

// flagKeys maps persistent flags onto configuration keys.
var flagKeys = map[string]string{
	flagHost:       "host",
	flagAPIVersion: "api_version",
	flagUser:       "auth.user",
	flagPassword:   "auth.password",
	flagVerbose:    "verbose",
	flagTimeout:    "http.timeout",
}

// Command returns the root command with every subcommand attached.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   version.Program,
		Short: "Command line interface for the Turing Pi BMC",
		Long: `tpi controls a Turing Pi board through its BMC API.

Requests are sent without credentials first. When the BMC answers 401 tpi
logs in (cached token, --user/--password, or an interactive prompt) and
retries once with the token.`,
		Version:           version.GetShortVersion(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup(cmd) },
	}
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.String(flagHost, defaultHost, "BMC host name or address, optionally with a port (env TPI_HOST)")
	flags.String(flagAPIVersion, "v1", "BMC API version: v1 (http) or v1-1 (https)")
	flags.Bool(flagLocal, false, "use the trusted local API of the BMC, without authentication")
	flags.String(flagUser, "", "user name for the BMC login")
	flags.String(flagPassword, "", "password for the BMC login")
	flags.String(flagConfig, "", "config file (default ./tpi.yml or $XDG_CONFIG_HOME/tpi/config.yml)")
	flags.BoolP(flagVerbose, "v", false, "log requests to stderr")
	flags.Duration(flagTimeout, 30*time.Second, "timeout of a single HTTP attempt")
	flags.Bool(flagNoCache, false, "do not read or write the token cache")

	root.AddCommand(
		a.infoCommand(),
		a.powerCommand(),
		a.rebootCommand(),
		a.flashCommand(),
		a.rawCommand(),
		a.authCommand(),
		versionCommand(),
		completionCommand(),
	)
	return root
}
