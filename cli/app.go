package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/tpictl/api"
	"github.com/kbukum/tpictl/auth"
	"github.com/kbukum/tpictl/config"
	"github.com/kbukum/tpictl/errors"
	"github.com/kbukum/tpictl/httpclient"
	"github.com/kbukum/tpictl/logger"
	"github.com/kbukum/tpictl/observability"
	"github.com/kbukum/tpictl/request"
	"github.com/kbukum/tpictl/version"
)

const instrumentationName = "github.com/kbukum/tpictl/cli"

// annotationNoBMC marks commands that run without configuration or a BMC.
const annotationNoBMC = "tpi/no-bmc"

// Option configures an App.
type Option func(*App)

// WithOutput sets the writers for command output and errors.
func WithOutput(out, errOut io.Writer) Option {
	return func(a *App) { a.out, a.errOut = out, errOut }
}

// WithPrompter replaces the terminal prompt used to ask for credentials.
// A nil prompter disables interactive login.
func WithPrompter(p auth.Prompter) Option {
	return func(a *App) { a.prompter = p }
}

// WithBMCDetection overrides the detection of running on the BMC.
func WithBMCDetection(detect func() bool) Option {
	return func(a *App) { a.onBMC = detect }
}

// WithFileSystem sets the filesystem used to find config and .env files.
func WithFileSystem(fs config.FileSystem) Option {
	return func(a *App) { a.fs = fs }
}

// App holds what one tpi invocation shares between its requests.
type App struct {
	out      io.Writer
	errOut   io.Writer
	prompter auth.Prompter
	onBMC    func() bool
	fs       config.FileSystem

	cfg      *Config
	target   api.Target
	client   *httpclient.Client
	auth     auth.Authenticator
	log      *logger.Logger
	ctx      context.Context
	op       *observability.Operation
	shutdown observability.ShutdownFunc
}

// NewApp returns an App writing to stdout and stderr and prompting on the
// terminal.
func NewApp(opts ...Option) *App {
	a := &App{
		out:      os.Stdout,
		errOut:   os.Stderr,
		prompter: auth.NewTerminalPrompter(),
		onBMC:    RunningOnBMC,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Execute runs tpi with args and returns the process exit code.
func Execute(ctx context.Context, args []string, opts ...Option) int {
	a := NewApp(opts...)
	root := a.Command()
	root.SetArgs(args)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	err := root.ExecuteContext(ctx)
	a.finish(err)
	if err != nil {
		fmt.Fprintln(a.errOut, "Error:", describe(err))
		return 1
	}
	return 0
}

// setup loads the configuration and builds the client, target and
// authenticator of the invocation.
func (a *App) setup(cmd *cobra.Command) error {
	if _, ok := cmd.Annotations[annotationNoBMC]; ok {
		return nil
	}
	switch cmd.Name() {
	case cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return nil
	}
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	a.cfg = cfg
	logger.Init(cfg.Logging)
	a.log = logger.WithComponent("cli")

	ctx := cmd.Context()
	shutdown, err := observability.Setup(ctx, cfg.Tracing, version.Program, version.GetShortVersion())
	a.shutdown = shutdown
	if err != nil {
		a.log.Warn("telemetry disabled", logger.Fields(logger.FieldError, err.Error()))
	}
	metrics, err := observability.NewMetrics(observability.Meter(instrumentationName))
	if err != nil {
		a.log.Warn("command metrics disabled", logger.Fields(logger.FieldError, err.Error()))
		metrics = nil
	}
	ctx, a.op = observability.StartOperation(ctx, commandName(cmd), metrics,
		attribute.String(observability.AttrHost, cfg.Host),
		attribute.String(observability.AttrAuthMode, cfg.Auth.Mode),
	)
	a.ctx = ctx
	cmd.SetContext(ctx)

	target, err := cfg.target()
	if err != nil {
		return err
	}
	client, err := httpclient.New(cfg.HTTP)
	if err != nil {
		return err
	}
	authenticator, err := auth.New(cfg.Auth, target, client, a.prompter)
	if err != nil {
		return err
	}
	a.target, a.client, a.auth = target, client, authenticator

	a.log.Debug("configured", logger.Fields(
		logger.FieldHost, cfg.Host,
		"api_version", cfg.APIVersion,
		"auth_mode", cfg.Auth.Mode,
	))
	return nil
}

func (a *App) loadConfig(cmd *cobra.Command) (*Config, error) {
	flags := cmd.Flags()
	opts := []config.LoaderOption{
		config.WithDefaults(Defaults(a.onBMC())),
		config.WithFlags(flags, flagKeys),
	}
	if a.fs != nil {
		opts = append(opts, config.WithFileSystem(a.fs))
	}
	if path, _ := flags.GetString(flagConfig); path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}

	cfg := &Config{}
	if err := config.LoadConfig(version.Program, cfg, opts...); err != nil {
		return nil, err
	}
	if local, _ := flags.GetBool(flagLocal); local {
		cfg.Auth.Mode = auth.ModeTrusted.String()
	}
	if noCache, _ := flags.GetBool(flagNoCache); noCache {
		cfg.Auth.Cache = false
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish ends the command span and flushes telemetry.
func (a *App) finish(err error) {
	if a.op != nil {
		kind := ""
		if err != nil {
			kind = request.Classify(err).String()
		}
		a.op.End(a.ctx, err, kind)
	}
	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if serr := a.shutdown(ctx); serr != nil {
			logger.Warn("flushing telemetry failed", logger.Fields(logger.FieldError, serr.Error()))
		}
		cancel()
	}
	if a.client != nil {
		a.client.CloseIdleConnections()
	}
}

// newRequest returns a request for the configured BMC.
func (a *App) newRequest() *request.Request {
	return request.New(a.target, a.auth, a.client)
}

// send performs req and turns a 4xx or 5xx answer into an error.
func (a *App) send(ctx context.Context, req *request.Request) (*httpclient.Response, error) {
	resp, err := req.Send(ctx)
	if err != nil {
		return nil, err
	}
	if !resp.IsError() {
		return resp, nil
	}
	if resp.IsUnauthorized() {
		a.forgetToken()
	}
	return resp, errors.FromHTTPStatus(resp.StatusCode, resp.Body)
}

// invalidator is implemented by authenticators that cache tokens.
type invalidator interface {
	Invalidate() error
}

func (a *App) forgetToken() {
	inv, ok := a.auth.(invalidator)
	if !ok {
		return
	}
	if err := inv.Invalidate(); err != nil {
		a.log.Warn("failed to remove the cached token", logger.Fields(logger.FieldError, err.Error()))
	}
}

func commandName(cmd *cobra.Command) string {
	return strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" ")
}

// describe renders err for the terminal.
func describe(err error) string {
	switch {
	case httpclient.IsTLS(err):
		return fmt.Sprintf("%v (the BMC certificate was not accepted)", err)
	case httpclient.IsConnection(err):
		return fmt.Sprintf("%v (is the BMC powered and reachable?)", err)
	case httpclient.IsRetryable(err):
		return fmt.Sprintf("%v (the BMC may be busy, try again)", err)
	case !errors.IsAppError(err):
		return err.Error()
	}
	appErr := errors.FromError(err)
	if appErr.Cause != nil {
		return fmt.Sprintf("%s (%v)", appErr.Message, appErr.Cause)
	}
	return appErr.Message
}
