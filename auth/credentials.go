package auth

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/kbukum/tpictl/errors"
)

// Credentials are the username and password sent to the login endpoint.
type Credentials struct {
	Username string
	Password string
}

// Complete reports whether both fields are set.
func (c Credentials) Complete() bool {
	return c.Username != "" && c.Password != ""
}

// Prompter asks the user for credentials. username is the pre-supplied
// user name, possibly empty.
type Prompter interface {
	PromptCredentials(ctx context.Context, username string) (Credentials, error)
}

// PrompterFunc adapts an ordinary function to the Prompter interface.
type PrompterFunc func(ctx context.Context, username string) (Credentials, error)

// PromptCredentials implements Prompter.
func (f PrompterFunc) PromptCredentials(ctx context.Context, username string) (Credentials, error) {
	return f(ctx, username)
}

// TerminalPrompter reads credentials from the controlling terminal with
// echo disabled for the password.
type TerminalPrompter struct {
	in  *os.File
	out io.Writer
}

// NewTerminalPrompter prompts on stderr and reads from stdin.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{in: os.Stdin, out: os.Stderr}
}

// PromptCredentials implements Prompter.
func (p *TerminalPrompter) PromptCredentials(ctx context.Context, username string) (Credentials, error) {
	if err := ctx.Err(); err != nil {
		return Credentials{}, err
	}
	fd := int(p.in.Fd())
	if !term.IsTerminal(fd) {
		return Credentials{}, errors.Unauthorized("no terminal available for the login prompt (use --user and --password)")
	}

	if username == "" {
		_, _ = fmt.Fprint(p.out, "User: ")
		line, err := bufio.NewReader(p.in).ReadString('\n')
		if err != nil && line == "" {
			return Credentials{}, errors.Unauthorized("login prompt aborted").WithCause(err)
		}
		username = strings.TrimSpace(line)
	}

	_, _ = fmt.Fprint(p.out, "Password: ")
	password, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(p.out)
	if err != nil {
		return Credentials{}, errors.Unauthorized("login prompt aborted").WithCause(err)
	}
	if err := ctx.Err(); err != nil {
		return Credentials{}, err
	}

	creds := Credentials{Username: username, Password: string(password)}
	if !creds.Complete() {
		return Credentials{}, errors.Unauthorized("username and password are required")
	}
	return creds, nil
}
