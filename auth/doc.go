// Package auth supplies bearer tokens for BMC requests.
//
// An Authenticator is chosen once at process start and never changes:
//
//   - Trusted is used when running on the BMC itself. It never produces a
//     token and requests built with it are never retried.
//   - TokenAuthenticator looks for a token in its TokenStore, then falls
//     back to pre-supplied credentials, then to an interactive Prompter, and
//     finally logs in with POST /api/bmc/authenticate.
//
// Token may be called from several goroutines; concurrent callers share a
// single in-flight login.
//
//	a := auth.NewTokenAuthenticator(target, client,
//		auth.WithStore(auth.NewFileCache(path)),
//		auth.WithPrompter(auth.NewTerminalPrompter()),
//	)
//	token, err := a.Token(ctx)
package auth
