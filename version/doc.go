// Package version reports the build of the tpi binary.
//
// Values are injected at link time:
//
//	go build -ldflags "-X github.com/kbukum/tpictl/version.Version=1.0.0 \
//	    -X github.com/kbukum/tpictl/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Unset values fall back to the module build info recorded by the Go
// toolchain.
package version
