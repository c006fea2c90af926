package api

import "fmt"

// Version selects the BMC API revision, which fixes the URL scheme.
type Version string

const (
	// V1 is the original plain HTTP API.
	V1 Version = "v1"
	// V1_1 serves the same endpoints over HTTPS with a self-signed certificate.
	V1_1 Version = "v1-1"
)

// Scheme returns the URL scheme used by the version.
func (v Version) Scheme() string {
	if v == V1_1 {
		return "https"
	}
	return "http"
}

// ParseVersion accepts "v1" and "v1-1". An empty string selects V1.
func ParseVersion(s string) (Version, error) {
	switch Version(s) {
	case "", V1:
		return V1, nil
	case V1_1:
		return V1_1, nil
	default:
		return "", fmt.Errorf("api: unknown version %q (want v1 or v1-1)", s)
	}
}
