package platform

import (
	"errors"
	"net/url"
	"strings"
)

// ErrBaseURLRequired is returned when a relative asset reference has no base URL to resolve against
var ErrBaseURLRequired = errors.New("base URL required to resolve relative asset URL")

// IsAbsoluteURL reports whether ref carries its own scheme (http, https, file, ...).
// Single-letter schemes are treated as Windows drive letters, not URLs.
func IsAbsoluteURL(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.IsAbs() && len(u.Scheme) > 1
}

// ResolveAssetURL passes absolute references through and prefixes relative ones
// with baseURL, joined by exactly one slash.
func ResolveAssetURL(baseURL, ref string) (string, error) {
	if IsAbsoluteURL(ref) {
		return ref, nil
	}
	if baseURL == "" {
		return "", ErrBaseURLRequired
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(ref, "/"), nil
}
