package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// AppURL validates raw as an absolute http(s) URL and returns it with
// exactly one trailing slash on the path. Hash-routed apps resolve relative
// assets against the directory, so "https://host/app" and
// "https://host/app/" load different pages.
func AppURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", raw, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%q is not an http(s) URL", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%q has no host", raw)
	}
	u.Scheme = scheme
	u.Path = WithTrailingSlash(u.Path)
	u.RawPath = ""
	return u.String(), nil
}

// WithTrailingSlash returns path ending in a single slash.
func WithTrailingSlash(path string) string {
	return strings.TrimRight(path, "/") + "/"
}
