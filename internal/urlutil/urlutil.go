package urlutil

import (
	"net/url"
	"strings"
)

// NormalizeBase trims whitespace and trailing slashes from a base URL.
func NormalizeBase(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/")
}

// BuildAbsolute builds an absolute URL from a base origin and a path.
// Absolute paths pass through unchanged.
func BuildAbsolute(base, path string) string {
	base = NormalizeBase(base)
	if path == "" {
		return base
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if strings.HasPrefix(path, "/") {
		return base + path
	}
	return base + "/" + path
}

// IsHTTPBase reports whether base is an absolute http(s) URL with a host.
func IsHTTPBase(base string) bool {
	u, err := url.Parse(NormalizeBase(base))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
