package middleware

import (
	"net/url"
	"strings"
)

// MaxRedirectTargetLength bounds redirect targets taken from user input.
const MaxRedirectTargetLength = 2048

// IsLocalPath reports whether ref is a path on this site.
// It must start with a single slash and carry no scheme, host or backslash.
func IsLocalPath(ref string) bool {
	if ref == "" || len(ref) > MaxRedirectTargetLength {
		return false
	}
	if !strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "//") {
		return false
	}
	if strings.ContainsAny(ref, "\\\r\n\t") {
		return false
	}

	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == "" && u.User == nil
}

// SafeRedirectTarget returns ref when it is a local path, otherwise "/".
func SafeRedirectTarget(ref string) string {
	if IsLocalPath(ref) {
		return ref
	}
	return "/"
}
