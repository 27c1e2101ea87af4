package util

import (
	"net/url"
	"regexp"
	"strings"
)

var reScheme = regexp.MustCompile(`(?i)^[a-z][a-z0-9+.-]*://`)

// ToOrigin reduces a bare hostname or URL to "scheme://host". Inputs without
// a scheme get https. ok is false when the input cannot be used as a site.
func ToOrigin(raw string) (origin string, ok bool) {
	u, ok := parseSiteURL(raw)
	if !ok {
		return "", false
	}
	return u.Scheme + "://" + u.Host, true
}

// EnsureURL is ToOrigin without dropping the path and query.
func EnsureURL(raw string) (string, bool) {
	u, ok := parseSiteURL(raw)
	if !ok {
		return "", false
	}
	u.Fragment = ""
	return u.String(), true
}

// ResolvePath joins an absolute path onto origin.
func ResolvePath(origin, path string) (string, error) {
	base, err := url.Parse(origin)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// HostOf returns the lower-cased hostname of origin without a leading "www.".
func HostOf(origin string) string {
	u, err := url.Parse(origin)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// IsBlockedHost reports whether host equals or is a subdomain of an entry in blocklist.
func IsBlockedHost(host string, blocklist []string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return false
	}
	for _, b := range blocklist {
		b = strings.ToLower(strings.TrimSpace(b))
		if b == "" {
			continue
		}
		if host == b || strings.HasSuffix(host, "."+b) {
			return true
		}
	}
	return false
}

func parseSiteURL(raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	if !reScheme.MatchString(raw) {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.Hostname() == "" {
		return nil, false
	}
	if strings.ContainsAny(u.Host, " \t\r\n") {
		return nil, false
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	u.Host = strings.ToLower(u.Host)
	if p := u.Port(); (u.Scheme == "https" && p == "443") || (u.Scheme == "http" && p == "80") {
		u.Host = strings.TrimSuffix(u.Host, ":"+p)
	}
	return u, true
}
