package pipeline

import (
	"net"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"chatmate/internal/domain"
)

//nolint:gochecknoglobals // Compiled once, read-only.
var (
	labelRe = regexp.MustCompile(`^[\p{L}\p{N}](?:[\p{L}\p{N}-]{0,61}[\p{L}\p{N}])?$`)
	tldRe   = regexp.MustCompile(`^(?:\p{L}{2,63}|xn--[a-z0-9-]{1,59})$`)
)

// Validate checks token presence, URL presence and URL syntax, in that order.
// It never touches the network.
func Validate(token string, rawURL string) error {
	if strings.TrimSpace(token) == "" {
		return domain.InputError(domain.KindMissingToken)
	}

	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return domain.InputError(domain.KindMissingURL)
	}

	if !IsValidURL(rawURL) {
		return domain.InputError(domain.KindMalformedURL)
	}

	return nil
}

// IsValidURL reports whether s is a single absolute http(s) URL whose host is
// an IP literal or a dotted domain name.
func IsValidURL(s string) bool {
	if s == "" || strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return false
	}

	u, err := url.Parse(s)
	if err != nil || u.Opaque != "" {
		return false
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false
	}

	return validHost(u.Hostname())
}

func validHost(host string) bool {
	if host == "" {
		return false
	}

	if net.ParseIP(host) != nil {
		return true
	}

	labels := strings.Split(strings.TrimSuffix(strings.ToLower(host), "."), ".")
	if len(labels) < 2 {
		return false
	}

	for _, label := range labels[:len(labels)-1] {
		if !labelRe.MatchString(label) {
			return false
		}
	}

	return tldRe.MatchString(labels[len(labels)-1])
}
