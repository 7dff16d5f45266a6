package core

import (
	"errors"
	"net/url"
	"strings"
)

var (
	// ErrLinkEmpty is returned for missing or blank link input.
	ErrLinkEmpty = errors.New("a link is required")
	// ErrLinkMalformed is returned for input that does not parse as a link.
	ErrLinkMalformed = errors.New("link is not a valid URL")
)

// NormalizeLink validates a submitted link string and returns its canonical
// form. Schemeless input is treated as https; only http and https links are
// accepted, and the host must look like a domain.
func NormalizeLink(raw string) (string, error) {
	link := strings.TrimSpace(raw)
	if link == "" {
		return "", ErrLinkEmpty
	}
	if strings.ContainsAny(link, " \t\n") {
		return "", ErrLinkMalformed
	}

	if !strings.Contains(link, "://") {
		link = "https://" + link
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return "", ErrLinkMalformed
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", ErrLinkMalformed
	}

	host := parsed.Hostname()
	if host == "" || !strings.Contains(host, ".") || strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return "", ErrLinkMalformed
	}

	return parsed.String(), nil
}

// LinkHost extracts the hostname from a link previously accepted by
// NormalizeLink.
func LinkHost(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}
