package urlhandler

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	unsafeFilenameCharsRegex = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)
	multipleUnderscoresRegex = regexp.MustCompile(`_+`)
)

// NormalizeURL produces the canonical form used for visited-set membership:
// lowercase scheme and host, leading "www." stripped, query and fragment
// dropped, trailing slash trimmed. Two links pointing at the same page under
// this policy always normalize to the same string.
func NormalizeURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", errors.New("URL is empty or only whitespace")
	}

	if !strings.Contains(trimmed, "://") && !strings.HasPrefix(trimmed, "//") {
		trimmed = "http://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("could not parse URL '%s': %w", trimmed, err)
	}
	if parsed.Host == "" {
		return "", errors.New("URL lacks a valid hostname")
	}

	host := strings.ToLower(parsed.Host)
	host = strings.TrimPrefix(host, "www.")

	normalized := url.URL{
		Scheme: strings.ToLower(parsed.Scheme),
		Host:   host,
		Path:   strings.TrimSuffix(parsed.Path, "/"),
	}
	return normalized.String(), nil
}

// ResolveURL resolves a possibly relative href against a base URL and
// returns the absolute form. Unlike NormalizeURL it preserves the query,
// since the result may be fetched.
func ResolveURL(href string, base *url.URL) (string, error) {
	trimmed := strings.TrimSpace(href)
	if trimmed == "" {
		return "", errors.New("href is empty")
	}

	var resolved *url.URL
	if base == nil {
		parsed, err := url.Parse(trimmed)
		if err != nil {
			return "", fmt.Errorf("error parsing base-less href '%s': %w", trimmed, err)
		}
		if !parsed.IsAbs() {
			return "", fmt.Errorf("cannot process relative URL '%s' without a base URL", trimmed)
		}
		resolved = parsed
	} else {
		parsed, err := base.Parse(trimmed)
		if err != nil {
			return "", fmt.Errorf("error resolving href '%s' against '%s': %w", trimmed, base.String(), err)
		}
		resolved = parsed
	}

	resolved.Fragment = ""
	if resolved.Host == "" {
		return "", fmt.Errorf("resolved URL '%s' has no hostname", resolved.String())
	}
	return resolved.String(), nil
}

// ExtractDomain returns the lowercase hostname of a URL, without port.
func ExtractDomain(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", errors.New("URL is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("could not parse URL '%s': %w", trimmed, err)
	}
	hostname := parsed.Hostname()
	if hostname == "" {
		return "", fmt.Errorf("URL has no hostname component: %s", rawURL)
	}
	return strings.ToLower(hostname), nil
}

// SameOrigin reports whether two URLs share scheme, host, and port.
func SameOrigin(a, b *url.URL) bool {
	if a == nil || b == nil {
		return false
	}
	return strings.EqualFold(a.Scheme, b.Scheme) &&
		strings.EqualFold(a.Hostname(), b.Hostname()) &&
		portOrDefault(a) == portOrDefault(b)
}

func portOrDefault(u *url.URL) string {
	if p := u.Port(); p != "" {
		return p
	}
	switch strings.ToLower(u.Scheme) {
	case "https":
		return "443"
	default:
		return "80"
	}
}

// ValidateURLFormat validates URL syntax for config and CLI input checks.
func ValidateURLFormat(rawURL string) error {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return errors.New("URL is empty")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("invalid URL format '%s': %w", trimmed, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme '%s' in '%s'", parsed.Scheme, trimmed)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL '%s' has no host", trimmed)
	}
	return nil
}

// SanitizeFilename creates a filesystem-safe string from a URL or hostname.
func SanitizeFilename(input string) string {
	name := input
	if i := strings.Index(name, "://"); i != -1 {
		name = name[i+3:]
	}
	name = unsafeFilenameCharsRegex.ReplaceAllString(name, "_")
	name = multipleUnderscoresRegex.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		return "sanitized_empty_input"
	}
	return name
}
