// Package urlnorm canonicalizes and validates raw URL strings before they
// enter the scan pipeline.
package urlnorm

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/kr1s57/urlsentinel/internal/entity"
)

// ErrorKind identifies why validation rejected an input.
type ErrorKind string

const (
	ErrEmptyInput        ErrorKind = "EMPTY_INPUT"
	ErrMalformedURL      ErrorKind = "MALFORMED_URL"
	ErrUnsupportedScheme ErrorKind = "UNSUPPORTED_SCHEME"
	ErrMissingHost       ErrorKind = "MISSING_HOST"
	ErrInvalidHostFormat ErrorKind = "INVALID_HOST_FORMAT"
)

// ValidationError is the only error type returned by NormalizeAndValidate.
// It is terminal for the scan request; no partial result is produced.
type ValidationError struct {
	Kind    ErrorKind
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

const maxHostLength = 253

var (
	schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

	// Each label 1-63 chars, alphanumeric with internal hyphens, final label
	// at least 2 alphabetic chars.
	domainRe = regexp.MustCompile(`^(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)
	ipv4Re   = regexp.MustCompile(`^(?:[0-9]{1,3}\.){3}[0-9]{1,3}$`)
)

// NormalizeAndValidate trims, normalizes and validates a raw URL string.
// Inputs without a scheme default to http:// — this is deliberate: the
// "Not using HTTPS" risk factor depends on the scheme the user actually
// supplied, so the normalizer must not silently upgrade to https.
func NormalizeAndValidate(raw string) (*entity.NormalizedURL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &ValidationError{Kind: ErrEmptyInput, Message: "URL cannot be empty"}
	}

	withScheme := trimmed
	if !schemeRe.MatchString(trimmed) {
		withScheme = "http://" + trimmed
	}

	parsed, err := url.Parse(withScheme)
	if err != nil {
		return nil, &ValidationError{Kind: ErrMalformedURL, Message: fmt.Sprintf("invalid URL format: %v", err)}
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, &ValidationError{Kind: ErrUnsupportedScheme, Message: "URL must use http or https protocol"}
	}

	if parsed.Host == "" {
		return nil, &ValidationError{Kind: ErrMissingHost, Message: "URL must contain a valid domain"}
	}

	hostname := parsed.Hostname()
	if !isValidHost(hostname) {
		return nil, &ValidationError{Kind: ErrInvalidHostFormat, Message: "invalid domain format"}
	}

	parsed.Scheme = scheme
	parsed.Host = strings.ToLower(parsed.Host)

	return &entity.NormalizedURL{
		Original:  trimmed,
		Scheme:    scheme,
		Host:      parsed.Host,
		Path:      parsed.Path,
		Query:     parsed.RawQuery,
		Fragment:  parsed.Fragment,
		Canonical: parsed.String(),
	}, nil
}

// isValidHost accepts a dotted domain name or a dotted-quad IPv4 address.
func isValidHost(host string) bool {
	if host == "" || len(host) > maxHostLength {
		return false
	}
	if ipv4Re.MatchString(host) {
		return true
	}
	if !domainRe.MatchString(host) {
		return false
	}
	for _, label := range strings.Split(host, ".") {
		if len(label) > 63 {
			return false
		}
	}
	return true
}

// Heuristics commonly seen in phishing URLs. Advisory only: a match never
// blocks validation, it just surfaces as one extra threat indicator.
var suspiciousRes = []*regexp.Regexp{
	regexp.MustCompile(`@`),
	regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`),
	regexp.MustCompile(`-.{2,}\.`),
	regexp.MustCompile(`\d{5,}`),
}

// HasSuspiciousPatterns reports whether the URL matches any advisory
// phishing heuristic (@ sign, embedded IPv4, multi-dash-before-dot, long
// digit runs).
func HasSuspiciousPatterns(rawURL string) bool {
	for _, re := range suspiciousRes {
		if re.MatchString(rawURL) {
			return true
		}
	}
	return false
}
