// Package features derives a fixed-order numeric feature vector from a
// normalized URL. Extraction is pure and deterministic so vectors stay
// comparable across scans and consumable by a trained classifier.
package features

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/publicsuffix"

	"github.com/kr1s57/urlsentinel/internal/entity"
)

// VectorVersion identifies the feature order below. Bump it whenever a
// feature is added, removed or reordered — stored classifier artifacts are
// only valid against the order they were trained on.
const VectorVersion = 1

// Order is the fixed feature order. Extract always populates exactly these
// names.
var Order = []string{
	// Length
	"url_length", "domain_length", "path_length", "query_length", "fragment_length",
	// Character composition
	"digit_count", "letter_count", "special_char_count",
	"dash_count", "underscore_count", "dot_count", "tilde_count",
	"slash_count", "question_mark_count", "equal_count", "at_count",
	"ampersand_count", "percent_count", "exclamation_count",
	"uppercase_count", "digit_ratio",
	// Domain structure
	"subdomain_count", "subdomain_length", "domain_name_length", "tld_length",
	"is_ip_address", "has_port", "tld_in_path", "tld_in_subdomain",
	// Path and query structure
	"path_segment_count", "query_param_count", "has_query", "has_fragment",
	"max_path_segment_length", "avg_path_segment_length",
	// Pattern flags
	"has_double_slash_in_path", "has_at_symbol", "has_dash_in_domain",
	"max_consecutive_digits", "max_consecutive_letters",
	"suspicious_keyword_count", "has_https",
	// Entropy
	"url_entropy", "domain_entropy", "path_entropy",
}

// Vector maps feature names to numeric values.
type Vector map[string]float64

// Ordered returns the vector values in the fixed feature order, suitable as
// classifier input.
func (v Vector) Ordered() []float64 {
	out := make([]float64, len(Order))
	for i, name := range Order {
		out[i] = v[name]
	}
	return out
}

// Keywords commonly abused in phishing URLs, matched case-insensitively as
// substrings of the whole URL.
var suspiciousKeywords = []string{
	"login", "signin", "account", "update", "confirm", "verify",
	"secure", "banking", "paypal", "amazon", "apple", "microsoft",
	"password", "suspended", "locked", "unusual",
}

var (
	ipv4Re   = regexp.MustCompile(`^(?:[0-9]{1,3}\.){3}[0-9]{1,3}$`)
	digitsRe = regexp.MustCompile(`[0-9]+`)
	alphaRe  = regexp.MustCompile(`[a-zA-Z]+`)
)

// Extract computes the full feature vector for a normalized URL. All
// string-level features are computed over the canonical form.
func Extract(u *entity.NormalizedURL) Vector {
	raw := u.Canonical
	v := make(Vector, len(Order))

	extractLength(v, raw, u)
	extractCharacters(v, raw)
	extractDomain(v, u)
	extractPath(v, u)
	extractPatterns(v, raw, u)
	extractEntropy(v, raw, u)

	return v
}

func extractLength(v Vector, raw string, u *entity.NormalizedURL) {
	v["url_length"] = float64(len(raw))
	v["domain_length"] = float64(len(u.Host))
	v["path_length"] = float64(len(u.Path))
	v["query_length"] = float64(len(u.Query))
	v["fragment_length"] = float64(len(u.Fragment))
}

func extractCharacters(v Vector, raw string) {
	var digits, letters, special, upper int
	counts := map[rune]int{}
	for _, r := range raw {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsLetter(r):
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			special++
		}
		counts[r]++
	}

	v["digit_count"] = float64(digits)
	v["letter_count"] = float64(letters)
	v["special_char_count"] = float64(special)
	v["dash_count"] = float64(counts['-'])
	v["underscore_count"] = float64(counts['_'])
	v["dot_count"] = float64(counts['.'])
	v["tilde_count"] = float64(counts['~'])
	v["slash_count"] = float64(counts['/'])
	v["question_mark_count"] = float64(counts['?'])
	v["equal_count"] = float64(counts['='])
	v["at_count"] = float64(counts['@'])
	v["ampersand_count"] = float64(counts['&'])
	v["percent_count"] = float64(counts['%'])
	v["exclamation_count"] = float64(counts['!'])
	v["uppercase_count"] = float64(upper)

	if len(raw) > 0 {
		v["digit_ratio"] = float64(digits) / float64(len(raw))
	} else {
		v["digit_ratio"] = 0
	}
}

func extractDomain(v Vector, u *entity.NormalizedURL) {
	hostname := u.Hostname()

	isIP := ipv4Re.MatchString(hostname)
	sub, domain, tld := splitHost(hostname, isIP)

	subCount := 0
	if sub != "" {
		subCount = strings.Count(sub, ".") + 1
	}

	v["subdomain_count"] = float64(subCount)
	v["subdomain_length"] = float64(len(sub))
	v["domain_name_length"] = float64(len(domain))
	v["tld_length"] = float64(len(tld))
	v["is_ip_address"] = boolFeature(isIP)
	v["has_port"] = boolFeature(strings.Contains(u.Host, ":"))
	v["tld_in_path"] = boolFeature(tld != "" && strings.Contains(u.Path, tld))
	v["tld_in_subdomain"] = boolFeature(tld != "" && strings.Contains(sub, tld))
}

// splitHost separates a hostname into subdomain, second-level domain and
// public suffix. IP hosts have no subdomain or suffix.
func splitHost(hostname string, isIP bool) (sub, domain, tld string) {
	if isIP || hostname == "" {
		return "", hostname, ""
	}

	suffix, _ := publicsuffix.PublicSuffix(hostname)
	if suffix == "" || suffix == hostname {
		return "", hostname, ""
	}

	rest := strings.TrimSuffix(hostname, "."+suffix)
	if rest == hostname {
		// Suffix did not match with a dot boundary; treat whole host as the
		// domain name.
		return "", hostname, ""
	}

	if i := strings.LastIndex(rest, "."); i >= 0 {
		return rest[:i], rest[i+1:], suffix
	}
	return "", rest, suffix
}

func extractPath(v Vector, u *entity.NormalizedURL) {
	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	paramCount := 0
	if u.Query != "" {
		paramCount = len(strings.Split(u.Query, "&"))
	}

	maxSeg, totalSeg := 0, 0
	for _, s := range segments {
		totalSeg += len(s)
		if len(s) > maxSeg {
			maxSeg = len(s)
		}
	}
	avgSeg := 0.0
	if len(segments) > 0 {
		avgSeg = float64(totalSeg) / float64(len(segments))
	}

	v["path_segment_count"] = float64(len(segments))
	v["query_param_count"] = float64(paramCount)
	v["has_query"] = boolFeature(u.Query != "")
	v["has_fragment"] = boolFeature(u.Fragment != "")
	v["max_path_segment_length"] = float64(maxSeg)
	v["avg_path_segment_length"] = avgSeg
}

func extractPatterns(v Vector, raw string, u *entity.NormalizedURL) {
	lower := strings.ToLower(raw)
	keywordCount := 0
	for _, kw := range suspiciousKeywords {
		if strings.Contains(lower, kw) {
			keywordCount++
		}
	}

	v["has_double_slash_in_path"] = boolFeature(strings.Contains(u.Path, "//"))
	v["has_at_symbol"] = boolFeature(strings.Contains(raw, "@"))
	v["has_dash_in_domain"] = boolFeature(strings.Contains(u.Host, "-"))
	v["max_consecutive_digits"] = float64(longestMatch(digitsRe, raw))
	v["max_consecutive_letters"] = float64(longestMatch(alphaRe, raw))
	v["suspicious_keyword_count"] = float64(keywordCount)
	v["has_https"] = boolFeature(u.Scheme == "https")
}

func extractEntropy(v Vector, raw string, u *entity.NormalizedURL) {
	v["url_entropy"] = Entropy(raw)
	v["domain_entropy"] = Entropy(u.Host)
	v["path_entropy"] = Entropy(u.Path)
}

// Entropy returns the Shannon entropy (base 2) of a string, rounded to two
// decimals. The entropy of an empty string is 0.
func Entropy(s string) float64 {
	if s == "" {
		return 0
	}

	freq := map[rune]int{}
	total := 0
	for _, r := range s {
		freq[r]++
		total++
	}

	entropy := 0.0
	for _, count := range freq {
		p := float64(count) / float64(total)
		entropy -= p * math.Log2(p)
	}

	return math.Round(entropy*100) / 100
}

func longestMatch(re *regexp.Regexp, s string) int {
	longest := 0
	for _, m := range re.FindAllString(s, -1) {
		if len(m) > longest {
			longest = len(m)
		}
	}
	return longest
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
