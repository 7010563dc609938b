package urlnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAndValidate(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedKind  ErrorKind
		wantCanonical string
		wantScheme    string
		wantHost      string
	}{
		{
			name:          "plain domain gets http scheme",
			input:         "example.com",
			wantCanonical: "http://example.com",
			wantScheme:    "http",
			wantHost:      "example.com",
		},
		{
			name:          "https preserved",
			input:         "https://example.com/path",
			wantCanonical: "https://example.com/path",
			wantScheme:    "https",
			wantHost:      "example.com",
		},
		{
			name:          "whitespace trimmed",
			input:         "  https://example.com  ",
			wantCanonical: "https://example.com",
			wantScheme:    "https",
			wantHost:      "example.com",
		},
		{
			name:          "uppercase host lowercased",
			input:         "HTTP://EXAMPLE.COM/Path",
			wantCanonical: "http://example.com/Path",
			wantScheme:    "http",
			wantHost:      "example.com",
		},
		{
			name:          "ipv4 host accepted",
			input:         "http://192.168.1.1/admin",
			wantCanonical: "http://192.168.1.1/admin",
			wantScheme:    "http",
			wantHost:      "192.168.1.1",
		},
		{
			name:          "host with port",
			input:         "http://example.com:8080/x",
			wantCanonical: "http://example.com:8080/x",
			wantScheme:    "http",
			wantHost:      "example.com:8080",
		},
		{
			name:         "empty input",
			input:        "",
			expectedKind: ErrEmptyInput,
		},
		{
			name:         "whitespace only",
			input:        "   ",
			expectedKind: ErrEmptyInput,
		},
		{
			name:         "ftp scheme rejected",
			input:        "ftp://example.com/file",
			expectedKind: ErrUnsupportedScheme,
		},
		{
			name:         "javascript scheme rejected",
			input:        "javascript://alert(1)",
			expectedKind: ErrUnsupportedScheme,
		},
		{
			name:         "scheme without host",
			input:        "http://",
			expectedKind: ErrMissingHost,
		},
		{
			name:         "single label host rejected",
			input:        "http://localhost",
			expectedKind: ErrInvalidHostFormat,
		},
		{
			name:         "numeric tld rejected",
			input:        "http://example.123",
			expectedKind: ErrInvalidHostFormat,
		},
		{
			name:         "label starting with dash rejected",
			input:        "http://-bad.example.com",
			expectedKind: ErrInvalidHostFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAndValidate(tt.input)

			if tt.expectedKind != "" {
				require.Error(t, err)
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.expectedKind, verr.Kind)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantCanonical, got.Canonical)
			assert.Equal(t, tt.wantScheme, got.Scheme)
			assert.Equal(t, tt.wantHost, got.Host)
		})
	}
}

// The canonical form must validate to itself, otherwise re-scans of a
// returned URL would diverge from the original scan.
func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"example.com",
		"https://sub.example.co.uk/a/b?q=1#frag",
		"http://192.168.1.1/login",
	}

	for _, in := range inputs {
		first, err := NormalizeAndValidate(in)
		require.NoError(t, err)

		second, err := NormalizeAndValidate(first.Canonical)
		require.NoError(t, err)
		assert.Equal(t, first.Canonical, second.Canonical)
	}
}

func TestHostnameStripsPort(t *testing.T) {
	got, err := NormalizeAndValidate("http://example.com:8080")
	require.NoError(t, err)
	assert.Equal(t, "example.com", got.Hostname())
}

func TestHasSuspiciousPatterns(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"http://example.com", false},
		{"http://user@evil.com", true},
		{"http://192.168.1.1/login", true},
		{"http://paypal-secure-login.example.com", true},
		{"http://example.com/track/123456789", true},
		{"http://my-site.example.com", true},
		{"http://example.com/a1b2", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HasSuspiciousPatterns(tt.url), tt.url)
	}
}
