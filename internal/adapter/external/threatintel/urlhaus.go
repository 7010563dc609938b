package threatintel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kr1s57/urlsentinel/internal/entity"
)

// URLHausClient looks a URL up in the abuse.ch URLhaus malware-URL
// database. A "query_status: ok" hit means the URL is a known-bad entry
// carrying a threat type and tags; "no_results" means it is not listed.
// The lookup works without a key; an Auth-Key is sent when configured.
type URLHausClient struct {
	authKey    string
	baseURL    string
	httpClient *http.Client
}

// URLHausConfig holds URLhaus client configuration.
type URLHausConfig struct {
	AuthKey string
	Timeout time.Duration
}

// NewURLHausClient creates a new URLhaus client.
func NewURLHausClient(cfg URLHausConfig) *URLHausClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &URLHausClient{
		authKey: cfg.AuthKey,
		baseURL: "https://urlhaus-api.abuse.ch/v1/url/",
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type urlhausResponse struct {
	QueryStatus string   `json:"query_status"`
	URLStatus   string   `json:"url_status"`
	Threat      string   `json:"threat"`
	Tags        []string `json:"tags"`
}

// Name returns the provider name.
func (c *URLHausClient) Name() string {
	return entity.ProviderURLHaus
}

// IsConfigured is always true: URLhaus lookups do not require credentials.
func (c *URLHausClient) IsConfigured() bool {
	return true
}

// Check queries the URLhaus database for the exact URL.
func (c *URLHausClient) Check(ctx context.Context, u *entity.NormalizedURL) *entity.ProviderResult {
	form := url.Values{}
	form.Set("url", u.Canonical)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return unavailable(c.Name(), fmt.Sprintf("create request: %v", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.authKey != "" {
		req.Header.Set("Auth-Key", c.authKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return unavailable(c.Name(), fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return unavailable(c.Name(), fmt.Sprintf("API returned status %d", resp.StatusCode))
	}

	var uhResp urlhausResponse
	if err := json.NewDecoder(resp.Body).Decode(&uhResp); err != nil {
		return unavailable(c.Name(), fmt.Sprintf("decode response: %v", err))
	}

	switch uhResp.QueryStatus {
	case "ok":
		threat := uhResp.Threat
		if threat == "" {
			threat = "unknown"
		}
		return &entity.ProviderResult{
			Provider:       c.Name(),
			Available:      true,
			Safe:           boolPtr(false),
			SignalStrength: floatPtr(1),
			Detail: map[string]any{
				"in_database": true,
				"url_status":  uhResp.URLStatus,
				"threat_type": threat,
				"tags":        uhResp.Tags,
			},
		}
	case "no_results":
		return &entity.ProviderResult{
			Provider:       c.Name(),
			Available:      true,
			Safe:           boolPtr(true),
			SignalStrength: floatPtr(0),
			Detail: map[string]any{
				"in_database": false,
			},
		}
	default:
		return &entity.ProviderResult{
			Provider:       c.Name(),
			Available:      true,
			Safe:           boolPtr(true),
			SignalStrength: floatPtr(0),
			Detail: map[string]any{
				"note": fmt.Sprintf("Query status: %s", uhResp.QueryStatus),
			},
		}
	}
}
