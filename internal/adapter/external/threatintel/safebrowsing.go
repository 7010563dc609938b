package threatintel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kr1s57/urlsentinel/internal/entity"
)

// SafeBrowsingClient queries the Google Safe Browsing v4 lookup API.
// A URL is flagged when the response carries a non-empty match list.
type SafeBrowsingClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// SafeBrowsingConfig holds Safe Browsing client configuration.
type SafeBrowsingConfig struct {
	APIKey  string
	Timeout time.Duration
}

// NewSafeBrowsingClient creates a new Safe Browsing client.
func NewSafeBrowsingClient(cfg SafeBrowsingConfig) *SafeBrowsingClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &SafeBrowsingClient{
		apiKey:  cfg.APIKey,
		baseURL: "https://safebrowsing.googleapis.com/v4/threatMatches:find",
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type safeBrowsingRequest struct {
	Client     sbClientInfo `json:"client"`
	ThreatInfo sbThreatInfo `json:"threatInfo"`
}

type sbClientInfo struct {
	ClientID      string `json:"clientId"`
	ClientVersion string `json:"clientVersion"`
}

type sbThreatInfo struct {
	ThreatTypes      []string       `json:"threatTypes"`
	PlatformTypes    []string       `json:"platformTypes"`
	ThreatEntryTypes []string       `json:"threatEntryTypes"`
	ThreatEntries    []sbThreatItem `json:"threatEntries"`
}

type sbThreatItem struct {
	URL string `json:"url"`
}

type safeBrowsingResponse struct {
	Matches []sbMatch `json:"matches"`
}

type sbMatch struct {
	ThreatType string `json:"threatType"`
}

// Name returns the provider name.
func (c *SafeBrowsingClient) Name() string {
	return entity.ProviderSafeBrowsing
}

// IsConfigured returns true if the client has an API key.
func (c *SafeBrowsingClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Check looks the URL up in the Safe Browsing threat lists.
func (c *SafeBrowsingClient) Check(ctx context.Context, u *entity.NormalizedURL) *entity.ProviderResult {
	if !c.IsConfigured() {
		return unavailable(c.Name(), errCredentialMissing)
	}

	payload := safeBrowsingRequest{
		Client: sbClientInfo{
			ClientID:      "urlsentinel",
			ClientVersion: "1.0.0",
		},
		ThreatInfo: sbThreatInfo{
			ThreatTypes: []string{
				"MALWARE",
				"SOCIAL_ENGINEERING",
				"UNWANTED_SOFTWARE",
				"POTENTIALLY_HARMFUL_APPLICATION",
			},
			PlatformTypes:    []string{"ANY_PLATFORM"},
			ThreatEntryTypes: []string{"URL"},
			ThreatEntries:    []sbThreatItem{{URL: u.Canonical}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return unavailable(c.Name(), fmt.Sprintf("encode request: %v", err))
	}

	reqURL := fmt.Sprintf("%s?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return unavailable(c.Name(), fmt.Sprintf("create request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return unavailable(c.Name(), fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return unavailable(c.Name(), fmt.Sprintf("API returned status %d", resp.StatusCode))
	}

	var sbResp safeBrowsingResponse
	if err := json.NewDecoder(resp.Body).Decode(&sbResp); err != nil {
		return unavailable(c.Name(), fmt.Sprintf("decode response: %v", err))
	}

	if len(sbResp.Matches) == 0 {
		return &entity.ProviderResult{
			Provider:       c.Name(),
			Available:      true,
			Safe:           boolPtr(true),
			SignalStrength: floatPtr(0),
			Detail: map[string]any{
				"threats":      []string{},
				"threat_count": 0,
			},
		}
	}

	threats := make([]string, 0, len(sbResp.Matches))
	for _, m := range sbResp.Matches {
		t := m.ThreatType
		if t == "" {
			t = "UNKNOWN"
		}
		threats = append(threats, t)
	}

	return &entity.ProviderResult{
		Provider:       c.Name(),
		Available:      true,
		Safe:           boolPtr(false),
		SignalStrength: floatPtr(float64(len(threats))),
		Detail: map[string]any{
			"threats":      threats,
			"threat_count": len(threats),
		},
	}
}
