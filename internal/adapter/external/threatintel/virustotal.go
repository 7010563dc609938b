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

// VirusTotalClient checks a URL against VirusTotal's vendor consensus.
// The v3 API is submit-then-poll: POST the URL, extract an analysis ID,
// then GET the analysis and aggregate the per-vendor verdict counts.
type VirusTotalClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// VirusTotalConfig holds VirusTotal client configuration.
type VirusTotalConfig struct {
	APIKey  string
	Timeout time.Duration
}

// NewVirusTotalClient creates a new VirusTotal client.
func NewVirusTotalClient(cfg VirusTotalConfig) *VirusTotalClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &VirusTotalClient{
		apiKey:  cfg.APIKey,
		baseURL: "https://www.virustotal.com/api/v3",
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type vtSubmitResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type vtAnalysisResponse struct {
	Data struct {
		Attributes struct {
			Stats vtAnalysisStats `json:"stats"`
		} `json:"attributes"`
	} `json:"data"`
}

type vtAnalysisStats struct {
	Malicious  int `json:"malicious"`
	Suspicious int `json:"suspicious"`
	Harmless   int `json:"harmless"`
	Undetected int `json:"undetected"`
}

// Name returns the provider name.
func (c *VirusTotalClient) Name() string {
	return entity.ProviderVirusTotal
}

// IsConfigured returns true if the client has an API key.
func (c *VirusTotalClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Check submits the URL and polls the resulting analysis. A URL with no
// prior analysis is treated as provisionally safe.
func (c *VirusTotalClient) Check(ctx context.Context, u *entity.NormalizedURL) *entity.ProviderResult {
	if !c.IsConfigured() {
		return unavailable(c.Name(), errCredentialMissing)
	}

	analysisID, result := c.submit(ctx, u)
	if result != nil {
		return result
	}

	return c.fetchAnalysis(ctx, analysisID)
}

// submit posts the URL for analysis. It returns either an analysis ID or a
// terminal ProviderResult (unavailable, or safe-with-note when VirusTotal
// has no analysis to offer).
func (c *VirusTotalClient) submit(ctx context.Context, u *entity.NormalizedURL) (string, *entity.ProviderResult) {
	form := url.Values{}
	form.Set("url", u.Canonical)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/urls", strings.NewReader(form.Encode()))
	if err != nil {
		return "", unavailable(c.Name(), fmt.Sprintf("create request: %v", err))
	}
	req.Header.Set("x-apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", unavailable(c.Name(), fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", unavailable(c.Name(), fmt.Sprintf("API returned status %d", resp.StatusCode))
	}

	var submitResp vtSubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&submitResp); err != nil {
		return "", unavailable(c.Name(), fmt.Sprintf("decode response: %v", err))
	}

	if submitResp.Data.ID == "" {
		return "", &entity.ProviderResult{
			Provider:       c.Name(),
			Available:      true,
			Safe:           boolPtr(true),
			SignalStrength: floatPtr(0),
			Detail: map[string]any{
				"note": "No previous analysis available",
			},
		}
	}

	return submitResp.Data.ID, nil
}

func (c *VirusTotalClient) fetchAnalysis(ctx context.Context, analysisID string) *entity.ProviderResult {
	reqURL := fmt.Sprintf("%s/analyses/%s", c.baseURL, analysisID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return unavailable(c.Name(), fmt.Sprintf("create request: %v", err))
	}
	req.Header.Set("x-apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return unavailable(c.Name(), fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return unavailable(c.Name(), fmt.Sprintf("API returned status %d", resp.StatusCode))
	}

	var analysisResp vtAnalysisResponse
	if err := json.NewDecoder(resp.Body).Decode(&analysisResp); err != nil {
		return unavailable(c.Name(), fmt.Sprintf("decode response: %v", err))
	}

	stats := analysisResp.Data.Attributes.Stats
	totalScans := stats.Malicious + stats.Suspicious + stats.Harmless + stats.Undetected

	detectionRate := 0.0
	if totalScans > 0 {
		detectionRate = float64(stats.Malicious+stats.Suspicious) / float64(totalScans) * 100
	}

	return &entity.ProviderResult{
		Provider:       c.Name(),
		Available:      true,
		Safe:           boolPtr(stats.Malicious == 0 && stats.Suspicious == 0),
		SignalStrength: floatPtr(detectionRate),
		Detail: map[string]any{
			"malicious_count":  stats.Malicious,
			"suspicious_count": stats.Suspicious,
			"harmless_count":   stats.Harmless,
			"undetected_count": stats.Undetected,
			"total_scans":      totalScans,
			"detection_rate":   round2(detectionRate),
		},
	}
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
