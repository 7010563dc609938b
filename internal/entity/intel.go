package entity

// Provider names as reported in scan results.
const (
	ProviderSafeBrowsing = "Google Safe Browsing"
	ProviderVirusTotal   = "VirusTotal"
	ProviderURLHaus      = "URLhaus"
)

// Overall assessment values for an aggregate summary.
const (
	AssessmentSafe      = "SAFE"
	AssessmentMalicious = "MALICIOUS"
)

// ProviderResult is the common shape every threat intel provider collapses
// to, regardless of its native response format. Safe and SignalStrength are
// nil when the provider was unavailable.
type ProviderResult struct {
	Provider       string         `json:"provider"`
	Available      bool           `json:"available"`
	Safe           *bool          `json:"safe,omitempty"`
	SignalStrength *float64       `json:"signal_strength,omitempty"`
	Detail         map[string]any `json:"detail,omitempty"`
	Error          string         `json:"error,omitempty"`
}

// AggregateSummary is derived deterministically from a set of provider
// results. ProvidersChecked counts only providers that answered; it always
// equals ProvidersFlagged + ProvidersSafe.
type AggregateSummary struct {
	ProvidersChecked     int      `json:"providers_checked"`
	ProvidersFlagged     int      `json:"providers_flagged"`
	ProvidersSafe        int      `json:"providers_safe"`
	ProvidersUnavailable int      `json:"providers_unavailable"`
	ThreatIndicators     []string `json:"threat_indicators"`
	OverallAssessment    string   `json:"overall_assessment"`
}

// AggregateResult bundles per-provider results with their summary.
type AggregateResult struct {
	PerProvider map[string]*ProviderResult `json:"per_provider"`
	Summary     AggregateSummary           `json:"summary"`
}
