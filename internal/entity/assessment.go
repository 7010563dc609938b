package entity

import "time"

// Risk levels
const (
	RiskLevelSafe       = "SAFE"
	RiskLevelSuspicious = "SUSPICIOUS"
	RiskLevelMalicious  = "MALICIOUS"
)

// Confidence levels, based on how many providers answered and whether they
// agreed.
const (
	ConfidenceHigh    = "HIGH"
	ConfidenceMedium  = "MEDIUM"
	ConfidenceLow     = "LOW"
	ConfidenceVeryLow = "VERY_LOW"
)

// ScoreBreakdown shows how much each signal contributed to the final score.
type ScoreBreakdown struct {
	APIContribution     float64 `json:"api_contribution"`
	FeatureContribution float64 `json:"feature_contribution"`
}

// RiskAssessment is the fused verdict for a single URL scan.
// FinalScore is always APIScore*0.70 + FeatureScore*0.30, in [0,100].
type RiskAssessment struct {
	FinalScore       float64        `json:"final_score"`
	RiskLevel        string         `json:"risk_level"`
	APIScore         float64        `json:"api_score"`
	FeatureScore     float64        `json:"feature_score"`
	Breakdown        ScoreBreakdown `json:"score_breakdown"`
	ThreatIndicators []string       `json:"threat_indicators"`
	Recommendations  []string       `json:"recommendations"`
	Confidence       string         `json:"confidence"`
}

// KeyFeatures is the display subset of the extracted feature vector.
type KeyFeatures struct {
	URLLength          int     `json:"url_length"`
	DomainLength       int     `json:"domain_length"`
	SubdomainCount     int     `json:"subdomain_count"`
	UsesHTTPS          bool    `json:"uses_https"`
	IsIPAddress        bool    `json:"is_ip_address"`
	SuspiciousKeywords int     `json:"suspicious_keywords"`
	URLEntropy         float64 `json:"url_entropy"`
}

// URLAnalysis summarizes the lexical analysis of the URL string.
type URLAnalysis struct {
	FeaturesAnalyzed int         `json:"features_analyzed"`
	KeyFeatures      KeyFeatures `json:"key_features"`
	RiskFactors      []string    `json:"risk_factors"`
}

// ClassifierVerdict is the optional prediction from a trained model
// artifact. It supplements the fused score but never replaces it.
type ClassifierVerdict struct {
	Label        string  `json:"label"`
	Probability  float64 `json:"probability"`
	ModelVersion string  `json:"model_version"`
}

// ScanResult is the complete analysis returned to the caller. It is built
// fresh for every request and not retained.
type ScanResult struct {
	ScanID     string             `json:"scan_id"`
	URL        string             `json:"url"`
	Assessment *RiskAssessment    `json:"risk_assessment"`
	Intel      *AggregateResult   `json:"api_checks"`
	Analysis   URLAnalysis        `json:"url_analysis"`
	Classifier *ClassifierVerdict `json:"ml_classifier,omitempty"`
	ScannedAt  time.Time          `json:"scanned_at"`
}
