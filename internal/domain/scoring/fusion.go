// Package scoring fuses external threat intelligence with lexical URL
// analysis into a single risk assessment.
package scoring

import (
	"math"
	"strings"

	"github.com/kr1s57/urlsentinel/internal/domain/features"
	"github.com/kr1s57/urlsentinel/internal/entity"
)

// Fusion weights and thresholds. External reputation is treated as a
// stronger signal than lexical heuristics, hence the 70/30 split.
const (
	APIWeight     = 0.70
	FeatureWeight = 0.30

	SafeThreshold       = 30.0
	SuspiciousThreshold = 70.0

	// Each additional provider that flags the URL beyond the first adds a
	// fixed boost: independent confirmations raise confidence of
	// maliciousness faster than the flagged ratio alone implies.
	agreementBoost = 10.0

	// With no providers reachable there is no external signal either way.
	neutralAPIScore = 50.0
)

// Fuse combines an aggregate provider summary with the lexical risk signal.
// It is a pure function: no I/O, no error outcomes, always a complete
// assessment.
func Fuse(summary *entity.AggregateSummary, risk features.RiskSignal) *entity.RiskAssessment {
	apiScore := apiScore(summary)
	featureScore := float64(risk.Score)

	finalScore := apiScore*APIWeight + featureScore*FeatureWeight
	level := riskLevel(finalScore)

	indicators := make([]string, 0, len(summary.ThreatIndicators)+len(risk.Factors))
	indicators = append(indicators, summary.ThreatIndicators...)
	indicators = append(indicators, risk.Factors...)

	return &entity.RiskAssessment{
		FinalScore:   round2(finalScore),
		RiskLevel:    level,
		APIScore:     round2(apiScore),
		FeatureScore: round2(featureScore),
		Breakdown: entity.ScoreBreakdown{
			APIContribution:     round2(apiScore * APIWeight),
			FeatureContribution: round2(featureScore * FeatureWeight),
		},
		ThreatIndicators: indicators,
		Recommendations:  recommendations(level, indicators),
		Confidence:       confidence(summary),
	}
}

// apiScore converts the provider summary into a 0-100 score. Providers that
// were unavailable carry no signal and are excluded entirely.
func apiScore(summary *entity.AggregateSummary) float64 {
	if summary.ProvidersChecked == 0 {
		return neutralAPIScore
	}

	flaggedRatio := float64(summary.ProvidersFlagged) / float64(summary.ProvidersChecked)
	score := flaggedRatio * 100

	if summary.ProvidersFlagged > 1 {
		score += float64(summary.ProvidersFlagged-1) * agreementBoost
	}
	if score > 100 {
		score = 100
	}

	return score
}

func riskLevel(score float64) string {
	switch {
	case score <= SafeThreshold:
		return entity.RiskLevelSafe
	case score <= SuspiciousThreshold:
		return entity.RiskLevelSuspicious
	default:
		return entity.RiskLevelMalicious
	}
}

// confidence grades how much trust to place in the verdict based on provider
// coverage and agreement.
func confidence(summary *entity.AggregateSummary) string {
	checked := summary.ProvidersChecked
	flagged := summary.ProvidersFlagged

	switch {
	case checked >= 2 && (flagged == checked || flagged == 0):
		return entity.ConfidenceHigh
	case checked >= 2:
		return entity.ConfidenceMedium
	case checked == 1:
		return entity.ConfidenceLow
	default:
		return entity.ConfidenceVeryLow
	}
}

// recommendations returns the fixed advice template for a risk level plus
// conditional lines keyed off specific indicator strings.
func recommendations(level string, indicators []string) []string {
	var recs []string

	switch level {
	case entity.RiskLevelSafe:
		recs = append(recs,
			"URL appears safe to visit",
			"Standard security practices still apply",
		)
	case entity.RiskLevelSuspicious:
		recs = append(recs,
			"Exercise caution when visiting this URL",
			"Verify the website's legitimacy before entering sensitive information",
			"Check for typos in the domain name",
			"Look for HTTPS and valid SSL certificate",
		)
	default:
		recs = append(recs,
			"DO NOT visit this URL",
			"This URL has been flagged as malicious by security services",
			"Do not enter any personal or financial information",
			"Report this URL if you received it in an email or message",
		)
	}

	if containsSubstring(indicators, "IP address") {
		recs = append(recs, "Uses IP address instead of domain - potentially suspicious")
	}
	if containsSubstring(indicators, "HTTPS") {
		recs = append(recs, "Consider only visiting websites that use HTTPS")
	}
	if containsSubstringFold(indicators, "redirect") {
		recs = append(recs, "URL may attempt to redirect to a different site")
	}

	return recs
}

func containsSubstring(items []string, sub string) bool {
	for _, s := range items {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func containsSubstringFold(items []string, sub string) bool {
	lower := strings.ToLower(sub)
	for _, s := range items {
		if strings.Contains(strings.ToLower(s), lower) {
			return true
		}
	}
	return false
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
