// Package threatintel queries external URL reputation services and
// aggregates their verdicts. Each provider parses its own response format
// internally; everything collapses to the common entity.ProviderResult
// shape so the aggregator stays provider-agnostic.
package threatintel

import (
	"context"

	"github.com/kr1s57/urlsentinel/internal/entity"
)

// Provider is a single threat intelligence source.
//
// Check never fails at the call level: network errors, timeouts, unexpected
// statuses and missing credentials all come back as an unavailable result.
// A failing provider must never abort its siblings.
type Provider interface {
	Name() string
	IsConfigured() bool
	Check(ctx context.Context, u *entity.NormalizedURL) *entity.ProviderResult
}

// ProviderStatus describes a provider for introspection endpoints.
type ProviderStatus struct {
	Name        string `json:"name"`
	Configured  bool   `json:"configured"`
	Description string `json:"description"`
}

const errCredentialMissing = "API key not configured"

// unavailable builds the result for a provider that could not answer.
func unavailable(name, reason string) *entity.ProviderResult {
	return &entity.ProviderResult{
		Provider:  name,
		Available: false,
		Error:     reason,
	}
}

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }
