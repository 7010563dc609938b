package threatintel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kr1s57/urlsentinel/internal/entity"
)

// Aggregator fans a URL out to every configured provider concurrently and
// joins the results into an AggregateResult. Provider failures are isolated:
// a timeout or error on one source never aborts the others, it just shows up
// as an unavailable result and lowers the verdict's confidence.
type Aggregator struct {
	providers []Provider
	timeout   time.Duration
	logger    *slog.Logger
}

// Config holds aggregator configuration. Credentials are passed in
// explicitly; there is no ambient global state.
type Config struct {
	SafeBrowsingKey string
	VirusTotalKey   string
	URLHausKey      string

	// Timeout bounds each provider call individually. Default 10s.
	Timeout time.Duration
}

// New creates an aggregator over the standard provider set.
func New(cfg Config, logger *slog.Logger) *Aggregator {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	providers := []Provider{
		NewSafeBrowsingClient(SafeBrowsingConfig{APIKey: cfg.SafeBrowsingKey, Timeout: timeout}),
		NewVirusTotalClient(VirusTotalConfig{APIKey: cfg.VirusTotalKey, Timeout: timeout}),
		NewURLHausClient(URLHausConfig{AuthKey: cfg.URLHausKey, Timeout: timeout}),
	}

	return &Aggregator{
		providers: providers,
		timeout:   timeout,
		logger:    logger,
	}
}

// CheckURL queries all providers concurrently and waits for every call to
// settle before composing the summary. No early return on first failure or
// first success: partial coverage is expressed through the summary counts,
// not through errors.
func (a *Aggregator) CheckURL(ctx context.Context, u *entity.NormalizedURL) *entity.AggregateResult {
	results := make(map[string]*entity.ProviderResult, len(a.providers))

	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, p := range a.providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()

			pctx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			res := p.Check(pctx, u)
			if !res.Available {
				a.logger.Warn("threat intel provider unavailable",
					"provider", p.Name(),
					"url", u.Canonical,
					"reason", res.Error,
				)
			}

			mu.Lock()
			results[p.Name()] = res
			mu.Unlock()
		}(p)
	}

	wg.Wait()

	return &entity.AggregateResult{
		PerProvider: results,
		Summary:     a.summarize(results),
	}
}

// summarize derives the deterministic summary from the settled provider
// results, iterating in provider registration order.
func (a *Aggregator) summarize(results map[string]*entity.ProviderResult) entity.AggregateSummary {
	summary := entity.AggregateSummary{
		ThreatIndicators:  []string{},
		OverallAssessment: entity.AssessmentSafe,
	}

	for _, p := range a.providers {
		res, ok := results[p.Name()]
		if !ok || !res.Available {
			summary.ProvidersUnavailable++
			continue
		}

		summary.ProvidersChecked++
		if res.Safe != nil && !*res.Safe {
			summary.ProvidersFlagged++
			summary.ThreatIndicators = append(summary.ThreatIndicators, indicatorFor(res))
		} else {
			summary.ProvidersSafe++
		}
	}

	if summary.ProvidersFlagged > 0 {
		summary.OverallAssessment = entity.AssessmentMalicious
	}

	return summary
}

// indicatorFor builds one descriptive string for a flagging provider from
// its detail map.
func indicatorFor(res *entity.ProviderResult) string {
	switch res.Provider {
	case entity.ProviderSafeBrowsing:
		if threats, ok := res.Detail["threats"].([]string); ok && len(threats) > 0 {
			return fmt.Sprintf("Google: %s", strings.Join(threats, ", "))
		}
	case entity.ProviderVirusTotal:
		if count, ok := res.Detail["malicious_count"].(int); ok {
			return fmt.Sprintf("VirusTotal: %d vendors flagged", count)
		}
	case entity.ProviderURLHaus:
		if threat, ok := res.Detail["threat_type"].(string); ok {
			return fmt.Sprintf("URLhaus: %s", threat)
		}
	}
	return fmt.Sprintf("%s: flagged as unsafe", res.Provider)
}

// ProviderStatus returns the configuration state of every provider.
func (a *Aggregator) ProviderStatus() []ProviderStatus {
	statuses := make([]ProviderStatus, 0, len(a.providers))
	for _, p := range a.providers {
		statuses = append(statuses, ProviderStatus{
			Name:        p.Name(),
			Configured:  p.IsConfigured(),
			Description: providerDescription(p.Name()),
		})
	}
	return statuses
}

func providerDescription(name string) string {
	switch name {
	case entity.ProviderSafeBrowsing:
		return "Google threat list matching (malware, social engineering)"
	case entity.ProviderVirusTotal:
		return "Multi-vendor URL analysis consensus"
	case entity.ProviderURLHaus:
		return "abuse.ch malware URL database"
	default:
		return ""
	}
}
