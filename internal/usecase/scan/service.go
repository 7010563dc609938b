// Package scan orchestrates the hybrid URL risk-scoring pipeline:
// normalization, concurrent threat intel aggregation and lexical feature
// extraction, then score fusion.
package scan

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kr1s57/urlsentinel/internal/adapter/ml"
	"github.com/kr1s57/urlsentinel/internal/domain/features"
	"github.com/kr1s57/urlsentinel/internal/domain/scoring"
	"github.com/kr1s57/urlsentinel/internal/domain/urlnorm"
	"github.com/kr1s57/urlsentinel/internal/entity"
)

// Aggregator queries external threat intelligence sources.
type Aggregator interface {
	CheckURL(ctx context.Context, u *entity.NormalizedURL) *entity.AggregateResult
}

// Classifier is an optional pre-trained model consulted per scan.
type Classifier interface {
	Predict(v features.Vector) ml.Prediction
}

// Service runs the scan pipeline.
type Service struct {
	aggregator Aggregator
	classifier Classifier // nil when no model artifact is loaded
	logger     *slog.Logger
}

// NewService creates a scan service. classifier may be nil.
func NewService(aggregator Aggregator, classifier Classifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		aggregator: aggregator,
		classifier: classifier,
		logger:     logger,
	}
}

// Scan validates the raw URL and produces the complete analysis. The only
// error outcome is a *urlnorm.ValidationError; provider failures degrade
// into the summary counts and confidence instead.
func (s *Service) Scan(ctx context.Context, rawURL string) (*entity.ScanResult, error) {
	norm, err := urlnorm.NormalizeAndValidate(rawURL)
	if err != nil {
		return nil, err
	}

	// Feature extraction has no dependency on provider results, so it runs
	// alongside the provider fan-out.
	var vec features.Vector
	var risk features.RiskSignal
	featuresDone := make(chan struct{})
	go func() {
		defer close(featuresDone)
		vec = features.Extract(norm)
		risk = features.AssessRisk(vec)
	}()

	intel := s.aggregator.CheckURL(ctx, norm)
	<-featuresDone

	assessment := scoring.Fuse(&intel.Summary, risk)

	if urlnorm.HasSuspiciousPatterns(norm.Canonical) {
		assessment.ThreatIndicators = append(assessment.ThreatIndicators,
			"URL matches suspicious lexical patterns")
	}

	result := &entity.ScanResult{
		ScanID:     uuid.NewString(),
		URL:        norm.Canonical,
		Assessment: assessment,
		Intel:      intel,
		Analysis: entity.URLAnalysis{
			FeaturesAnalyzed: len(vec),
			KeyFeatures:      keyFeatures(vec),
			RiskFactors:      risk.Factors,
		},
		ScannedAt: time.Now().UTC(),
	}

	if s.classifier != nil {
		pred := s.classifier.Predict(vec)
		result.Classifier = &entity.ClassifierVerdict{
			Label:        pred.Label,
			Probability:  pred.Probability,
			ModelVersion: pred.ModelVersion,
		}
		if pred.Label == ml.LabelMalicious {
			assessment.ThreatIndicators = append(assessment.ThreatIndicators,
				"Classifier model predicts malicious")
		}
	}

	s.logger.Info("URL scan completed",
		"scan_id", result.ScanID,
		"url", norm.Canonical,
		"risk_level", assessment.RiskLevel,
		"final_score", assessment.FinalScore,
		"providers_checked", intel.Summary.ProvidersChecked,
	)

	return result, nil
}

func keyFeatures(v features.Vector) entity.KeyFeatures {
	return entity.KeyFeatures{
		URLLength:          int(v["url_length"]),
		DomainLength:       int(v["domain_length"]),
		SubdomainCount:     int(v["subdomain_count"]),
		UsesHTTPS:          v["has_https"] == 1,
		IsIPAddress:        v["is_ip_address"] == 1,
		SuspiciousKeywords: int(v["suspicious_keyword_count"]),
		URLEntropy:         v["url_entropy"],
	}
}
