package features

// RiskSignal is the lexical risk derived from a feature vector: a 0-100
// score plus one human-readable factor per triggered rule.
type RiskSignal struct {
	Score   int      `json:"score"`
	Factors []string `json:"factors"`
}

// Threshold/increment policy for lexical risk. These are fixed constants,
// not learned values.
const (
	longURLThreshold       = 75
	manySubdomainThreshold = 3
	keywordThreshold       = 2
	digitRatioThreshold    = 0.3
	entropyThreshold       = 5.0
	maxRiskScore           = 100
)

// AssessRisk applies the fixed rule table to a feature vector.
func AssessRisk(v Vector) RiskSignal {
	score := 0
	var factors []string

	add := func(points int, factor string) {
		score += points
		factors = append(factors, factor)
	}

	if v["url_length"] > longURLThreshold {
		add(10, "Unusually long URL")
	}
	if v["is_ip_address"] == 1 {
		add(20, "Uses IP address instead of domain name")
	}
	if v["has_at_symbol"] == 1 {
		add(25, "Contains @ symbol (possible redirect)")
	}
	if v["subdomain_count"] > manySubdomainThreshold {
		add(15, "Excessive subdomains")
	}
	if v["suspicious_keyword_count"] > keywordThreshold {
		add(15, "Contains multiple suspicious keywords")
	}
	if v["digit_ratio"] > digitRatioThreshold {
		add(10, "High proportion of digits")
	}
	if v["has_https"] == 0 {
		add(5, "Not using HTTPS")
	}
	if v["url_entropy"] > entropyThreshold {
		add(10, "High entropy (random-looking URL)")
	}

	if score > maxRiskScore {
		score = maxRiskScore
	}

	return RiskSignal{Score: score, Factors: factors}
}
