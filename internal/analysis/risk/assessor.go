package risk

import "github.com/carezhou/heartline/backend/internal/model/emotion"

// Scoring constants. The contextual term is weighted per keyword
// occurrence, not per turn.
const (
	depressionWeight = 0.7
	anxietyWeight    = 0.3
	contextWeight    = 0.2

	highThreshold   = 0.8
	mediumThreshold = 0.4
)

// Assess maps a state distribution plus a contextual risk-keyword count
// to an ordinal risk level. Pure and total: absent keys read as zero and
// thresholds are strict, so a score of exactly 0.8 is Medium, not High.
func Assess(dist emotion.Distribution, contextualRiskFactors int) (emotion.RiskLevel, float64) {
	score := depressionWeight*dist.Get("Depression") +
		anxietyWeight*dist.Get("Anxiety") +
		contextWeight*float64(contextualRiskFactors)

	switch {
	case score > highThreshold:
		return emotion.RiskHigh, score
	case score > mediumThreshold:
		return emotion.RiskMedium, score
	default:
		return emotion.RiskLow, score
	}
}
