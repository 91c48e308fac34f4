package classifier

import (
	"context"
	"strings"

	"github.com/carezhou/heartline/backend/internal/model/emotion"
)

// Keyword vocabulary per state. Hits score 1.0; the tier never fails, so
// it terminates every chain.
var keywordBuckets = map[string][]string{
	"Depression": {"depressed", "hopeless", "worthless", "empty", "numb", "pointless"},
	"Anxiety":    {"anxious", "worry", "worried", "scared", "panic", "nervous", "afraid"},
	"Sadness":    {"sad", "down", "cry", "crying", "heartbroken", "miserable", "unhappy"},
	"Stress":     {"stress", "stressed", "overwhelmed", "tired", "exhausted", "pressure", "busy"},
	"Happy":      {"happy", "good", "great", "joy", "glad", "excited", "wonderful"},
}

// KeywordClassifier is the lexical fallback tier: substring matching of
// a fixed vocabulary over the lowercased text.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier { return &KeywordClassifier{} }

func (c *KeywordClassifier) Name() string { return "keyword" }

func (c *KeywordClassifier) Classify(_ context.Context, text string) (emotion.Distribution, error) {
	lowered := strings.ToLower(text)

	dist := make(emotion.Distribution)
	for state, words := range keywordBuckets {
		for _, w := range words {
			if strings.Contains(lowered, w) {
				dist[state] = 1.0
				break
			}
		}
	}
	if len(dist) == 0 {
		dist["Normal"] = 1.0
	}
	return dist, nil
}
