// Package classifier resolves a text utterance into an emotional-state
// distribution through an ordered chain of strategies: each tier either
// answers or reports itself unavailable and the next one is tried.
package classifier

import (
	"context"
	"errors"
	"log"
	"sort"

	"github.com/carezhou/heartline/backend/internal/model/emotion"
)

// ErrUnavailable marks a tier that cannot serve the request (model not
// configured, remote failure, unparseable output). The chain moves on.
var ErrUnavailable = errors.New("classifier unavailable")

// Classifier is one strategy in the chain.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, text string) (emotion.Distribution, error)
}

// Chain tries its tiers in order until one succeeds. It is total: when
// every tier fails the result is the uniform Normal distribution.
type Chain struct {
	tiers []Classifier
}

// NewChain builds a chain over the given tiers, tried front to back.
func NewChain(tiers ...Classifier) *Chain {
	return &Chain{tiers: tiers}
}

// Classify never fails; unavailable tiers are logged and skipped.
func (c *Chain) Classify(ctx context.Context, text string) emotion.Distribution {
	for _, tier := range c.tiers {
		dist, err := tier.Classify(ctx, text)
		if err != nil {
			log.Printf("[classifier] tier %s unavailable: %v", tier.Name(), err)
			continue
		}
		if len(dist) > 0 {
			return dist
		}
	}
	return emotion.Distribution{"Normal": 1.0}
}

// Dominant selects the argmax state of a distribution, scanning the
// canonical states first so fused distributions tie-break
// deterministically, then any remaining keys in sorted order.
func Dominant(dist emotion.Distribution) string {
	best := "Normal"
	bestScore := -1.0
	seen := make(map[string]bool, len(emotion.States))
	for _, state := range emotion.States {
		seen[state] = true
		if score, ok := dist[state]; ok && score > bestScore {
			best = state
			bestScore = score
		}
	}
	for _, state := range sortedKeys(dist) {
		if seen[state] {
			continue
		}
		if dist[state] > bestScore {
			best = state
			bestScore = dist[state]
		}
	}
	return best
}

func sortedKeys(dist emotion.Distribution) []string {
	keys := make([]string, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
