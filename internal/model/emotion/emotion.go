package emotion

// Distribution maps an emotional-state label to a score in [0,1].
// Each modality produces an independent partial distribution over its
// own label set; a missing key reads as zero, so distributions never
// need to be complete or sum to one.
type Distribution map[string]float64

// Get returns the score for state, or 0 when the key is absent or the
// distribution is nil.
func (d Distribution) Get(state string) float64 {
	if d == nil {
		return 0
	}
	return d[state]
}

// Clone returns an independent copy so callers can hold a distribution
// past the turn that produced it.
func (d Distribution) Clone() Distribution {
	if d == nil {
		return nil
	}
	out := make(Distribution, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Fused emotional states in canonical order. Argmax ties resolve to the
// earliest entry, which keeps fusion deterministic.
const (
	StateSadness = "Sadness"
	StateAnxiety = "Anxiety"
	StateStress  = "Stress"
	StateHappy   = "Happy"
	StateNeutral = "Neutral"
)

// States enumerates the fused states in their canonical iteration order.
var States = []string{StateSadness, StateAnxiety, StateStress, StateHappy, StateNeutral}

// RiskLevel is the ordinal escalation tier derived from the fused state
// plus contextual signals.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)
