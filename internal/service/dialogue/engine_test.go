package dialogue

import (
	"strings"
	"testing"

	"github.com/carezhou/heartline/backend/internal/model/emotion"
)

func contains(choices []string, text string) bool {
	for _, c := range choices {
		if c == text {
			return true
		}
	}
	return false
}

func highRiskBucket() []string {
	return append(append([]string{}, templates[stateHighRisk][StrategyValidation]...), templates[stateHighRisk][StrategyCoping]...)
}

func TestRespondHighRiskOverridesEverything(t *testing.T) {
	engine := New()
	bucket := highRiskBucket()

	for _, state := range []string{"Depression", "Anxiety", "Happy", "Unknown"} {
		for _, historyLen := range []int{0, 3, 9} {
			got := engine.Respond(state, emotion.RiskHigh, historyLen, "what a lovely day")
			if !contains(bucket, got) {
				t.Fatalf("state=%s history=%d: response outside the high-risk bucket: %q", state, historyLen, got)
			}
		}
	}
}

func TestRespondSelfHarmTopicTriggersSafetyCoping(t *testing.T) {
	engine := New()
	got := engine.Respond("Normal", emotion.RiskLow, 0, "some days I just want to end it")
	if !contains(templates[stateHighRisk][StrategyCoping], got) {
		t.Fatalf("expected high-risk coping response, got %q", got)
	}
}

func TestRespondTopicReflectionWithFollowUp(t *testing.T) {
	engine := New()
	got := engine.Respond("Anxiety", emotion.RiskLow, 0, "my boss keeps piling things on")

	const reflection = "Work stress can be all-consuming. Are you able to set any boundaries today?"
	if !strings.HasPrefix(got, reflection+" ") {
		t.Fatalf("expected work reflection prefix, got %q", got)
	}
	followUp := strings.TrimPrefix(got, reflection+" ")
	if !contains(Lookup("Anxiety", StrategyQuestioning), followUp) {
		t.Fatalf("follow-up outside the Anxiety questioning bucket: %q", followUp)
	}
}

func TestRespondStrategyEscalatesWithDepth(t *testing.T) {
	engine := New()
	cases := []struct {
		historyLen int
		strategy   string
	}{
		{0, StrategyValidation},
		{2, StrategyValidation},
		{3, StrategyQuestioning},
		{4, StrategyQuestioning},
		{5, StrategyCoping},
	}

	for _, tc := range cases {
		got := engine.Respond("Depression", emotion.RiskLow, tc.historyLen, "nothing in particular")
		if !contains(Lookup("Depression", tc.strategy), got) {
			t.Fatalf("history=%d: response outside the %s bucket: %q", tc.historyLen, tc.strategy, got)
		}
	}
}

func TestRespondUnknownStateFallsBackToNormal(t *testing.T) {
	engine := New()
	got := engine.Respond("Bewilderment", emotion.RiskLow, 0, "just checking in")
	if !contains(templates[stateNormal][StrategyValidation], got) {
		t.Fatalf("expected Normal validation response, got %q", got)
	}
}

func TestLookupFallbackOrder(t *testing.T) {
	// Normal has no Coping templates: falls back to its Validation list.
	if got := Lookup("Normal", StrategyCoping); !contains(templates[stateNormal][StrategyValidation], got[0]) {
		t.Fatalf("expected Normal coping to fall back to validation, got %v", got)
	}

	// Unknown state resolves to Normal before the strategy fallback.
	got := Lookup("Unknown", StrategyQuestioning)
	if len(got) == 0 || !contains(templates[stateNormal][StrategyQuestioning], got[0]) {
		t.Fatalf("expected Normal questioning bucket, got %v", got)
	}
}

func TestChooseEmptyBucketReturnsAcknowledgment(t *testing.T) {
	engine := New()
	if got := engine.choose(nil); got != genericAcknowledgment {
		t.Fatalf("expected generic acknowledgment, got %q", got)
	}
}
