package dialogue

import (
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/carezhou/heartline/backend/internal/model/emotion"
)

// topicRule pairs a keyword pattern with its reflection text. Rules are
// scanned in order and the first match wins, so the table must stay a
// slice, not a map.
type topicRule struct {
	pattern    *regexp.Regexp
	reflection string
	risk       bool
}

var topicRules = []topicRule{
	{
		pattern:    regexp.MustCompile(`\b(exam|test|study|grade|fail)\b`),
		reflection: "It sounds like academic pressure is weighing on you. Remember, a grade does not define your worth.",
	},
	{
		pattern:    regexp.MustCompile(`\b(job|work|boss|career)\b`),
		reflection: "Work stress can be all-consuming. Are you able to set any boundaries today?",
	},
	{
		pattern:    regexp.MustCompile(`\b(lonely|alone|isolated)\b`),
		reflection: "Loneliness is a universal human feeling, but it hurts deeply. Connection starts with small steps.",
	},
	{
		pattern:    regexp.MustCompile(`\b(sleep|tired|insomnia)\b`),
		reflection: "Rest is foundational to mental health. Have you been sleeping okay lately?",
	},
	{
		pattern:    regexp.MustCompile(`\b(breakup|ex|relationship|sad)\b`),
		reflection: "Heartbreak is a unique kind of grief. Be gentle with yourself.",
	},
	{
		pattern: regexp.MustCompile(`\b(die|kill|suicide|end it)\b`),
		risk:    true,
	},
}

// Engine emits templated responses via a rule-based conversational
// strategy. It holds no per-session state: every turn is recomputed from
// (state, risk level, history length, raw input), with randomness only
// inside the chosen template bucket.
type Engine struct {
	pick func(n int) int
}

// New returns an engine drawing templates uniformly at random.
func New() *Engine {
	return &Engine{pick: rand.IntN}
}

// Respond chooses a response for the turn.
//
// Priority order: High risk always takes the safety branch; then the
// first matching topic rule emits a reflection plus a state-appropriate
// follow-up question (or the safety coping branch for the self-harm
// rule); otherwise the strategy escalates with conversation depth.
func (e *Engine) Respond(state string, riskLevel emotion.RiskLevel, historyLen int, userInput string) string {
	if riskLevel == emotion.RiskHigh {
		return e.choose(append(append([]string{}, templates[stateHighRisk][StrategyValidation]...), templates[stateHighRisk][StrategyCoping]...))
	}

	if userInput != "" {
		lowered := strings.ToLower(userInput)
		for _, rule := range topicRules {
			if !rule.pattern.MatchString(lowered) {
				continue
			}
			if rule.risk {
				return e.choose(templates[stateHighRisk][StrategyCoping])
			}
			return rule.reflection + " " + e.choose(Lookup(state, StrategyQuestioning))
		}
	}

	strategy := StrategyValidation
	switch {
	case historyLen > 4:
		strategy = StrategyCoping
	case historyLen > 2:
		strategy = StrategyQuestioning
	}

	return e.choose(Lookup(state, strategy))
}

func (e *Engine) choose(choices []string) string {
	if len(choices) == 0 {
		return genericAcknowledgment
	}
	return choices[e.pick(len(choices))]
}
