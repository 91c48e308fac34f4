// Package summary reduces a session's turn history to a short
// topic+state digest at session close.
package summary

import (
	"regexp"
	"strings"

	"github.com/carezhou/heartline/backend/internal/model/chat"
	"github.com/carezhou/heartline/backend/internal/model/emotion"
)

const emptyTopic = "General conversation"

var wordPattern = regexp.MustCompile(`\b\w+\b`)

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(
		"i me my myself we our ours ourselves you your yours " +
			"he him his she her hers it its they them their " +
			"what which who whom this that these those am is are " +
			"was were be been being have has had having do does " +
			"did doing a an the and but if or because as until " +
			"while of at by for with about against between into " +
			"through during before after above below to from up down " +
			"in out on off over under again further then once here " +
			"there when where why how all any both each few more " +
			"most other some such no nor not only own same so " +
			"than too very can will just don't should now feel feeling") {
		stopWords[w] = struct{}{}
	}
}

// Summarize reduces the user-authored turns to a "Topic: ... | State: ..."
// digest. Tokens shorter than four characters and stop words are dropped,
// the rest ranked by frequency with first-occurrence tie order. Idempotent
// for a given turn set and state.
func Summarize(turns []chat.Turn, detectedState string) string {
	var parts []string
	for _, turn := range turns {
		if turn.Sender == chat.SenderUser {
			parts = append(parts, turn.Content)
		}
	}

	words := wordPattern.FindAllString(strings.ToLower(strings.Join(parts, " ")), -1)

	counts := make(map[string]int)
	var order []string
	for _, w := range words {
		if len(w) <= 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	// Top 3 by frequency; stable insertion-order scan keeps ties on
	// first occurrence.
	var top []string
	for len(top) < 3 {
		best := ""
		bestCount := 0
		for _, w := range order {
			if counts[w] > bestCount {
				best = w
				bestCount = counts[w]
			}
		}
		if best == "" {
			break
		}
		top = append(top, best)
		counts[best] = 0
	}

	topic := emptyTopic
	if len(top) > 0 {
		topic = strings.Join(top, ", ")
	}
	return "Topic: " + topic + " | State: " + detectedState
}

// DetectedState returns the state recorded on the most recent bot turn,
// Neutral when the history carries none.
func DetectedState(turns []chat.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		turn := turns[i]
		if turn.Sender == chat.SenderBot && turn.Metadata != nil && turn.Metadata.State != "" {
			return turn.Metadata.State
		}
	}
	return emotion.StateNeutral
}
