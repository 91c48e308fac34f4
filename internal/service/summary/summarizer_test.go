package summary

import (
	"testing"

	"github.com/carezhou/heartline/backend/internal/model/chat"
)

func userTurn(content string) chat.Turn {
	return chat.Turn{Sender: chat.SenderUser, Content: content}
}

func botTurn(content string) chat.Turn {
	return chat.Turn{Sender: chat.SenderBot, Content: content}
}

func TestSummarizeRanksKeywordsByFrequency(t *testing.T) {
	turns := []chat.Turn{
		userTurn("work deadlines keep stacking up, work never stops"),
		botTurn("work is not everything"), // bot turns must be ignored
		userTurn("deadlines again, plus exams coming"),
	}

	got := Summarize(turns, "Stress")
	// "work" and "deadlines" appear twice; the remaining tie at one
	// occurrence resolves to "keep", the earliest survivor.
	want := "Topic: work, deadlines, keep | State: Stress"
	if got != want {
		t.Fatalf("unexpected summary: got %q want %q", got, want)
	}
}

func TestSummarizeIsIdempotent(t *testing.T) {
	turns := []chat.Turn{
		userTurn("lonely evenings are the hardest"),
		userTurn("evenings drag on forever"),
	}

	first := Summarize(turns, "Sadness")
	second := Summarize(turns, "Sadness")
	if first != second {
		t.Fatalf("summaries differ between calls: %q vs %q", first, second)
	}
}

func TestSummarizeEmptyUserTurns(t *testing.T) {
	got := Summarize([]chat.Turn{botTurn("hello there")}, "Neutral")
	if got != "Topic: General conversation | State: Neutral" {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestSummarizeDropsStopAndShortWords(t *testing.T) {
	got := Summarize([]chat.Turn{userTurn("i am so so sad now")}, "Sadness")
	// "sad" is only three letters and everything else is a stop word.
	if got != "Topic: General conversation | State: Sadness" {
		t.Fatalf("unexpected summary: %q", got)
	}
}
