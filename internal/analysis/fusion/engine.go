package fusion

import (
	"strings"

	"github.com/carezhou/heartline/backend/internal/model/emotion"
)

// Modality weights. Fixed design constants, not learned.
const (
	textWeight  = 0.4
	videoWeight = 0.4
	audioWeight = 0.2

	// Text contributes a constant baseline for Neutral instead of a
	// keyword hit.
	neutralTextBaseline = 0.5

	// Fused signals below this score default to Neutral.
	confidenceFloor = 0.3
)

// Lexical cue vocabulary. Presence of any word yields a binary 1.0
// signal for the state; this is the stand-in text classifier when no
// richer model is configured.
var textCueWords = map[string][]string{
	emotion.StateSadness: {"sad", "down", "depressed", "cry", "heavy"},
	emotion.StateAnxiety: {"anxious", "worry", "scared", "panic"},
	emotion.StateStress:  {"stress", "overwhelmed", "tired", "busy"},
	emotion.StateHappy:   {"happy", "good", "great", "joy"},
}

// Per-state source keys in the video (facial-label) and audio (prosody
// classifier) distributions. Iterated in emotion.States order so argmax
// ties are deterministic.
var sourceKeys = map[string]struct{ video, audio string }{
	emotion.StateSadness: {video: "Sad", audio: "sad"},
	emotion.StateAnxiety: {video: "Fear", audio: "fear"},
	emotion.StateStress:  {video: "Angry", audio: "angry"},
	emotion.StateHappy:   {video: "Happy", audio: "happy"},
	emotion.StateNeutral: {video: "Neutral", audio: "neutral"},
}

// Evidence bundles the per-modality inputs of one turn. Audio and Video
// may be nil; a nil distribution reads as all-zero.
type Evidence struct {
	Transcript string
	Audio      emotion.Distribution
	Video      emotion.Distribution
}

// Result is the fused decision over the canonical states.
type Result struct {
	DominantState string
	Scores        emotion.Distribution
	TextCues      emotion.Distribution
}

// TextCues derives binary lexical signals from the transcript.
func TextCues(transcript string) emotion.Distribution {
	lowered := strings.ToLower(transcript)
	cues := make(emotion.Distribution, len(textCueWords))
	for state, words := range textCueWords {
		cues[state] = 0
		for _, w := range words {
			if strings.Contains(lowered, w) {
				cues[state] = 1
				break
			}
		}
	}
	return cues
}

// Fuse combines the three modalities into one score distribution and
// selects the dominant state. It is total over the input space: missing
// modalities contribute zero, and low-confidence results collapse to
// Neutral.
func Fuse(ev Evidence) Result {
	cues := TextCues(ev.Transcript)

	scores := make(emotion.Distribution, len(emotion.States))
	for _, state := range emotion.States {
		keys := sourceKeys[state]
		text := cues.Get(state)
		if state == emotion.StateNeutral {
			text = neutralTextBaseline
		}
		scores[state] = textWeight*text +
			videoWeight*ev.Video.Get(keys.video) +
			audioWeight*ev.Audio.Get(keys.audio)
	}

	dominant := emotion.StateNeutral
	best := -1.0
	for _, state := range emotion.States {
		if scores[state] > best {
			dominant = state
			best = scores[state]
		}
	}
	if best < confidenceFloor {
		dominant = emotion.StateNeutral
	}

	return Result{DominantState: dominant, Scores: scores, TextCues: cues}
}
