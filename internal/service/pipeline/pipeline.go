// Package pipeline wires the per-turn flow: safety check, parallel
// modality collection, fusion, risk assessment, dialogue strategy and
// best-effort persistence.
package pipeline

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/carezhou/heartline/backend/internal/adapter/modality"
	"github.com/carezhou/heartline/backend/internal/analysis/fusion"
	"github.com/carezhou/heartline/backend/internal/analysis/risk"
	"github.com/carezhou/heartline/backend/internal/analysis/safety"
	"github.com/carezhou/heartline/backend/internal/model/chat"
	"github.com/carezhou/heartline/backend/internal/model/emotion"
	"github.com/carezhou/heartline/backend/internal/service/classifier"
	"github.com/carezhou/heartline/backend/internal/service/dialogue"
	"github.com/carezhou/heartline/backend/internal/service/session"
	"github.com/carezhou/heartline/backend/internal/service/summary"
)

// Contextual risk vocabulary counted over the current input text.
var riskKeywords = []string{"sad", "hopeless", "dark"}

// How many stored turns feed the dialogue strategy (three exchanges).
const historyLimit = 6

// Per-modality deadline; a task that misses it degrades to
// "evidence unavailable" rather than stalling the turn.
const defaultModalityTimeout = 15 * time.Second

// Pipeline owns the per-turn flow. All collaborators are injected at
// construction; the pipeline itself is stateless across turns and safe
// for concurrent use.
type Pipeline struct {
	guard       *safety.Guard
	transcriber modality.Transcriber
	prosody     modality.ProsodyExtractor
	faces       modality.FaceClassifier
	audioModel  modality.AudioClassifier
	textModel   *classifier.Chain
	dialogue    *dialogue.Engine
	store       *session.Store
	timeout     time.Duration
}

// Config bundles the pipeline's collaborators.
type Config struct {
	Guard           *safety.Guard
	Transcriber     modality.Transcriber
	Prosody         modality.ProsodyExtractor
	Faces           modality.FaceClassifier
	AudioModel      modality.AudioClassifier
	TextModel       *classifier.Chain
	Dialogue        *dialogue.Engine
	Store           *session.Store
	ModalityTimeout time.Duration
}

// New assembles a pipeline. Nil adapters fall back to their null
// implementations so the pipeline stays total even when a backend is
// not configured.
func New(cfg Config) *Pipeline {
	if cfg.Transcriber == nil {
		cfg.Transcriber = modality.NullTranscriber{}
	}
	if cfg.Prosody == nil {
		cfg.Prosody = modality.NewBasicProsodyExtractor()
	}
	if cfg.Faces == nil {
		cfg.Faces = modality.NullFaceClassifier{}
	}
	if cfg.AudioModel == nil {
		cfg.AudioModel = modality.DefaultAudioClassifier{}
	}
	if cfg.Guard == nil {
		cfg.Guard = safety.NewGuard()
	}
	if cfg.Dialogue == nil {
		cfg.Dialogue = dialogue.New()
	}
	if cfg.TextModel == nil {
		cfg.TextModel = classifier.NewChain(classifier.NewKeywordClassifier())
	}
	if cfg.ModalityTimeout <= 0 {
		cfg.ModalityTimeout = defaultModalityTimeout
	}

	return &Pipeline{
		guard:       cfg.Guard,
		transcriber: cfg.Transcriber,
		prosody:     cfg.Prosody,
		faces:       cfg.Faces,
		audioModel:  cfg.AudioModel,
		textModel:   cfg.TextModel,
		dialogue:    cfg.Dialogue,
		store:       cfg.Store,
		timeout:     cfg.ModalityTimeout,
	}
}

// TurnInput is one multimodal user turn.
type TurnInput struct {
	SessionID   string
	Audio       []byte
	AudioFormat string
	Frames      [][]byte
}

// TurnResult is the response payload for one turn.
type TurnResult struct {
	Response      string            `json:"response"`
	State         string            `json:"state"`
	RiskLevel     emotion.RiskLevel `json:"risk_level"`
	RiskScore     float64           `json:"risk_score"`
	Transcription string            `json:"transcription,omitempty"`
	DebugInfo     DebugInfo         `json:"debug_info"`
}

// DebugInfo exposes the raw per-modality distributions of a turn.
type DebugInfo struct {
	TextEmotion  emotion.Distribution `json:"text_emotion,omitempty"`
	AudioEmotion emotion.Distribution `json:"audio_emotion,omitempty"`
	VideoEmotion emotion.Distribution `json:"video_emotion,omitempty"`
}

type audioEvidence struct {
	transcript string
	features   []float64
	scores     emotion.Distribution
}

// ProcessMultimodal runs the full multimodal turn: parallel audio and
// video collection, safety check on the transcript, fusion, risk,
// dialogue and persistence.
func (p *Pipeline) ProcessMultimodal(ctx context.Context, in TurnInput) (*TurnResult, error) {
	audio, video, err := Collect(
		func() (audioEvidence, error) { return p.collectAudio(ctx, in) },
		func() (emotion.Distribution, error) { return p.collectVideo(ctx, in.Frames) },
	)
	if err != nil {
		return nil, err
	}

	if safe, reason := p.guard.Check(audio.transcript); !safe {
		log.Printf("[pipeline] unsafe transcript for session=%s: %s", in.SessionID, reason)
		return p.safetyResult(), nil
	}

	fused := fusion.Fuse(fusion.Evidence{
		Transcript: audio.transcript,
		Audio:      audio.scores,
		Video:      video,
	})

	riskCount := countRiskKeywords(audio.transcript)
	level, score := risk.Assess(fused.Scores, riskCount)

	historyLen := p.historyLength(ctx, in.SessionID)
	response := p.dialogue.Respond(fused.DominantState, level, historyLen, audio.transcript)

	p.persistTurn(ctx, in.SessionID, audio.transcript, response, fused.DominantState, level, score, audio.scores, video)

	return &TurnResult{
		Response:      response,
		State:         fused.DominantState,
		RiskLevel:     level,
		RiskScore:     score,
		Transcription: audio.transcript,
		DebugInfo: DebugInfo{
			TextEmotion:  fused.TextCues,
			AudioEmotion: audio.scores,
			VideoEmotion: video,
		},
	}, nil
}

// ProcessText runs a text-only turn through the classifier chain
// instead of multimodal fusion.
func (p *Pipeline) ProcessText(ctx context.Context, sessionID, message string) (*TurnResult, error) {
	if safe, reason := p.guard.Check(message); !safe {
		log.Printf("[pipeline] unsafe input for session=%s: %s", sessionID, reason)
		return p.safetyResult(), nil
	}

	dist := p.textModel.Classify(ctx, message)
	state := classifier.Dominant(dist)

	riskCount := countRiskKeywords(message)
	level, score := risk.Assess(dist, riskCount)

	historyLen := p.historyLength(ctx, sessionID)
	response := p.dialogue.Respond(state, level, historyLen, message)

	p.persistTurn(ctx, sessionID, message, response, state, level, score, nil, nil)

	return &TurnResult{
		Response:  response,
		State:     state,
		RiskLevel: level,
		RiskScore: score,
		DebugInfo: DebugInfo{TextEmotion: dist},
	}, nil
}

// CloseSession summarizes the session's history and marks it ended. The
// detected state comes from the last bot turn's metadata, Neutral when
// none exists.
func (p *Pipeline) CloseSession(ctx context.Context, sessionID string) (string, error) {
	turns, err := p.store.Transcript(ctx, sessionID)
	if err != nil {
		return "", err
	}

	digest := summary.Summarize(turns, summary.DetectedState(turns))
	if _, err := p.store.Close(ctx, sessionID, digest); err != nil {
		return "", err
	}
	log.Printf("[pipeline] closed session=%s summary=%q", sessionID, digest)
	return digest, nil
}

func (p *Pipeline) collectAudio(ctx context.Context, in TurnInput) (audioEvidence, error) {
	taskCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ev := audioEvidence{}
	if len(in.Audio) == 0 {
		ev.scores = p.classifyAudio(taskCtx, nil)
		return ev, nil
	}

	transcript, err := p.transcriber.Transcribe(taskCtx, in.Audio, in.AudioFormat)
	if err != nil {
		// Transcription failure degrades to an empty transcript.
		log.Printf("[pipeline] transcription failed: %v", err)
		transcript = ""
	}
	ev.transcript = strings.TrimSpace(transcript)

	ev.features = p.prosody.Extract(in.Audio)
	ev.scores = p.classifyAudio(taskCtx, ev.features)
	return ev, nil
}

func (p *Pipeline) classifyAudio(ctx context.Context, features []float64) emotion.Distribution {
	scores, err := p.audioModel.ClassifyAudio(ctx, features)
	if err != nil || len(scores) == 0 {
		if err != nil {
			log.Printf("[pipeline] audio classification failed: %v", err)
		}
		// Neutral-leaning default keeps fusion total.
		return emotion.Distribution{"sad": 0.1, "neutral": 0.9}
	}
	return scores
}

func (p *Pipeline) collectVideo(ctx context.Context, frames [][]byte) (emotion.Distribution, error) {
	taskCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var agg emotion.Distribution
	detected := 0
	for _, frame := range frames {
		scores, err := p.faces.ClassifyFace(taskCtx, frame)
		if err != nil {
			log.Printf("[pipeline] face classification failed: %v", err)
			continue
		}
		if scores == nil {
			// No face in this frame.
			continue
		}
		if agg == nil {
			agg = make(emotion.Distribution, len(scores))
		}
		for k, v := range scores {
			agg[k] += v
		}
		detected++
	}

	if detected == 0 {
		return emotion.Distribution{"Neutral": 1.0}, nil
	}
	for k := range agg {
		agg[k] /= float64(detected)
	}
	return agg, nil
}

func (p *Pipeline) safetyResult() *TurnResult {
	return &TurnResult{
		Response:  safety.Message,
		State:     emotion.StateNeutral,
		RiskLevel: emotion.RiskHigh,
	}
}

func (p *Pipeline) historyLength(ctx context.Context, sessionID string) int {
	if p.store == nil || sessionID == "" {
		return 0
	}
	turns, err := p.store.RecentTurns(ctx, sessionID, historyLimit)
	if err != nil {
		return 0
	}
	return len(turns)
}

// persistTurn records the exchange and its assessment. Failures are
// logged, never surfaced: the computed response is returned to the user
// even when it could not be durably recorded.
func (p *Pipeline) persistTurn(ctx context.Context, sessionID, userText, botText, state string, level emotion.RiskLevel, score float64, audioScores, videoScores emotion.Distribution) {
	if p.store == nil || sessionID == "" {
		return
	}

	sess, err := p.store.Get(ctx, sessionID)
	if err != nil {
		log.Printf("[pipeline] session lookup failed for %s: %v", sessionID, err)
		return
	}

	userTurn := chat.Turn{
		SessionID: sessionID,
		Sender:    chat.SenderUser,
		Content:   userText,
		Metadata: &chat.TurnMetadata{
			AudioEmotion: audioScores.Clone(),
			VideoEmotion: videoScores.Clone(),
		},
	}
	botTurn := chat.Turn{
		SessionID: sessionID,
		Sender:    chat.SenderBot,
		Content:   botText,
		Metadata: &chat.TurnMetadata{
			State:     state,
			RiskLevel: level,
		},
	}

	if err := p.store.AppendExchange(ctx, userTurn, botTurn); err != nil {
		log.Printf("[pipeline] failed to persist turn for session=%s: %v", sessionID, err)
		return
	}

	p.store.RecordAssessment(ctx, chat.Assessment{
		SessionID: sessionID,
		UserID:    sess.UserID,
		State:     state,
		RiskLevel: level,
		Score:     score,
	})
}

func countRiskKeywords(text string) int {
	lowered := strings.ToLower(text)
	count := 0
	for _, w := range riskKeywords {
		if strings.Contains(lowered, w) {
			count++
		}
	}
	return count
}
