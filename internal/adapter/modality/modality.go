// Package modality wraps the external per-modality inference services.
// Every adapter fails soft: a broken or unconfigured backend degrades to
// empty text, a zero feature vector or a nil distribution, never an
// aborted turn.
package modality

import (
	"context"

	"github.com/carezhou/heartline/backend/internal/model/emotion"
)

// ProsodyDims is the prosodic feature-vector width: 13 cepstral
// coefficients, zero-crossing rate, RMS energy.
const ProsodyDims = 15

// Transcriber converts captured audio to text. Implementations return
// an empty string on internal failure rather than an error the caller
// must handle.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, format string) (string, error)
}

// ProsodyExtractor derives the fixed-width prosodic feature vector from
// raw audio, all zeros when extraction fails.
type ProsodyExtractor interface {
	Extract(audio []byte) []float64
}

// FaceClassifier scores facial emotion for one frame. A nil
// distribution with nil error means no face was detected.
type FaceClassifier interface {
	ClassifyFace(ctx context.Context, image []byte) (emotion.Distribution, error)
}

// AudioClassifier scores emotion from a prosodic feature vector.
type AudioClassifier interface {
	ClassifyAudio(ctx context.Context, features []float64) (emotion.Distribution, error)
}

// NullTranscriber stands in when no speech backend is configured.
type NullTranscriber struct{}

func (NullTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	return "", nil
}

// NullFaceClassifier reports no face for every frame.
type NullFaceClassifier struct{}

func (NullFaceClassifier) ClassifyFace(context.Context, []byte) (emotion.Distribution, error) {
	return nil, nil
}

// DefaultAudioClassifier is the fixed neutral-leaning stand-in used when
// no trained audio model is available.
type DefaultAudioClassifier struct{}

func (DefaultAudioClassifier) ClassifyAudio(context.Context, []float64) (emotion.Distribution, error) {
	return emotion.Distribution{"sad": 0.1, "neutral": 0.9}, nil
}
