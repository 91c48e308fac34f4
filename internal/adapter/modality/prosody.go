package modality

import (
	"encoding/binary"
	"errors"
	"log"
	"math"
)

// BasicProsodyExtractor computes zero-crossing rate and RMS energy from
// 16-bit PCM WAV audio. The 13 cepstral slots stay zero; filling them
// requires a DSP backend wired in place of this extractor.
type BasicProsodyExtractor struct{}

func NewBasicProsodyExtractor() *BasicProsodyExtractor { return &BasicProsodyExtractor{} }

// Extract returns the 15-dim feature vector, all zeros when the audio
// cannot be decoded.
func (e *BasicProsodyExtractor) Extract(audio []byte) []float64 {
	features := make([]float64, ProsodyDims)

	samples, err := decodePCM16(audio)
	if err != nil || len(samples) == 0 {
		if err != nil {
			log.Printf("[prosody] decode failed: %v", err)
		}
		return features
	}

	crossings := 0
	var sumSquares float64
	for i, s := range samples {
		v := float64(s) / 32768.0
		sumSquares += v * v
		if i > 0 && (samples[i-1] < 0) != (s < 0) {
			crossings++
		}
	}

	features[ProsodyDims-2] = float64(crossings) / float64(len(samples))
	features[ProsodyDims-1] = math.Sqrt(sumSquares / float64(len(samples)))
	return features
}

// decodePCM16 pulls the 16-bit sample stream out of a RIFF/WAVE blob,
// falling back to treating the input as raw PCM when no header is
// present.
func decodePCM16(audio []byte) ([]int16, error) {
	data := audio
	if len(audio) >= 12 && string(audio[0:4]) == "RIFF" && string(audio[8:12]) == "WAVE" {
		var err error
		data, err = findDataChunk(audio[12:])
		if err != nil {
			return nil, err
		}
	}

	if len(data) < 2 {
		return nil, errors.New("audio payload too short")
	}

	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[2*i:]))
	}
	return samples, nil
}

func findDataChunk(chunks []byte) ([]byte, error) {
	for len(chunks) >= 8 {
		id := string(chunks[0:4])
		size := int(binary.LittleEndian.Uint32(chunks[4:8]))
		body := chunks[8:]
		if size > len(body) {
			size = len(body)
		}
		if id == "data" {
			return body[:size], nil
		}
		// Chunks are word aligned.
		if size%2 == 1 {
			size++
		}
		if size >= len(body) {
			break
		}
		chunks = body[size:]
	}
	return nil, errors.New("no data chunk in wav")
}
