package chat

import (
	"time"

	"github.com/carezhou/heartline/backend/internal/model/emotion"
)

// Turn senders.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Turn persists one message of a conversation for audit/debug.
// Turns are append-only and ordered by timestamp, ties broken by
// insertion order.
type Turn struct {
	ID        string        `json:"id"`
	SessionID string        `json:"sessionId"`
	Sender    string        `json:"sender"`
	Content   string        `json:"content"`
	Metadata  *TurnMetadata `json:"metadata,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// TurnMetadata carries the emotional evidence attached to a stored turn.
// User turns record the raw per-modality distributions; bot turns record
// the fused state and risk level that produced the response.
type TurnMetadata struct {
	State        string               `json:"state,omitempty"`
	RiskLevel    emotion.RiskLevel    `json:"riskLevel,omitempty"`
	AudioEmotion emotion.Distribution `json:"audioEmotion,omitempty"`
	VideoEmotion emotion.Distribution `json:"videoEmotion,omitempty"`
}
