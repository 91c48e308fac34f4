package chat

import (
	"time"

	"github.com/carezhou/heartline/backend/internal/model/emotion"
)

// Assessment records one per-turn risk evaluation for reporting.
type Assessment struct {
	ID        string            `json:"id"`
	SessionID string            `json:"sessionId"`
	UserID    string            `json:"userId"`
	State     string            `json:"state"`
	RiskLevel emotion.RiskLevel `json:"riskLevel"`
	Score     float64           `json:"score"`
	CreatedAt time.Time         `json:"createdAt"`
}
