package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/carezhou/heartline/backend/internal/model/emotion"
)

// Labels the LLM tier may emit, matching the dialogue template states.
var llmLabels = []string{"Depression", "Anxiety", "Sadness", "Stress", "Happy", "Normal"}

const llmSystemPrompt = "You are an emotional-state analyst for a mental-health support assistant. " +
	"Read the user's message and estimate how strongly it expresses each of these states: " +
	"Depression, Anxiety, Sadness, Stress, Happy, Normal.\n" +
	"Return only a JSON object of the form {\"scores\": {\"Depression\": 0.1, ...}} " +
	"with every score between 0 and 1. No extra text."

const llmUserPrompt = "User message:\n{message}\n\nReturn the JSON now."

// LLMClassifier scores text through a chat model. It is the first tier
// of the chain; any model or parse failure surfaces as ErrUnavailable so
// the lexical tier can take over.
type LLMClassifier struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewLLMClassifier compiles the scoring chain over the given chat model.
func NewLLMClassifier(ctx context.Context, chatModel model.ChatModel) (*LLMClassifier, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(llmSystemPrompt),
		schema.UserMessage(llmUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile classifier chain: %w", err)
	}

	return &LLMClassifier{chain: runnable}, nil
}

func (c *LLMClassifier) Name() string { return "llm" }

func (c *LLMClassifier) Classify(ctx context.Context, text string) (emotion.Distribution, error) {
	if c == nil || c.chain == nil {
		return nil, ErrUnavailable
	}

	msg, err := c.chain.Invoke(ctx, map[string]any{"message": strings.TrimSpace(text)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return nil, ErrUnavailable
	}

	dist, err := parseScores(msg.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return dist, nil
}

// parseScores extracts the JSON object from the model output, tolerating
// prose or code fences around it.
func parseScores(content string) (emotion.Distribution, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object")
	}

	var payload struct {
		Scores map[string]float64 `json:"scores"`
	}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &payload); err != nil {
		return nil, err
	}
	if len(payload.Scores) == 0 {
		return nil, fmt.Errorf("empty scores object")
	}

	dist := make(emotion.Distribution, len(llmLabels))
	for _, label := range llmLabels {
		score := payload.Scores[label]
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
		dist[label] = score
	}
	return dist, nil
}
