package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fdg312/calorie-diary/internal/config"
)

type OpenAIProvider struct {
	apiKey      string
	model       string
	baseURL     string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

func NewOpenAIProvider(cfg *config.Config) *OpenAIProvider {
	timeoutSeconds := cfg.AITimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = 20
	}
	baseURL := strings.TrimRight(cfg.OpenAIBaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &OpenAIProvider{
		apiKey:      cfg.OpenAIAPIKey,
		model:       cfg.OpenAIModel,
		baseURL:     baseURL,
		maxTokens:   cfg.AIMaxOutputTokens,
		temperature: cfg.AITemperature,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

const loggerInstructions = "You are a strict food logger for a calorie tracker app.\n" +
	"Turn the user's message into one or more concrete food entries with estimated nutrition.\n" +
	"Be conservative and reasonable. If portion size is missing, assume a common portion and say so in notes.\n" +
	"Prefer matching against provided templates when an obvious match exists.\n" +
	"Do not chat. Do not give advice. Only produce the JSON output.\n" +
	"If nothing to log, return items: [] and notes explaining why."

// proposalSchema constrains the model to {notes, items[{name, cals, protein, carbs, fat}]}.
var proposalSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"notes": map[string]any{"type": "string"},
		"items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"name":    map[string]any{"type": "string"},
					"cals":    map[string]any{"type": "integer", "minimum": 0},
					"protein": map[string]any{"type": "integer", "minimum": 0},
					"carbs":   map[string]any{"type": "integer", "minimum": 0},
					"fat":     map[string]any{"type": "integer", "minimum": 0},
				},
				"required": []string{"name", "cals", "protein", "carbs", "fat"},
			},
		},
	},
	"required": []string{"notes", "items"},
}

func (p *OpenAIProvider) Propose(ctx context.Context, req ProposeRequest) (RawProposal, error) {
	userContext, err := json.Marshal(map[string]any{
		"date":      req.Date,
		"goals":     req.Goals,
		"templates": nonNilItems(req.Templates),
		"recent":    nonNilItems(req.Recent),
	})
	if err != nil {
		return RawProposal{}, err
	}

	requestPayload := chatCompletionsRequest{
		Model:       p.model,
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
		Messages: []chatMessageRequest{
			{Role: "system", Content: loggerInstructions},
			{Role: "user", Content: "User message: " + req.Message + "\nContext JSON: " + string(userContext)},
		},
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: jsonSchemaFormat{
				Name:   "log_items",
				Schema: proposalSchema,
			},
		},
	}

	body, err := json.Marshal(requestPayload)
	if err != nil {
		return RawProposal{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return RawProposal{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return RawProposal{}, err
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return RawProposal{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return RawProposal{}, fmt.Errorf("openai request failed with status %d", resp.StatusCode)
	}

	var parsed chatCompletionsResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return RawProposal{}, err
	}
	if len(parsed.Choices) == 0 {
		return RawProposal{}, nil
	}

	return RawProposal{Text: strings.TrimSpace(parsed.Choices[0].Message.Content)}, nil
}

func nonNilItems(items []ContextItem) []ContextItem {
	if items == nil {
		return []ContextItem{}
	}
	return items
}

type chatCompletionsRequest struct {
	Model          string               `json:"model"`
	Messages       []chatMessageRequest `json:"messages"`
	Temperature    float64              `json:"temperature"`
	MaxTokens      int                  `json:"max_tokens"`
	ResponseFormat *responseFormat      `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string           `json:"type"`
	JSONSchema jsonSchemaFormat `json:"json_schema"`
}

type jsonSchemaFormat struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
}

type chatMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionsResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
