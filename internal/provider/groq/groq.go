package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/communityempower/ai-gateway/internal/provider"
)

const requestTimeout = 25 * time.Second

// defaultModel is tried first when the caller gives no usable hint.
const defaultModel = "llama-3.1-70b-versatile"

var models = []string{
	"llama-3.1-70b-versatile",
	"llama-3.1-8b-instant",
	"llama-3.3-70b-versatile",
	"llama3-70b-8192",
	"llama3-8b-8192",
	"mixtral-8x7b-32768",
	"gemma2-9b-it",
	"gemma-7b-it",
	"qwen-2.5-72b-instruct",
	"qwen-2.5-7b-instruct",
	"deepseek-llm-67b-chat",
	"mistral-large-latest",
	"mistral-small-latest",
	"llama-guard-3-8b",
}

type GroqProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type groqRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqResponse struct {
	ID      string       `json:"id"`
	Choices []groqChoice `json:"choices"`
	Model   string       `json:"model"`
}

type groqChoice struct {
	Message groqMessage `json:"message"`
}

func New(apiKey string) provider.Provider {
	return &GroqProvider{
		apiKey:  apiKey,
		baseURL: "https://api.groq.com/openai/v1",
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// Chat walks the model list in fixed order and returns the first non-empty
// completion. A caller hint that matches a known model is moved to the
// front; an unknown hint is ignored.
func (p *GroqProvider) Chat(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	var lastErr error
	for _, model := range p.modelOrder(req.Model) {
		start := time.Now()
		text, err := p.complete(ctx, model, req)
		if err != nil {
			lastErr = err
			log.Printf("groq: model %s failed: %v", model, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		return &provider.Response{
			Text:      text,
			Provider:  p.Name(),
			Model:     model,
			LatencyMs: time.Since(start).Milliseconds(),
		}, nil
	}
	if lastErr == nil {
		lastErr = provider.ErrNoResponse
	}
	return nil, fmt.Errorf("groq: all models failed: %w", lastErr)
}

func (p *GroqProvider) modelOrder(hint string) []string {
	picked := provider.PickModel(hint, models)
	if picked == "" {
		return models
	}
	order := []string{picked}
	for _, m := range models {
		if m != picked {
			order = append(order, m)
		}
	}
	return order
}

func (p *GroqProvider) complete(ctx context.Context, model string, req *provider.Request) (string, error) {
	body, err := json.Marshal(groqRequest{
		Model: model,
		Messages: []groqMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Message},
		},
		MaxTokens:   1024,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/chat/completions", p.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("groq api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var groqResp groqResponse
	if err := json.NewDecoder(resp.Body).Decode(&groqResp); err != nil {
		return "", err
	}

	if len(groqResp.Choices) == 0 || groqResp.Choices[0].Message.Content == "" {
		return "", provider.ErrNoResponse
	}

	return groqResp.Choices[0].Message.Content, nil
}

func (p *GroqProvider) Name() string {
	return "groq"
}

func (p *GroqProvider) Available() bool {
	return p.apiKey != ""
}

func (p *GroqProvider) Models() []string {
	return models
}
