package gemini

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

var models = []string{
	"gemini-1.5-flash",
	"gemini-1.5-pro",
	"gemini-2.0-flash",
}

type GeminiProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type geminiRequest struct {
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	Contents          []geminiContent  `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

func New(apiKey string) provider.Provider {
	return &GeminiProvider{
		apiKey:  apiKey,
		baseURL: "https://generativelanguage.googleapis.com",
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// Chat iterates the model list in fixed order, hinted model first when the
// hint is recognized, and returns the first non-empty candidate.
func (p *GeminiProvider) Chat(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	var lastErr error
	for _, model := range p.modelOrder(req.Model) {
		start := time.Now()
		text, err := p.generate(ctx, model, req)
		if err != nil {
			lastErr = err
			log.Printf("gemini: model %s failed: %v", model, err)
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
	return nil, fmt.Errorf("gemini: all models failed: %w", lastErr)
}

func (p *GeminiProvider) modelOrder(hint string) []string {
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

func (p *GeminiProvider) generate(ctx context.Context, model string, req *provider.Request) (string, error) {
	geminiReq := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Message}}},
		},
		GenerationConfig: generationConfig{
			MaxOutputTokens: 1024,
			Temperature:     0.7,
		},
	}
	if req.System != "" {
		geminiReq.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.System}},
		}
	}

	body, err := json.Marshal(geminiReq)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", p.baseURL, model, p.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gemini api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var geminiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", err
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", provider.ErrNoResponse
	}

	text := geminiResp.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", provider.ErrNoResponse
	}
	return text, nil
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) Available() bool {
	return p.apiKey != ""
}

func (p *GeminiProvider) Models() []string {
	return models
}
