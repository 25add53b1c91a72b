package bedrock

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/communityempower/ai-gateway/internal/provider"
)

const requestTimeout = 25 * time.Second

const defaultAlias = "claude-3-haiku"

// modelEntry binds a short alias to the full Bedrock model ID and the
// dialect family used to encode and decode its payload.
type modelEntry struct {
	id     string
	family Family
}

var modelTable = map[string]modelEntry{
	"claude-3-opus":        {"anthropic.claude-3-opus-20240229-v1:0", FamilyClaude},
	"claude-3-sonnet":      {"anthropic.claude-3-sonnet-20240229-v1:0", FamilyClaude},
	"claude-3-haiku":       {"anthropic.claude-3-haiku-20240307-v1:0", FamilyClaude},
	"claude-instant":       {"anthropic.claude-instant-v1", FamilyClaude},
	"claude-v2":            {"anthropic.claude-v2", FamilyClaude},
	"llama3-70b":           {"meta.llama3-70b-instruct-v1:0", FamilyLlama},
	"llama3-8b":            {"meta.llama3-8b-instruct-v1:0", FamilyLlama},
	"llama2-70b":           {"meta.llama2-70b-chat-v1", FamilyLlama},
	"llama2-13b":           {"meta.llama2-13b-chat-v1", FamilyLlama},
	"titan-text-express":   {"amazon.titan-text-express-v1", FamilyTitan},
	"titan-text-lite":      {"amazon.titan-text-lite-v1", FamilyTitan},
	"cohere-command":       {"cohere.command-text-v14", FamilyCohere},
	"cohere-command-light": {"cohere.command-light-text-v14", FamilyCohere},
	"ai21-jurassic-ultra":  {"ai21.j2-ultra-v1", FamilyAI21},
	"ai21-jurassic-mid":    {"ai21.j2-mid-v1", FamilyAI21},
}

// InvokeAPI is the slice of the bedrockruntime client the provider needs.
type InvokeAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type BedrockProvider struct {
	client       InvokeAPI
	defaultAlias string
	available    bool
}

// New wraps a bedrockruntime client. A nil client marks the provider
// unavailable; the cascade skips it without calling Chat.
func New(client InvokeAPI, defaultModel string) *BedrockProvider {
	if _, ok := modelTable[defaultModel]; !ok {
		defaultModel = defaultAlias
	}
	return &BedrockProvider{
		client:       client,
		defaultAlias: defaultModel,
		available:    client != nil,
	}
}

// Chat invokes a single Bedrock model: the hinted alias when recognized,
// the configured default otherwise.
func (p *BedrockProvider) Chat(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	if !p.available {
		return nil, fmt.Errorf("bedrock: client not configured")
	}

	alias := provider.PickModel(req.Model, p.Models())
	if alias == "" {
		alias = p.defaultAlias
	}
	entry := modelTable[alias]

	body, err := entry.family.encodeBody(req.System, req.Message)
	if err != nil {
		return nil, fmt.Errorf("bedrock: encode %s request: %w", entry.family, err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	start := time.Now()
	out, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(entry.id),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock: invoke %s: %w", alias, err)
	}

	text, err := entry.family.decodeBody(out.Body)
	if err != nil {
		return nil, fmt.Errorf("bedrock: decode %s response: %w", entry.family, err)
	}
	if text == "" {
		return nil, provider.ErrNoResponse
	}

	return &provider.Response{
		Text:      text,
		Provider:  p.Name(),
		Model:     alias,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func (p *BedrockProvider) Name() string {
	return "bedrock"
}

func (p *BedrockProvider) Available() bool {
	return p.available
}

func (p *BedrockProvider) Models() []string {
	aliases := make([]string, 0, len(modelTable))
	for alias := range modelTable {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}
