package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/communityempower/ai-gateway/internal/provider"
)

type mockInvoker struct {
	lastModelID string
	lastBody    []byte
	output      []byte
	err         error
}

func (m *mockInvoker) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	m.lastModelID = aws.ToString(params.ModelId)
	m.lastBody = params.Body
	if m.err != nil {
		return nil, m.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: m.output}, nil
}

func TestChat_DefaultModelIsClaude(t *testing.T) {
	invoker := &mockInvoker{
		output: []byte(`{"content":[{"text":"Hello from Bedrock"}]}`),
	}

	p := New(invoker, "claude-3-haiku")
	resp, err := p.Chat(context.Background(), &provider.Request{Message: "hi", System: "be helpful"})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if resp.Text != "Hello from Bedrock" {
		t.Errorf("Expected 'Hello from Bedrock', got %s", resp.Text)
	}
	if invoker.lastModelID != "anthropic.claude-3-haiku-20240307-v1:0" {
		t.Errorf("Expected claude-3-haiku model ID, got %s", invoker.lastModelID)
	}

	var body claudeBody
	if err := json.Unmarshal(invoker.lastBody, &body); err != nil {
		t.Fatalf("Invalid request body: %v", err)
	}
	if body.System != "be helpful" || body.AnthropicVersion == "" {
		t.Errorf("Unexpected claude body: %+v", body)
	}
}

func TestChat_LlamaHintSelectsLlamaCodec(t *testing.T) {
	invoker := &mockInvoker{
		output: []byte(`{"generation":"llama says hi"}`),
	}

	p := New(invoker, "claude-3-haiku")
	resp, err := p.Chat(context.Background(), &provider.Request{Message: "hi", System: "sys", Model: "llama3-70b"})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if resp.Text != "llama says hi" {
		t.Errorf("Expected llama generation text, got %s", resp.Text)
	}
	if invoker.lastModelID != "meta.llama3-70b-instruct-v1:0" {
		t.Errorf("Expected llama model ID, got %s", invoker.lastModelID)
	}

	var body llamaBody
	if err := json.Unmarshal(invoker.lastBody, &body); err != nil {
		t.Fatalf("Invalid request body: %v", err)
	}
	if body.Prompt == "" || body.MaxGenLen != 2000 {
		t.Errorf("Unexpected llama body: %+v", body)
	}
}

func TestChat_UnknownHintFallsBackToDefault(t *testing.T) {
	invoker := &mockInvoker{
		output: []byte(`{"results":[{"outputText":"titan text"}]}`),
	}

	p := New(invoker, "titan-text-express")
	resp, err := p.Chat(context.Background(), &provider.Request{Message: "hi", Model: "gpt-4"})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if invoker.lastModelID != "amazon.titan-text-express-v1" {
		t.Errorf("Expected configured default model, got %s", invoker.lastModelID)
	}
	if resp.Model != "titan-text-express" {
		t.Errorf("Expected alias titan-text-express, got %s", resp.Model)
	}
}

func TestChat_InvokeErrorSurfaced(t *testing.T) {
	invoker := &mockInvoker{err: errors.New("throttled")}

	p := New(invoker, "claude-3-haiku")
	if _, err := p.Chat(context.Background(), &provider.Request{Message: "hi"}); err == nil {
		t.Fatal("Expected invoke error to surface")
	}
}

func TestChat_NilClientUnavailable(t *testing.T) {
	p := New(nil, "claude-3-haiku")
	if p.Available() {
		t.Error("Provider without client must be unavailable")
	}
	if _, err := p.Chat(context.Background(), &provider.Request{Message: "hi"}); err == nil {
		t.Fatal("Expected error from unconfigured provider")
	}
}

func TestNew_UnknownDefaultAliasReplaced(t *testing.T) {
	p := New(&mockInvoker{}, "no-such-model")
	if p.defaultAlias != defaultAlias {
		t.Errorf("Expected fallback default alias, got %s", p.defaultAlias)
	}
}

func TestFamilyCodecs_Decode(t *testing.T) {
	cases := []struct {
		family Family
		raw    string
		want   string
	}{
		{FamilyClaude, `{"content":[{"text":"a"}]}`, "a"},
		{FamilyLlama, `{"generation":"b"}`, "b"},
		{FamilyTitan, `{"results":[{"outputText":"c"}]}`, "c"},
		{FamilyCohere, `{"generations":[{"text":"d"}]}`, "d"},
		{FamilyAI21, `{"completions":[{"data":{"text":"e"}}]}`, "e"},
	}

	for _, tc := range cases {
		got, err := tc.family.decodeBody([]byte(tc.raw))
		if err != nil {
			t.Errorf("%s: decode failed: %v", tc.family, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.family, tc.want, got)
		}
	}
}

func TestFamilyCodecs_DecodeEmptyPayloadFails(t *testing.T) {
	for _, f := range []Family{FamilyClaude, FamilyTitan, FamilyCohere, FamilyAI21} {
		if _, err := f.decodeBody([]byte(`{}`)); err == nil {
			t.Errorf("%s: expected error for empty payload", f)
		}
	}
}
