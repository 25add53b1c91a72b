package dispatch

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace/noop"

	"github.com/communityempower/ai-gateway/internal/provider"
)

type MockProvider struct {
	name      string
	available bool
	models    []string
	text      string
	err       error
	calls     int
	lastReq   *provider.Request
}

func (m *MockProvider) Chat(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &provider.Response{Text: m.text, Provider: m.name, Model: "mock-model"}, nil
}

func (m *MockProvider) Name() string     { return m.name }
func (m *MockProvider) Available() bool  { return m.available }
func (m *MockProvider) Models() []string { return m.models }

func newDispatcher(providers ...provider.Provider) *Dispatcher {
	return New(noop.NewTracerProvider().Tracer("test"), providers...)
}

func TestDispatch_FirstSuccessStopsCascade(t *testing.T) {
	p1 := &MockProvider{name: "first", available: true, text: "answer from first"}
	p2 := &MockProvider{name: "second", available: true, text: "answer from second"}

	d := newDispatcher(p1, p2)
	result := d.Dispatch(context.Background(), ChatRequest{Message: "hello", Language: "en"})

	if result.Text != "answer from first" {
		t.Errorf("Expected first provider's answer, got %q", result.Text)
	}
	if result.Provider != "first" {
		t.Errorf("Expected provider 'first', got %q", result.Provider)
	}
	if p2.calls != 0 {
		t.Errorf("Expected second provider untouched, got %d calls", p2.calls)
	}
}

func TestDispatch_UnavailableProviderSkipped(t *testing.T) {
	p1 := &MockProvider{name: "no-creds", available: false, text: "should not appear"}
	p2 := &MockProvider{name: "backup", available: true, text: "backup answer"}

	d := newDispatcher(p1, p2)
	result := d.Dispatch(context.Background(), ChatRequest{Message: "hello", Language: "en"})

	if result.Provider != "backup" {
		t.Errorf("Expected provider 'backup', got %q", result.Provider)
	}
	if p1.calls != 0 {
		t.Errorf("Expected unavailable provider never called, got %d calls", p1.calls)
	}
}

func TestDispatch_FailureFallsThrough(t *testing.T) {
	p1 := &MockProvider{name: "broken", available: true, err: errors.New("upstream down")}
	p2 := &MockProvider{name: "working", available: true, text: "recovered"}

	d := newDispatcher(p1, p2)
	result := d.Dispatch(context.Background(), ChatRequest{Message: "hello", Language: "en"})

	if result.Text != "recovered" {
		t.Errorf("Expected fallthrough answer, got %q", result.Text)
	}
	if p1.calls != 1 {
		t.Errorf("Expected broken provider tried once, got %d calls", p1.calls)
	}
}

func TestDispatch_EmptyTextFallsThrough(t *testing.T) {
	p1 := &MockProvider{name: "empty", available: true, text: ""}
	p2 := &MockProvider{name: "full", available: true, text: "real answer"}

	d := newDispatcher(p1, p2)
	result := d.Dispatch(context.Background(), ChatRequest{Message: "hello", Language: "en"})

	if result.Provider != "full" {
		t.Errorf("Expected provider 'full', got %q", result.Provider)
	}
}

func TestDispatch_ExhaustedReturnsApology(t *testing.T) {
	p1 := &MockProvider{name: "p1", available: true, err: errors.New("fail")}
	p2 := &MockProvider{name: "p2", available: false}

	d := newDispatcher(p1, p2)

	en := d.Dispatch(context.Background(), ChatRequest{Message: "hello", Language: "en"})
	if en.Text != Apology("en") {
		t.Errorf("Expected English apology, got %q", en.Text)
	}
	if en.Text == "" {
		t.Error("Apology must never be empty")
	}

	hi := d.Dispatch(context.Background(), ChatRequest{Message: "hello", Language: "hi"})
	if hi.Text != Apology("hi") {
		t.Errorf("Expected Hindi apology, got %q", hi.Text)
	}
	if hi.Text == en.Text {
		t.Error("Hindi and English apologies must differ")
	}
}

func TestDispatch_UnknownLanguageGetsEnglishApology(t *testing.T) {
	d := newDispatcher()
	result := d.Dispatch(context.Background(), ChatRequest{Message: "hello", Language: "fr"})
	if result.Text != Apology("en") {
		t.Errorf("Expected English apology for unknown language, got %q", result.Text)
	}
}

func TestDispatch_CancelledContextSkipsProviders(t *testing.T) {
	p1 := &MockProvider{name: "p1", available: true, text: "answer"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := newDispatcher(p1)
	result := d.Dispatch(ctx, ChatRequest{Message: "hello", Language: "en"})

	if p1.calls != 0 {
		t.Errorf("Expected no provider calls after cancellation, got %d", p1.calls)
	}
	if result.Text != Apology("en") {
		t.Errorf("Expected apology after cancellation, got %q", result.Text)
	}
}

func TestDispatch_ModelHintPassedToAdapter(t *testing.T) {
	p1 := &MockProvider{name: "p1", available: true, text: "ok", models: []string{"model-a"}}

	d := newDispatcher(p1)
	d.Dispatch(context.Background(), ChatRequest{Message: "hello", Language: "en", Model: "model-a"})

	if p1.lastReq.Model != "model-a" {
		t.Errorf("Expected model hint forwarded, got %q", p1.lastReq.Model)
	}
	if p1.lastReq.System == "" {
		t.Error("Expected system instruction attached to adapter request")
	}
}

func TestStatus_PrimaryProviderIsFirstAvailable(t *testing.T) {
	p1 := &MockProvider{name: "down", available: false, models: []string{"a", "b"}}
	p2 := &MockProvider{name: "up", available: true, models: []string{"c"}}

	d := newDispatcher(p1, p2)
	st := d.Status()

	if st.PrimaryProvider != "up" {
		t.Errorf("Expected primary provider 'up', got %q", st.PrimaryProvider)
	}
	if st.TotalModels != 1 {
		t.Errorf("Expected 1 model counted from available providers, got %d", st.TotalModels)
	}
	if st.Providers["down"] || !st.Providers["up"] {
		t.Errorf("Availability map wrong: %v", st.Providers)
	}
}

func TestModelCatalog_NilModelsBecomeEmptyList(t *testing.T) {
	p1 := &MockProvider{name: "q", available: true}

	d := newDispatcher(p1)
	catalog := d.ModelCatalog()

	if catalog["q"] == nil || len(catalog["q"]) != 0 {
		t.Errorf("Expected empty (non-nil) model list, got %v", catalog["q"])
	}
}
