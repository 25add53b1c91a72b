// Package dispatch implements the provider cascade: a fixed priority chain
// of AI backends tried one at a time until one answers.
package dispatch

import (
	"context"
	"log"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/communityempower/ai-gateway/internal/prompt"
	"github.com/communityempower/ai-gateway/internal/provider"
)

// apologies is what the caller sees when every provider is exhausted.
// Returning it is a normal outcome, not an error.
var apologies = map[string]string{
	"en": "Sorry, I could not reach the assistant right now. Please try again in a moment.",
	"hi": "क्षमा करें, मैं अभी सहायक से संपर्क नहीं कर सका। कृपया कुछ क्षण बाद पुनः प्रयास करें।",
}

type ChatRequest struct {
	Message  string
	Language string
	Context  map[string]string
	// Model is an optional caller hint, honored only by the provider
	// whose model list contains it.
	Model string
}

type ChatResult struct {
	Text     string
	Provider string
	Model    string
}

// Dispatcher holds the ordered provider chain. It is built once at startup
// and is safe for concurrent use; it keeps no per-call state.
type Dispatcher struct {
	providers []provider.Provider
	tracer    trace.Tracer
}

func New(tracer trace.Tracer, providers ...provider.Provider) *Dispatcher {
	return &Dispatcher{providers: providers, tracer: tracer}
}

// Dispatch tries each available provider in priority order and returns the
// first non-empty response. It never returns an error: exhaustion (and a
// cancelled context) yield the apology text for the request's language.
func (d *Dispatcher) Dispatch(ctx context.Context, req ChatRequest) ChatResult {
	ctx, span := d.tracer.Start(ctx, "dispatch.chat")
	defer span.End()
	span.SetAttributes(attribute.String("language", req.Language))

	system := prompt.System(req.Language, req.Context)
	provReq := &provider.Request{
		Message: req.Message,
		System:  system,
		Model:   req.Model,
	}

	for _, p := range d.providers {
		if !p.Available() {
			continue
		}
		if ctx.Err() != nil {
			log.Printf("dispatch: context done before trying %s: %v", p.Name(), ctx.Err())
			break
		}

		resp, err := p.Chat(ctx, provReq)
		if err != nil {
			log.Printf("dispatch: provider %s failed: %v", p.Name(), err)
			continue
		}
		if resp.Text == "" {
			log.Printf("dispatch: provider %s returned empty text", p.Name())
			continue
		}

		span.SetAttributes(
			attribute.String("provider", resp.Provider),
			attribute.String("model", resp.Model),
			attribute.Int64("latency_ms", resp.LatencyMs),
		)
		return ChatResult{Text: resp.Text, Provider: resp.Provider, Model: resp.Model}
	}

	span.SetAttributes(attribute.Bool("exhausted", true))
	return ChatResult{Text: Apology(req.Language)}
}

// Apology returns the canned all-providers-exhausted text for language,
// defaulting to English.
func Apology(language string) string {
	if text, ok := apologies[language]; ok {
		return text
	}
	return apologies["en"]
}

// Status describes the chain for the status endpoint.
type Status struct {
	Providers       map[string]bool `json:"providers"`
	PrimaryProvider string          `json:"primary_provider"`
	TotalModels     int             `json:"total_models"`
}

func (d *Dispatcher) Status() Status {
	st := Status{Providers: make(map[string]bool, len(d.providers))}
	for _, p := range d.providers {
		st.Providers[p.Name()] = p.Available()
		if st.PrimaryProvider == "" && p.Available() {
			st.PrimaryProvider = p.Name()
		}
		if p.Available() {
			st.TotalModels += len(p.Models())
		}
	}
	return st
}

// ModelCatalog lists every provider's model identifiers, available or not.
func (d *Dispatcher) ModelCatalog() map[string][]string {
	catalog := make(map[string][]string, len(d.providers))
	for _, p := range d.providers {
		models := p.Models()
		if models == nil {
			models = []string{}
		}
		catalog[p.Name()] = models
	}
	return catalog
}
