package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/communityempower/ai-gateway/internal/auth"
	"github.com/communityempower/ai-gateway/internal/dispatch"
	"github.com/communityempower/ai-gateway/internal/extract"
	"github.com/communityempower/ai-gateway/internal/history"
	"github.com/communityempower/ai-gateway/internal/prompt"
	"github.com/communityempower/ai-gateway/internal/recommend"
	"github.com/communityempower/ai-gateway/pkg/ratelimit"
)

// agentPrompt asks the model for a classified envelope the extractor can
// pick out of the reply.
const agentPrompt = `The following is a message from a user on our community empowerment platform.

Analyze the message and provide:
1. A helpful response.
2. Categorize it (complaint, inquiry, feedback, or greeting).
3. Identify the specific category (education, health, finance, etc.).
4. Determine the priority (high, medium, low).

User Message: %s

Format your output exactly as a JSON object:
{"response": "your helpful response message here", "meta": {"type": "the type here", "category": "the category here", "priority": "the priority here"}}`

const sentimentPrompt = `Analyze the sentiment of the following text and provide:
1. Overall sentiment (positive, negative, or neutral)
2. Confidence score (0-1)
3. Key emotions detected

Text: %s

Respond in JSON format:
{"sentiment": "positive|negative|neutral", "confidence": 0.95, "key_emotions": ["joy", "excitement"]}`

type Handler struct {
	dispatcher *dispatch.Dispatcher
	history    history.Store
	limiter    *ratelimit.Limiter
	tracer     trace.Tracer
}

func NewHandler(dispatcher *dispatch.Dispatcher, store history.Store, limiter *ratelimit.Limiter, tracer trace.Tracer) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		history:    store,
		limiter:    limiter,
		tracer:     tracer,
	}
}

type chatRequest struct {
	Message  string            `json:"message"`
	Language string            `json:"language"`
	Context  map[string]string `json:"context"`
	Model    string            `json:"model"`
}

// HandleChat answers POST /v1/chat with {message, language}.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	tenantID, requestID, req, ok := h.prepare(w, r)
	if !ok {
		return
	}

	start := time.Now()
	result := h.dispatcher.Dispatch(r.Context(), dispatch.ChatRequest{
		Message:  req.Message,
		Language: req.Language,
		Context:  req.Context,
		Model:    req.Model,
	})

	h.logChat(tenantID, requestID, req, result, time.Since(start))

	writeJSON(w, http.StatusOK, map[string]string{
		"message":  result.Text,
		"language": req.Language,
	})
}

// HandleAgentChat answers POST /v1/agent/chat with a structured envelope:
// the model is asked to classify the message, and the extractor degrades
// to raw text with default metadata when the reply carries no usable JSON.
func (h *Handler) HandleAgentChat(w http.ResponseWriter, r *http.Request) {
	tenantID, requestID, req, ok := h.prepare(w, r)
	if !ok {
		return
	}

	start := time.Now()
	result := h.dispatcher.Dispatch(r.Context(), dispatch.ChatRequest{
		Message:  fmt.Sprintf(agentPrompt, req.Message),
		Language: req.Language,
		Context:  req.Context,
		Model:    req.Model,
	})

	structured := extract.Parse(result.Text)
	result.Text = structured.Response

	h.logChat(tenantID, requestID, req, result, time.Since(start))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"response": structured.Response,
		"meta":     structured.Meta,
	})
}

type sentimentRequest struct {
	Text string `json:"text"`
}

type sentimentVerdict struct {
	Sentiment   string   `json:"sentiment"`
	Confidence  float64  `json:"confidence"`
	KeyEmotions []string `json:"key_emotions"`
}

// HandleSentiment answers POST /v1/sentiment. An unparseable model reply
// degrades to a neutral verdict rather than an error.
func (h *Handler) HandleSentiment(w http.ResponseWriter, r *http.Request) {
	tenantID := auth.GetTenantID(r.Context())
	if tenantID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req sentimentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if !h.allow(w, r, tenantID) {
		return
	}

	result := h.dispatcher.Dispatch(r.Context(), dispatch.ChatRequest{
		Message:  fmt.Sprintf(sentimentPrompt, req.Text),
		Language: "en",
	})

	verdict := sentimentVerdict{Sentiment: "neutral", KeyEmotions: []string{}}
	if extract.FirstJSON(result.Text, &verdict) && verdict.Sentiment == "" {
		verdict.Sentiment = "neutral"
	}
	if verdict.KeyEmotions == nil {
		verdict.KeyEmotions = []string{}
	}

	writeJSON(w, http.StatusOK, verdict)
}

// HandleRecommendations answers GET /v1/recommendations with the curated
// cards for the tenant's community type.
func (h *Handler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	if auth.GetTenantID(r.Context()) == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	communityType := r.URL.Query().Get("communityType")
	writeJSON(w, http.StatusOK, recommend.ForCommunity(communityType))
}

// HandleHistory answers GET /v1/history with the tenant's recent turns.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	now := time.Now()
	from := now.AddDate(0, 0, -30) // Default: last 30 days
	to := now

	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		var err error
		from, err = time.Parse(time.RFC3339, fromStr)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid 'from' date format (use RFC3339)"})
			return
		}
	}

	if toStr := r.URL.Query().Get("to"); toStr != "" {
		var err error
		to, err = time.Parse(time.RFC3339, toStr)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid 'to' date format (use RFC3339)"})
			return
		}
	}

	logs, err := h.history.GetByTenant(ctx, tenantID, from, to)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	total, err := h.history.CountByTenant(ctx, tenantID, from, to)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tenant_id":   tenantID,
		"total_turns": total,
		"logs":        logs,
		"from":        from,
		"to":          to,
	})
}

// HandleModels answers GET /v1/models with every provider's model list.
func (h *Handler) HandleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dispatcher.ModelCatalog())
}

// HandleStatus answers GET /v1/status with provider availability.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	st := h.dispatcher.Status()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "operational",
		"services":         st.Providers,
		"primary_provider": st.PrimaryProvider,
		"total_models":     st.TotalModels,
		"languages":        prompt.Languages(),
	})
}

func (h *Handler) prepare(w http.ResponseWriter, r *http.Request) (string, string, *chatRequest, bool) {
	ctx := r.Context()
	tenantID := auth.GetTenantID(ctx)
	if tenantID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return "", "", nil, false
	}

	requestID := auth.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return "", "", nil, false
	}
	if req.Language == "" {
		req.Language = "en"
	}

	_, span := h.tracer.Start(ctx, "chat.request")
	defer span.End()
	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("request_id", requestID),
		attribute.String("language", req.Language),
	)

	if !h.allow(w, r, tenantID) {
		return "", "", nil, false
	}

	return tenantID, requestID, &req, true
}

func (h *Handler) allow(w http.ResponseWriter, r *http.Request, tenantID string) bool {
	allowed, err := h.limiter.Allow(r.Context(), tenantID)
	if err != nil || !allowed {
		w.Header().Set("Retry-After", "60s")
		writeJSON(w, http.StatusTooManyRequests, map[string]string{
			"error":       "rate limit exceeded",
			"retry_after": "60s",
		})
		return false
	}
	return true
}

// logChat records the turn off the request path, as the caller has its
// answer already.
func (h *Handler) logChat(tenantID, requestID string, req *chatRequest, result dispatch.ChatResult, elapsed time.Duration) {
	go func() {
		_ = h.history.LogChat(context.Background(), &history.ChatLog{
			TenantID:  tenantID,
			RequestID: requestID,
			Message:   req.Message,
			Response:  result.Text,
			Language:  req.Language,
			Provider:  result.Provider,
			Model:     result.Model,
			LatencyMs: elapsed.Milliseconds(),
		})
	}()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
