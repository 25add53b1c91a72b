package extract

import "testing"

func TestParse_EmbeddedEnvelope(t *testing.T) {
	raw := `Intro: {"response":"hi","meta":{"type":"greeting","category":"general","priority":"low"}} trailing`

	got := Parse(raw)

	if got.Response != "hi" {
		t.Errorf("Expected response 'hi', got %q", got.Response)
	}
	if got.Meta.Type != "greeting" || got.Meta.Category != "general" || got.Meta.Priority != "low" {
		t.Errorf("Unexpected meta: %+v", got.Meta)
	}
}

func TestParse_NoJSONFallsBackToRawText(t *testing.T) {
	raw := "Just a plain answer with no structure at all."

	got := Parse(raw)

	if got.Response != raw {
		t.Errorf("Expected raw text as response, got %q", got.Response)
	}
	if got.Meta.Type != DefaultType || got.Meta.Category != DefaultCategory || got.Meta.Priority != DefaultPriority {
		t.Errorf("Expected default meta, got %+v", got.Meta)
	}
}

func TestParse_MissingMetaFieldsGetDefaults(t *testing.T) {
	raw := `{"response":"partial","meta":{"type":"complaint"}}`

	got := Parse(raw)

	if got.Response != "partial" {
		t.Errorf("Expected response 'partial', got %q", got.Response)
	}
	if got.Meta.Type != "complaint" {
		t.Errorf("Expected type 'complaint', got %q", got.Meta.Type)
	}
	if got.Meta.Category != DefaultCategory || got.Meta.Priority != DefaultPriority {
		t.Errorf("Expected defaulted category/priority, got %+v", got.Meta)
	}
}

func TestParse_NoMetaObjectAtAll(t *testing.T) {
	got := Parse(`{"response":"bare"}`)

	if got.Response != "bare" {
		t.Errorf("Expected response 'bare', got %q", got.Response)
	}
	if got.Meta.Type != DefaultType {
		t.Errorf("Expected default meta, got %+v", got.Meta)
	}
}

func TestParse_ProseBracesBeforeEnvelope(t *testing.T) {
	// A stray brace pair in prose must not shadow the real envelope.
	raw := `Use {curly} syntax. {"response":"real","meta":{"type":"inquiry","category":"tech","priority":"high"}}`

	got := Parse(raw)

	if got.Response != "real" {
		t.Errorf("Expected scanner to skip prose braces, got response %q", got.Response)
	}
	if got.Meta.Category != "tech" {
		t.Errorf("Expected category 'tech', got %q", got.Meta.Category)
	}
}

func TestParse_BracesInsideStringValues(t *testing.T) {
	raw := `{"response":"see {section 2} for details","meta":{"type":"inquiry","category":"general","priority":"low"}}`

	got := Parse(raw)

	if got.Response != "see {section 2} for details" {
		t.Errorf("Expected braces preserved inside string value, got %q", got.Response)
	}
}

func TestParse_MalformedJSONFallsBack(t *testing.T) {
	raw := `{"response": "unterminated`

	got := Parse(raw)

	if got.Response != raw {
		t.Errorf("Expected raw fallback for malformed JSON, got %q", got.Response)
	}
}

func TestParse_ObjectWithoutResponseFieldFallsBack(t *testing.T) {
	raw := `{"unrelated": true}`

	got := Parse(raw)

	if got.Response != raw {
		t.Errorf("Expected raw fallback when no response field, got %q", got.Response)
	}
}

func TestFirstJSON_DecodesFirstValidSpan(t *testing.T) {
	var verdict struct {
		Sentiment  string  `json:"sentiment"`
		Confidence float64 `json:"confidence"`
	}

	raw := `The analysis follows. {"sentiment":"positive","confidence":0.92} End.`
	if !FirstJSON(raw, &verdict) {
		t.Fatal("Expected FirstJSON to find the span")
	}
	if verdict.Sentiment != "positive" || verdict.Confidence != 0.92 {
		t.Errorf("Unexpected verdict: %+v", verdict)
	}
}

func TestFirstJSON_NoSpan(t *testing.T) {
	var v map[string]any
	if FirstJSON("nothing here", &v) {
		t.Error("Expected FirstJSON to report no span")
	}
}
