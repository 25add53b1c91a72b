package bedrock

import (
	"encoding/json"
	"fmt"
)

// Family identifies the request/response dialect a Bedrock model speaks.
// The dialect is chosen by the explicit model table in bedrock.go, never by
// sniffing substrings of the model ID.
type Family int

const (
	FamilyClaude Family = iota
	FamilyLlama
	FamilyTitan
	FamilyCohere
	FamilyAI21
)

func (f Family) String() string {
	switch f {
	case FamilyClaude:
		return "claude"
	case FamilyLlama:
		return "llama"
	case FamilyTitan:
		return "titan"
	case FamilyCohere:
		return "cohere"
	case FamilyAI21:
		return "ai21"
	}
	return "unknown"
}

// encodeBody builds the family-specific invoke payload. Claude has a native
// system field; the other families fold the system prompt into the text.
func (f Family) encodeBody(system, message string) ([]byte, error) {
	switch f {
	case FamilyClaude:
		return json.Marshal(claudeBody{
			AnthropicVersion: "bedrock-2023-05-31",
			MaxTokens:        2000,
			System:           system,
			Messages: []claudeMessage{
				{Role: "user", Content: message},
			},
			Temperature: 0.7,
			TopP:        0.9,
		})
	case FamilyLlama:
		return json.Marshal(llamaBody{
			Prompt:      fmt.Sprintf("%s\n\nUser: %s\nAssistant:", system, message),
			MaxGenLen:   2000,
			Temperature: 0.7,
			TopP:        0.9,
		})
	case FamilyTitan:
		return json.Marshal(titanBody{
			InputText: fmt.Sprintf("%s\n\n%s", system, message),
			TextGenerationConfig: titanGenerationConfig{
				MaxTokenCount: 2000,
				Temperature:   0.7,
				TopP:          0.9,
			},
		})
	case FamilyCohere:
		return json.Marshal(cohereBody{
			Prompt:      fmt.Sprintf("%s\n\n%s", system, message),
			MaxTokens:   2000,
			Temperature: 0.7,
			P:           0.9,
		})
	case FamilyAI21:
		return json.Marshal(ai21Body{
			Prompt:      fmt.Sprintf("%s\n\n%s", system, message),
			MaxTokens:   2000,
			Temperature: 0.7,
			TopP:        0.9,
		})
	}
	return nil, fmt.Errorf("bedrock: no codec for family %d", f)
}

func (f Family) decodeBody(raw []byte) (string, error) {
	switch f {
	case FamilyClaude:
		var out claudeResult
		if err := json.Unmarshal(raw, &out); err != nil {
			return "", err
		}
		if len(out.Content) == 0 {
			return "", fmt.Errorf("bedrock: claude response has no content blocks")
		}
		return out.Content[0].Text, nil
	case FamilyLlama:
		var out llamaResult
		if err := json.Unmarshal(raw, &out); err != nil {
			return "", err
		}
		return out.Generation, nil
	case FamilyTitan:
		var out titanResult
		if err := json.Unmarshal(raw, &out); err != nil {
			return "", err
		}
		if len(out.Results) == 0 {
			return "", fmt.Errorf("bedrock: titan response has no results")
		}
		return out.Results[0].OutputText, nil
	case FamilyCohere:
		var out cohereResult
		if err := json.Unmarshal(raw, &out); err != nil {
			return "", err
		}
		if len(out.Generations) == 0 {
			return "", fmt.Errorf("bedrock: cohere response has no generations")
		}
		return out.Generations[0].Text, nil
	case FamilyAI21:
		var out ai21Result
		if err := json.Unmarshal(raw, &out); err != nil {
			return "", err
		}
		if len(out.Completions) == 0 {
			return "", fmt.Errorf("bedrock: ai21 response has no completions")
		}
		return out.Completions[0].Data.Text, nil
	}
	return "", fmt.Errorf("bedrock: no codec for family %d", f)
}

type claudeBody struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	System           string          `json:"system,omitempty"`
	Messages         []claudeMessage `json:"messages"`
	Temperature      float64         `json:"temperature,omitempty"`
	TopP             float64         `json:"top_p,omitempty"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResult struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

type llamaBody struct {
	Prompt      string  `json:"prompt"`
	MaxGenLen   int     `json:"max_gen_len"`
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
}

type llamaResult struct {
	Generation string `json:"generation"`
}

type titanBody struct {
	InputText            string                `json:"inputText"`
	TextGenerationConfig titanGenerationConfig `json:"textGenerationConfig"`
}

type titanGenerationConfig struct {
	MaxTokenCount int     `json:"maxTokenCount"`
	Temperature   float64 `json:"temperature"`
	TopP          float64 `json:"topP"`
}

type titanResult struct {
	Results []struct {
		OutputText string `json:"outputText"`
	} `json:"results"`
}

type cohereBody struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature,omitempty"`
	P           float64 `json:"p,omitempty"`
}

type cohereResult struct {
	Generations []struct {
		Text string `json:"text"`
	} `json:"generations"`
}

type ai21Body struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"maxTokens"`
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"topP,omitempty"`
}

type ai21Result struct {
	Completions []struct {
		Data struct {
			Text string `json:"text"`
		} `json:"data"`
	} `json:"completions"`
}
