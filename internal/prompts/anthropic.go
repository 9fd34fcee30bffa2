package prompts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicURL     = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
	anthropicModel   = "claude-3-5-haiku-latest"
)

// AnthropicSource generates prompts with the Anthropic messages API. It is
// always wrapped in a Fallback, so callers never observe its errors.
type AnthropicSource struct {
	apiKey string
	client *http.Client
	local  *LocalSource // finale material stays local; only prompt text is remote
}

func NewAnthropicSource(apiKey string) *AnthropicSource {
	return &AnthropicSource{
		apiKey: apiKey,
		client: &http.Client{Timeout: 8 * time.Second},
		local:  NewLocalSource(),
	}
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// GeneratePrompts asks the model for count fill-in-the-blank party prompts,
// one per line, and filters anything already seen.
func (s *AnthropicSource) GeneratePrompts(ctx context.Context, count int, seen map[string]struct{}, theme string) ([]string, error) {
	instruction := fmt.Sprintf(
		"Write %d short, funny fill-in-the-blank party game prompts, one per line, no numbering.", count)
	if theme != "" {
		instruction += fmt.Sprintf(" Theme: %s.", theme)
	}

	text, err := s.complete(ctx, instruction, 1024)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, count)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.Trim(line, "-*• "))
		if line == "" || len(line) > 200 {
			continue
		}
		if _, used := seen[line]; used {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
		if len(out) == count {
			break
		}
	}
	if len(out) < count {
		return out, fmt.Errorf("model returned %d usable prompts, wanted %d", len(out), count)
	}
	return out, nil
}

// GenerateLastLash asks the model only for a FLASHBACK setup; letter-based
// modes are generated locally since they are pure letter drawing.
func (s *AnthropicSource) GenerateLastLash(ctx context.Context, seen map[string]struct{}, theme string) (Finale, error) {
	finale, err := s.local.GenerateLastLash(ctx, seen, theme)
	if err != nil || finale.Mode != ModeFlashback {
		return finale, err
	}

	instruction := "Write one short story setup for a party game that ends mid-sentence with an ellipsis, so players finish it. One line only."
	if theme != "" {
		instruction += fmt.Sprintf(" Theme: %s.", theme)
	}
	text, err := s.complete(ctx, instruction, 256)
	if err != nil {
		return Finale{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Finale{}, fmt.Errorf("model returned empty setup")
	}
	if _, used := seen[text]; used {
		return Finale{}, fmt.Errorf("model repeated a used setup")
	}
	seen[text] = struct{}{}
	finale.Prompt = text
	return finale, nil
}

// Validate performs a minimal live call to check the key works.
func (s *AnthropicSource) Validate(ctx context.Context) error {
	_, err := s.complete(ctx, "Say ok", 8)
	return err
}

func (s *AnthropicSource) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     anthropicModel,
		MaxTokens: maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var parsed messagesResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("anthropic: %s: %s", parsed.Error.Type, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic: unexpected status %d", resp.StatusCode)
	}

	var sb strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}
