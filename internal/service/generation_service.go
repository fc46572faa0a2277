package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

const OPENAI_CHAT_URL = "https://api.openai.com/v1/chat/completions"

// ContentGenerator produces the master text a slot's variants derive from.
type ContentGenerator interface {
	Generate(ctx context.Context, input transfer.GenerationInput) (*transfer.GenerationResult, error)
}

type openAIGenerator struct {
	cfg config.Config
}

func NewContentGenerator(cfg config.Config) ContentGenerator {
	return &openAIGenerator{cfg: cfg}
}

func (g *openAIGenerator) Generate(ctx context.Context, input transfer.GenerationInput) (*transfer.GenerationResult, error) {
	if g.cfg.OpenAIKey == "" {
		err := errors.New("no content generation provider configured")
		slog.Info(err.Error())
		return nil, err
	}

	prompt := buildPrompt(input)

	reqBody := map[string]any{
		"model": g.cfg.OpenAIModel,
		"messages": []map[string]string{
			{"role": "system", "content": "You write social media posts. Reply with the post text only."},
			{"role": "user", "content": prompt},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, OPENAI_CHAT_URL, bytes.NewReader(payload))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.OpenAIKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("content generation request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("error response from generation provider: %s (status code: %d)", body, resp.StatusCode)
	}

	var result struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode generation response: %v", err)
	}

	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return nil, errors.New("generation returned empty content")
	}

	return &transfer.GenerationResult{
		Content: strings.TrimSpace(result.Choices[0].Message.Content),
		Prompt:  prompt,
		Model:   result.Model,
	}, nil
}

func buildPrompt(input transfer.GenerationInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a social media post about %q", input.Topic)
	if input.Tone != "" {
		fmt.Fprintf(&b, " in a %s tone", input.Tone)
	}
	b.WriteString(".")
	if len(input.RecentPosts) > 0 {
		b.WriteString(" Avoid repeating these recent posts:\n")
		for _, p := range input.RecentPosts {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	return b.String()
}
