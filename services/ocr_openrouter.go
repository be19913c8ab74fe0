package services

import (
	"context"
	"fmt"
	"time"

	"magazine-catalog-api/models"

	goopenai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenRouterBaseURL  = "https://openrouter.ai/api/v1"
	defaultOpenRouterOcrModel = "google/gemini-2.0-flash-001"
)

// OpenRouterOcrProvider uses the OpenAI-compatible endpoint exposed by OpenRouter.
type OpenRouterOcrProvider struct {
	client *goopenai.Client
	model  string
}

func NewOpenRouterOcrProvider(apiKey, baseURL, model string) *OpenRouterOcrProvider {
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	if model == "" {
		model = defaultOpenRouterOcrModel
	}
	cfg := goopenai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenRouterOcrProvider{
		client: goopenai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *OpenRouterOcrProvider) Type() OcrProviderType { return OcrProviderOpenRouter }

func (p *OpenRouterOcrProvider) ExtractTableOfContents(ctx context.Context, images []OcrImage, cfg *OcrConfig) (*models.OcrResult, error) {
	started := time.Now()

	model := p.model
	maxTokens := 4000
	if cfg != nil {
		if cfg.Model != "" {
			model = cfg.Model
		}
		if cfg.MaxTokens > 0 {
			maxTokens = cfg.MaxTokens
		}
	}

	parts := []goopenai.ChatMessagePart{{Type: goopenai.ChatMessagePartTypeText, Text: ocrUserPrompt(cfg)}}
	for _, img := range images {
		parts = append(parts, goopenai.ChatMessagePart{
			Type: goopenai.ChatMessagePartTypeImageURL,
			ImageURL: &goopenai.ChatMessageImageURL{
				URL:    img.ImageURL(),
				Detail: goopenai.ImageURLDetailHigh,
			},
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       model,
		Temperature: 0.1,
		MaxTokens:   maxTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: ocrSystemPrompt},
			{Role: goopenai.ChatMessageRoleUser, MultiContent: parts},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openrouter OCR request failed: %w", err)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}
	result := resultFromModelText(OcrProviderOpenRouter, content)
	result.ProcessingTime = time.Since(started).Milliseconds()
	return result, nil
}
