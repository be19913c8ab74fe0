package services

import (
	"context"
	"fmt"
	"time"

	"magazine-catalog-api/models"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const defaultOpenAIOcrModel = "gpt-4o"

// OpenAIOcrProvider talks to the OpenAI chat completions API with image parts.
type OpenAIOcrProvider struct {
	client openai.Client
	model  string
}

func NewOpenAIOcrProvider(apiKey, model string, opts ...option.RequestOption) *OpenAIOcrProvider {
	if model == "" {
		model = defaultOpenAIOcrModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIOcrProvider{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (p *OpenAIOcrProvider) Type() OcrProviderType { return OcrProviderOpenAI }

func (p *OpenAIOcrProvider) ExtractTableOfContents(ctx context.Context, images []OcrImage, cfg *OcrConfig) (*models.OcrResult, error) {
	started := time.Now()

	model := p.model
	maxTokens := int64(4000)
	if cfg != nil {
		if cfg.Model != "" {
			model = cfg.Model
		}
		if cfg.MaxTokens > 0 {
			maxTokens = int64(cfg.MaxTokens)
		}
	}

	parts := []openai.ChatCompletionContentPartUnionParam{openai.TextContentPart(ocrUserPrompt(cfg))}
	for _, img := range images {
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL:    img.ImageURL(),
			Detail: "high",
		}))
	}

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(ocrSystemPrompt),
			openai.UserMessage(parts),
		},
		Model:       shared.ChatModel(model),
		Temperature: openai.Float(0.1),
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		return nil, fmt.Errorf("openai OCR request failed: %w", err)
	}

	content := ""
	if len(completion.Choices) > 0 {
		content = completion.Choices[0].Message.Content
	}
	result := resultFromModelText(OcrProviderOpenAI, content)
	result.ProcessingTime = time.Since(started).Milliseconds()
	return result, nil
}
