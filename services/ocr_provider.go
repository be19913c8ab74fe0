package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"magazine-catalog-api/config"
	"magazine-catalog-api/models"

	"github.com/gabriel-vasile/mimetype"
)

type OcrProviderType string

const (
	OcrProviderOpenAI     OcrProviderType = "openai"
	OcrProviderOpenRouter OcrProviderType = "openrouter"
)

var (
	ErrUnknownOcrProvider     = errors.New("unknown OCR provider")
	ErrOcrProviderUnavailable = errors.New("OCR provider is not configured")
	ErrUnsupportedImage       = errors.New("file is not a supported image")
)

// OcrImage is one page image, either uploaded bytes or a remote URL.
type OcrImage struct {
	Data     []byte
	MimeType string
	URL      string
}

// NewOcrImageFromBytes sniffs the content type and rejects anything that is not an image.
func NewOcrImageFromBytes(data []byte) (OcrImage, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return OcrImage{}, fmt.Errorf("%w: detected %s", ErrUnsupportedImage, mt.String())
	}
	return OcrImage{Data: data, MimeType: mt.String()}, nil
}

// ImageURL returns a URL a vision model accepts: the remote URL, or an inline data URL.
func (img OcrImage) ImageURL() string {
	if img.URL != "" {
		return img.URL
	}
	return "data:" + img.MimeType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

type OcrConfig struct {
	Model        string
	MaxTokens    int
	MagazineHint string
}

// OcrProvider extracts a table of contents from page images. Implementations return an
// error only for transport or auth failures; unreadable model output yields an empty result.
type OcrProvider interface {
	Type() OcrProviderType
	ExtractTableOfContents(ctx context.Context, images []OcrImage, cfg *OcrConfig) (*models.OcrResult, error)
}

type ocrProviderFactory struct {
	envKey string
	build  func(lookup func(string) string) (OcrProvider, error)
}

// OcrRegistry builds each provider on first use and keeps it for the life of the process.
type OcrRegistry struct {
	mu          sync.Mutex
	defaultType OcrProviderType
	lookup      func(string) string
	factories   map[OcrProviderType]ocrProviderFactory
	instances   map[OcrProviderType]OcrProvider
}

// NewOcrRegistry creates an empty registry; lookup resolves environment-style keys.
func NewOcrRegistry(defaultType OcrProviderType, lookup func(string) string) *OcrRegistry {
	return &OcrRegistry{
		defaultType: defaultType,
		lookup:      lookup,
		factories:   make(map[OcrProviderType]ocrProviderFactory),
		instances:   make(map[OcrProviderType]OcrProvider),
	}
}

// NewDefaultOcrRegistry registers the built-in vision backends against the loaded settings.
func NewDefaultOcrRegistry(s config.Settings) *OcrRegistry {
	values := map[string]string{
		"OPENAI_API_KEY":       s.OpenAIAPIKey,
		"OPENAI_OCR_MODEL":     s.OpenAIOcrModel,
		"OPENROUTER_API_KEY":   s.OpenRouterAPIKey,
		"OPENROUTER_BASE_URL":  s.OpenRouterBaseURL,
		"OPENROUTER_OCR_MODEL": s.OpenRouterOcrModel,
	}
	r := NewOcrRegistry(OcrProviderType(s.OcrDefaultProvider), func(key string) string { return values[key] })
	r.Register(OcrProviderOpenAI, "OPENAI_API_KEY", func(lookup func(string) string) (OcrProvider, error) {
		return NewOpenAIOcrProvider(lookup("OPENAI_API_KEY"), lookup("OPENAI_OCR_MODEL")), nil
	})
	r.Register(OcrProviderOpenRouter, "OPENROUTER_API_KEY", func(lookup func(string) string) (OcrProvider, error) {
		return NewOpenRouterOcrProvider(lookup("OPENROUTER_API_KEY"), lookup("OPENROUTER_BASE_URL"), lookup("OPENROUTER_OCR_MODEL")), nil
	})
	return r
}

func (r *OcrRegistry) Register(t OcrProviderType, envKey string, build func(lookup func(string) string) (OcrProvider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[t] = ocrProviderFactory{envKey: envKey, build: build}
	delete(r.instances, t)
}

// IsAvailable reports whether t is registered and its API key is set.
func (r *OcrRegistry) IsAvailable(t OcrProviderType) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.availableLocked(t)
}

func (r *OcrRegistry) availableLocked(t OcrProviderType) bool {
	f, ok := r.factories[t]
	if !ok {
		return false
	}
	return f.envKey == "" || strings.TrimSpace(r.lookup(f.envKey)) != ""
}

// Available lists usable providers in name order.
func (r *OcrRegistry) Available() []OcrProviderType {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []OcrProviderType
	for t := range r.factories {
		if r.availableLocked(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Default is the configured provider if usable, else the first usable one.
func (r *OcrRegistry) Default() (OcrProviderType, bool) {
	if r.IsAvailable(r.defaultType) {
		return r.defaultType, true
	}
	avail := r.Available()
	if len(avail) == 0 {
		return "", false
	}
	return avail[0], true
}

func (r *OcrRegistry) Get(t OcrProviderType) (OcrProvider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.factories[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOcrProvider, t)
	}
	if p, ok := r.instances[t]; ok {
		return p, nil
	}
	if !r.availableLocked(t) {
		return nil, fmt.Errorf("%w: %s (set %s)", ErrOcrProviderUnavailable, t, f.envKey)
	}
	p, err := f.build(r.lookup)
	if err != nil {
		return nil, fmt.Errorf("build OCR provider %s: %w", t, err)
	}
	r.instances[t] = p
	return p, nil
}

const ocrSystemPrompt = `You read magazine table-of-contents pages. Return ONLY JSON of the form:
{"metadata":{"magazineName":"","issueNumber":"","publishDate":"YYYY-MM-DD"},
 "articles":[{"title":"","subtitle":"","authors":[""],"category":"","pageStart":1,"pageEnd":2,
 "summary":"","games":[""],"confidence":0.9}]}
Omit fields you cannot read. Keep titles in their original language.`

func ocrUserPrompt(cfg *OcrConfig) string {
	prompt := "Extract every article listed on these pages."
	if cfg != nil && cfg.MagazineHint != "" {
		prompt += " The magazine is " + cfg.MagazineHint + "."
	}
	return prompt
}

// resultFromModelText normalizes model output; unreadable output keeps the raw text only.
func resultFromModelText(provider OcrProviderType, content string) *models.OcrResult {
	articles, meta, ok := NormalizeOcrOutput(content)
	result := &models.OcrResult{
		Articles: articles,
		Metadata: meta,
		Provider: string(provider),
	}
	if !ok || len(articles) == 0 {
		raw := content
		result.RawText = &raw
	}
	return result
}
