package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"magazine-catalog-api/config"
	"magazine-catalog-api/models"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOcrProvider struct {
	kind   OcrProviderType
	result *models.OcrResult
	err    error
	calls  int
	images []OcrImage
}

func (f *fakeOcrProvider) Type() OcrProviderType { return f.kind }

func (f *fakeOcrProvider) ExtractTableOfContents(ctx context.Context, images []OcrImage, cfg *OcrConfig) (*models.OcrResult, error) {
	f.calls++
	f.images = images
	if f.err != nil {
		return nil, f.err
	}
	copied := *f.result
	return &copied, nil
}

func envLookup(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestOcrRegistryAvailabilityFollowsKeys(t *testing.T) {
	r := NewDefaultOcrRegistry(config.Settings{
		OcrDefaultProvider: "openai",
		OpenRouterAPIKey:   "or-key",
	})

	assert.Equal(t, []OcrProviderType{OcrProviderOpenRouter}, r.Available())
	assert.False(t, r.IsAvailable(OcrProviderOpenAI))

	def, ok := r.Default()
	require.True(t, ok)
	assert.Equal(t, OcrProviderOpenRouter, def)

	_, err := r.Get(OcrProviderOpenAI)
	assert.ErrorIs(t, err, ErrOcrProviderUnavailable)
	_, err = r.Get("tesseract")
	assert.ErrorIs(t, err, ErrUnknownOcrProvider)

	p, err := r.Get(OcrProviderOpenRouter)
	require.NoError(t, err)
	assert.Equal(t, OcrProviderOpenRouter, p.Type())
}

func TestOcrRegistryBuildsProviderOnce(t *testing.T) {
	var builds int32
	r := NewOcrRegistry("fake", envLookup(map[string]string{"FAKE_KEY": "x"}))
	r.Register("fake", "FAKE_KEY", func(lookup func(string) string) (OcrProvider, error) {
		atomic.AddInt32(&builds, 1)
		return &fakeOcrProvider{kind: "fake"}, nil
	})

	first, err := r.Get("fake")
	require.NoError(t, err)
	second, err := r.Get("fake")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.EqualValues(t, 1, builds)
}

func TestOcrRegistryWithoutProviders(t *testing.T) {
	r := NewDefaultOcrRegistry(config.Settings{OcrDefaultProvider: "openai"})
	assert.Empty(t, r.Available())
	_, ok := r.Default()
	assert.False(t, ok)
}

func TestNewOcrImageFromBytesSniffsType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	img, err := NewOcrImageFromBytes(png)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MimeType)
	assert.True(t, strings.HasPrefix(img.ImageURL(), "data:image/png;base64,"))

	_, err = NewOcrImageFromBytes([]byte("%PDF-1.7\n"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	remote := OcrImage{URL: "https://example.com/toc.jpg"}
	assert.Equal(t, "https://example.com/toc.jpg", remote.ImageURL())
}

// chatServer answers any chat completion request with content and records the request body.
func chatServer(t *testing.T, status int, content string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if seen != nil {
			_ = json.Unmarshal(body, seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIOcrProviderParsesCompletion(t *testing.T) {
	var seen map[string]any
	srv := chatServer(t, http.StatusOK, `{"articles":[{"title":"Cover Story","pageStart":4}]}`, &seen)

	p := NewOpenAIOcrProvider("sk-test", "", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	result, err := p.ExtractTableOfContents(context.Background(), []OcrImage{{URL: "https://example.com/a.jpg"}}, nil)
	require.NoError(t, err)

	assert.Equal(t, "openai", result.Provider)
	require.Len(t, result.Articles, 1)
	assert.Equal(t, "Cover Story", result.Articles[0].Title)
	assert.Equal(t, defaultOpenAIOcrModel, seen["model"])
}

func TestOpenAIOcrProviderReturnsTransportErrors(t *testing.T) {
	srv := chatServer(t, http.StatusUnauthorized, "", nil)

	p := NewOpenAIOcrProvider("bad", "gpt-4o-mini", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	_, err := p.ExtractTableOfContents(context.Background(), []OcrImage{{URL: "https://example.com/a.jpg"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai OCR request failed")
}

func TestOpenRouterOcrProviderParsesCompletion(t *testing.T) {
	var seen map[string]any
	srv := chatServer(t, http.StatusOK, "no table of contents here", &seen)

	p := NewOpenRouterOcrProvider("or-test", srv.URL+"/api/v1", "")
	result, err := p.ExtractTableOfContents(context.Background(), []OcrImage{{URL: "https://example.com/a.jpg"}}, &OcrConfig{Model: "custom/model"})
	require.NoError(t, err)

	assert.Equal(t, "openrouter", result.Provider)
	assert.Empty(t, result.Articles)
	require.NotNil(t, result.RawText)
	assert.Equal(t, "custom/model", seen["model"])
}

func TestOpenRouterOcrProviderReturnsTransportErrors(t *testing.T) {
	srv := chatServer(t, http.StatusUnauthorized, "", nil)

	p := NewOpenRouterOcrProvider("bad", srv.URL, "")
	_, err := p.ExtractTableOfContents(context.Background(), []OcrImage{{URL: "https://example.com/a.jpg"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openrouter OCR request failed")
}
