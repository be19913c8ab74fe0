package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"magazine-catalog-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeOcrService(t *testing.T, fake *fakeOcrProvider) (*OcrService, *OcrRegistry) {
	t.Helper()
	r := NewOcrRegistry("fake", envLookup(map[string]string{"FAKE_KEY": "x"}))
	r.Register("fake", "FAKE_KEY", func(func(string) string) (OcrProvider, error) { return fake, nil })
	return NewOcrService(newTestDB(t), r, time.Second), r
}

func TestOcrServiceRecognizeStoresRecord(t *testing.T) {
	fake := &fakeOcrProvider{kind: "fake", result: &models.OcrResult{
		Articles: []models.OcrArticleResult{{Title: "Cover Story", Authors: []string{}, Games: []string{}, Confidence: 0.9}},
	}}
	svc, _ := newFakeOcrService(t, fake)

	resp, err := svc.Recognize(context.Background(), OcrRequest{
		Images: []OcrImage{{URL: "https://example.com/toc.jpg"}},
		Actor:  "editor@example.com",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)
	assert.Equal(t, "fake", resp.Result.Provider)
	assert.Equal(t, 1, fake.calls)

	var record models.OcrRecord
	require.NoError(t, svc.db.First(&record, "id = ?", resp.ID).Error)
	assert.Equal(t, 1, record.ImageCount)
	assert.Equal(t, "fake", record.Provider)
	require.Len(t, record.Result.Articles, 1)
	assert.Equal(t, "Cover Story", record.Result.Articles[0].Title)
	assert.Equal(t, "editor@example.com", *record.CreatedBy)
}

func TestOcrServiceRejectsBadRequests(t *testing.T) {
	fake := &fakeOcrProvider{kind: "fake", result: &models.OcrResult{}}
	svc, _ := newFakeOcrService(t, fake)
	img := []OcrImage{{URL: "https://example.com/toc.jpg"}}

	_, err := svc.Recognize(context.Background(), OcrRequest{})
	assert.ErrorIs(t, err, ErrNoOcrImages)

	_, err = svc.Recognize(context.Background(), OcrRequest{Provider: "openai", Images: img})
	assert.ErrorIs(t, err, ErrUnknownOcrProvider)

	missing := uint(42)
	_, err = svc.Recognize(context.Background(), OcrRequest{Images: img, IssueID: &missing})
	assert.ErrorIs(t, err, ErrIssueNotFound)
	assert.Zero(t, fake.calls)
}

func TestOcrServiceWrapsProviderFailures(t *testing.T) {
	upstream := errors.New("401 unauthorized")
	fake := &fakeOcrProvider{kind: "fake", err: upstream}
	svc, _ := newFakeOcrService(t, fake)

	_, err := svc.Recognize(context.Background(), OcrRequest{Images: []OcrImage{{URL: "https://example.com/toc.jpg"}}})
	assert.ErrorIs(t, err, ErrOcrUpstream)
	assert.ErrorIs(t, err, upstream)

	var count int64
	require.NoError(t, svc.db.Model(&models.OcrRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOcrServiceProviders(t *testing.T) {
	svc, _ := newFakeOcrService(t, &fakeOcrProvider{kind: "fake"})
	assert.Equal(t, OcrProvidersInfo{Providers: []string{"fake"}, Default: "fake"}, svc.Providers())
}
