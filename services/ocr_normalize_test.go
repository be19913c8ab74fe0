package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeOcrOutputObjectInCodeFence(t *testing.T) {
	content := "Here you go:\n```json\n" + `{
  "metadata": {"magazineName": "電玩通", "issueNumber": "42"},
  "articles": [
    {"title": "  Zelda Review ", "authors": "Lin, Chen", "pageStart": "12", "pageEnd": 15, "games": ["Zelda", ""], "confidence": 0.95},
    {"title": "", "pageStart": 3},
    {"title": "News", "author": ["Wang"], "page": "P.20", "confidence": "high"}
  ]
}` + "\n```"

	articles, meta, ok := NormalizeOcrOutput(content)
	require.True(t, ok)
	require.Len(t, articles, 2)

	zelda := articles[0]
	assert.Equal(t, "Zelda Review", zelda.Title)
	assert.Equal(t, []string{"Lin", "Chen"}, zelda.Authors)
	require.NotNil(t, zelda.PageStart)
	assert.Equal(t, 12, *zelda.PageStart)
	require.NotNil(t, zelda.PageEnd)
	assert.Equal(t, 15, *zelda.PageEnd)
	assert.Equal(t, []string{"Zelda"}, zelda.Games)
	assert.InDelta(t, 0.95, zelda.Confidence, 1e-9)

	news := articles[1]
	assert.Equal(t, []string{"Wang"}, news.Authors)
	require.NotNil(t, news.PageStart)
	assert.Equal(t, 20, *news.PageStart)
	assert.Nil(t, news.PageEnd)
	assert.Equal(t, []string{}, news.Games)
	assert.InDelta(t, 0.8, news.Confidence, 1e-9)

	require.NotNil(t, meta)
	assert.Equal(t, "電玩通", *meta.MagazineName)
	assert.Equal(t, "42", *meta.IssueNumber)
	assert.Nil(t, meta.PublishDate)
}

func TestNormalizeOcrOutputBareArray(t *testing.T) {
	articles, meta, ok := NormalizeOcrOutput(`[{"title":"Preview","confidence":1.7},{"title":"Letters","confidence":-1}]`)
	require.True(t, ok)
	assert.Nil(t, meta)
	require.Len(t, articles, 2)
	assert.Equal(t, 1.0, articles[0].Confidence)
	assert.Equal(t, 0.0, articles[1].Confidence)
}

func TestNormalizeOcrOutputUnreadable(t *testing.T) {
	for _, content := range []string{
		"",
		"I could not read the page.",
		`{"articles": "none"}`,
		`{"articles": [ {"title": "cut off`,
	} {
		articles, meta, ok := NormalizeOcrOutput(content)
		assert.False(t, ok, content)
		assert.NotNil(t, articles, content)
		assert.Empty(t, articles, content)
		assert.Nil(t, meta, content)
	}
}

func TestResultFromModelTextKeepsRawTextWhenNothingRecognized(t *testing.T) {
	result := resultFromModelText(OcrProviderOpenAI, "sorry, blurry image")
	assert.Empty(t, result.Articles)
	require.NotNil(t, result.RawText)
	assert.Equal(t, "sorry, blurry image", *result.RawText)
	assert.Equal(t, "openai", result.Provider)

	result = resultFromModelText(OcrProviderOpenRouter, `[{"title":"Cover Story"}]`)
	assert.Len(t, result.Articles, 1)
	assert.Nil(t, result.RawText)
}
