package services

import (
	"regexp"
	"strconv"
	"strings"

	"magazine-catalog-api/models"

	"github.com/tidwall/gjson"
)

const defaultOcrConfidence = 0.8

var (
	codeFencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	firstIntPattern  = regexp.MustCompile(`\d+`)
)

// NormalizeOcrOutput maps whatever JSON-ish text a vision model produced onto OcrArticleResult.
// ok is false when no JSON document could be found; articles is then empty, never nil.
func NormalizeOcrOutput(content string) (articles []models.OcrArticleResult, meta *models.OcrMetadata, ok bool) {
	articles = []models.OcrArticleResult{}

	doc := extractJSONDocument(content)
	if doc == "" || !gjson.Valid(doc) {
		return articles, nil, false
	}

	root := gjson.Parse(doc)
	list := root
	if !root.IsArray() {
		list = firstExisting(root, "articles", "items", "toc", "contents")
		if !list.IsArray() {
			return articles, nil, false
		}
		meta = normalizeOcrMetadata(root.Get("metadata"))
	}

	for _, item := range list.Array() {
		if !item.IsObject() {
			continue
		}
		title := strings.TrimSpace(item.Get("title").String())
		if title == "" {
			continue
		}
		articles = append(articles, models.OcrArticleResult{
			Title:      title,
			Subtitle:   optionalText(item.Get("subtitle")),
			Authors:    stringList(firstExisting(item, "authors", "author")),
			Category:   optionalText(item.Get("category")),
			PageStart:  positiveInt(firstExisting(item, "pageStart", "page_start", "page")),
			PageEnd:    positiveInt(firstExisting(item, "pageEnd", "page_end")),
			Summary:    optionalText(item.Get("summary")),
			Games:      stringList(firstExisting(item, "games", "game")),
			Confidence: confidenceValue(item.Get("confidence")),
		})
	}
	return articles, meta, true
}

func extractJSONDocument(content string) string {
	text := strings.TrimSpace(content)
	if m := codeFencePattern.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return ""
	}
	closer := "}"
	if text[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(text, closer)
	if end < start {
		return ""
	}
	return text[start : end+1]
}

func firstExisting(r gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

func normalizeOcrMetadata(r gjson.Result) *models.OcrMetadata {
	if !r.IsObject() {
		return nil
	}
	meta := &models.OcrMetadata{
		MagazineName: optionalText(r.Get("magazineName")),
		IssueNumber:  optionalText(r.Get("issueNumber")),
		PublishDate:  optionalText(r.Get("publishDate")),
	}
	if meta.MagazineName == nil && meta.IssueNumber == nil && meta.PublishDate == nil {
		return nil
	}
	return meta
}

func optionalText(r gjson.Result) *string {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	s := strings.TrimSpace(r.String())
	if s == "" {
		return nil
	}
	return &s
}

// stringList accepts an array or a delimited string.
func stringList(r gjson.Result) []string {
	out := []string{}
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	switch {
	case r.IsArray():
		for _, v := range r.Array() {
			add(v.String())
		}
	case r.Type == gjson.String:
		for _, part := range strings.FieldsFunc(r.String(), func(c rune) bool {
			return c == ',' || c == ';' || c == '、' || c == '/' || c == '，'
		}) {
			add(part)
		}
	}
	return out
}

func positiveInt(r gjson.Result) *int {
	var n int
	switch r.Type {
	case gjson.Number:
		n = int(r.Int())
	case gjson.String:
		digits := firstIntPattern.FindString(r.String())
		if digits == "" {
			return nil
		}
		v, err := strconv.Atoi(digits)
		if err != nil {
			return nil
		}
		n = v
	default:
		return nil
	}
	if n <= 0 {
		return nil
	}
	return &n
}

func confidenceValue(r gjson.Result) float64 {
	var f float64
	switch r.Type {
	case gjson.Number:
		f = r.Float()
	case gjson.String:
		v, err := strconv.ParseFloat(strings.TrimSpace(r.String()), 64)
		if err != nil {
			return defaultOcrConfidence
		}
		f = v
	default:
		return defaultOcrConfidence
	}
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
