package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"magazine-catalog-api/config"
	"magazine-catalog-api/controllers"
	"magazine-catalog-api/middleware"
	"magazine-catalog-api/models"
	"magazine-catalog-api/routes"
	"magazine-catalog-api/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const scenarioCSV = "magazine_name,issn,issue_number,publish_date\n" +
	"電玩通,1234-5678,42,2024-01-15\n" +
	"電玩通,1234-5678,42,2024-01-15\n" +
	"電玩通,1234-5678,43,2024-02-15\n" +
	"遊戲世界,,100,2024-01-20\n"

var testSettings = config.Settings{JWTSecret: "controller-secret", JWTIssuer: "catalog-auth"}

type stubProvider struct {
	err error
}

func (p *stubProvider) Type() services.OcrProviderType { return "stub" }

func (p *stubProvider) ExtractTableOfContents(ctx context.Context, images []services.OcrImage, cfg *services.OcrConfig) (*models.OcrResult, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &models.OcrResult{Articles: []models.OcrArticleResult{{Title: "Cover Story", Authors: []string{}, Games: []string{}, Confidence: 0.9}}}, nil
}

func setupRouter(t *testing.T, provider *stubProvider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := filepath.Join(t.TempDir(), "api.db") + "?_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	config.DB = db

	registry := services.NewOcrRegistry("stub", func(string) string { return "key" })
	registry.Register("stub", "STUB_KEY", func(func(string) string) (services.OcrProvider, error) { return provider, nil })
	controllers.Configure(controllers.Dependencies{OcrRegistry: registry, OcrTimeout: time.Second})

	r := gin.New()
	routes.SetupRoutes(r, testSettings)
	return r
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		Email: role + "@example.com",
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-" + role,
			Issuer:    testSettings.JWTIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSettings.JWTSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func multipartBody(t *testing.T, field, filename string, content []byte, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	for k, v := range extra {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func serve(r http.Handler, method, path, auth, contentType string, body *bytes.Buffer) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func previewScenario(t *testing.T, r http.Handler) models.ParseResult {
	t.Helper()
	body, ct := multipartBody(t, "file", "magazines.csv", []byte(scenarioCSV), nil)
	w := serve(r, http.MethodPost, "/api/v1/import/magazines/preview", bearer(t, middleware.RoleEditor), ct, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result models.ParseResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

func TestHealth(t *testing.T) {
	r := setupRouter(t, &stubProvider{})
	w := serve(r, http.MethodGet, "/api/v1/health", "", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPreviewRequiresEditor(t *testing.T) {
	r := setupRouter(t, &stubProvider{})

	body, ct := multipartBody(t, "file", "magazines.csv", []byte(scenarioCSV), nil)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/api/v1/import/magazines/preview", "", ct, body).Code)

	body, ct = multipartBody(t, "file", "magazines.csv", []byte(scenarioCSV), nil)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, "/api/v1/import/magazines/preview", bearer(t, middleware.RoleViewer), ct, body).Code)
}

func TestPreviewRejectsUnsupportedFiles(t *testing.T) {
	r := setupRouter(t, &stubProvider{})

	body, ct := multipartBody(t, "file", "magazines.pdf", []byte("%PDF"), nil)
	w := serve(r, http.MethodPost, "/api/v1/import/magazines/preview", bearer(t, middleware.RoleEditor), ct, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, ct = multipartBody(t, "", "", nil, map[string]string{"note": "no file"})
	w = serve(r, http.MethodPost, "/api/v1/import/magazines/preview", bearer(t, middleware.RoleEditor), ct, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewThenImport(t *testing.T) {
	r := setupRouter(t, &stubProvider{})

	preview := previewScenario(t, r)
	assert.Equal(t, 4, preview.TotalRows)
	assert.Len(t, preview.Warnings, 1)
	require.Len(t, preview.Magazines, 2)

	payload, err := json.Marshal(models.ImportMagazinesRequest{Magazines: preview.Magazines})
	require.NoError(t, err)

	w := serve(r, http.MethodPost, "/api/v1/import/magazines", bearer(t, middleware.RoleEditor), "application/json", bytes.NewBuffer(payload))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var first models.ImportResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.Equal(t, 2, first.CreatedMagazines)
	assert.Equal(t, 3, first.CreatedIssues)

	w = serve(r, http.MethodPost, "/api/v1/import/magazines", bearer(t, middleware.RoleAdmin), "application/json", bytes.NewBuffer(payload))
	require.Equal(t, http.StatusCreated, w.Code)
	var second models.ImportResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Zero(t, second.CreatedMagazines)
	assert.Zero(t, second.CreatedIssues)
	assert.Equal(t, 3, second.SkippedIssues)

	w = serve(r, http.MethodGet, "/api/v1/import/runs", bearer(t, middleware.RoleAdmin), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var runs struct {
		Runs []models.ImportRun `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &runs))
	require.Len(t, runs.Runs, 2)
	assert.Equal(t, "admin@example.com", *runs.Runs[0].Actor)

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/api/v1/import/runs", bearer(t, middleware.RoleEditor), "", nil).Code)
}

func TestImportRejectsInvalidPayload(t *testing.T) {
	r := setupRouter(t, &stubProvider{})

	body := bytes.NewBufferString(`{"magazines":[{"name":"電玩通","issues":[{"issueNumber":"42","publishDate":"someday"}]}]}`)
	w := serve(r, http.MethodPost, "/api/v1/import/magazines", bearer(t, middleware.RoleEditor), "application/json", body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error   string              `json:"error"`
		Details []models.FieldError `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid import data", resp.Error)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "magazines.0.issues.0.publishDate", resp.Details[0].Field)

	var count int64
	require.NoError(t, config.DB.Model(&models.Magazine{}).Count(&count).Error)
	assert.Zero(t, count)

	w = serve(r, http.MethodPost, "/api/v1/import/magazines", bearer(t, middleware.RoleEditor), "application/json", bytes.NewBufferString(`{"magazines":[]}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBrowseAndExport(t *testing.T) {
	r := setupRouter(t, &stubProvider{})
	preview := previewScenario(t, r)
	_, err := services.NewMagazineImportService(config.DB).Import(context.Background(), preview.Magazines)
	require.NoError(t, err)

	w := serve(r, http.MethodGet, "/api/v1/magazines?q="+url.QueryEscape("電玩"), "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Magazines []models.Magazine `json:"magazines"`
		Total     int64             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Magazines, 1)
	id := list.Magazines[0].ID

	w = serve(r, http.MethodGet, "/api/v1/magazines/"+jsonNumber(id), "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mag models.Magazine
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mag))
	assert.Len(t, mag.Issues, 2)

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/v1/magazines/9999", "", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/v1/export/magazines", "", "", nil).Code)

	w = serve(r, http.MethodGet, "/api/v1/export/magazines", bearer(t, middleware.RoleEditor), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment;")
	assert.True(t, strings.HasPrefix(w.Body.String(), "\ufeffmagazine_name,"))

	w = serve(r, http.MethodGet, "/api/v1/export/magazines?format=xlsx&magazineId="+jsonNumber(id), bearer(t, middleware.RoleAdmin), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/v1/export/magazines?magazineId=9999", bearer(t, middleware.RoleEditor), "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/api/v1/export/magazines?format=pdf", bearer(t, middleware.RoleEditor), "", nil).Code)
}

func jsonNumber(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}

var tinyPNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestOcrEndpoints(t *testing.T) {
	provider := &stubProvider{}
	r := setupRouter(t, provider)
	editor := bearer(t, middleware.RoleEditor)

	w := serve(r, http.MethodGet, "/api/v1/ocr", bearer(t, middleware.RoleViewer), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"providers":["stub"],"default":"stub"}`, w.Body.String())

	body, ct := multipartBody(t, "images", "toc.png", tinyPNG, map[string]string{"provider": "stub"})
	w = serve(r, http.MethodPost, "/api/v1/ocr", editor, ct, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp services.OcrResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	require.Len(t, resp.Result.Articles, 1)
	assert.Equal(t, "stub", resp.Result.Provider)

	w = serve(r, http.MethodPost, "/api/v1/ocr", editor, "application/json",
		bytes.NewBufferString(`{"imageUrls":["https://example.com/toc.jpg"]}`))
	assert.Equal(t, http.StatusOK, w.Code)

	body, ct = multipartBody(t, "images", "toc.pdf", []byte("%PDF-1.7\n"), nil)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/api/v1/ocr", editor, ct, body).Code)

	body, ct = multipartBody(t, "images", "toc.png", tinyPNG, map[string]string{"provider": "tesseract"})
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/api/v1/ocr", editor, ct, body).Code)

	body, ct = multipartBody(t, "", "", nil, map[string]string{"provider": "stub"})
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/api/v1/ocr", editor, ct, body).Code)

	body, ct = multipartBody(t, "images", "toc.png", tinyPNG, map[string]string{"issueId": "77"})
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodPost, "/api/v1/ocr", editor, ct, body).Code)

	provider.err = errors.New("upstream 401")
	body, ct = multipartBody(t, "images", "toc.png", tinyPNG, nil)
	assert.Equal(t, http.StatusBadGateway, serve(r, http.MethodPost, "/api/v1/ocr", editor, ct, body).Code)
}
