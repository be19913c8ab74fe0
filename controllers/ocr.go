package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"magazine-catalog-api/middleware"
	"magazine-catalog-api/services"

	"github.com/gin-gonic/gin"
)

const (
	maxOcrImages    = 10
	maxOcrImageSize = 10 * 1024 * 1024
)

type ocrJSONRequest struct {
	ImageURLs []string `json:"imageUrls"`
	Provider  string   `json:"provider"`
	IssueID   *uint    `json:"issueId"`
}

func ocrService() (*services.OcrService, bool) {
	if deps.OcrRegistry == nil {
		return nil, false
	}
	return services.NewOcrService(nil, deps.OcrRegistry, deps.OcrTimeout), true
}

// GetOcrProviders lists configured OCR providers and the default one.
func GetOcrProviders(c *gin.Context) {
	svc, ok := ocrService()
	if !ok {
		c.JSON(http.StatusOK, services.OcrProvidersInfo{Providers: []string{}})
		return
	}
	c.JSON(http.StatusOK, svc.Providers())
}

// RecognizeTableOfContents accepts uploaded page images and/or image URLs.
func RecognizeTableOfContents(c *gin.Context) {
	svc, ok := ocrService()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "OCR is not configured"})
		return
	}

	req := services.OcrRequest{Actor: middleware.Actor(c)}

	if strings.HasPrefix(c.ContentType(), "application/json") {
		var body ocrJSONRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		req.Provider = body.Provider
		req.IssueID = body.IssueID
		for _, u := range body.ImageURLs {
			if u = strings.TrimSpace(u); u != "" {
				req.Images = append(req.Images, services.OcrImage{URL: u})
			}
		}
	} else {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Expected multipart form data"})
			return
		}
		req.Provider = strings.TrimSpace(c.PostForm("provider"))
		if raw := strings.TrimSpace(c.PostForm("issueId")); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || id == 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issueId"})
				return
			}
			v := uint(id)
			req.IssueID = &v
		}

		for _, fh := range form.File["images"] {
			if fh.Size > maxOcrImageSize {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Image " + fh.Filename + " exceeds 10MB"})
				return
			}
			f, err := fh.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read " + fh.Filename})
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read " + fh.Filename})
				return
			}
			img, err := services.NewOcrImageFromBytes(data)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": fh.Filename + " is not an image"})
				return
			}
			req.Images = append(req.Images, img)
		}
		for _, u := range form.Value["imageUrls"] {
			if u = strings.TrimSpace(u); u != "" {
				req.Images = append(req.Images, services.OcrImage{URL: u})
			}
		}
	}

	if len(req.Images) > maxOcrImages {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Too many images, at most 10 per request"})
		return
	}

	resp, err := svc.Recognize(c.Request.Context(), req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, services.ErrNoOcrImages), errors.Is(err, services.ErrUnknownOcrProvider):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrOcrProviderUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrIssueNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
	case errors.Is(err, services.ErrOcrUpstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": "OCR provider request failed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "OCR failed"})
	}
}
