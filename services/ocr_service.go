package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"magazine-catalog-api/config"
	"magazine-catalog-api/models"
	"magazine-catalog-api/monitor"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrNoOcrImages   = errors.New("at least one image is required")
	ErrIssueNotFound = errors.New("issue not found")
	ErrOcrUpstream   = errors.New("OCR provider request failed")
)

type OcrRequest struct {
	Provider string
	IssueID  *uint
	Images   []OcrImage
	Actor    string
	Config   *OcrConfig
}

type OcrResponse struct {
	ID     string            `json:"id"`
	Result *models.OcrResult `json:"result"`
}

type OcrProvidersInfo struct {
	Providers []string `json:"providers"`
	Default   string   `json:"default"`
}

type OcrService struct {
	db       *gorm.DB
	registry *OcrRegistry
	timeout  time.Duration
}

func NewOcrService(db *gorm.DB, registry *OcrRegistry, timeout time.Duration) *OcrService {
	if db == nil {
		db = config.DB
	}
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &OcrService{db: db, registry: registry, timeout: timeout}
}

func (s *OcrService) Providers() OcrProvidersInfo {
	info := OcrProvidersInfo{Providers: []string{}}
	for _, t := range s.registry.Available() {
		info.Providers = append(info.Providers, string(t))
	}
	if t, ok := s.registry.Default(); ok {
		info.Default = string(t)
	}
	return info
}

// Recognize runs the chosen (or default) provider over the images and stores the result.
func (s *OcrService) Recognize(ctx context.Context, req OcrRequest) (*OcrResponse, error) {
	if len(req.Images) == 0 {
		return nil, ErrNoOcrImages
	}

	providerType := OcrProviderType(req.Provider)
	if providerType == "" {
		t, ok := s.registry.Default()
		if !ok {
			return nil, ErrOcrProviderUnavailable
		}
		providerType = t
	}
	provider, err := s.registry.Get(providerType)
	if err != nil {
		return nil, err
	}

	if req.IssueID != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Issue{}).Where("id = ?", *req.IssueID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrIssueNotFound
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	result, err := provider.ExtractTableOfContents(callCtx, req.Images, req.Config)
	elapsed := time.Since(started)
	monitor.ObserveOcr(string(providerType), elapsed, err)
	if err != nil {
		config.Logger.WithFields(logrus.Fields{
			"provider": providerType,
			"images":   len(req.Images),
		}).WithError(err).Warn("ocr request failed")
		return nil, fmt.Errorf("%w: %w", ErrOcrUpstream, err)
	}
	result.Provider = string(providerType)
	if result.ProcessingTime == 0 {
		result.ProcessingTime = elapsed.Milliseconds()
	}

	record := models.OcrRecord{
		ID:         uuid.NewString(),
		IssueID:    req.IssueID,
		Provider:   string(providerType),
		ImageCount: len(req.Images),
		Result:     *result,
	}
	if req.Actor != "" {
		actor := req.Actor
		record.CreatedBy = &actor
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("save ocr record: %w", err)
	}

	config.Logger.WithFields(logrus.Fields{
		"id":       record.ID,
		"provider": providerType,
		"articles": len(result.Articles),
		"ms":       result.ProcessingTime,
	}).Info("ocr completed")

	return &OcrResponse{ID: record.ID, Result: result}, nil
}
