package models

import "time"

// OcrArticleResult is one table-of-contents entry recognized from page images.
type OcrArticleResult struct {
	Title      string   `json:"title"`
	Subtitle   *string  `json:"subtitle,omitempty"`
	Authors    []string `json:"authors"`
	Category   *string  `json:"category,omitempty"`
	PageStart  *int     `json:"pageStart,omitempty"`
	PageEnd    *int     `json:"pageEnd,omitempty"`
	Summary    *string  `json:"summary,omitempty"`
	Games      []string `json:"games"`
	Confidence float64  `json:"confidence"`
}

type OcrMetadata struct {
	MagazineName *string `json:"magazineName,omitempty"`
	IssueNumber  *string `json:"issueNumber,omitempty"`
	PublishDate  *string `json:"publishDate,omitempty"`
}

type OcrResult struct {
	Articles       []OcrArticleResult `json:"articles"`
	Metadata       *OcrMetadata       `json:"metadata,omitempty"`
	RawText        *string            `json:"rawText,omitempty"`
	Provider       string             `json:"provider"`
	ProcessingTime int64              `json:"processingTime"`
}

// OcrRecord keeps every recognition result so editors can come back to it.
type OcrRecord struct {
	ID         string    `json:"id"                 gorm:"primaryKey;type:varchar(36)"`
	IssueID    *uint     `json:"issue_id,omitempty" gorm:"index"`
	Provider   string    `json:"provider"           gorm:"type:varchar(32);not null"`
	ImageCount int       `json:"image_count"        gorm:"not null;default:0"`
	Result     OcrResult `json:"result"             gorm:"type:text;serializer:json"`
	CreatedBy  *string   `json:"created_by,omitempty" gorm:"type:varchar(255)"`
	CreatedAt  time.Time `json:"created_at"         gorm:"column:created_at;autoCreateTime"`
}

func (OcrRecord) TableName() string { return "ocr_records" }
