package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Magazine is a periodical; its soft identity is the ISSN, or the name when no ISSN is known.
type Magazine struct {
	ID          uint       `json:"id"                    gorm:"primaryKey;autoIncrement"`
	Name        string     `json:"name"                  gorm:"type:varchar(255);not null;index"`
	NameEn      *string    `json:"name_en,omitempty"     gorm:"type:varchar(255)"`
	Publisher   *string    `json:"publisher,omitempty"   gorm:"type:varchar(255)"`
	ISSN        *string    `json:"issn,omitempty"        gorm:"column:issn;type:varchar(32);uniqueIndex:uniq_magazine_issn"`
	Description *string    `json:"description,omitempty" gorm:"type:text"`
	FoundedDate *time.Time `json:"founded_date,omitempty" gorm:"type:date"`
	IsActive    bool       `json:"is_active"             gorm:"not null"`
	CoverImage  *string    `json:"cover_image,omitempty" gorm:"type:varchar(512)"`

	Issues []Issue `json:"issues,omitempty" gorm:"foreignKey:MagazineID"`

	CreatedAt time.Time      `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"column:deleted_at;index"`
}

func (Magazine) TableName() string { return "magazines" }

// Issue is one published instance of a magazine, unique per (magazine_id, issue_number).
type Issue struct {
	ID           uint                `json:"id"                      gorm:"primaryKey;autoIncrement"`
	MagazineID   uint                `json:"magazine_id"             gorm:"not null;uniqueIndex:uniq_magazine_issue,priority:1"`
	IssueNumber  string              `json:"issue_number"            gorm:"type:varchar(64);not null;uniqueIndex:uniq_magazine_issue,priority:2"`
	VolumeNumber *string             `json:"volume_number,omitempty" gorm:"type:varchar(64)"`
	Title        *string             `json:"title,omitempty"         gorm:"type:varchar(255)"`
	PublishDate  time.Time           `json:"publish_date"            gorm:"type:date;not null"`
	PageCount    *int                `json:"page_count,omitempty"`
	Price        decimal.NullDecimal `json:"price"                   gorm:"type:decimal(10,2)"`
	CoverImage   *string             `json:"cover_image,omitempty"   gorm:"type:varchar(512)"`
	Notes        *string             `json:"notes,omitempty"         gorm:"type:text"`

	Magazine *Magazine `json:"magazine,omitempty" gorm:"foreignKey:MagazineID"`
	Articles []Article `json:"articles,omitempty" gorm:"foreignKey:IssueID"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Issue) TableName() string { return "issues" }

// Article is one piece of content inside an issue.
type Article struct {
	ID        uint     `json:"id"                 gorm:"primaryKey;autoIncrement"`
	IssueID   uint     `json:"issue_id"           gorm:"not null;index"`
	Title     string   `json:"title"              gorm:"type:varchar(500);not null"`
	Subtitle  *string  `json:"subtitle,omitempty" gorm:"type:varchar(500)"`
	Authors   []string `json:"authors"            gorm:"type:text;serializer:json"`
	Category  *string  `json:"category,omitempty" gorm:"type:varchar(64)"`
	PageStart *int     `json:"page_start,omitempty"`
	PageEnd   *int     `json:"page_end,omitempty"`
	Summary   *string  `json:"summary,omitempty"  gorm:"type:text"`

	Games []Game `json:"games,omitempty" gorm:"many2many:article_games;"`
	Tags  []Tag  `json:"tags,omitempty"  gorm:"many2many:article_tags;"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Article) TableName() string { return "articles" }

type Game struct {
	ID       uint    `json:"id"                 gorm:"primaryKey;autoIncrement"`
	Name     string  `json:"name"               gorm:"type:varchar(255);not null;uniqueIndex"`
	NameEn   *string `json:"name_en,omitempty"  gorm:"type:varchar(255)"`
	Platform *string `json:"platform,omitempty" gorm:"type:varchar(128)"`
}

func (Game) TableName() string { return "games" }

type Tag struct {
	ID   uint   `json:"id"   gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"type:varchar(128);not null;uniqueIndex:uniq_tag_name_type,priority:1"`
	Type string `json:"type" gorm:"type:varchar(32);not null;default:'general';uniqueIndex:uniq_tag_name_type,priority:2"`
}

func (Tag) TableName() string { return "tags" }
