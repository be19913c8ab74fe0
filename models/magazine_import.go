package models

// CsvRow is one validated line of a magazine import file. Values are trimmed but not coerced.
type CsvRow struct {
	MagazineName   string `json:"magazine_name"    validate:"required"`
	MagazineNameEn string `json:"magazine_name_en"`
	Publisher      string `json:"publisher"`
	ISSN           string `json:"issn"`
	Description    string `json:"description"`
	FoundedDate    string `json:"founded_date"`
	IsActive       string `json:"is_active"`
	IssueNumber    string `json:"issue_number"     validate:"required"`
	VolumeNumber   string `json:"volume_number"`
	IssueTitle     string `json:"issue_title"`
	PublishDate    string `json:"publish_date"     validate:"required"`
	PageCount      string `json:"page_count"`
	Price          string `json:"price"`
	Notes          string `json:"notes"`
}

// MagazineImportColumns lists the import file header in canonical order.
var MagazineImportColumns = []string{
	"magazine_name",
	"magazine_name_en",
	"publisher",
	"issn",
	"description",
	"founded_date",
	"is_active",
	"issue_number",
	"volume_number",
	"issue_title",
	"publish_date",
	"page_count",
	"price",
	"notes",
}

type ParsedIssue struct {
	IssueNumber  string   `json:"issueNumber"`
	VolumeNumber *string  `json:"volumeNumber,omitempty"`
	Title        *string  `json:"title,omitempty"`
	PublishDate  string   `json:"publishDate"`
	PageCount    *int     `json:"pageCount,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
}

// ParsedMagazine groups every issue of one magazine found in an import file.
// IsActive is nil when the file did not say, so the stored default applies.
type ParsedMagazine struct {
	Name        string        `json:"name"`
	NameEn      *string       `json:"nameEn,omitempty"`
	Publisher   *string       `json:"publisher,omitempty"`
	ISSN        *string       `json:"issn,omitempty"`
	Description *string       `json:"description,omitempty"`
	FoundedDate *string       `json:"foundedDate,omitempty"`
	IsActive    *bool         `json:"isActive,omitempty"`
	Issues      []ParsedIssue `json:"issues"`
}

type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

type RowWarning struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ParseResult struct {
	Magazines []ParsedMagazine `json:"magazines"`
	Errors    []RowError       `json:"errors"`
	Warnings  []RowWarning     `json:"warnings"`
	TotalRows int              `json:"totalRows"`
}

// FieldError is a single validation failure addressed by a dotted path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

const (
	MagazineImportCreated = "created"
	MagazineImportExisted = "existed"
	IssueImportCreated    = "created"
	IssueImportSkipped    = "skipped"
)

type IssueImportDetail struct {
	IssueNumber string `json:"issueNumber"`
	Status      string `json:"status"`
}

type MagazineImportDetail struct {
	MagazineName string              `json:"magazineName"`
	Status       string              `json:"status"`
	Issues       []IssueImportDetail `json:"issues"`
}

type ImportResult struct {
	CreatedMagazines int                    `json:"createdMagazines"`
	SkippedMagazines int                    `json:"skippedMagazines"`
	CreatedIssues    int                    `json:"createdIssues"`
	SkippedIssues    int                    `json:"skippedIssues"`
	Details          []MagazineImportDetail `json:"details"`
}

// ImportMagazinesRequest is the body of the import endpoint.
type ImportMagazinesRequest struct {
	Magazines []ParsedMagazine `json:"magazines"`
}
