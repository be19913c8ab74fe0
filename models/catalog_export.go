package models

// CatalogExportColumns is the fixed header of the catalog export.
var CatalogExportColumns = []string{
	"magazine_name",
	"magazine_name_en",
	"publisher",
	"issn",
	"is_active",
	"issue_number",
	"volume_number",
	"issue_title",
	"publish_date",
	"page_count",
	"price",
	"article_title",
	"article_subtitle",
	"authors",
	"category",
	"page_start",
	"page_end",
	"summary",
	"tags",
	"games",
}

// ExportRow is one flattened (magazine, issue, article) line, already formatted as text.
type ExportRow struct {
	MagazineName    string
	MagazineNameEn  string
	Publisher       string
	ISSN            string
	IsActive        string
	IssueNumber     string
	VolumeNumber    string
	IssueTitle      string
	PublishDate     string
	PageCount       string
	Price           string
	ArticleTitle    string
	ArticleSubtitle string
	Authors         string
	Category        string
	PageStart       string
	PageEnd         string
	Summary         string
	Tags            string
	Games           string
}

// Values returns the row in CatalogExportColumns order.
func (r ExportRow) Values() []string {
	return []string{
		r.MagazineName,
		r.MagazineNameEn,
		r.Publisher,
		r.ISSN,
		r.IsActive,
		r.IssueNumber,
		r.VolumeNumber,
		r.IssueTitle,
		r.PublishDate,
		r.PageCount,
		r.Price,
		r.ArticleTitle,
		r.ArticleSubtitle,
		r.Authors,
		r.Category,
		r.PageStart,
		r.PageEnd,
		r.Summary,
		r.Tags,
		r.Games,
	}
}
