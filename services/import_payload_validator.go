package services

import (
	"fmt"
	"strings"

	"magazine-catalog-api/models"
	"magazine-catalog-api/utils"
)

// ValidateImportPayload re-checks a client-supplied grouped import before it reaches the database.
// Paths are dotted, e.g. "magazines.0.issues.2.publishDate".
func ValidateImportPayload(magazines []models.ParsedMagazine) []models.FieldError {
	var errs []models.FieldError
	add := func(field, format string, args ...any) {
		errs = append(errs, models.FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if len(magazines) == 0 {
		add("magazines", "At least one magazine is required")
		return errs
	}

	for i, m := range magazines {
		base := fmt.Sprintf("magazines.%d", i)
		if strings.TrimSpace(m.Name) == "" {
			add(base+".name", "Magazine name is required")
		}
		if m.FoundedDate != nil && strings.TrimSpace(*m.FoundedDate) != "" {
			if _, err := utils.ParseDate(*m.FoundedDate); err != nil {
				add(base+".foundedDate", "Founded date %q is not a valid date", *m.FoundedDate)
			}
		}

		seen := make(map[string]struct{}, len(m.Issues))
		for j, issue := range m.Issues {
			ibase := fmt.Sprintf("%s.issues.%d", base, j)
			number := strings.TrimSpace(issue.IssueNumber)
			if number == "" {
				add(ibase+".issueNumber", "Issue number is required")
			} else if _, dup := seen[number]; dup {
				add(ibase+".issueNumber", "Issue number %s appears more than once", number)
			} else {
				seen[number] = struct{}{}
			}

			if strings.TrimSpace(issue.PublishDate) == "" {
				add(ibase+".publishDate", "Publish date is required")
			} else if _, err := utils.ParseDate(issue.PublishDate); err != nil {
				add(ibase+".publishDate", "Publish date %q is not a valid date", issue.PublishDate)
			}
			if issue.PageCount != nil && *issue.PageCount <= 0 {
				add(ibase+".pageCount", "Page count must be positive")
			}
			if issue.Price != nil && *issue.Price <= 0 {
				add(ibase+".price", "Price must be positive")
			}
		}
	}
	return errs
}
