package services

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"magazine-catalog-api/models"
	"magazine-catalog-api/utils"

	"github.com/go-playground/validator/v10"
)

var (
	rowValidatorOnce sync.Once
	rowValidator     *validator.Validate
)

var requiredFieldMessages = map[string]string{
	"magazine_name": "Magazine name is required",
	"issue_number":  "Issue number is required",
	"publish_date":  "Publish date is required",
}

// csvValidator reports struct fields by their json (CSV column) name.
func csvValidator() *validator.Validate {
	rowValidatorOnce.Do(func() {
		rowValidator = validator.New(validator.WithRequiredStructEnabled())
		rowValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return rowValidator
}

// ValidateRow checks a raw header->value row for required columns. Missing keys count as empty.
func ValidateRow(raw map[string]string) (models.CsvRow, []models.FieldError) {
	get := func(key string) string { return utils.SanitizeInput(raw[key]) }

	row := models.CsvRow{
		MagazineName:   get("magazine_name"),
		MagazineNameEn: get("magazine_name_en"),
		Publisher:      get("publisher"),
		ISSN:           get("issn"),
		Description:    get("description"),
		FoundedDate:    get("founded_date"),
		IsActive:       get("is_active"),
		IssueNumber:    get("issue_number"),
		VolumeNumber:   get("volume_number"),
		IssueTitle:     get("issue_title"),
		PublishDate:    get("publish_date"),
		PageCount:      get("page_count"),
		Price:          get("price"),
		Notes:          get("notes"),
	}

	err := csvValidator().Struct(row)
	if err == nil {
		return row, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return row, []models.FieldError{{Field: "row", Message: err.Error()}}
	}

	fieldErrs := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := requiredFieldMessages[fe.Field()]
		if !ok || fe.Tag() != "required" {
			msg = fe.Field() + " is invalid"
		}
		fieldErrs = append(fieldErrs, models.FieldError{Field: fieldPath(fe), Message: msg})
	}
	return row, fieldErrs
}

// fieldPath drops the root struct name from the validator namespace, e.g. "CsvRow.issue_number".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}
