package utils

import (
	"fmt"
	"strings"
	"time"
)

var dateLayouts = []string{"2006-01-02", "2006/01/02", "2006.01.02", "2006-01", "2006/01", "2006"}

// ParseDate accepts the date spellings editors put in import files.
func ParseDate(val string) (time.Time, error) {
	val = strings.TrimSpace(val)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", val)
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
