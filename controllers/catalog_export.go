package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"magazine-catalog-api/services"

	"github.com/gin-gonic/gin"
)

// ExportCatalog streams the flattened catalog as CSV (default) or XLSX.
func ExportCatalog(c *gin.Context) {
	var magazineID *uint
	if raw := c.Query("magazineId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid magazineId"})
			return
		}
		v := uint(id)
		magazineID = &v
	}

	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
		return
	}

	rows, err := services.NewCatalogExportService(nil).Rows(c.Request.Context(), magazineID)
	if errors.Is(err, services.ErrMagazineNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Magazine not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export catalog"})
		return
	}

	var buf bytes.Buffer
	contentType := "text/csv; charset=utf-8"
	if format == "xlsx" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = services.WriteXLSX(&buf, rows)
	} else {
		err = services.WriteCSV(&buf, rows)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write export file"})
		return
	}

	filename := fmt.Sprintf("magazine-catalog-%s.%s", time.Now().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
