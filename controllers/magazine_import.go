package controllers

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"magazine-catalog-api/config"
	"magazine-catalog-api/middleware"
	"magazine-catalog-api/models"
	"magazine-catalog-api/monitor"
	"magazine-catalog-api/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxImportFileSize = 10 * 1024 * 1024

// PreviewMagazineImport parses an uploaded CSV or XLSX file and returns the grouped result
// without touching the database.
func PreviewMagazineImport(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Import file is required"})
		return
	}
	defer file.Close()

	if header.Size > maxImportFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Import file exceeds 10MB"})
		return
	}

	var result models.ParseResult
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv", "":
		result = services.ParseMagazineCSV(file)
	case ".xlsx":
		result = services.ParseMagazineXLSX(file)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type, use .csv or .xlsx"})
		return
	}

	monitor.ObserveParse(result.TotalRows, len(result.Errors), len(result.Warnings))
	c.JSON(http.StatusOK, result)
}

// ImportMagazines commits a previewed payload in one transaction.
func ImportMagazines(c *gin.Context) {
	var req models.ImportMagazinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if details := services.ValidateImportPayload(req.Magazines); len(details) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid import data", "details": details})
		return
	}

	actor := middleware.Actor(c)
	result, err := services.NewMagazineImportService(nil).ImportWithAudit(c.Request.Context(), req.Magazines, "api", actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Import failed"})
		return
	}

	if deps.Notifier != nil {
		go func(n services.ImportNotifier, r *models.ImportResult) {
			if err := n.NotifyImport(r, actor); err != nil {
				config.Logger.WithFields(logrus.Fields{"actor": actor}).WithError(err).Warn("import summary mail failed")
			}
		}(deps.Notifier, result)
	}

	c.JSON(http.StatusCreated, result)
}

// ListImportRuns returns the most recent import audit rows.
func ListImportRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := services.NewImportRunService(nil).List(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load import runs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
