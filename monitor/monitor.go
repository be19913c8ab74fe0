package monitor

import (
	"net/http"
	"runtime"
	"time"

	"magazine-catalog-api/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var startedAt = time.Now()

// RegisterMonitorPage mounts /metrics and a JSON /monitor status endpoint.
func RegisterMonitorPage(router *gin.Engine, db *gorm.DB) {
	Register()
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/monitor", func(c *gin.Context) {
		c.JSON(http.StatusOK, Snapshot(db))
	})
}

type Status struct {
	Database   string  `json:"database"`
	Uptime     string  `json:"uptime"`
	Goroutines int     `json:"goroutines"`
	AllocMB    float64 `json:"alloc_mb"`
	Magazines  int64   `json:"magazines"`
	Issues     int64   `json:"issues"`
	Articles   int64   `json:"articles"`
}

// Snapshot collects process and catalog figures for the monitor endpoint.
func Snapshot(db *gorm.DB) Status {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	st := Status{
		Database:   "ok",
		Uptime:     time.Since(startedAt).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		AllocMB:    float64(mem.Alloc) / (1024 * 1024),
	}

	sqlDB, err := db.DB()
	if err != nil || sqlDB.Ping() != nil {
		st.Database = "unreachable"
		return st
	}
	db.Model(&models.Magazine{}).Count(&st.Magazines)
	db.Model(&models.Issue{}).Count(&st.Issues)
	db.Model(&models.Article{}).Count(&st.Articles)
	return st
}
