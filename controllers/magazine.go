package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"magazine-catalog-api/services"

	"github.com/gin-gonic/gin"
)

func ListMagazines(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	mags, total, err := services.NewMagazineService(nil).List(c.Request.Context(), c.Query("q"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load magazines"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"magazines": mags, "total": total})
}

func GetMagazine(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid magazine id"})
		return
	}

	mag, err := services.NewMagazineService(nil).Get(c.Request.Context(), uint(id))
	if errors.Is(err, services.ErrMagazineNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Magazine not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load magazine"})
		return
	}
	c.JSON(http.StatusOK, mag)
}
