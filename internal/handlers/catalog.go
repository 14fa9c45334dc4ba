package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/chaussup/shop/internal/models"
)

type CatalogHandler struct {
	DB *gorm.DB
}

func (h *CatalogHandler) Index(c echo.Context) error {
	var products []models.Product
	if err := h.DB.Order("id ASC").Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load catalog")
	}

	return c.Render(http.StatusOK, "index.html", map[string]interface{}{
		"Products": products,
	})
}
