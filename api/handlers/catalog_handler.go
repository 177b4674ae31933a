// api/handlers/catalog_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/cvm-baseprep/internal/catalog"
	"github.com/Annany2002/cvm-baseprep/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// CatalogHandler exposes the table kind registry.
type CatalogHandler struct {
	Catalog *catalog.Registry
}

func NewCatalogHandler(cat *catalog.Registry) *CatalogHandler {
	return &CatalogHandler{Catalog: cat}
}

// ListCatalog returns every table kind in display order.
func (h *CatalogHandler) ListCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tables": h.Catalog.All()})
}
