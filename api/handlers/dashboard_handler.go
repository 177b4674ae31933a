// api/handlers/dashboard_handler.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/cvm-baseprep/internal/mediation"
)

type DashboardHandler struct {
	Client *mediation.DashboardClient
}

func NewDashboardHandler(client *mediation.DashboardClient) *DashboardHandler {
	return &DashboardHandler{Client: client}
}

// GetCards refreshes the metric cards. Partial failures still return 200 with
// the failed slugs listed; only a refresh where nothing answered is a 502.
func (h *DashboardHandler) GetCards(c *gin.Context) {
	cards, err := h.Client.FetchCards(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if len(cards.Data) == 0 && len(cards.Failed) > 0 {
		_ = c.Error(fmt.Errorf("%w: none of %d dashboard metric(s) answered", mediation.ErrUpstream, len(cards.Failed)))
		return
	}
	c.JSON(http.StatusOK, cards)
}
