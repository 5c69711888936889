package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"venue-billing-backend/internal/model"
)

func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.store.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// PutSettings replaces the whole settings document.
func (h *Handler) PutSettings(c *gin.Context) {
	var settings model.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.store.UpdateSettings(c.Request.Context(), settings, h.now()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
