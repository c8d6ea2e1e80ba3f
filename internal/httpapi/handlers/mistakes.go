package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lingobuddy/internal/common"
)

// ListMistakes returns the full append-only mistake log, across all
// sessions.
func (h *Handler) ListMistakes(c *gin.Context) {
	recs, err := h.Mistakes.ListAll(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50301, "storage error")
		return
	}
	common.OK(c, gin.H{
		"mistakes": recs,
		"count":    len(recs),
	})
}
