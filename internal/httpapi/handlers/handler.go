package handlers

import (
	"github.com/gin-gonic/gin"

	"lingobuddy/internal/common"
	"lingobuddy/internal/config"
	"lingobuddy/internal/mistakes"
	"lingobuddy/internal/session"
)

type Handler struct {
	Cfg      config.Config
	Sessions *session.Manager
	Mistakes *mistakes.Store
}

func NewHandler(cfg config.Config, mgr *session.Manager, store *mistakes.Store) *Handler {
	return &Handler{Cfg: cfg, Sessions: mgr, Mistakes: store}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"status": "ok"})
}
