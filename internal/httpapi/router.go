package httpapi

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"lingobuddy/internal/common"
	"lingobuddy/internal/config"
	"lingobuddy/internal/httpapi/handlers"
	"lingobuddy/internal/httpapi/middleware"
	"lingobuddy/internal/mistakes"
	"lingobuddy/internal/session"
)

func NewRouter(cfg config.Config, mgr *session.Manager, store *mistakes.Store) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.Use(middleware.RequestID())

	h := handlers.NewHandler(cfg, mgr, store)

	r.GET("/ping", h.Ping)

	api := r.Group("/api")
	api.GET("/session", h.GetSession)
	api.POST("/session/configure", h.ConfigureSession)
	api.POST("/session/scene", h.ChooseScene)
	api.POST("/session/message", h.SendMessage)
	api.GET("/session/review", h.GetReview)
	api.POST("/session/reset", h.ResetSession)
	api.GET("/scenes", h.ListScenes)
	api.GET("/mistakes", h.ListMistakes)

	// single-page front end
	r.StaticFile("/", filepath.Join(cfg.StaticDir, "index.html"))
	r.Static("/static", cfg.StaticDir)

	return r
}
