// Package http wires the gin router: the websocket endpoint, the
// subtitle side-channel for non-interactive sources, and introspection.
package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/subtext-live/subtext/internal/adapters/ws"
	"github.com/subtext-live/subtext/internal/app"
	"github.com/subtext-live/subtext/internal/config"
)

type SubtitleBroadcastRequest struct {
	Text           string `json:"text" binding:"required"`
	SourceLang     string `json:"source_lang" binding:"required"`
	SourceClientID string `json:"source_client_id"`
}

type SubtitleOneRequest struct {
	Text         string `json:"text" binding:"required"`
	SourceLang   string `json:"source_lang" binding:"required"`
	TargetLang   string `json:"target_lang" binding:"required"`
	FromClientID string `json:"from_client_id"`
	ToClientID   string `json:"to_client_id" binding:"required"`
}

func SetupRouter(ctx context.Context, cfg *config.Config, registry *app.Registry, router *app.Router) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	ctrl := &ws.Controller{
		Registry:   registry,
		Router:     router,
		ReadLimit:  cfg.ReadLimit,
		SendBuffer: cfg.SendBuffer,
	}
	r.GET("/ws", func(c *gin.Context) {
		ctrl.Handle(ctx, c)
	})

	r.POST("/subtitle", func(c *gin.Context) {
		var req SubtitleBroadcastRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		router.BroadcastSubtitle(c.Request.Context(), req.Text, req.SourceLang, req.SourceClientID)
		c.JSON(http.StatusOK, gin.H{
			"status":           "ok",
			"mode":             "broadcast",
			"original":         req.Text,
			"source_lang":      req.SourceLang,
			"source_client_id": req.SourceClientID,
		})
	})

	r.POST("/subtitle_one", func(c *gin.Context) {
		var req SubtitleOneRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		translated := router.SendSubtitleOne(
			c.Request.Context(),
			req.Text, req.SourceLang, req.TargetLang,
			req.FromClientID, req.ToClientID,
		)
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"mode":           "one_to_one",
			"from_client_id": req.FromClientID,
			"to_client_id":   req.ToClientID,
			"original":       req.Text,
			"translated":     translated,
			"source_lang":    req.SourceLang,
			"target_lang":    req.TargetLang,
		})
	})

	r.GET("/debug/lang-groups", func(c *gin.Context) {
		c.JSON(http.StatusOK, registry.Stats())
	})

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "server running"})
	})

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")
	return r
}
