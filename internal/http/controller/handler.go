package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notifysync/internal/config"
	"notifysync/internal/domain"
	"notifysync/internal/gamification"
	"notifysync/internal/http/dto"
	"notifysync/internal/http/resp"
	"notifysync/internal/service/notify"
	"notifysync/internal/sse"
)

type Handler struct {
	cfg   *config.Config
	svc   *notify.Service
	hub   *sse.Hub
	games *gamification.Client
	log   *zap.Logger
}

func NewHandler(cfg *config.Config, svc *notify.Service, hub *sse.Hub, games *gamification.Client, logger *zap.Logger) *Handler {
	return &Handler{cfg: cfg, svc: svc, hub: hub, games: games, log: logger}
}

// source parses the :source path parameter and writes a 404 when it does
// not name a known source.
func (h *Handler) source(c *gin.Context) (domain.Source, bool) {
	src, err := domain.ParseSource(c.Param("source"))
	if err != nil {
		h.writeSourceError(c, err)
		return "", false
	}
	return src, true
}

func (h *Handler) writeSourceError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrUnknownSource) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Code: resp.CodeUnknownSource, Message: "source must be one of: admin, user"})
		return
	}
	h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "internal error"})
}

// limit reads the optional ?limit= query value, falling back to the
// configured history limit.
func (h *Handler) limit(c *gin.Context) int {
	limit := h.cfg.HistoryLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			limit = n
		}
	}
	return limit
}
