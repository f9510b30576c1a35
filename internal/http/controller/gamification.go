package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notifysync/internal/gamification"
	"notifysync/internal/http/dto"
	"notifysync/internal/http/resp"
	"notifysync/internal/model"
)

func (h *Handler) Profile(c *gin.Context) {
	token, ok := bearer(c)
	if !ok {
		return
	}
	profile, err := h.games.Profile(c.Request.Context(), token)
	if err != nil {
		h.writeGamificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) Achievements(c *gin.Context) {
	token, ok := bearer(c)
	if !ok {
		return
	}
	achievements, err := h.games.Achievements(c.Request.Context(), token)
	if err != nil {
		h.writeGamificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, achievements)
}

func (h *Handler) Customization(c *gin.Context) {
	token, ok := bearer(c)
	if !ok {
		return
	}
	custom, err := h.games.Customization(c.Request.Context(), token)
	if err != nil {
		h.writeGamificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, custom)
}

func (h *Handler) UpdateCustomization(c *gin.Context) {
	token, ok := bearer(c)
	if !ok {
		return
	}
	var req model.CustomizationUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "invalid json"})
		return
	}
	custom, err := h.games.UpdateCustomization(c.Request.Context(), token, req)
	if err != nil {
		h.writeGamificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, custom)
}

func bearer(c *gin.Context) (string, bool) {
	token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !found || token == "" {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Code: resp.CodeUnauthorized, Message: "bearer token required"})
		return "", false
	}
	return token, true
}

func (h *Handler) writeGamificationError(c *gin.Context, err error) {
	var apiErr *gamification.APIError
	switch {
	case errors.Is(err, gamification.ErrInvalidUpdate):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: err.Error()})
	case errors.As(err, &apiErr):
		c.JSON(apiErr.StatusCode, dto.ErrorResponse{Code: resp.CodeUpstream, Message: apiErr.Message})
	default:
		h.log.Error("gamification request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Code: resp.CodeUpstream, Message: "backend unavailable"})
	}
}
