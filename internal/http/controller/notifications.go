package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notifysync/internal/http/dto"
	"notifysync/internal/http/resp"
	"notifysync/internal/model"
	"notifysync/internal/synchronizer"
)

func (h *Handler) Notifications(c *gin.Context) {
	src, ok := h.source(c)
	if !ok {
		return
	}
	state, err := h.svc.State(src)
	h.writeState(c, state, err)
}

func (h *Handler) Refresh(c *gin.Context) {
	src, ok := h.source(c)
	if !ok {
		return
	}
	state, err := h.svc.Refresh(c.Request.Context(), src)
	h.writeState(c, state, err)
}

// MarkRead and the other mutations answer 200 with the local state even when
// the backend rejected the change; in that case the state is unchanged.
func (h *Handler) MarkRead(c *gin.Context) {
	src, ok := h.source(c)
	if !ok {
		return
	}
	state, err := h.svc.MarkAsRead(c.Request.Context(), src, c.Param("id"))
	h.writeState(c, state, err)
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	src, ok := h.source(c)
	if !ok {
		return
	}
	state, err := h.svc.MarkAllAsRead(c.Request.Context(), src)
	h.writeState(c, state, err)
}

func (h *Handler) Delete(c *gin.Context) {
	src, ok := h.source(c)
	if !ok {
		return
	}
	state, err := h.svc.Delete(c.Request.Context(), src, c.Param("id"))
	h.writeState(c, state, err)
}

func (h *Handler) SetCredential(c *gin.Context) {
	src, ok := h.source(c)
	if !ok {
		return
	}
	var req dto.CredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "token is required"})
		return
	}
	if err := h.svc.SetCredential(src, *req.Token); err != nil {
		h.writeSourceError(c, err)
		return
	}
	message := "active"
	if *req.Token == "" {
		message = "inactive"
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Code: resp.CodeOK, Message: message})
}

func (h *Handler) Alerts(c *gin.Context) {
	src, ok := h.source(c)
	if !ok {
		return
	}
	limit := h.limit(c)
	alerts, err := h.svc.ListHistory(c.Request.Context(), src, limit)
	if err != nil {
		h.log.Error("list alerts failed", zap.String("source", string(src)), zap.Int("limit", limit), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to list alerts"})
		return
	}
	if alerts == nil {
		alerts = []model.Alert{}
	}
	c.JSON(http.StatusOK, dto.AlertsResponse{Source: string(src), Alerts: alerts})
}

func (h *Handler) writeState(c *gin.Context, state synchronizer.State, err error) {
	if err != nil {
		h.writeSourceError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}
