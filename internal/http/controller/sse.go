package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notifysync/internal/http/dto"
	"notifysync/internal/http/resp"
	"notifysync/internal/model"
	"notifysync/internal/sse"
)

// SSE streams up to ?limit= past alerts of a source, oldest first, then every
// new alert as it arrives. limit=0 skips the backfill.
func (h *Handler) SSE(c *gin.Context) {
	src, ok := h.source(c)
	if !ok {
		return
	}
	log := h.log.With(zap.String("source", string(src)))

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		log.Error("streaming unsupported")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "streaming unsupported"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	client := &sse.Client{
		Source: string(src),
		Ch:     make(chan model.Alert, 16),
	}
	h.hub.Register(client)
	defer h.hub.Unregister(client)

	// Registering before reading history can deliver an alert twice.
	sent := map[string]struct{}{}
	limit := h.limit(c)
	var history []model.Alert
	if limit > 0 {
		var err error
		history, err = h.svc.ListHistory(c.Request.Context(), src, limit)
		if err != nil {
			log.Error("list history failed", zap.Int("limit", limit), zap.Error(err))
		}
	}
	for i := len(history) - 1; i >= 0; i-- {
		if err := writeAlert(c.Writer, history[i]); err != nil {
			log.Error("write history alert failed", zap.Error(err))
			return
		}
		sent[history[i].EventID] = struct{}{}
	}
	flusher.Flush()

	heartbeat := time.NewTicker(h.cfg.SSEHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(c.Writer, ": ping\n\n"); err != nil {
				log.Error("heartbeat write failed", zap.Error(err))
				return
			}
			flusher.Flush()
		case alert, ok := <-client.Ch:
			if !ok {
				return
			}
			if _, dup := sent[alert.EventID]; dup {
				continue
			}
			if err := writeAlert(c.Writer, alert); err != nil {
				log.Error("write alert failed", zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}

func writeAlert(w http.ResponseWriter, alert model.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	// id is the alert event id so a reconnecting client can tell duplicates apart.
	_, err = fmt.Fprintf(w, "id: %s\nevent: notification\ndata: %s\n\n", alert.EventID, payload)
	return err
}
