package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docqa/internal/answer"
	"docqa/internal/service"
)

type HealthHandler struct {
	embedder  string
	answerer  *answer.Answerer
	store     *service.SessionStore
	startedAt time.Time
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(embedder string, answerer *answer.Answerer, store *service.SessionStore, startedAt time.Time) *HealthHandler {
	return &HealthHandler{embedder: embedder, answerer: answerer, store: store, startedAt: startedAt}
}

// Check always answers 200: search works without the generator.
func (h *HealthHandler) Check(c *gin.Context) {
	gen := dependencyStatus{OK: h.answerer.Available()}
	if cause := h.answerer.Cause(); cause != nil {
		gen.Message = cause.Error()
	}
	c.JSON(http.StatusOK, gin.H{
		"uptime_sec": int(time.Since(h.startedAt).Seconds()),
		"sessions":   h.store.Len(),
		"dependencies": gin.H{
			"embedder":  dependencyStatus{OK: true, Name: h.embedder},
			"generator": gen,
		},
	})
}
