package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"docqa/internal/bootstrap"
	"docqa/internal/logging"
)

// requestLogger logs one line per request through logrus.
func requestLogger(app *bootstrap.App) gin.HandlerFunc {
	log := logging.Component(app.Logger, "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		}).Info("request")
	}
}
