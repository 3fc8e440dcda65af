package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"docqa/internal/bootstrap"
	"docqa/internal/service"
	"docqa/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App, store *service.SessionStore) *gin.Engine {
	gin.SetMode(app.Config.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(app))

	healthHandler := handler.NewHealthHandler(app.Embedder.Name(), app.Answerer, store, app.StartedAt)
	router.GET("/health", healthHandler.Check)

	sessionHandler := handler.NewSessionHandler(store, app.Config.Retrieval.DefaultTopK, logrus.NewEntry(app.Logger))
	sessions := router.Group("/sessions")
	sessions.POST("", sessionHandler.Create)
	sessions.GET("/:id", sessionHandler.Get)
	sessions.DELETE("/:id", sessionHandler.Delete)
	sessions.POST("/:id/documents", sessionHandler.Upload)
	sessions.POST("/:id/search", sessionHandler.Search)
	sessions.POST("/:id/summarize", sessionHandler.Summarize)

	return router
}
