package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	handler *Handler
}

func NewRouter(handler *Handler) *Router {
	return &Router{handler: handler}
}

func (r *Router) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", r.handler.health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	audit := api.Group("/audit")
	audit.GET("/logs", r.handler.listLogs)
	audit.GET("/logs/:id", r.handler.getLog)
	audit.GET("/status", r.handler.status)
	audit.GET("/coverage", r.handler.coverage)
	audit.POST("/test", r.handler.runSelfTest)
}
