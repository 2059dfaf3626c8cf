package handlers

import (
	nethttp "net/http"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/repository"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/service"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/transport/http/response"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	query    service.AuditQueryService
	verifier service.CoverageVerifier
	selfTest service.SelfTester
	store    repository.Store
}

func NewHandler(query service.AuditQueryService, verifier service.CoverageVerifier, selfTest service.SelfTester, store repository.Store) *Handler {
	return &Handler{
		query:    query,
		verifier: verifier,
		selfTest: selfTest,
		store:    store,
	}
}

func (h *Handler) health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		response.RespondOK(c, nethttp.StatusServiceUnavailable, gin.H{"status": "down"}, nil)
		return
	}
	response.RespondOK(c, nethttp.StatusOK, gin.H{"status": "ok"}, nil)
}
