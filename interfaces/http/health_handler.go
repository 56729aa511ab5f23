package http

import (
	"net/http"

	"token-platform/domain/model"
	"token-platform/domain/repository"

	"github.com/gin-gonic/gin"
)

type IHealthHandler interface {
	Healthz(c *gin.Context)
}

type HealthHandler struct {
	health repository.IHealth
}

func NewHealthHandler(health repository.IHealth) IHealthHandler {
	return &HealthHandler{health: health}
}

// Healthz answers 503 only when Postgres is unreachable.
func (h *HealthHandler) Healthz(c *gin.Context) {
	report := h.health.Check(c.Request.Context())
	status := http.StatusOK
	if report.Status == model.HealthDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}
