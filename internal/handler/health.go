package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xddprog/auth-backend/internal/model"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping is the liveness endpoint.
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, model.PingResponse{Message: "pong"})
}

type HealthHandler struct {
	postgres Pinger
	redis    Pinger
}

func NewHealthHandler(postgres, redis Pinger) *HealthHandler {
	return &HealthHandler{postgres: postgres, redis: redis}
}

// Healthz godoc
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} model.HealthResponse
// @Failure 503 {object} model.HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Healthz(c *gin.Context) {
	resp := model.HealthResponse{Status: "ok", Postgres: "ok", Redis: "ok"}
	code := http.StatusOK

	if err := h.postgres.Ping(c.Request.Context()); err != nil {
		resp.Status = "degraded"
		resp.Postgres = err.Error()
		code = http.StatusServiceUnavailable
	}
	if err := h.redis.Ping(c.Request.Context()); err != nil {
		resp.Status = "degraded"
		resp.Redis = err.Error()
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, resp)
}
