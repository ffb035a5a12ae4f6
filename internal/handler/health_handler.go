package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ServiceName is reported by the root endpoint
const ServiceName = "API do Growlify"

// HealthHandler answers liveness probes
type HealthHandler struct{}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// StatusResponse describes the running service
type StatusResponse struct {
	OK     bool   `json:"ok"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Root handles GET /
func (h *HealthHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{OK: true, Name: ServiceName, Status: "online"})
}

// Health handles GET /health
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, okResponse{OK: true})
}
