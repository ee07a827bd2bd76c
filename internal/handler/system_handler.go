package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	ServiceName    = "Account REST API Service"
	ServiceVersion = "1.0"
)

// SystemHandler serves the endpoints that describe the service itself.
type SystemHandler struct{}

func NewSystemHandler() *SystemHandler {
	return &SystemHandler{}
}

// Health always reports OK; it does not check any dependency.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (h *SystemHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    ServiceName,
		"version": ServiceVersion,
	})
}
