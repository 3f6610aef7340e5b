package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListRelays handles GET /relays, reporting which ports are wired.
func (h *Handler) ListRelays(c *gin.Context) {
	ports := []int{}
	if h.relay != nil {
		ports = h.relay.Ports()
	}
	c.JSON(http.StatusOK, gin.H{"ports": ports})
}
