package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"relay-control-backend/internal/store"
)

type createDeviceRequest struct {
	Name      string `json:"name" binding:"required"`
	Type      string `json:"type" binding:"required"`
	RelayPort *int   `json:"relay_port" binding:"required"`
}

// ListDevices handles GET /devices.
func (h *Handler) ListDevices(c *gin.Context) {
	devices, err := h.store.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	responses := make([]deviceResponse, 0, len(devices))
	for _, d := range devices {
		responses = append(responses, toResponse(d))
	}
	c.JSON(http.StatusOK, responses)
}

// GetDevice handles GET /devices/:id.
func (h *Handler) GetDevice(c *gin.Context) {
	d, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(d))
}

// CreateDevice handles POST /devices.
func (h *Handler) CreateDevice(c *gin.Context) {
	var req createDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := h.store.Create(c.Request.Context(), req.Name, req.Type, *req.RelayPort)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(d))
}

// UpdateDevice handles PATCH /devices/:id. Only supplied fields change.
func (h *Handler) UpdateDevice(c *gin.Context) {
	var upd store.DeviceUpdate
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&upd); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	d, err := h.store.Update(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(d))
}

// DeleteDevice handles DELETE /devices/:id.
func (h *Handler) DeleteDevice(c *gin.Context) {
	removed, err := h.store.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !removed {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Device not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device deleted successfully"})
}

// ToggleDevice handles POST /devices/:id/toggle. When actuation is on, the
// relay follows the committed status; a relay failure is reported but the
// stored toggle stands.
func (h *Handler) ToggleDevice(c *gin.Context) {
	actuate := h.actuate && h.relay != nil
	if actuate {
		h.actuation.Lock()
		defer h.actuation.Unlock()
	}

	d, err := h.store.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	if actuate {
		if err := h.relay.SetRelay(d.RelayPort, d.Status); err != nil {
			log.Printf("Device %d toggled to %s but relay port %d failed: %v", d.ID, d.Status, d.RelayPort, err)
			c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error(), "device": toResponse(d)})
			return
		}
	}
	c.JSON(http.StatusOK, toResponse(d))
}

// SyncDevice handles POST /devices/:id/sync, writing the stored status of a
// device to its relay line.
func (h *Handler) SyncDevice(c *gin.Context) {
	if h.relay == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "relay control is not configured"})
		return
	}

	h.actuation.Lock()
	defer h.actuation.Unlock()

	d, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := h.relay.SetRelay(d.RelayPort, d.Status); err != nil {
		c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error(), "device": toResponse(d)})
		return
	}
	c.JSON(http.StatusOK, toResponse(d))
}
