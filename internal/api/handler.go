package api

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"relay-control-backend/internal/device"
	"relay-control-backend/internal/model"
	"relay-control-backend/internal/relay"
	"relay-control-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	relay   relay.Driver
	actuate bool

	// actuation is held from the status write until the relay line follows
	// it, so relay writes land in commit order.
	actuation sync.Mutex
}

// NewHandler creates a new API handler. relayDriver may be nil, in which
// case no hardware is touched. actuateOnToggle makes toggles drive the relay.
func NewHandler(s store.Store, relayDriver relay.Driver, actuateOnToggle bool) *Handler {
	return &Handler{
		store:   s,
		relay:   relayDriver,
		actuate: actuateOnToggle,
	}
}

// deviceResponse is the wire form of a device. Identifiers are strings.
type deviceResponse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Type      string        `json:"type"`
	Status    device.Status `json:"status"`
	RelayPort int           `json:"relay_port"`
}

func toResponse(d model.Device) deviceResponse {
	return deviceResponse{
		ID:        d.PublicID(),
		Name:      d.Name,
		Type:      d.Type,
		Status:    d.Status,
		RelayPort: d.RelayPort,
	}
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	var derr *device.Error
	if !errors.As(err, &derr) {
		return http.StatusInternalServerError
	}
	switch derr.Kind {
	case device.KindValidation:
		return http.StatusBadRequest
	case device.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}
