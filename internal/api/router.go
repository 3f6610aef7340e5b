package api

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"relay-control-backend/internal/mw"
	"relay-control-backend/internal/relay"
	"relay-control-backend/internal/store"
)

// RouterOptions tunes the middleware of NewRouter.
type RouterOptions struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	ActuateOnToggle bool
}

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, relayDriver relay.Driver, opts RouterOptions) *gin.Engine {
	r := gin.Default()
	r.Use(mw.CORS())
	if opts.RateLimitPerSec > 0 {
		r.Use(mw.RateLimiter(rate.Limit(opts.RateLimitPerSec), opts.RateLimitBurst))
	}

	handler := NewHandler(s, relayDriver, opts.ActuateOnToggle)

	r.GET("/healthz", handler.Health)
	r.GET("/relays", handler.ListRelays)

	devices := r.Group("/devices")
	{
		devices.GET("", handler.ListDevices)
		devices.POST("", handler.CreateDevice)
		devices.GET("/:id", handler.GetDevice)
		devices.PATCH("/:id", handler.UpdateDevice)
		devices.DELETE("/:id", handler.DeleteDevice)
		devices.POST("/:id/toggle", handler.ToggleDevice)
		devices.POST("/:id/sync", handler.SyncDevice)
	}

	return r
}
