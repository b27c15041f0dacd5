package handler

import (
	"net/http"
	"time"

	"findway/internal/apperr"
	"findway/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// LocationFeed receives the fixes pushed by the device.
type LocationFeed interface {
	Publish(c models.Coordinate) error
	SetPermission(granted bool) (changed bool)
	RequestedInterval() time.Duration
}

// Lifecycle holds the continuous location subscription while the client view
// is active.
type Lifecycle interface {
	SetActive(active bool)
	Active() bool
}

// LocationHandler handles device location, permission and lifecycle requests
type LocationHandler struct {
	feed      LocationFeed
	lifecycle Lifecycle
	onGranted func()
	log       zerolog.Logger
}

// NewLocationHandler creates a new location handler. onGranted runs whenever
// permission changes from denied to granted.
func NewLocationHandler(feed LocationFeed, lifecycle Lifecycle, onGranted func(), logger zerolog.Logger) *LocationHandler {
	if onGranted == nil {
		onGranted = func() {}
	}
	return &LocationHandler{
		feed:      feed,
		lifecycle: lifecycle,
		onGranted: onGranted,
		log:       logger.With().Str("component", "location_handler").Logger(),
	}
}

type permissionRequest struct {
	Granted *bool `json:"granted" binding:"required"`
}

type lifecycleRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// Publish handles POST /location requests
func (h *LocationHandler) Publish(c *gin.Context) {
	coord, ok := bindCoordinate(c)
	if !ok {
		return
	}

	if err := h.feed.Publish(coord); err != nil {
		if apperr.Is(err, apperr.KindPermissionDenied) {
			c.JSON(http.StatusForbidden, gin.H{"error": "location permission not granted"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":          "accepted",
		"min_interval_ms": h.feed.RequestedInterval().Milliseconds(),
	})
}

// Permission handles POST /permission requests
func (h *LocationHandler) Permission(c *gin.Context) {
	var req permissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required field 'granted'"})
		return
	}

	changed := h.feed.SetPermission(*req.Granted)

	if *req.Granted && changed {
		// Subscriptions were refused while denied; take a fresh one.
		if h.lifecycle.Active() {
			h.lifecycle.SetActive(false)
			h.lifecycle.SetActive(true)
		}
		h.onGranted()
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "granted": *req.Granted})
}

// Lifecycle handles POST /lifecycle requests
func (h *LocationHandler) Lifecycle(c *gin.Context) {
	var req lifecycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required field 'active'"})
		return
	}

	h.lifecycle.SetActive(*req.Active)
	h.log.Debug().Bool("active", *req.Active).Msg("client lifecycle changed")
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "active": *req.Active})
}
