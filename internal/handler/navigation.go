package handler

import (
	"net/http"

	"findway/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NavigationEngine is the navigation session driven by the handlers.
type NavigationEngine interface {
	Snapshot() models.NavigationSnapshot
	Subscribe() (<-chan models.NavigationSnapshot, func())
	OnSearchTextChanged(text string)
	OnSuggestionAccepted(s models.PlaceSuggestion)
	OnMapTap(c models.Coordinate)
	OnConfirmDestination()
	OnEndGuidance()
	Recenter()
}

// NavigationHandler turns HTTP requests into navigation intents
type NavigationHandler struct {
	engine NavigationEngine
	log    zerolog.Logger
}

// NewNavigationHandler creates a new navigation handler
func NewNavigationHandler(engine NavigationEngine, logger zerolog.Logger) *NavigationHandler {
	return &NavigationHandler{
		engine: engine,
		log:    logger.With().Str("component", "navigation_handler").Logger(),
	}
}

type searchRequest struct {
	Text string `json:"text"`
}

type suggestionRequest struct {
	ID          string `json:"id" binding:"required"`
	DisplayText string `json:"display_text"`
}

type coordinateRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

func (r coordinateRequest) coordinate() (models.Coordinate, error) {
	c := models.Coordinate{Latitude: *r.Lat, Longitude: *r.Lng}
	return c, c.Validate()
}

var accepted = gin.H{"status": "accepted"}

// Snapshot handles GET /snapshot requests
func (h *NavigationHandler) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Snapshot())
}

// Search handles POST /search requests
func (h *NavigationHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.engine.OnSearchTextChanged(req.Text)
	c.JSON(http.StatusAccepted, accepted)
}

// AcceptSuggestion handles POST /suggestions/accept requests
func (h *NavigationHandler) AcceptSuggestion(c *gin.Context) {
	var req suggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required field 'id'"})
		return
	}

	h.engine.OnSuggestionAccepted(models.PlaceSuggestion{ID: req.ID, DisplayText: req.DisplayText})
	c.JSON(http.StatusAccepted, accepted)
}

// MapTap handles POST /map/tap requests
func (h *NavigationHandler) MapTap(c *gin.Context) {
	coord, ok := bindCoordinate(c)
	if !ok {
		return
	}

	h.engine.OnMapTap(coord)
	c.JSON(http.StatusAccepted, accepted)
}

// ConfirmDestination handles POST /destination/confirm requests
func (h *NavigationHandler) ConfirmDestination(c *gin.Context) {
	h.engine.OnConfirmDestination()
	c.JSON(http.StatusAccepted, accepted)
}

// EndGuidance handles POST /guidance/end requests
func (h *NavigationHandler) EndGuidance(c *gin.Context) {
	h.engine.OnEndGuidance()
	c.JSON(http.StatusAccepted, accepted)
}

// Recenter handles POST /camera/recenter requests
func (h *NavigationHandler) Recenter(c *gin.Context) {
	h.engine.Recenter()
	c.JSON(http.StatusAccepted, accepted)
}

// Stream handles GET /snapshot/stream requests with server-sent events: one
// "snapshot" event for the current state and one per change after it.
func (h *NavigationHandler) Stream(c *gin.Context) {
	clientID := uuid.NewString()
	snapshots, unsubscribe := h.engine.Subscribe()
	defer unsubscribe()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	h.log.Info().Str("client", clientID).Msg("snapshot stream opened")
	defer h.log.Info().Str("client", clientID).Msg("snapshot stream closed")

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		case s, ok := <-snapshots:
			if !ok {
				return
			}
			c.SSEvent("snapshot", s)
			c.Writer.Flush()
		}
	}
}

func bindCoordinate(c *gin.Context) (models.Coordinate, bool) {
	var req coordinateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields 'lat' and 'lng'"})
		return models.Coordinate{}, false
	}
	coord, err := req.coordinate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.Coordinate{}, false
	}
	return coord, true
}
