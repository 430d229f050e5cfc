package websocket

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/yigit/recruitportal/internal/app/models"
	"github.com/yigit/recruitportal/internal/app/models/dto"
	"github.com/yigit/recruitportal/internal/pkg/apperrors"
)

// SubscriberFunc resolves the authenticated reviewer behind a connection request
type SubscriberFunc func(c *gin.Context) (Subscriber, error)

// Handler for WebSocket connections
type Handler struct {
	hub       *Hub
	subscribe SubscriberFunc
	upgrader  websocket.Upgrader
	logger    zerolog.Logger
}

// NewHandler creates a new WebSocket handler. allowedOrigins lists the portal
// origins permitted to connect; an empty list allows any origin.
func NewHandler(hub *Hub, subscribe SubscriberFunc, allowedOrigins []string, logger zerolog.Logger) *Handler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o != "" {
			origins[strings.TrimRight(o, "/")] = true
		}
	}

	return &Handler{
		hub:       hub,
		subscribe: subscribe,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || origins[origin]
			},
		},
		logger: logger,
	}
}

// HandleConnection godoc
// @Summary Live review feed
// @Description Upgrades to a WebSocket that pushes committed status changes, interview scheduling and resets for the reviewer's purview
// @Tags applications, websocket
// @Security BearerAuth
// @Param tracks query string false "Comma-separated tracks to follow (member,committee,ea)"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 400 {object} dto.ErrorResponse "Unknown track"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not a reviewer"
// @Router /ws/applications [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	sub, err := h.subscribe(c)
	if errors.Is(err, apperrors.ErrPermissionDenied) {
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeForbidden, err.Error())))
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").WithDetails(err.Error())))
		return
	}

	tracks, err := parseTracks(c.Query("tracks"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeBadRequest, err.Error()).WithField("tracks")))
		return
	}
	sub.Tracks = tracks

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Str("userID", sub.UserID.String()).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := newClient(h.hub, conn, sub, h.logger)
	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Str("userID", sub.UserID.String()).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}

func parseTracks(raw string) ([]models.Track, error) {
	if strings.TrimSpace(raw) == "" {
		return models.Tracks, nil
	}

	var out []models.Track
	for _, part := range strings.Split(raw, ",") {
		t := models.Track(strings.TrimSpace(part))
		if !t.Valid() {
			return nil, &trackError{value: part}
		}
		out = append(out, t)
	}
	return out, nil
}

type trackError struct{ value string }

func (e *trackError) Error() string { return "unknown track " + strings.TrimSpace(e.value) }
