package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/lannapoly/pathfinder-go/internal/infrastructure/messaging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
)

// OpsHandlers serves the live ops console: the session map over WebSocket and
// the log stream over SSE.
type OpsHandlers struct {
	broadcaster *messaging.OpsBroadcaster
	logger      *logging.ChanneledLogger
}

// NewOpsHandlers creates ops handlers with injected dependencies
func NewOpsHandlers(broadcaster *messaging.OpsBroadcaster, logger *logging.ChanneledLogger) *OpsHandlers {
	return &OpsHandlers{
		broadcaster: broadcaster,
		logger:      logger,
	}
}

var opsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Admin auth already ran in the route chain; the ops console may be
	// served from a different origin than the API.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	opsWriteWait = 10 * time.Second
	opsPongWait  = 60 * time.Second
)

// StreamOps handles GET /api/v1/admin/ops/stream - upgrades to WebSocket and
// pushes session-map ticks until the client disconnects.
func (h *OpsHandlers) StreamOps(c *gin.Context) {
	conn, err := opsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.System().Error("Ops WebSocket upgrade failed", "error", err.Error())
		return
	}

	client := &messaging.OpsClient{
		Conn: conn,
		Send: make(chan []byte, 16),
	}
	h.broadcaster.Register(client)

	go h.writePump(client)
	h.readPump(client)
}

// writePump forwards broadcast ticks to one client connection.
func (h *OpsHandlers) writePump(client *messaging.OpsClient) {
	defer client.Conn.Close()
	for message := range client.Send {
		client.Conn.SetWriteDeadline(time.Now().Add(opsWriteWait))
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump drains the connection; the console sends nothing but pongs, so the
// first read error means the client is gone.
func (h *OpsHandlers) readPump(client *messaging.OpsClient) {
	defer h.broadcaster.Unregister(client)
	client.Conn.SetReadLimit(512)
	client.Conn.SetReadDeadline(time.Now().Add(opsPongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(opsPongWait))
		return nil
	})
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

// StreamLogs handles GET /api/v1/admin/logs/stream - SSE connection for live
// log streaming into the ops console.
func (h *OpsHandlers) StreamLogs(c *gin.Context) {
	broadcaster := logging.GetBroadcaster()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")

	channelFilter := c.DefaultQuery("channel", "all")
	levelFilter := c.DefaultQuery("level", "INFO")
	var logLevel slog.Level
	switch levelFilter {
	case "DEBUG":
		logLevel = slog.LevelDebug
	case "INFO":
		logLevel = slog.LevelInfo
	case "WARN":
		logLevel = slog.LevelWarn
	case "ERROR":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	filters := logging.AppliedFilters{
		Channel: logging.Channel(channelFilter),
		Level:   logLevel,
	}

	client := broadcaster.NewClient(filters)
	broadcaster.RegisterClient(client)
	defer broadcaster.UnregisterClient(client)

	fmt.Fprintf(c.Writer, ": connection established\n\n")
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case message, ok := <-client.Channel:
			if !ok {
				return false
			}
			fmt.Fprintf(w, "data: %s\n\n", message)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// GetLogLevels handles GET /api/v1/admin/logs/levels
func (h *OpsHandlers) GetLogLevels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"levels": h.logger.GetChannelLevels()})
}

// LogLevelRequest is the body for POST /admin/logs/levels
type LogLevelRequest struct {
	Channel string `json:"channel" binding:"required"`
	Level   string `json:"level" binding:"required"`
}

// SetLogLevel handles POST /api/v1/admin/logs/levels
func (h *OpsHandlers) SetLogLevel(c *gin.Context) {
	var req LogLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	var level slog.Level
	switch req.Level {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown level"})
		return
	}

	if err := h.logger.SetChannelLevel(logging.Channel(req.Channel), level); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"channel": req.Channel, "level": req.Level})
}
