package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/prik73/mediasoup-concept-2/internal/log"
	"github.com/prik73/mediasoup-concept-2/internal/validation"
	"github.com/prik73/mediasoup-concept-2/wsgateway"
)

// Router exposes the composition control surface: per-room stream
// status, start/stop, and service health.
type Router struct {
	composer wsgateway.Composer
	engine   *gin.Engine
	logger   *log.Logger
}

func NewRouter(composer wsgateway.Composer, logger *log.Logger) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(otelgin.Middleware("sfu-signal"))

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	r := &Router{
		composer: composer,
		engine:   engine,
		logger:   logger,
	}

	// Request logging middleware
	r.engine.Use(func(c *gin.Context) {
		r.logger.Info("Incoming request",
			log.String("method", c.Request.Method),
			log.String("url", c.Request.URL.String()))
		c.Next()
	})

	r.setupRoutes()
	return r
}

func (r *Router) Handler() http.Handler {
	return r.engine
}

func (r *Router) setupRoutes() {
	r.engine.GET("/api/streams/:roomName/status", r.streamStatus)
	r.engine.POST("/api/streams/:roomName/start", r.startStream)
	r.engine.POST("/api/streams/:roomName/stop", r.stopStream)

	r.engine.GET("/health", r.healthCheck)
}

func (r *Router) streamStatus(c *gin.Context) {
	var req StreamURI
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"streaming": r.composer.StreamStatus(req.RoomName),
	})
}

func (r *Router) startStream(c *gin.Context) {
	var req StreamURI
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	ctx := c.Request.Context()
	if err := r.composer.StartStream(ctx, req.RoomName); err != nil {
		streamStartsFailed.Add(context.Background(), 1)
		r.logger.Error("Failed to start stream",
			log.String("room", req.RoomName),
			log.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to start stream",
		})
		return
	}

	streamStarts.Add(context.Background(), 1)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

func (r *Router) stopStream(c *gin.Context) {
	var req StreamURI
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	ctx := c.Request.Context()
	if err := r.composer.StopStream(ctx, req.RoomName); err != nil {
		// stop is best-effort: the stream may already be gone
		r.logger.Warn("Stop stream reported error",
			log.String("room", req.RoomName),
			log.Error(err))
	}

	streamStops.Add(context.Background(), 1)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

func (r *Router) healthCheck(c *gin.Context) {
	active := r.composer.ActiveStreams()
	if active == nil {
		active = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"timestamp":     time.Now().Unix(),
		"activeStreams": active,
	})
}
