package transport

import (
	"crypto/subtle"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/prik73/mediasoup-concept-2/internal/jwt"
	"github.com/prik73/mediasoup-concept-2/internal/log"
	"github.com/prik73/mediasoup-concept-2/internal/validation"
)

const handlerCacheSize = 100

// HLSRouter serves composed playlists and segments from the per-room
// output directories. File handlers are built per room on first touch
// and cached.
type HLSRouter struct {
	hlsDir       string
	jwtAuth      jwt.Auth
	engine       *gin.Engine
	handlerCache *lru.Cache[string, http.Handler]
	sfHandler    singleflight.Group
	logger       *log.Logger
}

// NewHLSRouter creates the file-serving router. jwtAuth may be nil, in
// which case playback is unauthenticated.
func NewHLSRouter(hlsDir string, jwtAuth jwt.Auth, logger *log.Logger) (*HLSRouter, error) {
	cache, err := lru.New[string, http.Handler](handlerCacheSize)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	r := &HLSRouter{
		hlsDir:       hlsDir,
		jwtAuth:      jwtAuth,
		engine:       engine,
		handlerCache: cache,
		logger:       logger,
	}

	r.setupRoutes()
	return r, nil
}

func (r *HLSRouter) Handler() http.Handler {
	return r.engine
}

func (r *HLSRouter) setupRoutes() {
	r.engine.GET("/hls/:roomName/:file", r.serveFile)
	r.engine.GET("/health", r.healthCheck)
}

func (r *HLSRouter) serveFile(c *gin.Context) {
	var req HLSFileURI
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	if !r.authorize(c, req.RoomName) {
		return
	}

	handler, ok := r.handlerCache.Get(req.RoomName)
	if ok {
		hlsCacheHits.Add(c.Request.Context(), 1)
	} else {
		hlsCacheMisses.Add(c.Request.Context(), 1)
		v, err, _ := r.sfHandler.Do(req.RoomName, func() (interface{}, error) {
			return r.buildHandler(req.RoomName)
		})
		if err != nil {
			r.logger.Warn("Room output not found",
				log.String("room", req.RoomName),
				log.Error(err))
			c.String(http.StatusNotFound, "not found")
			return
		}
		handler = v.(http.Handler)
		r.handlerCache.Add(req.RoomName, handler)
	}

	// playlists change every segment, segments are immutable
	if strings.HasSuffix(req.File, ".m3u8") {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	} else {
		c.Header("Cache-Control", "public, max-age=31536000, immutable")
	}

	hlsFilesServed.Add(c.Request.Context(), 1)
	handler.ServeHTTP(c.Writer, c.Request)
}

// buildHandler makes a file server rooted at the room's output
// directory. The gin route constrains :file to a single path element so
// traversal cannot escape it.
func (r *HLSRouter) buildHandler(roomName string) (http.Handler, error) {
	dir := filepath.Join(r.hlsDir, roomName)
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}

	prefix := "/hls/" + roomName + "/"
	return http.StripPrefix(prefix, http.FileServer(http.Dir(dir))), nil
}

func (r *HLSRouter) authorize(c *gin.Context, roomName string) bool {
	if r.jwtAuth == nil {
		return true
	}

	token := c.Query("token")
	if token == "" {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = authHeader[7:]
		}
	}
	if token == "" {
		hlsAuthFailures.Add(c.Request.Context(), 1)
		c.String(http.StatusUnauthorized, "token required")
		return false
	}

	payload, err := r.jwtAuth.Verify(token)
	if err != nil {
		hlsAuthFailures.Add(c.Request.Context(), 1)
		r.logger.Warn("Invalid playback token",
			log.String("room", roomName),
			log.Error(err))
		c.String(http.StatusForbidden, "access denied")
		return false
	}

	if subtle.ConstantTimeCompare([]byte(roomName), []byte(payload.RoomID)) != 1 {
		hlsAuthFailures.Add(c.Request.Context(), 1)
		r.logger.Warn("Room mismatch in playback token",
			log.String("room", roomName),
			log.String("tokenRoom", payload.RoomID))
		c.String(http.StatusForbidden, "access denied")
		return false
	}

	return true
}

// InvalidateRoom drops the cached handler after a room's output
// directory is deleted on teardown.
func (r *HLSRouter) InvalidateRoom(roomName string) {
	r.handlerCache.Remove(roomName)
}

func (r *HLSRouter) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
