package transport

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prik73/mediasoup-concept-2/internal/jwt"
	"github.com/prik73/mediasoup-concept-2/internal/log"
)

func setupHLSDir(t *testing.T, roomName string) string {
	hlsDir := t.TempDir()
	roomDir := filepath.Join(hlsDir, roomName)
	require.NoError(t, os.MkdirAll(roomDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(roomDir, "index.m3u8"), []byte("#EXTM3U\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(roomDir, "segment_000.ts"), []byte{0x47}, 0o644))
	return hlsDir
}

func setupHLSRouter(t *testing.T, hlsDir string, jwtAuth jwt.Auth) *HLSRouter {
	gin.SetMode(gin.TestMode)

	router, err := NewHLSRouter(hlsDir, jwtAuth, log.NewTest(t))
	require.NoError(t, err)
	return router
}

func TestServePlaylist(t *testing.T) {
	hlsDir := setupHLSDir(t, "my-room")
	router := setupHLSRouter(t, hlsDir, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/hls/my-room/index.m3u8", nil)
	router.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "#EXTM3U\n", w.Body.String())
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-cache")
}

func TestServeSegment(t *testing.T) {
	hlsDir := setupHLSDir(t, "my-room")
	router := setupHLSRouter(t, hlsDir, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/hls/my-room/segment_000.ts", nil)
	router.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Cache-Control"), "immutable")
}

func TestServeUnknownRoom(t *testing.T) {
	hlsDir := t.TempDir()
	router := setupHLSRouter(t, hlsDir, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/hls/no-such-room/index.m3u8", nil)
	router.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServeCachesHandler(t *testing.T) {
	hlsDir := setupHLSDir(t, "my-room")
	router := setupHLSRouter(t, hlsDir, nil)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/hls/my-room/index.m3u8", nil)
		router.Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	_, ok := router.handlerCache.Get("my-room")
	assert.True(t, ok)

	router.InvalidateRoom("my-room")
	_, ok = router.handlerCache.Get("my-room")
	assert.False(t, ok)
}

func TestServeWithAuth(t *testing.T) {
	hlsDir := setupHLSDir(t, "my-room")
	jwtAuth := jwt.NewAuth("test-secret")
	router := setupHLSRouter(t, hlsDir, jwtAuth)

	token, err := jwtAuth.Sign("user-1", "my-room")
	require.NoError(t, err)

	t.Run("ValidToken", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/hls/my-room/index.m3u8?token="+token, nil)
		router.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("BearerHeader", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/hls/my-room/index.m3u8", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("MissingToken", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/hls/my-room/index.m3u8", nil)
		router.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("WrongRoom", func(t *testing.T) {
		otherToken, err := jwtAuth.Sign("user-1", "other-room")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/hls/my-room/index.m3u8?token="+otherToken, nil)
		router.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
