package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthController_Status(t *testing.T) {
	t.Run("healthy with a live database", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		controller := NewHealthController(db, "1.2.3")

		router := gin.New()
		router.GET("/health", controller.Status)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/health", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "1.2.3", response.Version)
		assert.Equal(t, "ok", response.Checks["database"])
	})

	t.Run("unhealthy when the database is closed", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		cleanup()

		controller := NewHealthController(db, "1.2.3")

		router := gin.New()
		router.GET("/health", controller.Status)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/health", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
