package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuttab/kuttab/internal/auth"
	"github.com/kuttab/kuttab/internal/config"
	"github.com/kuttab/kuttab/internal/database"
	"github.com/kuttab/kuttab/internal/database/users"
)

func newAuthRouter(db *database.Database) *gin.Engine {
	cfg := config.Auth{
		Mode:             config.AuthModeLocal,
		BcryptCost:       4,
		MaxLoginAttempts: 5,
	}
	service := auth.NewService(users.NewRepository(db.DB), cfg)
	controller := NewAuthController(service, nil)

	router := gin.New()
	router.GET("/api/auth/status", controller.Status)
	router.POST("/api/auth/setup", controller.Setup)
	router.POST("/api/auth/login", controller.Login)
	return router
}

func TestAuthController_Setup(t *testing.T) {
	t.Run("creates the first account", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		router := newAuthRouter(db)

		w := postJSON(t, router, "/api/auth/setup", gin.H{
			"username": "reader",
			"email":    "reader@example.com",
			"password": "correct-horse-battery",
		})
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NotContains(t, w.Body.String(), "password_hash")
	})

	t.Run("refuses once a user exists", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		router := newAuthRouter(db)

		w := postJSON(t, router, "/api/auth/setup", gin.H{
			"username": "reader",
			"email":    "reader@example.com",
			"password": "correct-horse-battery",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = postJSON(t, router, "/api/auth/setup", gin.H{
			"username": "intruder",
			"email":    "intruder@example.com",
			"password": "another-long-password",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("rejects a short password", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		router := newAuthRouter(db)

		w := postJSON(t, router, "/api/auth/setup", gin.H{
			"username": "reader",
			"email":    "reader@example.com",
			"password": "short",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthController_Login(t *testing.T) {
	setup := func(t *testing.T, db *database.Database) *gin.Engine {
		router := newAuthRouter(db)
		w := postJSON(t, router, "/api/auth/setup", gin.H{
			"username": "reader",
			"email":    "reader@example.com",
			"password": "correct-horse-battery",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		return router
	}

	t.Run("accepts valid credentials", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		router := setup(t, db)

		w := postJSON(t, router, "/api/auth/login", gin.H{
			"login":    "reader",
			"password": "correct-horse-battery",
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects a wrong password and an unknown user identically", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		router := setup(t, db)

		wrongPassword := postJSON(t, router, "/api/auth/login", gin.H{
			"login":    "reader",
			"password": "not-the-password-at-all",
		})
		unknownUser := postJSON(t, router, "/api/auth/login", gin.H{
			"login":    "ghost",
			"password": "not-the-password-at-all",
		})

		assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
		assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
		assert.JSONEq(t, wrongPassword.Body.String(), unknownUser.Body.String())
	})
}

func TestAuthController_Status(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	router := newAuthRouter(db)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/auth/status", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["auth_enabled"])
	assert.Equal(t, true, response["setup_required"])
}
