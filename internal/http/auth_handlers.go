package http

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/kuttab/kuttab/internal/auth"
)

// setupMutex serializes first-run setup requests so two concurrent calls
// cannot both create the initial account.
var setupMutex sync.Mutex

// AuthController exposes login, logout, first-run setup, and password change.
type AuthController struct {
	service  *auth.Service
	sessions *auth.SessionManager
}

func NewAuthController(service *auth.Service, sessions *auth.SessionManager) *AuthController {
	return &AuthController{service: service, sessions: sessions}
}

// Status reports whether auth is enabled, whether setup has run, and who the
// caller is.
func (controller *AuthController) Status(c *gin.Context) {
	hasUsers, err := controller.service.HasUsers()
	if err != nil {
		respondInternalError(c, err, "auth status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"auth_enabled":   controller.service.IsAuthEnabled(),
		"setup_required": controller.service.IsAuthEnabled() && !hasUsers,
		"authenticated":  GetUserID(c) != 0 || auth.GetAuthType(c) == auth.AuthTypeNone,
		"username":       auth.GetUsername(c),
	})
}

type setupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Setup creates the first account. It only works while no users exist.
func (controller *AuthController) Setup(c *gin.Context) {
	setupMutex.Lock()
	defer setupMutex.Unlock()

	hasUsers, err := controller.service.HasUsers()
	if err != nil {
		respondInternalError(c, err, "auth setup")
		return
	}
	if hasUsers {
		respondError(c, http.StatusForbidden, "setup has already run")
		return
	}

	var req setupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid setup payload: "+err.Error())
		return
	}

	user, err := controller.service.CreateUser(req.Username, req.Email, req.Password)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if controller.sessions != nil {
		if err := controller.sessions.CreateSession(c.Request, user); err != nil {
			respondInternalError(c, err, "create session")
			return
		}
	}
	respondCreated(c, user)
}

type loginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (controller *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid login payload: "+err.Error())
		return
	}

	user, err := controller.service.Authenticate(req.Login, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAccountLocked) {
			respondError(c, http.StatusForbidden, err.Error())
			return
		}
		// Identical response for unknown user and wrong password
		respondError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if controller.sessions != nil {
		if err := controller.sessions.CreateSession(c.Request, user); err != nil {
			respondInternalError(c, err, "create session")
			return
		}
	}
	c.JSON(http.StatusOK, user)
}

func (controller *AuthController) Logout(c *gin.Context) {
	if controller.sessions != nil {
		if err := controller.sessions.DestroySession(c.Request); err != nil {
			respondInternalError(c, err, "destroy session")
			return
		}
	}
	respondSuccess(c, "logged out")
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func (controller *AuthController) ChangePassword(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid payload: "+err.Error())
		return
	}

	if err := controller.service.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			respondError(c, http.StatusUnauthorized, "old password is incorrect")
			return
		}
		respondBadRequest(c, err.Error())
		return
	}
	respondSuccess(c, "password changed")
}
