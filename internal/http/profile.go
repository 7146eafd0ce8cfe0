package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	profiles ProfileStore
}

func NewProfileController(profiles ProfileStore) *ProfileController {
	return &ProfileController{profiles: profiles}
}

func (controller *ProfileController) GetProfile(c *gin.Context) {
	user, err := controller.profiles.GetUserByID(GetUserID(c))
	if err != nil {
		respondNotFound(c, "profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

type profileRequest struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
}

func (controller *ProfileController) UpdateProfile(c *gin.Context) {
	userID := GetUserID(c)

	user, err := controller.profiles.GetUserByID(userID)
	if err != nil {
		respondNotFound(c, "profile")
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid profile payload: "+err.Error())
		return
	}

	// Avatar changes go through the upload endpoint
	if err := controller.profiles.UpdateProfile(userID, req.DisplayName, req.Bio, user.AvatarURL); err != nil {
		respondInternalError(c, err, "update profile")
		return
	}
	respondSuccess(c, "profile updated")
}
