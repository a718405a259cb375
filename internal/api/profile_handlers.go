package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/service"
)

func PostProfile(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.ProfileRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateProfileRequest(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}
		profile, err := service.CreateProfile(c.Request.Context(), app.Store(), &body, app.Clock().Now())
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Failed to create profile")
			return
		}
		HandleSuccess(c, app.Logger(), profile, nil)
	}
}

func GetProfile(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := app.Store().GetProfile(c.Request.Context(), c.Param("profileID"))
		if err != nil {
			HandleError(c, app.Logger(), err, 404, "Profile not found")
			return
		}
		HandleSuccess(c, app.Logger(), profile, nil)
	}
}

func PatchProfile(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.ProfileRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateProfileRequest(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}
		profile, err := service.EditProfile(c.Request.Context(), app.Store(), c.Param("profileID"), &body, app.Clock().Now())
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Failed to update profile")
			return
		}
		HandleSuccess(c, app.Logger(), profile, nil)
	}
}
