package api

import (
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/service"
)

func PostSession(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.SessionRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateSessionRequest(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}
		session, err := service.CreateSession(c.Request.Context(), app.Store(), c.Param("profileID"), &body)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to save session")
			return
		}
		HandleSuccess(c, app.Logger(), session, nil)
	}
}

func GetSessions(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions, err := service.ListActiveSessions(c.Request.Context(), app.Store(), c.Param("profileID"))
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch sessions")
			return
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].StartTime.After(sessions[j].StartTime)
		})
		HandleSuccess(c, app.Logger(), sessions, nil)
	}
}

func PatchSession(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.SessionRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateSessionRequest(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}
		session, err := service.EditSession(c.Request.Context(), app.Store(), c.Param("sessionID"), &body)
		if err != nil {
			HandleError(c, app.Logger(), err, 404, "Failed to update session")
			return
		}
		HandleSuccess(c, app.Logger(), session, nil)
	}
}

func DeleteSession(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := service.DeleteSession(c.Request.Context(), app.Store(), c.Param("sessionID"))
		if err != nil {
			HandleError(c, app.Logger(), err, 404, "Failed to delete session")
			return
		}
		HandleSuccess(c, app.Logger(), session, nil)
	}
}
