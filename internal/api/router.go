package api

import "github.com/gin-gonic/gin"

// Register mounts every route on the engine.
func Register(r *gin.Engine, app App) {
	r.Use(RequestIDMiddleware())

	r.POST("/profiles", PostProfile(app))
	p := r.Group("/profiles/:profileID")
	p.GET("", GetProfile(app))
	p.PATCH("", PatchProfile(app))

	p.POST("/sessions", PostSession(app))
	p.GET("/sessions", GetSessions(app))

	p.GET("/schedule", GetSchedule(app))
	p.GET("/coach/tips", GetCoachTips(app))
	p.GET("/learner", GetLearnerState(app))
	p.POST("/learner/refresh", PostLearnerRefresh(app))

	p.GET("/notifications", GetNotificationHistory(app))
	p.POST("/notifications/sync", PostNotificationSync(app))
	p.POST("/notifications/:handle/fired", PostNotificationFired(app))
	p.DELETE("/notifications/:id", DeleteNotification(app))

	r.PATCH("/sessions/:sessionID", PatchSession(app))
	r.DELETE("/sessions/:sessionID", DeleteSession(app))
}
