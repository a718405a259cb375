package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/coach"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/service"
)

// GetSchedule returns the today/tomorrow plan. An optional what_if_min query
// parameter previews the schedule under an adjusted wake window.
func GetSchedule(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		profile, err := app.Store().GetProfile(ctx, c.Param("profileID"))
		if err != nil {
			HandleError(c, app.Logger(), err, 404, "Profile not found")
			return
		}

		var adjustment *float64
		if raw := c.Query("what_if_min"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				HandleError(c, app.Logger(), err, 400, "Invalid what_if_min")
				return
			}
			adjustment = &v
		}

		plan, err := service.BuildSchedule(ctx, app.Store(), app.Store(), *profile, app.Clock(), adjustment)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to generate schedule")
			return
		}
		HandleSuccess(c, app.Logger(), plan, nil)
	}
}

func GetCoachTips(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		profile, err := app.Store().GetProfile(ctx, c.Param("profileID"))
		if err != nil {
			HandleError(c, app.Logger(), err, 404, "Profile not found")
			return
		}
		sessions, err := app.Store().ListSessions(ctx, profile.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch sessions")
			return
		}
		state, err := app.Store().GetLearnerState(ctx, profile.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch learner state")
			return
		}
		tips, err := coach.GenerateTips(sessions, state, *profile, app.Clock().Now(), app.Clock().Location())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to generate tips")
			return
		}
		HandleSuccess(c, app.Logger(), tips, map[string]any{"count": len(tips)})
	}
}

func GetLearnerState(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := app.Store().GetLearnerState(c.Request.Context(), c.Param("profileID"))
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch learner state")
			return
		}
		HandleSuccess(c, app.Logger(), state, nil)
	}
}

// PostLearnerRefresh reruns the learner over the stored session log.
func PostLearnerRefresh(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		profile, err := app.Store().GetProfile(ctx, c.Param("profileID"))
		if err != nil {
			HandleError(c, app.Logger(), err, 404, "Profile not found")
			return
		}
		state, err := service.RefreshLearnerState(ctx, app.Store(), app.Store(), *profile, app.Clock())
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Failed to refresh learner state")
			return
		}
		HandleSuccess(c, app.Logger(), state, nil)
	}
}
