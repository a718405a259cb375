package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/notify"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/service"
)

// PostNotificationFired records a confirmed delivery reported by the
// platform layer, flipping the matching history item to sent.
func PostNotificationFired(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		profileID := c.Param("profileID")
		history, err := app.Store().ListHistory(ctx, profileID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch notification history")
			return
		}
		history = notify.MarkSent(history, c.Param("handle"), app.Clock().Now())
		if err := app.Store().SaveHistory(ctx, profileID, history); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to save notification history")
			return
		}
		HandleSuccess(c, app.Logger(), history, nil)
	}
}

// DeleteNotification cancels a single scheduled reminder by history id.
// Items already sent or canceled are left as they are.
func DeleteNotification(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		profileID := c.Param("profileID")
		history, err := app.Store().ListHistory(ctx, profileID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch notification history")
			return
		}
		history = app.Planner().CancelOne(ctx, history, c.Param("id"), app.Clock().Now())
		if err := app.Store().SaveHistory(ctx, profileID, history); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to save notification history")
			return
		}
		HandleSuccess(c, app.Logger(), history, nil)
	}
}

func GetNotificationHistory(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := app.Store().ListHistory(c.Request.Context(), c.Param("profileID"))
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch notification history")
			return
		}
		HandleSuccess(c, app.Logger(), items, map[string]any{"count": len(items)})
	}
}

// PostNotificationSync regenerates the schedule and replans every reminder
// from it. The permission query parameter mirrors the OS permission state
// the caller observed; without it every block is logged as canceled.
func PostNotificationSync(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		profile, err := app.Store().GetProfile(ctx, c.Param("profileID"))
		if err != nil {
			HandleError(c, app.Logger(), err, 404, "Profile not found")
			return
		}

		plan, err := service.BuildSchedule(ctx, app.Store(), app.Store(), *profile, app.Clock(), nil)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to generate schedule")
			return
		}

		permission := c.DefaultQuery("permission", "granted") == "granted"
		blocks := append(plan.Today, plan.Tomorrow...)
		history, err := service.SyncNotifications(ctx, app.Store(), app.Planner(), profile.ID, blocks, permission, app.Clock().Now())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to sync notifications")
			return
		}
		HandleSuccess(c, app.Logger(), history, map[string]any{"count": len(history)})
	}
}
