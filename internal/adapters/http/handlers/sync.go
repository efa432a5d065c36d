package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-generator/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-generator/internal/adapters/notify"
	"github.com/jsamuelsen/quote-generator/internal/app"
)

// Syncer runs and reports reconciliation cycles. *app.Reconciler implements it.
type Syncer interface {
	SyncNow(ctx context.Context) (app.Outcome, error)
	Status() app.SyncStatus
}

// Banner exposes the live notification. *notify.Banner implements it.
type Banner interface {
	Current() (notify.View, bool)
}

// SyncHandler handles sync and notification endpoints.
type SyncHandler struct {
	syncer Syncer
	banner Banner
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(syncer Syncer, banner Banner) *SyncHandler {
	return &SyncHandler{syncer: syncer, banner: banner}
}

// SyncNow handles POST /api/v1/sync
// Runs one cycle and returns its outcome; a failed cycle is still a 200.
//
// @Summary Run a sync cycle now
// @Tags sync
// @Produce json
// @Success 200 {object} app.Outcome
// @Failure 409 {object} dto.ErrorResponse "sync in progress"
// @Router /api/v1/sync [post]
func (h *SyncHandler) SyncNow(c *gin.Context) {
	outcome, err := h.syncer.SyncNow(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// Status handles GET /api/v1/sync/status
//
// @Summary Reconciler status
// @Tags sync
// @Produce json
// @Success 200 {object} app.SyncStatus
// @Router /api/v1/sync/status [get]
func (h *SyncHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.syncer.Status())
}

// Notification handles GET /api/v1/notifications
// Returns 204 once the banner has been dismissed.
//
// @Summary Current notification banner
// @Tags sync
// @Produce json
// @Success 200 {object} dto.NotificationResponse
// @Success 204
// @Router /api/v1/notifications [get]
func (h *SyncHandler) Notification(c *gin.Context) {
	view, ok := h.banner.Current()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, dto.NotificationResponse{
		Message:   view.Message,
		Level:     string(view.Level),
		ExpiresAt: view.ExpiresAt,
	})
}

// RegisterSyncRoutes registers sync and notification routes on the given router group.
func (h *SyncHandler) RegisterSyncRoutes(rg *gin.RouterGroup) {
	rg.POST("/sync", h.SyncNow)
	rg.GET("/sync/status", h.Status)
	rg.GET("/notifications", h.Notification)
}
