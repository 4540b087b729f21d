package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicwatch/internal/middleware"
	"civicwatch/internal/services"
	"civicwatch/internal/utils"
	"civicwatch/pkg/logger"
)

// StatusHandler serves the status lifecycle endpoints
type StatusHandler struct {
	statusService services.StatusService
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(statusService services.StatusService) *StatusHandler {
	return &StatusHandler{statusService: statusService}
}

type updateStatusPayload struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note" binding:"required"`
}

// UpdateStatus transitions a report and records the audit entry.
// Restricted to officials and admins by route middleware.
func (h *StatusHandler) UpdateStatus(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("report_id"))
	if err != nil {
		utils.BadRequest(c, "Invalid report ID")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var payload updateStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	update, err := h.statusService.UpdateStatus(c.Request.Context(), postID, payload.Status, payload.Note, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.WithUserID(actor.ID).
		WithField("report_id", postID).
		WithField("status", payload.Status).
		Info("Report status updated")
	utils.SuccessResponse(c, http.StatusOK, "Status updated successfully", update)
}

// GetStatusUpdates returns the report's audit trail, oldest first
func (h *StatusHandler) GetStatusUpdates(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("report_id"))
	if err != nil {
		utils.BadRequest(c, "Invalid report ID")
		return
	}

	updates, err := h.statusService.GetStatusUpdates(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Status updates retrieved successfully", updates)
}
