package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicwatch/internal/middleware"
	"civicwatch/internal/models"
	"civicwatch/internal/services"
	"civicwatch/internal/utils"
	"civicwatch/pkg/errors"
	"civicwatch/pkg/logger"
)

// ReportHandler serves the report endpoints: creation, reads with
// viewer-specific vote stamps, upvote toggling and author deletion.
type ReportHandler struct {
	reportService services.ReportService
	voteService   services.VoteService
	statusService services.StatusService
	presetService services.PresetService
}

// NewReportHandler creates a new report handler
func NewReportHandler(
	reportService services.ReportService,
	voteService services.VoteService,
	statusService services.StatusService,
	presetService services.PresetService,
) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		voteService:   voteService,
		statusService: statusService,
		presetService: presetService,
	}
}

type createReportPayload struct {
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description" binding:"required"`
	Category    string           `json:"category" binding:"required"`
	District    string           `json:"district"`
	ImageURL    string           `json:"image_url"`
	Location    *models.Location `json:"location"`
}

// CreateReport creates a new report authored by the caller
func (h *ReportHandler) CreateReport(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var payload createReportPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	report, err := h.reportService.CreateReport(c.Request.Context(), &services.CreateReportRequest{
		AuthorID:    userID,
		Title:       payload.Title,
		Description: payload.Description,
		Category:    payload.Category,
		District:    payload.District,
		ImageURL:    payload.ImageURL,
		Location:    payload.Location,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	logger.WithUserID(userID).WithField("report_id", report.ID).Info("Report created")
	utils.SuccessResponse(c, http.StatusCreated, "Report created successfully", report)
}

// GetReport returns one report with the viewer's vote stamped
func (h *ReportHandler) GetReport(c *gin.Context) {
	reportID, err := primitive.ObjectIDFromHex(c.Param("report_id"))
	if err != nil {
		utils.BadRequest(c, "Invalid report ID")
		return
	}

	report, err := h.reportService.GetReport(c.Request.Context(), reportID, viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Report retrieved successfully", report)
}

// ListReports returns reports matching the active filter. Explicit query
// criteria win over the remembered filter state.
func (h *ReportHandler) ListReports(c *gin.Context) {
	criteria, explicit := criteriaFromQuery(c)
	if !explicit {
		resolved, err := h.presetService.ResolveActive(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		criteria = resolved
	}

	params := utils.GetPaginationParams(c)

	result, err := h.reportService.ListReports(c.Request.Context(), criteria, viewerID(c), params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, http.StatusOK, "Reports retrieved successfully", result.Data, &utils.Meta{
		Pagination: result.Pagination,
		Sorting:    result.Sorting,
	})
}

// DeleteReport deletes the caller's own report
func (h *ReportHandler) DeleteReport(c *gin.Context) {
	reportID, err := primitive.ObjectIDFromHex(c.Param("report_id"))
	if err != nil {
		utils.BadRequest(c, "Invalid report ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.statusService.DeletePost(c.Request.Context(), reportID, userID); err != nil {
		respondError(c, err)
		return
	}

	logger.WithUserID(userID).WithField("report_id", reportID).Info("Report deleted")
	utils.SuccessResponse(c, http.StatusOK, "Report deleted successfully", nil)
}

// ToggleUpvote flips the caller's upvote on a report
func (h *ReportHandler) ToggleUpvote(c *gin.Context) {
	reportID, err := primitive.ObjectIDFromHex(c.Param("report_id"))
	if err != nil {
		utils.BadRequest(c, "Invalid report ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	report, err := h.voteService.ToggleUpvote(c.Request.Context(), reportID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vote updated successfully", gin.H{
		"report_id":    report.ID,
		"upvote_count": report.UpvoteCount,
		"has_upvoted":  report.HasUpvoted,
	})
}

// viewerID returns the authenticated caller's id, or nil for anonymous reads.
func viewerID(c *gin.Context) *primitive.ObjectID {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return nil
	}
	return &userID
}

// criteriaFromQuery builds criteria from repeated query values. The second
// return reports whether the caller supplied any restriction at all.
func criteriaFromQuery(c *gin.Context) (*models.FilterCriteria, bool) {
	criteria := &models.FilterCriteria{
		Districts:  c.QueryArray("district"),
		Categories: c.QueryArray("category"),
		Statuses:   c.QueryArray("status"),
	}
	return criteria, !criteria.IsEmpty()
}

// respondError maps service errors onto the response envelope.
func respondError(c *gin.Context, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		utils.ErrorResponse(c, appErr.StatusCode, appErr.Code, appErr.Message)
		return
	}
	logger.WithContext(c.Request.Context()).WithError(err).Error("Unhandled error")
	utils.InternalServerError(c, "An unexpected error occurred")
}
