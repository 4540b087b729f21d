package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicwatch/internal/models"
	"civicwatch/internal/repository"
	"civicwatch/internal/utils"
	"civicwatch/pkg/errors"
	"civicwatch/pkg/logger"
)

// ReportService is the report query and creation surface.
type ReportService interface {
	CreateReport(ctx context.Context, req *CreateReportRequest) (*models.Report, error)
	GetReport(ctx context.Context, reportID primitive.ObjectID, currentUserID *primitive.ObjectID) (*models.Report, error)
	ListReports(ctx context.Context, criteria *models.FilterCriteria, currentUserID *primitive.ObjectID, params *utils.PaginationParams) (*utils.PaginationResult, error)
}

// CreateReportRequest carries a new report's fields. ImageURL must already be
// a stable URL: the photo upload resolves before the document referencing it
// is created, so the core never observes partial uploads.
type CreateReportRequest struct {
	AuthorID    primitive.ObjectID `json:"author_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Category    string             `json:"category"`
	District    string             `json:"district"`
	ImageURL    string             `json:"image_url"`
	Location    *models.Location   `json:"location,omitempty"`
}

// reportService implements ReportService
type reportService struct {
	reportRepo repository.ReportRepository
	logger     *logger.Logger
}

// NewReportService creates a new report service
func NewReportService(reportRepo repository.ReportRepository) ReportService {
	return &reportService{
		reportRepo: reportRepo,
		logger:     logger.NewComponentLogger("ReportService"),
	}
}

// CreateReport validates and persists a new report in the initial status
// with an empty upvote set.
func (s *reportService) CreateReport(ctx context.Context, req *CreateReportRequest) (*models.Report, error) {
	if utils.IsBlank(req.Title) {
		return nil, errors.NewRequiredFieldError("title")
	}
	if utils.IsBlank(req.Description) {
		return nil, errors.NewRequiredFieldError("description")
	}
	if utils.IsBlank(req.Category) {
		return nil, errors.NewRequiredFieldError("category")
	}

	report := &models.Report{
		AuthorID:    req.AuthorID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		District:    req.District,
		ImageURL:    req.ImageURL,
		Location:    req.Location,
	}

	if err := utils.ValidateStruct(report); err != nil {
		return nil, errors.NewValidationError("Report validation failed", toDetails(utils.GetValidationErrors(err)))
	}

	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}

	return report, nil
}

// GetReport retrieves one report and stamps HasUpvoted for the viewer.
func (s *reportService) GetReport(ctx context.Context, reportID primitive.ObjectID, currentUserID *primitive.ObjectID) (*models.Report, error) {
	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	if currentUserID != nil {
		report.HasUpvoted = report.HasUpvoteFrom(*currentUserID)
	}

	return report, nil
}

// ListReports returns reports matching the resolved filter criteria, newest
// first, with HasUpvoted stamped for the viewer.
func (s *reportService) ListReports(ctx context.Context, criteria *models.FilterCriteria, currentUserID *primitive.ObjectID, params *utils.PaginationParams) (*utils.PaginationResult, error) {
	if params == nil {
		params = utils.DefaultPaginationParams()
	}

	result, err := s.reportRepo.List(ctx, criteria, params)
	if err != nil {
		return nil, err
	}

	if currentUserID != nil {
		if reports, ok := result.Data.([]*models.Report); ok {
			for _, report := range reports {
				report.HasUpvoted = report.HasUpvoteFrom(*currentUserID)
			}
		}
	}

	return result, nil
}

func toDetails(fields map[string]string) map[string]interface{} {
	details := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		details[k] = v
	}
	return details
}
