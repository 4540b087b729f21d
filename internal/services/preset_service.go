package services

import (
	"context"

	"civicwatch/internal/models"
	"civicwatch/internal/repository"
	"civicwatch/internal/utils"
	"civicwatch/pkg/constants"
	"civicwatch/pkg/errors"
	"civicwatch/pkg/logger"
)

// PresetService manages named filter presets and the "currently active"
// selection. It exposes to the report query surface only a resolved
// criteria triple.
type PresetService interface {
	CreatePreset(ctx context.Context, req *CreatePresetRequest) (*models.FilterPreset, error)
	GetPreset(ctx context.Context, id string) (*models.FilterPreset, error)
	ListPresets(ctx context.Context) ([]*models.FilterPreset, error)
	DeletePreset(ctx context.Context, id string) error
	SetDefaultPreset(ctx context.Context, id string) error

	// ApplyPreset and ApplyAdhocCriteria are mutually exclusive: each clears
	// the other's remembered state.
	ApplyPreset(ctx context.Context, id string) error
	ApplyAdhocCriteria(ctx context.Context, criteria *models.FilterCriteria) error

	// ClearActive forgets any remembered selection; resolution falls back
	// to the default preset.
	ClearActive(ctx context.Context) error

	// ResolveActive returns the criteria the report query should use now.
	ResolveActive(ctx context.Context) (*models.FilterCriteria, error)
}

// CreatePresetRequest carries a new preset's fields
type CreatePresetRequest struct {
	Name       string   `json:"name"`
	Districts  []string `json:"districts"`
	Categories []string `json:"categories"`
	Statuses   []string `json:"statuses"`
}

// presetService implements PresetService
type presetService struct {
	presetRepo  repository.PresetRepository
	appliedRepo repository.AppliedFilterRepository
	logger      *logger.Logger
}

// NewPresetService creates a new preset service
func NewPresetService(presetRepo repository.PresetRepository, appliedRepo repository.AppliedFilterRepository) PresetService {
	return &presetService{
		presetRepo:  presetRepo,
		appliedRepo: appliedRepo,
		logger:      logger.NewComponentLogger("PresetService"),
	}
}

// CreatePreset validates and persists a named preset
func (s *presetService) CreatePreset(ctx context.Context, req *CreatePresetRequest) (*models.FilterPreset, error) {
	if utils.IsBlank(req.Name) {
		return nil, errors.NewRequiredFieldError("name")
	}
	if len(req.Name) > constants.MaxPresetNameLength {
		return nil, errors.NewInvalidFieldError("name", "too long")
	}

	preset := &models.FilterPreset{
		Name:       req.Name,
		Districts:  orEmpty(req.Districts),
		Categories: orEmpty(req.Categories),
		Statuses:   orEmpty(req.Statuses),
	}

	if err := s.presetRepo.Create(ctx, preset); err != nil {
		return nil, err
	}

	return preset, nil
}

// GetPreset retrieves a preset by id
func (s *presetService) GetPreset(ctx context.Context, id string) (*models.FilterPreset, error) {
	return s.presetRepo.GetByID(ctx, id)
}

// ListPresets returns all presets
func (s *presetService) ListPresets(ctx context.Context) ([]*models.FilterPreset, error) {
	return s.presetRepo.List(ctx)
}

// DeletePreset removes a preset. The seeded system default is not deletable.
func (s *presetService) DeletePreset(ctx context.Context, id string) error {
	preset, err := s.presetRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if preset.IsSystemDefault {
		return errors.NewSystemPresetDeleteError()
	}

	return s.presetRepo.Delete(ctx, id)
}

// SetDefaultPreset makes the preset the single default
func (s *presetService) SetDefaultPreset(ctx context.Context, id string) error {
	return s.presetRepo.SetDefault(ctx, id)
}

// ApplyPreset remembers the preset as the active filter
func (s *presetService) ApplyPreset(ctx context.Context, id string) error {
	if _, err := s.presetRepo.GetByID(ctx, id); err != nil {
		return err
	}

	return s.appliedRepo.SetLastPreset(ctx, id)
}

// ApplyAdhocCriteria remembers manually picked criteria as the active filter
func (s *presetService) ApplyAdhocCriteria(ctx context.Context, criteria *models.FilterCriteria) error {
	if criteria == nil {
		return errors.NewRequiredFieldError("criteria")
	}

	return s.appliedRepo.SetAdhocCriteria(ctx, criteria)
}

// ClearActive drops both the remembered preset and any ad hoc criteria
func (s *presetService) ClearActive(ctx context.Context) error {
	return s.appliedRepo.Clear(ctx)
}

// ResolveActive resolves the currently active criteria: ad hoc criteria win,
// then the last applied preset, then the default preset. A remembered preset
// that has since been deleted falls through to the default; with nothing
// remembered at all the result is unrestricted.
func (s *presetService) ResolveActive(ctx context.Context) (*models.FilterCriteria, error) {
	criteria, err := s.appliedRepo.GetAdhocCriteria(ctx)
	if err != nil {
		return nil, err
	}
	if criteria != nil {
		return criteria, nil
	}

	presetID, err := s.appliedRepo.GetLastPreset(ctx)
	if err != nil {
		return nil, err
	}
	if presetID != "" {
		preset, err := s.presetRepo.GetByID(ctx, presetID)
		if err == nil {
			return preset.Criteria(), nil
		}
		if !errors.IsNotFound(err) {
			return nil, err
		}
	}

	preset, err := s.presetRepo.GetDefault(ctx)
	if err != nil {
		if errors.IsNotFound(err) {
			return &models.FilterCriteria{}, nil
		}
		return nil, err
	}

	return preset.Criteria(), nil
}

// orEmpty keeps nil criteria slices out of preset rows; the array columns
// are NOT NULL.
func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
