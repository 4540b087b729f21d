package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"civicwatch/internal/models"
	"civicwatch/pkg/constants"
	"civicwatch/pkg/errors"
	"civicwatch/pkg/logger"
)

// PresetRepository defines the relational preset table operations
type PresetRepository interface {
	EnsureSystemDefault(ctx context.Context) error
	Create(ctx context.Context, preset *models.FilterPreset) error
	GetByID(ctx context.Context, id string) (*models.FilterPreset, error)
	List(ctx context.Context) ([]*models.FilterPreset, error)
	Delete(ctx context.Context, id string) error

	// SetDefault makes the preset the single default, clearing any previous
	// default in the same transaction.
	SetDefault(ctx context.Context, id string) error
	GetDefault(ctx context.Context) (*models.FilterPreset, error)
}

// presetRepository implements PresetRepository
type presetRepository struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewPresetRepository creates a new preset repository
func NewPresetRepository(db *sqlx.DB) PresetRepository {
	return &presetRepository{
		db:     db,
		logger: logger.NewComponentLogger("PresetRepository"),
	}
}

const presetColumns = `id, name, districts, categories, statuses, is_system_default, is_default, created_at, updated_at`

// EnsureSystemDefault seeds the non-deletable system preset exactly once.
// Re-running is a no-op thanks to the unique name.
func (r *presetRepository) EnsureSystemDefault(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO filter_presets (id, name, districts, categories, statuses, is_system_default, is_default, created_at, updated_at)
		VALUES ($1, $2, '{}', '{}', '{}', TRUE, FALSE, NOW(), NOW())
		ON CONFLICT (name) DO NOTHING
	`, uuid.NewString(), constants.SystemDefaultPresetName)
	if err != nil {
		r.logger.WithError(err).Error("Failed to seed system default preset")
		return errors.NewDatabaseQueryError(err)
	}
	return nil
}

// Create persists a new preset
func (r *presetRepository) Create(ctx context.Context, preset *models.FilterPreset) error {
	if preset.ID == "" {
		preset.ID = uuid.NewString()
	}
	now := time.Now()
	preset.CreatedAt = now
	preset.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO filter_presets (id, name, districts, categories, statuses, is_system_default, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, preset.ID, preset.Name, preset.Districts, preset.Categories, preset.Statuses,
		preset.IsSystemDefault, preset.IsDefault, preset.CreatedAt, preset.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return errors.NewPresetNameTakenError()
		}
		r.logger.WithError(err).Error("Failed to create preset")
		return errors.NewDatabaseQueryError(err)
	}

	r.logger.WithField("preset_id", preset.ID).Info("Preset created")
	return nil
}

// GetByID retrieves a preset by ID
func (r *presetRepository) GetByID(ctx context.Context, id string) (*models.FilterPreset, error) {
	var preset models.FilterPreset
	err := r.db.GetContext(ctx, &preset, `
		SELECT `+presetColumns+` FROM filter_presets WHERE id = $1
	`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewPresetNotFoundError()
		}
		r.logger.WithError(err).WithField("preset_id", id).Error("Failed to get preset")
		return nil, errors.NewDatabaseQueryError(err)
	}
	return &preset, nil
}

// List returns all presets, system default first, then by name
func (r *presetRepository) List(ctx context.Context) ([]*models.FilterPreset, error) {
	presets := make([]*models.FilterPreset, 0)
	err := r.db.SelectContext(ctx, &presets, `
		SELECT `+presetColumns+` FROM filter_presets ORDER BY is_system_default DESC, name
	`)
	if err != nil {
		r.logger.WithError(err).Error("Failed to list presets")
		return nil, errors.NewDatabaseQueryError(err)
	}
	return presets, nil
}

// Delete removes a preset row
func (r *presetRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM filter_presets WHERE id = $1`, id)
	if err != nil {
		r.logger.WithError(err).WithField("preset_id", id).Error("Failed to delete preset")
		return errors.NewDatabaseQueryError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseQueryError(err)
	}
	if affected == 0 {
		return errors.NewPresetNotFoundError()
	}

	r.logger.WithField("preset_id", id).Info("Preset deleted")
	return nil
}

// SetDefault clears the previous default and marks the new one atomically,
// so at most one preset is ever the default.
func (r *presetRepository) SetDefault(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.NewDatabaseError("Failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE filter_presets SET is_default = FALSE, updated_at = NOW() WHERE is_default = TRUE
	`); err != nil {
		return errors.NewDatabaseQueryError(err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE filter_presets SET is_default = TRUE, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return errors.NewDatabaseQueryError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseQueryError(err)
	}
	if affected == 0 {
		return errors.NewPresetNotFoundError()
	}

	if err := tx.Commit(); err != nil {
		return errors.NewDatabaseError("Failed to commit transaction", err)
	}

	r.logger.WithField("preset_id", id).Info("Default preset set")
	return nil
}

// GetDefault returns the current default preset, or NotFound if none is set
func (r *presetRepository) GetDefault(ctx context.Context) (*models.FilterPreset, error) {
	var preset models.FilterPreset
	err := r.db.GetContext(ctx, &preset, `
		SELECT `+presetColumns+` FROM filter_presets WHERE is_default = TRUE
	`)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewPresetNotFoundError()
		}
		r.logger.WithError(err).Error("Failed to get default preset")
		return nil, errors.NewDatabaseQueryError(err)
	}
	return &preset, nil
}
