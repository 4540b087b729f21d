package repository

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"civicwatch/internal/models"
	"civicwatch/pkg/constants"
	"civicwatch/pkg/errors"
	"civicwatch/pkg/logger"
)

// AppliedFilterRepository remembers which filter is currently active: either
// the last applied preset id or the last ad hoc criteria, never both.
type AppliedFilterRepository interface {
	SetLastPreset(ctx context.Context, presetID string) error
	SetAdhocCriteria(ctx context.Context, criteria *models.FilterCriteria) error
	GetLastPreset(ctx context.Context) (string, error)
	GetAdhocCriteria(ctx context.Context) (*models.FilterCriteria, error)
	Clear(ctx context.Context) error
}

// appliedFilterRepository implements AppliedFilterRepository on Redis
type appliedFilterRepository struct {
	redis  *redis.Client
	logger *logger.Logger
}

// NewAppliedFilterRepository creates a new applied-filter repository
func NewAppliedFilterRepository(redisClient *redis.Client) AppliedFilterRepository {
	return &appliedFilterRepository{
		redis:  redisClient,
		logger: logger.NewComponentLogger("AppliedFilterRepository"),
	}
}

// SetLastPreset records the applied preset and clears any ad hoc criteria in
// the same pipeline, keeping the two mutually exclusive.
func (r *appliedFilterRepository) SetLastPreset(ctx context.Context, presetID string) error {
	pipe := r.redis.TxPipeline()
	pipe.Set(ctx, constants.LastPresetKey, presetID, 0)
	pipe.Del(ctx, constants.AdhocCriteriaKey)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.WithError(err).Error("Failed to record applied preset")
		return errors.NewDatabaseError("Failed to record applied preset", err)
	}
	return nil
}

// SetAdhocCriteria records manually applied criteria and clears the preset id.
func (r *appliedFilterRepository) SetAdhocCriteria(ctx context.Context, criteria *models.FilterCriteria) error {
	payload, err := json.Marshal(criteria)
	if err != nil {
		return errors.NewInternalError("Failed to encode criteria", err)
	}

	pipe := r.redis.TxPipeline()
	pipe.Set(ctx, constants.AdhocCriteriaKey, payload, 0)
	pipe.Del(ctx, constants.LastPresetKey)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.WithError(err).Error("Failed to record ad hoc criteria")
		return errors.NewDatabaseError("Failed to record ad hoc criteria", err)
	}
	return nil
}

// GetLastPreset returns the last applied preset id, or "" if none
func (r *appliedFilterRepository) GetLastPreset(ctx context.Context) (string, error) {
	presetID, err := r.redis.Get(ctx, constants.LastPresetKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.NewDatabaseError("Failed to read applied preset", err)
	}
	return presetID, nil
}

// GetAdhocCriteria returns the last manually applied criteria, or nil if none
func (r *appliedFilterRepository) GetAdhocCriteria(ctx context.Context) (*models.FilterCriteria, error) {
	payload, err := r.redis.Get(ctx, constants.AdhocCriteriaKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewDatabaseError("Failed to read ad hoc criteria", err)
	}

	var criteria models.FilterCriteria
	if err := json.Unmarshal(payload, &criteria); err != nil {
		return nil, errors.NewInternalError("Failed to decode criteria", err)
	}
	return &criteria, nil
}

// Clear drops both keys
func (r *appliedFilterRepository) Clear(ctx context.Context) error {
	if err := r.redis.Del(ctx, constants.LastPresetKey, constants.AdhocCriteriaKey).Err(); err != nil {
		return errors.NewDatabaseError("Failed to clear applied filter", err)
	}
	return nil
}
