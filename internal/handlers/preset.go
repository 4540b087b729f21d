package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civicwatch/internal/models"
	"civicwatch/internal/services"
	"civicwatch/internal/utils"
)

// PresetHandler serves the filter preset endpoints
type PresetHandler struct {
	presetService services.PresetService
}

// NewPresetHandler creates a new preset handler
func NewPresetHandler(presetService services.PresetService) *PresetHandler {
	return &PresetHandler{presetService: presetService}
}

type createPresetPayload struct {
	Name       string   `json:"name" binding:"required"`
	Districts  []string `json:"districts"`
	Categories []string `json:"categories"`
	Statuses   []string `json:"statuses"`
}

type applyCriteriaPayload struct {
	Districts  []string `json:"districts"`
	Categories []string `json:"categories"`
	Statuses   []string `json:"statuses"`
}

// CreatePreset creates a named filter preset
func (h *PresetHandler) CreatePreset(c *gin.Context) {
	var payload createPresetPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	preset, err := h.presetService.CreatePreset(c.Request.Context(), &services.CreatePresetRequest{
		Name:       payload.Name,
		Districts:  payload.Districts,
		Categories: payload.Categories,
		Statuses:   payload.Statuses,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Preset created successfully", preset)
}

// GetPreset returns a single preset by id
func (h *PresetHandler) GetPreset(c *gin.Context) {
	preset, err := h.presetService.GetPreset(c.Request.Context(), c.Param("preset_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Preset retrieved successfully", preset)
}

// ListPresets returns all presets
func (h *PresetHandler) ListPresets(c *gin.Context) {
	presets, err := h.presetService.ListPresets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Presets retrieved successfully", presets)
}

// DeletePreset removes a preset
func (h *PresetHandler) DeletePreset(c *gin.Context) {
	if err := h.presetService.DeletePreset(c.Request.Context(), c.Param("preset_id")); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Preset deleted successfully", nil)
}

// SetDefaultPreset marks a preset as the single default
func (h *PresetHandler) SetDefaultPreset(c *gin.Context) {
	if err := h.presetService.SetDefaultPreset(c.Request.Context(), c.Param("preset_id")); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Default preset updated successfully", nil)
}

// ApplyPreset remembers the preset as the active filter
func (h *PresetHandler) ApplyPreset(c *gin.Context) {
	if err := h.presetService.ApplyPreset(c.Request.Context(), c.Param("preset_id")); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Preset applied successfully", nil)
}

// ApplyCriteria remembers ad hoc criteria as the active filter
func (h *PresetHandler) ApplyCriteria(c *gin.Context) {
	var payload applyCriteriaPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	err := h.presetService.ApplyAdhocCriteria(c.Request.Context(), &models.FilterCriteria{
		Districts:  payload.Districts,
		Categories: payload.Categories,
		Statuses:   payload.Statuses,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Filter applied successfully", nil)
}

// GetActiveFilter returns the criteria currently in effect
func (h *PresetHandler) GetActiveFilter(c *gin.Context) {
	criteria, err := h.presetService.ResolveActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Active filter retrieved successfully", criteria)
}

// ClearActiveFilter forgets the remembered selection
func (h *PresetHandler) ClearActiveFilter(c *gin.Context) {
	if err := h.presetService.ClearActive(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Active filter cleared successfully", nil)
}
