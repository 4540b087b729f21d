package models

import (
	"time"

	"github.com/lib/pq"
)

// FilterPreset is a named, reusable filter criteria set stored in the
// relational preset table. At most one preset has IsDefault set across the
// whole table.
type FilterPreset struct {
	ID              string         `db:"id" json:"id"`
	Name            string         `db:"name" json:"name" validate:"required,max=60"`
	Districts       pq.StringArray `db:"districts" json:"districts"`
	Categories      pq.StringArray `db:"categories" json:"categories"`
	Statuses        pq.StringArray `db:"statuses" json:"statuses"`
	IsSystemDefault bool           `db:"is_system_default" json:"is_system_default"`
	IsDefault       bool           `db:"is_default" json:"is_default"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// Criteria returns the preset's criteria as the core's filter triple.
func (p *FilterPreset) Criteria() *FilterCriteria {
	return &FilterCriteria{
		Districts:  append([]string(nil), p.Districts...),
		Categories: append([]string(nil), p.Categories...),
		Statuses:   append([]string(nil), p.Statuses...),
	}
}
