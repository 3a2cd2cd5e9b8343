package model

import (
	"encoding/json"
	"time"
)

// Project is an uploaded building model. A nil OwnerID marks a shared project
// visible to everyone.
type Project struct {
	ID           string          `json:"id"            db:"id"`
	OwnerID      *string         `json:"user_id"       db:"owner_id"`
	Name         string          `json:"name"          db:"name"`
	FileURL      string          `json:"file_url"      db:"file_url"`
	IFCSchema    *string         `json:"ifc_schema"    db:"ifc_schema"`
	Region       *string         `json:"region"        db:"region"`
	BuildingType *string         `json:"building_type" db:"building_type"`
	Metadata     json.RawMessage `json:"metadata"      db:"metadata"`
	CreatedAt    time.Time       `json:"created_at"    db:"created_at"`
}

// ProjectDetail is a project with its jobs, newest first.
type ProjectDetail struct {
	Project
	Jobs []Job `json:"jobs"`
}

// CreateProjectRequest is the repository input for a new project.
type CreateProjectRequest struct {
	ID           string          `validate:"required"`
	OwnerID      *string
	Name         string          `validate:"required,max=255"`
	FileURL      string          `validate:"required,startswith=r2://"`
	IFCSchema    *string
	Region       *string
	BuildingType *string
	Metadata     json.RawMessage
}

// Validate checks required fields.
func (r *CreateProjectRequest) Validate() error {
	return ValidateStruct(r)
}

// UploadResponse is returned by POST /api/upload.
type UploadResponse struct {
	ProjectID string `json:"project_id"`
	FileURL   string `json:"file_url"`
}
