// Package db provides database models and utilities for Handoff.
package db

import (
	"time"

	"github.com/google/uuid"
)

type BaseModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ProjectModel struct {
	BaseModel
	Title             string     `gorm:"not null;check:title <> ''"`
	ClientID          uuid.UUID  `gorm:"type:char(36);not null;index"`
	StartDate         time.Time  `gorm:"not null"`
	EndDate           *time.Time
	Progress          int     `gorm:"not null;default:0;check:progress >= 0 AND progress <= 100"`
	Status            string  `gorm:"not null;check:status <> ''"` // active, completed, archived
	ClientAccessToken *string `gorm:"type:text"`                   // Encrypted portal share token

	Steps        []StepModel               `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Deliverables []DeliverableVersionModel `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	SharedFiles  []SharedFileModel         `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

func (ProjectModel) TableName() string {
	return "projects"
}

type StepModel struct {
	BaseModel
	ProjectID   uuid.UUID `gorm:"type:char(36);not null;index;uniqueIndex:idx_steps_project_order"`
	Title       string    `gorm:"not null;check:title <> ''"`
	Description string    `gorm:"type:text"`
	Status      string    `gorm:"not null;check:status <> ''"` // upcoming, current, completed
	OrderIndex  int       `gorm:"not null;uniqueIndex:idx_steps_project_order"`

	Project ProjectModel `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

func (s StepModel) TableName() string {
	return "steps"
}

type DeliverableVersionModel struct {
	BaseModel
	ProjectID     uuid.UUID  `gorm:"type:char(36);not null;index;uniqueIndex:idx_deliverables_group_number"`
	StepID        *uuid.UUID `gorm:"type:char(36);index;uniqueIndex:idx_deliverables_group_number"`
	Name          string     `gorm:"not null;check:name <> ''"`
	Description   string     `gorm:"type:text"`
	VersionNumber int        `gorm:"not null;uniqueIndex:idx_deliverables_group_number;check:version_number >= 1"`
	IsLatest      bool       `gorm:"not null"`
	FileURL       string     `gorm:"not null;check:file_url <> ''"`
	FileName      string     `gorm:"not null"`
	FileType      string     `gorm:"not null"`
	Status        string     `gorm:"not null;check:status <> ''"` // pending, approved, rejected
	CreatedBy     uuid.UUID  `gorm:"type:char(36);not null"`

	Project  ProjectModel   `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Comments []CommentModel `gorm:"foreignKey:DeliverableID;constraint:OnDelete:CASCADE"`
}

func (DeliverableVersionModel) TableName() string {
	return "deliverables"
}

type CommentModel struct {
	BaseModel
	DeliverableID   uuid.UUID  `gorm:"type:char(36);not null;index"`
	ProjectID       uuid.UUID  `gorm:"type:char(36);not null;index"`
	UserID          *uuid.UUID `gorm:"type:char(36)"`
	ClientID        *uuid.UUID `gorm:"type:char(36)"`
	Content         string     `gorm:"type:text;not null;check:content <> ''"`
	IsClient        bool       `gorm:"not null"`
	IsSystemMessage bool       `gorm:"not null"`
	MilestoneName   string     // Denormalized step title at write time
	VersionName     string     // Denormalized version name at write time

	Deliverable DeliverableVersionModel `gorm:"foreignKey:DeliverableID;constraint:OnDelete:CASCADE"`
}

func (CommentModel) TableName() string {
	return "comments"
}

type SharedFileModel struct {
	BaseModel
	ProjectID   uuid.UUID `gorm:"type:char(36);not null;index"`
	Title       string    `gorm:"not null;check:title <> ''"`
	Description string    `gorm:"type:text"`
	FileURL     string    `gorm:"not null;check:file_url <> ''"`
	FileName    string    `gorm:"not null"`
	FileType    string    `gorm:"not null"`
	FileSize    int64     `gorm:"not null"`
	UploadedBy  uuid.UUID `gorm:"type:char(36);not null"`
	IsClient    bool      `gorm:"not null"`
	Status      string    `gorm:"not null;check:status <> ''"` // new, viewed

	Project ProjectModel `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

func (SharedFileModel) TableName() string {
	return "shared_files"
}
