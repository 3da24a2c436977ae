package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	apperrors "civicreport/internal/errors"
	"civicreport/internal/model"
)

// IncidentRepository defines incident persistence operations.
type IncidentRepository interface {
	Create(ctx context.Context, incident *model.Incident) error
	FindByID(ctx context.Context, id uint) (*model.Incident, error)
	UpdateStatus(ctx context.Context, id, statusID uint) error
	Delete(ctx context.Context, id uint) error
	StatsByUser(ctx context.Context, userID uint) (*model.UserStats, error)
}

type incidentRepository struct {
	db *gorm.DB
}

// NewIncidentRepository creates a new incident repository.
func NewIncidentRepository(db *gorm.DB) IncidentRepository {
	return &incidentRepository{db: db}
}

func (r *incidentRepository) Create(ctx context.Context, incident *model.Incident) error {
	if err := r.db.WithContext(ctx).Create(incident).Error; err != nil {
		return mapError("create incident", err)
	}
	return nil
}

func (r *incidentRepository) FindByID(ctx context.Context, id uint) (*model.Incident, error) {
	var incident model.Incident
	if err := r.db.WithContext(ctx).First(&incident, id).Error; err != nil {
		return nil, mapError(fmt.Sprintf("find incident %d", id), err)
	}
	return &incident, nil
}

// UpdateStatus sets the status of an existing incident.
func (r *incidentRepository) UpdateStatus(ctx context.Context, id, statusID uint) error {
	res := r.db.WithContext(ctx).Model(&model.Incident{}).
		Where("incident_id = ?", id).
		Update("status_id", statusID)
	if res.Error != nil {
		return mapError(fmt.Sprintf("update incident %d status", id), res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update incident %d status: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *incidentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Incident{}, id)
	if res.Error != nil {
		return mapError(fmt.Sprintf("delete incident %d", id), res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete incident %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// StatsByUser counts the user's reports in one pass: all of them, resolved
// ones and ones still being followed up.
func (r *incidentRepository) StatsByUser(ctx context.Context, userID uint) (*model.UserStats, error) {
	var stats model.UserStats
	err := r.db.WithContext(ctx).Model(&model.Incident{}).
		Select(
			"COUNT(*) AS total_reports, "+
				"COALESCE(SUM(CASE WHEN status_id = ? THEN 1 ELSE 0 END), 0) AS resolved_reports, "+
				"COALESCE(SUM(CASE WHEN status_id = ? THEN 1 ELSE 0 END), 0) AS following_reports",
			model.StatusResolved, model.StatusInProgress,
		).
		Where("user_id = ?", userID).
		Scan(&stats).Error
	if err != nil {
		return nil, mapError(fmt.Sprintf("stats for user %d", userID), err)
	}
	return &stats, nil
}
