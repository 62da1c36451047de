package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/jestfly/community-backend/internal/apperrors"
	"github.com/jestfly/community-backend/internal/models"
)

// ReportRepository defines the interface for moderation report operations
type ReportRepository interface {
	CreateReport(report *models.Report) error
	GetReportByID(id uint) (*models.Report, error)
	GetPendingReports(offset, limit int) ([]models.Report, int64, error)
	UpdateStatus(id uint, status string) error
}

type postgresReportRepository struct {
	db *gorm.DB
}

// NewPostgresReportRepository creates a ReportRepository backed by PostgreSQL
func NewPostgresReportRepository(db *gorm.DB) ReportRepository {
	return &postgresReportRepository{db: db}
}

// CreateReport inserts a report. Reporting the same target twice is a conflict.
func (r *postgresReportRepository) CreateReport(report *models.Report) error {
	if err := r.db.Create(report).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict("content already reported")
		}
		return err
	}
	return nil
}

func (r *postgresReportRepository) GetReportByID(id uint) (*models.Report, error) {
	var report models.Report
	if err := r.db.First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("report")
		}
		return nil, err
	}
	return &report, nil
}

func (r *postgresReportRepository) GetPendingReports(offset, limit int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	if err := r.db.Model(&models.Report{}).Where("status = ?", models.ReportPending).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Where("status = ?", models.ReportPending).
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&reports).Error
	return reports, total, err
}

func (r *postgresReportRepository) UpdateStatus(id uint, status string) error {
	res := r.db.Model(&models.Report{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("report")
	}
	return nil
}
