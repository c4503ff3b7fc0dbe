package repositories

import (
	"context"

	"microcredit-api/internal/adapters/persistence/models"
	"microcredit-api/internal/core/domain"

	"gorm.io/gorm"
)

// applicationRepository handles loan application data access
type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

// Create stores a submitted application together with its first event
func (r *applicationRepository) Create(ctx context.Context, app *models.LoanApplication) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(app).Error; err != nil {
			return err
		}
		return tx.Create(&models.ApplicationEvent{
			ApplicationID: app.ID,
			ToStatus:      app.Status,
			PerformedBy:   app.UserID,
			Remark:        "submitted",
		}).Error
	})
}

// GetByID gets an application by ID
func (r *applicationRepository) GetByID(ctx context.Context, id string) (*models.LoanApplication, error) {
	var app models.LoanApplication
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// ListByUser lists the applications of one user, newest first
func (r *applicationRepository) ListByUser(ctx context.Context, tenantID string, userID uint) ([]*models.LoanApplication, error) {
	var apps []*models.LoanApplication
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

// List lists applications for staff with pagination
func (r *applicationRepository) List(ctx context.Context, filter ApplicationFilter) ([]*models.LoanApplication, int64, error) {
	var apps []*models.LoanApplication
	var total int64

	query := r.db.WithContext(ctx).Model(&models.LoanApplication{})
	if filter.TenantID != "" {
		query = query.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&apps).Error

	return apps, total, err
}

// HasOpenByUser reports whether the user has a pending or in-review application
func (r *applicationRepository) HasOpenByUser(ctx context.Context, tenantID string, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LoanApplication{}).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Where("status IN ?", []domain.ApplicationStatus{domain.StatusPending, domain.StatusInReview}).
		Count(&count).Error
	return count > 0, err
}

// UpdateStatus moves an application from one status to another and logs the
// event. gorm.ErrRecordNotFound when the row is no longer in status from.
func (r *applicationRepository) UpdateStatus(ctx context.Context, id string, from, to domain.ApplicationStatus, event *models.ApplicationEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.LoanApplication{}).
			Where("id = ? AND status = ?", id, from).
			Update("status", to)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		event.ApplicationID = id
		event.FromStatus = from
		event.ToStatus = to
		return tx.Create(event).Error
	})
}

// ListEvents gets the status history of an application
func (r *applicationRepository) ListEvents(ctx context.Context, applicationID string) ([]*models.ApplicationEvent, error) {
	var events []*models.ApplicationEvent
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	return events, err
}
