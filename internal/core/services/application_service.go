package services

import (
	"context"
	"errors"

	"microcredit-api/internal/adapters/persistence/models"
	"microcredit-api/internal/adapters/persistence/repositories"
	"microcredit-api/internal/core/domain"
	"microcredit-api/internal/pkg/logger"
	"microcredit-api/internal/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrInvalidTransition is returned for status changes out of a final status
var ErrInvalidTransition = errors.New("status transition not allowed")

// ApplicationService stores submitted applications and moves them through review
type ApplicationService struct {
	appRepo  repositories.ApplicationRepository
	notifier *NotificationService
}

// NewApplicationService creates a new application service. notifier may be nil.
func NewApplicationService(appRepo repositories.ApplicationRepository, notifier *NotificationService) *ApplicationService {
	return &ApplicationService{appRepo: appRepo, notifier: notifier}
}

// SubmitApplication persists an assembled record with a fresh id
func (s *ApplicationService) SubmitApplication(ctx context.Context, rec *domain.ApplicationRecord) (string, error) {
	app := models.NewLoanApplication(uuid.New().String(), rec)
	if err := s.appRepo.Create(ctx, app); err != nil {
		metrics.ApplicationsSubmitted.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.ApplicationsSubmitted.WithLabelValues("ok").Inc()

	logger.Info(ctx, "✅ Loan application submitted",
		zap.String("application_id", app.ID),
		zap.String("tenant", app.TenantID),
		zap.Uint("user_id", app.UserID),
		zap.Float64("amount", app.LoanAmount))

	if s.notifier != nil {
		s.notifier.NotifySubmitted(ctx, app)
	}
	return app.ID, nil
}

// HasOpenApplication reports whether the user still has one under evaluation
func (s *ApplicationService) HasOpenApplication(ctx context.Context, tenantID string, userID uint) (bool, error) {
	return s.appRepo.HasOpenByUser(ctx, tenantID, userID)
}

// ListMine lists the caller's applications, newest first
func (s *ApplicationService) ListMine(ctx context.Context, tenantID string, userID uint) ([]*models.LoanApplication, error) {
	return s.appRepo.ListByUser(ctx, tenantID, userID)
}

// Viewer identifies who is reading an application
type Viewer struct {
	UserID   uint
	TenantID string
	Role     string
}

func (v Viewer) isStaff() bool {
	return v.Role == string(domain.RoleOfficer) || v.Role == string(domain.RoleAdmin)
}

// Get returns an application visible to viewer: its owner, or staff of the
// same tenant. Admins see every tenant.
func (s *ApplicationService) Get(ctx context.Context, id string, viewer Viewer) (*models.LoanApplication, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}

	switch {
	case viewer.Role == string(domain.RoleAdmin):
	case viewer.isStaff() && app.TenantID == viewer.TenantID:
	case app.UserID == viewer.UserID && app.TenantID == viewer.TenantID:
	default:
		// hide existence from other users
		return nil, domain.ErrApplicationNotFound
	}
	return app, nil
}

// History returns the status events of an application visible to viewer
func (s *ApplicationService) History(ctx context.Context, id string, viewer Viewer) ([]*models.ApplicationEvent, error) {
	if _, err := s.Get(ctx, id, viewer); err != nil {
		return nil, err
	}
	return s.appRepo.ListEvents(ctx, id)
}

// ListInput filters the staff listing
type ListInput struct {
	TenantID string
	Status   domain.ApplicationStatus
	Offset   int
	Limit    int
}

// ListOutput is one page of applications
type ListOutput struct {
	Applications []*models.LoanApplication
	Total        int64
}

// List lists applications for staff. Officers are pinned to their tenant.
func (s *ApplicationService) List(ctx context.Context, input *ListInput, viewer Viewer) (*ListOutput, error) {
	if !viewer.isStaff() {
		return nil, domain.ErrForbidden
	}
	if input.Status != "" && !input.Status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}

	tenantID := input.TenantID
	if viewer.Role != string(domain.RoleAdmin) {
		tenantID = viewer.TenantID
	}

	apps, total, err := s.appRepo.List(ctx, repositories.ApplicationFilter{
		TenantID: tenantID,
		Status:   input.Status,
		Offset:   input.Offset,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &ListOutput{Applications: apps, Total: total}, nil
}

// UpdateStatusInput represents a review decision
type UpdateStatusInput struct {
	Status domain.ApplicationStatus `json:"status" validate:"required"`
	Remark string                   `json:"remark,omitempty"`
}

// UpdateStatus moves an application to a new status. Approved and rejected
// applications are final.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id string, input *UpdateStatusInput, viewer Viewer, ipAddress string) (*models.LoanApplication, error) {
	if !viewer.isStaff() {
		return nil, domain.ErrForbidden
	}
	if !input.Status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}

	app, err := s.Get(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	if !app.Status.IsOpen() || app.Status == input.Status {
		return nil, ErrInvalidTransition
	}

	event := &models.ApplicationEvent{
		PerformedBy: viewer.UserID,
		Remark:      input.Remark,
		IPAddress:   ipAddress,
	}
	if err := s.appRepo.UpdateStatus(ctx, id, app.Status, input.Status, event); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// someone else moved it first
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	logger.Info(ctx, "🔄 Application status changed",
		zap.String("application_id", id),
		zap.String("from", string(app.Status)),
		zap.String("to", string(input.Status)),
		zap.Uint("by", viewer.UserID))

	app.Status = input.Status
	if s.notifier != nil {
		s.notifier.NotifyStatusChanged(ctx, app, input.Remark)
	}
	return app, nil
}
