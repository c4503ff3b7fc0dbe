package repositories

import (
	"context"

	"microcredit-api/internal/adapters/persistence/models"
	"microcredit-api/internal/core/domain"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	MarkEmailVerified(ctx context.Context, email string) (*models.User, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
	CountActiveByUserID(ctx context.Context, userID uint) (int64, error)
}

// TenantRepository defines tenant repository interface
type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id string) (*models.Tenant, error)
	ListActive(ctx context.Context) ([]*models.Tenant, error)
}

// ProductRepository defines product repository interface
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, tenantID string, id uint) (*models.Product, error)
	ListActiveByTenant(ctx context.Context, tenantID string) ([]*models.Product, error)
}

// ApplicationFilter narrows the staff application listing
type ApplicationFilter struct {
	TenantID string
	Status   domain.ApplicationStatus
	Offset   int
	Limit    int
}

// ApplicationRepository defines loan application repository interface
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.LoanApplication) error
	GetByID(ctx context.Context, id string) (*models.LoanApplication, error)
	ListByUser(ctx context.Context, tenantID string, userID uint) ([]*models.LoanApplication, error)
	List(ctx context.Context, filter ApplicationFilter) ([]*models.LoanApplication, int64, error)
	HasOpenByUser(ctx context.Context, tenantID string, userID uint) (bool, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.ApplicationStatus, event *models.ApplicationEvent) error
	ListEvents(ctx context.Context, applicationID string) ([]*models.ApplicationEvent, error)
}
