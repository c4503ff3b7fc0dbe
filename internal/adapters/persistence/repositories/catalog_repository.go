package repositories

import (
	"context"

	"microcredit-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// tenantRepository handles tenant data access
type tenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

// Create creates a new tenant
func (r *tenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	return r.db.WithContext(ctx).Create(tenant).Error
}

// GetByID gets a tenant by its slug
func (r *tenantRepository) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// ListActive lists all active tenants
func (r *tenantRepository) ListActive(ctx context.Context) ([]*models.Tenant, error) {
	var tenants []*models.Tenant
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&tenants).Error
	return tenants, err
}

// productRepository handles product data access
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create creates a new product
func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// GetByID gets an active product of a tenant
func (r *productRepository) GetByID(ctx context.Context, tenantID string, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Where("is_active = ?", true).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListActiveByTenant lists the active products of a tenant
func (r *productRepository) ListActiveByTenant(ctx context.Context, tenantID string) ([]*models.Product, error) {
	var products []*models.Product
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("is_active = ?", true).
		Order("amount_min ASC").
		Find(&products).Error
	return products, err
}
