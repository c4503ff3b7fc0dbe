package services

import (
	"context"
	"errors"

	"microcredit-api/internal/adapters/persistence/models"
	"microcredit-api/internal/adapters/persistence/repositories"
	"microcredit-api/internal/core/domain"

	"gorm.io/gorm"
)

// CatalogService exposes tenants and their loan products
type CatalogService struct {
	tenantRepo  repositories.TenantRepository
	productRepo repositories.ProductRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(tenantRepo repositories.TenantRepository, productRepo repositories.ProductRepository) *CatalogService {
	return &CatalogService{tenantRepo: tenantRepo, productRepo: productRepo}
}

// ListTenants lists the active tenants
func (s *CatalogService) ListTenants(ctx context.Context) ([]*models.Tenant, error) {
	return s.tenantRepo.ListActive(ctx)
}

// GetTenant gets an active tenant
func (s *CatalogService) GetTenant(ctx context.Context, tenantID string) (*models.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTenantNotFound
		}
		return nil, err
	}
	if !tenant.IsActive {
		return nil, domain.ErrTenantNotFound
	}
	return tenant, nil
}

// ListProducts lists the active products of an active tenant
func (s *CatalogService) ListProducts(ctx context.Context, tenantID string) ([]*models.Product, error) {
	if _, err := s.GetTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.productRepo.ListActiveByTenant(ctx, tenantID)
}

// GetProduct gets an active product of a tenant
func (s *CatalogService) GetProduct(ctx context.Context, tenantID string, productID uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, tenantID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}
