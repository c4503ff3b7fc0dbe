package config

import (
	"context"
	"errors"

	"microcredit-api/internal/adapters/persistence/models"
	"microcredit-api/internal/core/domain"
	"microcredit-api/internal/pkg/logger"
	"microcredit-api/internal/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg SeedConfig
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg SeedConfig) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders. Disabled seeding is a no-op.
func (s *Seeder) Run(ctx context.Context) error {
	if !s.cfg.Enabled {
		return nil
	}
	logger.Info(ctx, "🌱 Running database seeders...")

	if err := SeedCatalog(ctx, s.db); err != nil {
		return err
	}
	if err := s.seedAdminUser(ctx); err != nil {
		logger.Warn(ctx, "⚠️ Admin seeder skipped", zap.Error(err))
	}

	logger.Info(ctx, "✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds the default admin of the first tenant.
// Development only; production admins are created by hand.
func (s *Seeder) seedAdminUser(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var tenant models.Tenant
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("no active tenant to attach the admin to")
		}
		return err
	}

	hashedPassword, err := password.Hash(s.cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		TenantID:      tenant.ID,
		Email:         s.cfg.AdminEmail,
		FirstName:     "Admin",
		LastName:      tenant.Name,
		Password:      hashedPassword,
		Role:          string(domain.RoleAdmin),
		EmailVerified: true,
		IsActive:      true,
	}
	if err := s.db.WithContext(ctx).Create(admin).Error; err != nil {
		return err
	}

	logger.Info(ctx, "✅ Admin user created", zap.String("email", admin.Email))
	return nil
}
