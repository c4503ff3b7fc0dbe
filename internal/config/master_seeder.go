package config

import (
	"context"
	"errors"

	"microcredit-api/internal/adapters/persistence/models"
	"microcredit-api/internal/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedCatalog seeds the demo tenants and their loan products
func SeedCatalog(ctx context.Context, db *gorm.DB) error {
	if err := seedTenants(ctx, db); err != nil {
		return err
	}
	if err := seedProducts(ctx, db); err != nil {
		return err
	}

	logger.Info(ctx, "✅ Catalog seeded successfully")
	return nil
}

func seedTenants(ctx context.Context, db *gorm.DB) error {
	tenants := []models.Tenant{
		{
			ID:            "caja-andina",
			Name:          "Caja Andina",
			LegalName:     "Caja Municipal de Ahorro y Crédito Andina S.A.",
			RUC:           "20100000011",
			Email:         "creditos@cajaandina.pe",
			MinLoanAmount: 300,
			MaxLoanAmount: 50000,
			MinTermMonths: 3,
			MaxTermMonths: 36,
			IsActive:      true,
		},
		{
			ID:            "financiera-sol",
			Name:          "Financiera Sol",
			LegalName:     "Financiera Sol del Sur S.A.",
			RUC:           "20100000029",
			Email:         "solicitudes@financierasol.pe",
			MinLoanAmount: 500,
			MaxLoanAmount: 30000,
			MinTermMonths: 6,
			MaxTermMonths: 24,
			IsActive:      true,
		},
	}

	for _, t := range tenants {
		var existing models.Tenant
		err := db.WithContext(ctx).Where("id = ?", t.ID).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.WithContext(ctx).Create(&t).Error; err != nil {
			return err
		}
		logger.Info(ctx, "   Created tenant", zap.String("id", t.ID))
	}
	return nil
}

func seedProducts(ctx context.Context, db *gorm.DB) error {
	products := []models.Product{
		{
			TenantID:     "caja-andina",
			Code:         "MICRO-EMP",
			Name:         "Microcrédito Emprendedor",
			Description:  "Capital de trabajo para negocios en marcha",
			InterestType: "fixed",
			RateNominal:  34.5,
			TermMin:      3,
			TermMax:      24,
			AmountMin:    300,
			AmountMax:    15000,
			IsActive:     true,
		},
		{
			TenantID:     "caja-andina",
			Code:         "AGRO",
			Name:         "Crédito Agropecuario",
			Description:  "Financiamiento de campañas agrícolas",
			InterestType: "fixed",
			RateNominal:  28.0,
			TermMin:      6,
			TermMax:      36,
			AmountMin:    1000,
			AmountMax:    50000,
			IsActive:     true,
		},
		{
			TenantID:     "financiera-sol",
			Code:         "CONSUMO",
			Name:         "Préstamo de Consumo",
			Description:  "Libre disponibilidad para trabajadores dependientes",
			InterestType: "variable",
			RateNominal:  39.9,
			TermMin:      6,
			TermMax:      24,
			AmountMin:    500,
			AmountMax:    30000,
			IsActive:     true,
		},
	}

	for _, p := range products {
		var existing models.Product
		err := db.WithContext(ctx).Where("tenant_id = ? AND code = ?", p.TenantID, p.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.WithContext(ctx).Create(&p).Error; err != nil {
			return err
		}
		logger.Info(ctx, "   Created product", zap.String("tenant", p.TenantID), zap.String("code", p.Code))
	}
	return nil
}
