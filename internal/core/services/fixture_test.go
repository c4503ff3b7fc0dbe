package services

import (
	"context"
	"fmt"
	"testing"

	"microcredit-api/internal/adapters/persistence/models"
	"microcredit-api/internal/adapters/persistence/repositories"
	"microcredit-api/internal/config"
	"microcredit-api/internal/core/domain"
	"microcredit-api/internal/pkg/password"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db       *gorm.DB
	users    repositories.UserRepository
	tokens   repositories.RefreshTokenRepository
	tenants  repositories.TenantRepository
	products repositories.ProductRepository
	apps     repositories.ApplicationRepository

	bus          *StatusBus
	sender       *recordingSender
	auth         *AuthService
	catalog      *CatalogService
	applications *ApplicationService
	wizards      *WizardService

	tenant  *models.Tenant
	product *models.Product
}

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "access-secret",
			RefreshSecret:    "refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	password.Cost = bcrypt.MinCost
	t.Cleanup(func() { password.Cost = password.DefaultCost })

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	f := &fixture{
		db:       db,
		users:    repositories.NewUserRepository(db),
		tokens:   repositories.NewRefreshTokenRepository(db),
		tenants:  repositories.NewTenantRepository(db),
		products: repositories.NewProductRepository(db),
		apps:     repositories.NewApplicationRepository(db),
		bus:      NewStatusBus(),
		sender:   &recordingSender{},
	}

	f.auth = NewAuthService(f.users, f.tokens, f.tenants, f.bus, testConfig())
	f.catalog = NewCatalogService(f.tenants, f.products)
	f.applications = NewApplicationService(f.apps, NewNotificationService(f.sender, "Microcrédito"))
	f.wizards = NewWizardService(f.auth, f.catalog, f.applications, f.bus, 0)

	ctx := context.Background()
	f.tenant = &models.Tenant{ID: "caja-sur", Name: "Caja Sur", IsActive: true}
	require.NoError(t, f.tenants.Create(ctx, f.tenant))
	f.product = &models.Product{
		TenantID:     f.tenant.ID,
		Code:         "MICRO",
		Name:         "Microcrédito Emprendedor",
		InterestType: "fixed",
		RateNominal:  32.5,
		TermMin:      6,
		TermMax:      24,
		AmountMin:    500,
		AmountMax:    10000,
		IsActive:     true,
	}
	require.NoError(t, f.products.Create(ctx, f.product))

	return f
}

func (f *fixture) register(t *testing.T, email string) *models.UserResponse {
	t.Helper()
	resp, err := f.auth.Register(context.Background(), &RegisterInput{
		TenantID:  f.tenant.ID,
		Email:     email,
		Password:  "secret123",
		FirstName: "Ana",
		LastName:  "Quispe",
		Phone:     "987654321",
	})
	require.NoError(t, err)
	return resp.User
}

func (f *fixture) staff(t *testing.T, email string, role domain.Role) *models.User {
	t.Helper()
	user := &models.User{
		TenantID:      f.tenant.ID,
		Email:         email,
		FirstName:     "Luis",
		LastName:      "Rojas",
		Password:      "x",
		Role:          string(role),
		EmailVerified: true,
		IsActive:      true,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

// formValues completes every data step except the product selection
var formValues = map[string]interface{}{
	"documentType":         "DNI",
	"documentNumber":       "45678912",
	"birthDate":            "1990-04-12",
	"nationality":          "Peruana",
	"maritalStatus":        "soltero",
	"address":              "Av. Los Incas 123",
	"district":             "Wanchaq",
	"province":             "Cusco",
	"department":           "Cusco",
	"employmentType":       "independiente",
	"monthlyIncome":        "2500",
	"loanAmount":           "5000",
	"loanTermMonths":       "12",
	"loanPurpose":          "capital de trabajo",
	"acceptTerms":          true,
	"authorizeCreditCheck": true,
	"confirmTruthfulness":  true,
}

func record(tenantID string, userID uint, email string) *domain.ApplicationRecord {
	return &domain.ApplicationRecord{
		TenantID:      tenantID,
		UserID:        userID,
		PersonalInfo:  domain.PersonalInfo{FirstName: "Ana", LastName: "Quispe"},
		ContactInfo:   domain.ContactInfo{Email: email},
		FinancialInfo: domain.FinancialInfo{LoanAmount: 5000, LoanTermMonths: 12},
		Consents:      domain.Consents{AcceptTerms: true, AuthorizeCreditCheck: true, ConfirmTruthfulness: true},
		Product:       &domain.ProductSnapshot{ID: 1, Code: "MICRO", AmountMin: 500, AmountMax: 10000, TermMin: 6, TermMax: 24},
		Status:        domain.StatusPending,
	}
}
