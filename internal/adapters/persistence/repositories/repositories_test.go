package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"microcredit-api/internal/adapters/persistence/models"
	"microcredit-api/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func seedTenant(t *testing.T, db *gorm.DB, id string) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{ID: id, Name: id, IsActive: true}
	require.NoError(t, NewTenantRepository(db).Create(context.Background(), tenant))
	return tenant
}

func newApplication(tenantID string, userID uint, status domain.ApplicationStatus, created time.Time) *models.LoanApplication {
	return &models.LoanApplication{
		ID:            uuid.NewString(),
		TenantID:      tenantID,
		UserID:        userID,
		PersonalInfo:  domain.PersonalInfo{FirstName: "Ana", LastName: "Quispe"},
		FinancialInfo: domain.FinancialInfo{LoanAmount: 5000, LoanTermMonths: 12},
		Product:       &domain.ProductSnapshot{ID: 1, Code: "MICRO", AmountMin: 500, AmountMax: 10000},
		LoanAmount:    5000,
		Status:        status,
		CreatedAt:     created,
	}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedTenant(t, db, "acme")
	repo := NewUserRepository(db)

	user := &models.User{TenantID: "acme", Email: "ana@example.com", Password: "hash", Role: "USER", IsActive: true}
	require.NoError(t, repo.Create(ctx, user))

	exists, err := repo.ExistsByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := repo.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.False(t, got.EmailVerified)

	verified, err := repo.MarkEmailVerified(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified)

	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)

	_, err = repo.MarkEmailVerified(ctx, "nobody@example.com")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRefreshTokenRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRefreshTokenRepository(db)

	live := &models.RefreshToken{UserID: 1, TokenHash: "live", ExpiresAt: time.Now().Add(time.Hour)}
	old := &models.RefreshToken{UserID: 1, TokenHash: "old", ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, repo.Create(ctx, live))
	require.NoError(t, repo.Create(ctx, old))

	count, err := repo.CountActiveByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.RevokeByTokenHash(ctx, "live"))
	_, err = repo.GetByTokenHash(ctx, "live")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	deleted, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestCatalogRepositories(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	tenants := NewTenantRepository(db)
	products := NewProductRepository(db)

	seedTenant(t, db, "acme")
	seedTenant(t, db, "beta")

	require.NoError(t, products.Create(ctx, &models.Product{
		TenantID: "acme", Code: "MICRO", Name: "Micro", InterestType: "TEA", RateNominal: 35,
		TermMin: 3, TermMax: 24, AmountMin: 500, AmountMax: 10000, IsActive: true,
	}))
	require.NoError(t, products.Create(ctx, &models.Product{
		TenantID: "acme", Code: "PYME", Name: "Pyme", InterestType: "TEA", RateNominal: 28,
		TermMin: 6, TermMax: 36, AmountMin: 5000, AmountMax: 50000, IsActive: true,
	}))

	all, err := tenants.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	list, err := products.ListActiveByTenant(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "MICRO", list[0].Code)

	got, err := products.GetByID(ctx, "acme", list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Micro", got.Name)

	// products are scoped to their tenant
	_, err = products.GetByID(ctx, "beta", list[0].ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	list, err = products.ListActiveByTenant(ctx, "beta")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = tenants.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestApplicationRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewApplicationRepository(db)
	now := time.Now()

	first := newApplication("acme", 7, domain.StatusRejected, now.Add(-time.Hour))
	second := newApplication("acme", 7, domain.StatusPending, now)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, newApplication("beta", 7, domain.StatusPending, now)))

	got, err := repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.PersonalInfo.FirstName)
	require.NotNil(t, got.Product)
	assert.Equal(t, "MICRO", got.Product.Code)

	mine, err := repo.ListByUser(ctx, "acme", 7)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)

	open, err := repo.HasOpenByUser(ctx, "acme", 7)
	require.NoError(t, err)
	assert.True(t, open)

	require.NoError(t, repo.UpdateStatus(ctx, second.ID, domain.StatusPending, domain.StatusApproved,
		&models.ApplicationEvent{PerformedBy: 1, Remark: "ok"}))

	open, err = repo.HasOpenByUser(ctx, "acme", 7)
	require.NoError(t, err)
	assert.False(t, open)

	err = repo.UpdateStatus(ctx, second.ID, domain.StatusPending, domain.StatusRejected, &models.ApplicationEvent{PerformedBy: 1})
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	events, err := repo.ListEvents(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.StatusPending, events[0].ToStatus)
	assert.Equal(t, domain.StatusApproved, events[1].ToStatus)
	assert.Equal(t, domain.StatusPending, events[1].FromStatus)
}

func TestApplicationRepositoryList(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewApplicationRepository(db)
	now := time.Now()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, newApplication("acme", uint(i+1), domain.StatusPending, now.Add(time.Duration(i)*time.Minute))))
	}
	require.NoError(t, repo.Create(ctx, newApplication("acme", 9, domain.StatusApproved, now)))
	require.NoError(t, repo.Create(ctx, newApplication("beta", 9, domain.StatusPending, now)))

	apps, total, err := repo.List(ctx, ApplicationFilter{TenantID: "acme", Status: domain.StatusPending, Offset: 0, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, apps, 2)
	assert.Equal(t, uint(5), apps[0].UserID)

	apps, total, err = repo.List(ctx, ApplicationFilter{TenantID: "acme", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	assert.Len(t, apps, 6)
}
