package services

import (
	"context"
	"testing"
	"time"

	"microcredit-api/internal/adapters/persistence/codestore"
	"microcredit-api/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronServiceStartRejectsBadSpec(t *testing.T) {
	svc := NewCronService(nil, nil, nil, "every now and then")
	assert.Error(t, svc.Start())
}

func TestCronServiceStartStop(t *testing.T) {
	svc := NewCronService(nil, nil, nil, "")
	require.NoError(t, svc.Start())
	svc.Stop()
}

func TestCronJobs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "ana@example.com")

	store := codestore.NewMemoryStore()
	verification := NewVerificationService(store, f.sender, nil, DefaultVerificationOptions())
	require.True(t, verification.RequestCode(ctx, "ana@example.com").Success)

	clock := &fakeClock{now: time.Now().Add(time.Hour)}
	verification.now = clock.Now

	require.NoError(t, f.tokens.Create(ctx, &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: "stale",
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	_, err := f.wizards.Start(ctx, user.ID)
	require.NoError(t, err)
	f.wizards.now = clock.Now
	clock.Advance(DefaultWizardIdleTTL)

	svc := NewCronService(verification, f.tokens, f.wizards, "@every 1m")
	svc.sweepCodes()
	svc.purgeRefreshTokens()
	svc.purgeIdleWizards()

	ok, err := verification.HasValidCode(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())

	var stale int64
	require.NoError(t, f.db.Model(&models.RefreshToken{}).Where("token_hash = ?", "stale").Count(&stale).Error)
	assert.Zero(t, stale)

	assert.Equal(t, 0, f.wizards.Active())
}
