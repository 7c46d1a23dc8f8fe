package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakline/fieldops-backend/internal/core/domain"
	apperrors "github.com/oakline/fieldops-backend/internal/core/errors"
)

func TestTechnicianRepository_ListRoster(t *testing.T) {
	ctx := context.Background()
	repo := NewTechnicianRepository(testPool)
	accountID := uuid.New()

	alice := seedTechnician(t, ctx, accountID, "Alice Moro")
	_, err := testPool.Exec(ctx, `
UPDATE technicians SET skills = '{hvac,electrical}', status = 'en_route' WHERE id = $1`, alice)
	require.NoError(t, err)

	seedTechnician(t, ctx, accountID, "Bob Reyes")
	seedTechnician(t, ctx, uuid.New(), "Other Account")

	roster, err := repo.ListRoster(ctx, accountID)
	require.NoError(t, err)

	require.Len(t, roster, 2)
	assert.Equal(t, "Alice Moro", roster[0].Name)
	assert.Equal(t, domain.TechEnRoute, roster[0].Status)
	assert.Equal(t, []string{"hvac", "electrical"}, roster[0].Skills)
	assert.Nil(t, roster[0].LastFix, "no fix recorded yet")
	assert.Equal(t, "Bob Reyes", roster[1].Name)
}

func TestTechnicianRepository_RefreshFix(t *testing.T) {
	ctx := context.Background()
	repo := NewTechnicianRepository(testPool)
	accountID := uuid.New()

	techID := seedTechnician(t, ctx, accountID, "Dana Fields")
	recordedAt := time.Date(2025, 6, 12, 14, 29, 40, 0, time.UTC)

	err := repo.RefreshFix(ctx, accountID, techID, domain.LocationFix{
		Latitude:   39.7684,
		Longitude:  -86.1581,
		RecordedAt: recordedAt,
	})
	require.NoError(t, err)

	roster, err := repo.ListRoster(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	require.NotNil(t, roster[0].LastFix)
	assert.InDelta(t, 39.7684, roster[0].LastFix.Latitude, 1e-9)
	assert.InDelta(t, -86.1581, roster[0].LastFix.Longitude, 1e-9)
	assert.True(t, recordedAt.Equal(roster[0].LastFix.RecordedAt))
}

func TestTechnicianRepository_RefreshFix_UnknownTech(t *testing.T) {
	ctx := context.Background()
	repo := NewTechnicianRepository(testPool)

	err := repo.RefreshFix(ctx, uuid.New(), uuid.New(), domain.LocationFix{
		Latitude:   39.7684,
		Longitude:  -86.1581,
		RecordedAt: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, apperrors.ErrTechnicianNotFound)
}

func TestTechnicianRepository_RefreshFix_OtherAccount(t *testing.T) {
	ctx := context.Background()
	repo := NewTechnicianRepository(testPool)
	ownerAccountID := uuid.New()
	otherAccountID := uuid.New()

	techID := seedTechnician(t, ctx, ownerAccountID, "Dana Fields")

	err := repo.RefreshFix(ctx, otherAccountID, techID, domain.LocationFix{
		Latitude:   39.7684,
		Longitude:  -86.1581,
		RecordedAt: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, apperrors.ErrTechnicianNotFound)

	// The owner account's view of the technician is untouched.
	roster, err := repo.ListRoster(ctx, ownerAccountID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Nil(t, roster[0].LastFix)
}
