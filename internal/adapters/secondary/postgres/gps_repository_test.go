package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakline/fieldops-backend/internal/core/domain"
)

func TestGpsLogRepository_AppendAndListWindow(t *testing.T) {
	ctx := context.Background()
	repo := NewGpsLogRepository(testPool)
	accountID := uuid.New()

	techID := seedTechnician(t, ctx, accountID, "Dana Fields")
	otherTech := seedTechnician(t, ctx, uuid.New(), "Other Account")

	base := time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC)

	// Appended out of order; ListWindow must return them sorted.
	for _, offset := range []time.Duration{10 * time.Minute, 0, 5 * time.Minute} {
		err := repo.Append(ctx, accountID, domain.GpsSample{
			TechID:     techID,
			Latitude:   39.7684,
			Longitude:  -86.1581,
			RecordedAt: base.Add(offset),
		})
		require.NoError(t, err)
	}

	// Outside the window.
	require.NoError(t, repo.Append(ctx, accountID, domain.GpsSample{
		TechID: techID, Latitude: 39.8, Longitude: -86.2, RecordedAt: base.Add(-time.Hour),
	}))
	// Another account.
	require.NoError(t, repo.Append(ctx, uuid.New(), domain.GpsSample{
		TechID: otherTech, Latitude: 39.8, Longitude: -86.2, RecordedAt: base,
	}))

	samples, err := repo.ListWindow(ctx, accountID, base, base.Add(time.Hour))
	require.NoError(t, err)

	require.Len(t, samples, 3)
	assert.True(t, base.Equal(samples[0].RecordedAt))
	assert.True(t, base.Add(5*time.Minute).Equal(samples[1].RecordedAt))
	assert.True(t, base.Add(10*time.Minute).Equal(samples[2].RecordedAt))
	for _, s := range samples {
		assert.Equal(t, techID, s.TechID)
	}
}

func TestGpsLogRepository_ListWindow_Empty(t *testing.T) {
	ctx := context.Background()
	repo := NewGpsLogRepository(testPool)

	samples, err := repo.ListWindow(ctx, uuid.New(), time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Empty(t, samples)
}
