package partners

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispatchline/delivery-console/pkg/db"
	"github.com/dispatchline/delivery-console/pkg/db/dbtest"
	"github.com/dispatchline/delivery-console/pkg/db/models"
	"github.com/dispatchline/delivery-console/pkg/enums"
	"github.com/dispatchline/delivery-console/pkg/types"
)

func newPartner(email string) models.Partner {
	return models.Partner{
		ID:      uuid.New(),
		Name:    "A",
		Email:   email,
		Phone:   "1",
		Status:  enums.PartnerStatusActive,
		Areas:   []string{"north"},
		Shift:   types.Shift{Start: "09:00", End: "17:00"},
		Metrics: types.PartnerMetrics{Rating: 4},
	}
}

func TestRepositoryDetectsDuplicateEmail(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	first := newPartner("a@x.com")
	require.NoError(t, repo.Create(ctx, &first))

	second := newPartner("a@x.com")
	err := repo.Create(ctx, &second)
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, emailConstraint))

	found, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestRepositoryUpdateWritesOnlySelectedColumns(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	partner := newPartner("a@x.com")
	require.NoError(t, repo.Create(ctx, &partner))

	stale := partner
	stale.Name = "Renamed"
	stale.Phone = "overwritten?"
	require.NoError(t, repo.Update(ctx, &stale, []string{"name"}))

	found, err := repo.FindByID(ctx, partner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", found.Name)
	assert.Equal(t, "1", found.Phone)
	assert.Equal(t, []string{"north"}, found.Areas)
	assert.Equal(t, 4.0, found.Metrics.Rating)
}

func TestRepositoryListOrdersByCreation(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		p := newPartner(email)
		require.NoError(t, repo.Create(ctx, &p))
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, db.IsNotFound(err))
}
