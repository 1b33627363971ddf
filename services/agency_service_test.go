package services

import (
	"context"
	"testing"

	"pems_api_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAgency(t *testing.T) {
	setupTenantDB(t)
	ctx := context.Background()

	require.NoError(t, CreateAgency(ctx, &models.Agency{Name: "agency_a", Description: "Test agency"}))

	schema, err := ResolveAgency(ctx, "agency_a")
	require.NoError(t, err)
	assert.Equal(t, "agency_a", schema)

	// Second resolve is served from cache
	schema, err = ResolveAgency(ctx, "agency_a")
	require.NoError(t, err)
	assert.Equal(t, "agency_a", schema)

	_, err = ResolveAgency(ctx, "agency_unknown")
	assert.True(t, models.IsNotFound(err))

	_, err = ResolveAgency(ctx, "")
	require.Error(t, err)
	var validation *models.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestCreateAgencyDuplicate(t *testing.T) {
	setupTenantDB(t)
	ctx := context.Background()

	require.NoError(t, CreateAgency(ctx, &models.Agency{Name: "agency_dup"}))
	err := CreateAgency(ctx, &models.Agency{Name: "agency_dup"})
	require.Error(t, err)
	var conflict *models.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestListAgencies(t *testing.T) {
	setupTenantDB(t)
	ctx := context.Background()

	require.NoError(t, CreateAgency(ctx, &models.Agency{Name: "agency_a"}))
	require.NoError(t, CreateAgency(ctx, &models.Agency{Name: "agency_b"}))

	agencies, err := ListAgencies(ctx)
	require.NoError(t, err)
	assert.Len(t, agencies, 2)
}
