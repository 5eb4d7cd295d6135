package service

import (
	"context"
	"testing"

	"github.com/automarket/automarket-backend/internal/app/model"
	"github.com/automarket/automarket-backend/internal/app/repository"
	"github.com/automarket/automarket-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService(t *testing.T) {
	testDB := setupTestDB(t)
	require.NoError(t, db.SeedProducts(testDB))
	svc := NewProductService(repository.NewProductRepository(testDB))
	ctx := context.Background()

	all, err := svc.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 8)

	home, err := svc.ListProducts(ctx, model.CategoryHome)
	require.NoError(t, err)
	assert.Len(t, home, 2)

	p, err := svc.GetProduct(ctx, all[0].ID)
	require.NoError(t, err)
	assert.Equal(t, all[0].Name, p.Name)

	_, err = svc.GetProduct(ctx, 999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
