package repository

import (
	"context"
	"testing"

	"github.com/automarket/automarket-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOrderRepository_CreateWithItems(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewOrderRepository(testDB)
	ctx := context.Background()
	user := createTestUser(t, testDB, "buyer@example.com")

	order := &model.Order{
		UserID: user.ID,
		Total:  decimal.RequireFromString("40.00"),
		Status: model.OrderStatusPending,
		OrderItems: []model.OrderItem{
			{ProductID: 1, Name: "Tee", Price: decimal.RequireFromString("10.00"), Quantity: 2},
			{ProductID: 2, Name: "Mug", Price: decimal.RequireFromString("20.00"), Quantity: 1},
		},
	}
	require.NoError(t, repo.Create(ctx, order))
	assert.NotZero(t, order.ID)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, found.Total.Equal(decimal.RequireFromString("40")))
	require.Len(t, found.OrderItems, 2)
	assert.Equal(t, 2, found.OrderItems[0].Quantity)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_FindByUserID(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewOrderRepository(testDB)
	ctx := context.Background()
	buyer := createTestUser(t, testDB, "buyer@example.com")
	other := createTestUser(t, testDB, "other@example.com")

	for _, uid := range []uint{buyer.ID, buyer.ID, other.ID} {
		require.NoError(t, repo.Create(ctx, &model.Order{UserID: uid, Total: decimal.NewFromInt(1)}))
	}

	orders, err := repo.FindByUserID(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Greater(t, orders[0].ID, orders[1].ID)
}
