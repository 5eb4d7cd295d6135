package repository

import (
	"context"

	"github.com/automarket/automarket-backend/internal/app/model"
	"github.com/automarket/automarket-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductRepository interface {
	FindAll(ctx context.Context, category model.ProductCategory) ([]model.Product, error)
	FindByID(ctx context.Context, id uint) (*model.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// FindAll lists products, optionally restricted to one category.
func (r *productRepository) FindAll(ctx context.Context, category model.ProductCategory) ([]model.Product, error) {
	query := r.db.WithContext(ctx).Order("id ASC")
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products", err, map[string]interface{}{
			"category": category,
		})
		return nil, err
	}

	logger.Debug("Products found", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}
