package db

import (
	"github.com/automarket/automarket-backend/internal/app/model"
	"github.com/automarket/automarket-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Models lists every table managed by AutoMigrate, parents first.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Profile{},
		&model.BusinessProfile{},
		&model.VehicleListing{},
		&model.Favorite{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds the legacy store catalog when it is empty.
func Seed() error {
	return SeedProducts(DB)
}

// SeedProducts inserts the legacy store catalog into an empty products table.
func SeedProducts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Products already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	logger.Info("Seeding product catalog...")

	products := []model.Product{
		{Name: "Classic Cotton Tee", Category: model.CategoryClothing, Price: decimal.RequireFromString("19.99"), ImageURL: "/images/products/tee.jpg", Bestseller: true},
		{Name: "Denim Jacket", Category: model.CategoryClothing, Price: decimal.RequireFromString("79.90"), ImageURL: "/images/products/denim.jpg"},
		{Name: "Wireless Earbuds", Category: model.CategoryElectronics, Price: decimal.RequireFromString("49.50"), ImageURL: "/images/products/earbuds.jpg", Bestseller: true},
		{Name: "Smart Watch", Category: model.CategoryElectronics, Price: decimal.RequireFromString("129.00"), ImageURL: "/images/products/watch.jpg"},
		{Name: "Leather Wallet", Category: model.CategoryAccessories, Price: decimal.RequireFromString("34.75"), ImageURL: "/images/products/wallet.jpg", Bestseller: true},
		{Name: "Sunglasses", Category: model.CategoryAccessories, Price: decimal.RequireFromString("24.00"), ImageURL: "/images/products/sunglasses.jpg"},
		{Name: "Ceramic Mug", Category: model.CategoryHome, Price: decimal.RequireFromString("12.30"), ImageURL: "/images/products/mug.jpg"},
		{Name: "Throw Blanket", Category: model.CategoryHome, Price: decimal.RequireFromString("45.00"), ImageURL: "/images/products/blanket.jpg"},
	}

	if err := db.Create(&products).Error; err != nil {
		logger.Error("Failed to seed products", err)
		return err
	}

	logger.Info("Products seeded successfully", map[string]interface{}{
		"total_products": len(products),
	})
	return nil
}
