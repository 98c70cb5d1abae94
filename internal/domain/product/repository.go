// internal/domain/product/repository.go
package product

import (
	"context"
	"fmt"

	"github.com/your-org/thangka-store-backend/internal/pkg/apperr"
	"gorm.io/gorm"
)

// Catalog is the read interface the cart and order services use to resolve
// product references. Keeping it narrow allows tests to run against an
// in-memory database without dragging in the full product service.
type Catalog interface {
	// GetByID resolves a single product. Returns apperr.ErrNotFound when
	// the product does not exist (or has been soft-deleted).
	GetByID(ctx context.Context, id uint) (*Product, error)

	// GetByIDs resolves a batch of products, keyed by ID. Missing products
	// are simply absent from the result; no error is returned for them.
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*Product, error)
}

// GormCatalog is the database-backed Catalog implementation
type GormCatalog struct {
	db *gorm.DB
}

// NewCatalog creates a Catalog backed by the given database
func NewCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{db: db}
}

// GetByID resolves a single product by ID
func (c *GormCatalog) GetByID(ctx context.Context, id uint) (*Product, error) {
	var prod Product
	result := c.db.WithContext(ctx).First(&prod, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve product %d: %w", id, result.Error)
	}
	return &prod, nil
}

// GetByIDs resolves a batch of products keyed by ID
func (c *GormCatalog) GetByIDs(ctx context.Context, ids []uint) (map[uint]*Product, error) {
	if len(ids) == 0 {
		return map[uint]*Product{}, nil
	}

	var products []Product
	if err := c.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve products: %w", err)
	}

	resolved := make(map[uint]*Product, len(products))
	for i := range products {
		resolved[products[i].ID] = &products[i]
	}
	return resolved, nil
}

// DecrementStock atomically decrements a product's stock by quantity inside
// the given transaction. The decrement only applies when enough stock
// remains, so two concurrent checkouts can never oversell the same unit.
// Returns apperr.ErrInsufficientStock when the guard fails.
func DecrementStock(tx *gorm.DB, productID uint, quantity int) error {
	result := tx.Model(&Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))

	if result.Error != nil {
		return fmt.Errorf("failed to decrement stock for product %d: %w", productID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", productID, apperr.ErrInsufficientStock)
	}
	return nil
}

// RestoreStock returns quantity units to a product's stock inside the given
// transaction, used when an order is cancelled.
func RestoreStock(tx *gorm.DB, productID uint, quantity int) error {
	result := tx.Model(&Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))

	if result.Error != nil {
		return fmt.Errorf("failed to restore stock for product %d: %w", productID, result.Error)
	}
	return nil
}
