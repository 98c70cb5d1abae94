// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/thangka-store-backend/internal/config"
	"github.com/your-org/thangka-store-backend/internal/domain/product"
	"github.com/your-org/thangka-store-backend/internal/pkg/apperr"
	"gorm.io/gorm"
)

const summaryCacheTTL = 5 * time.Minute

// SummaryCache is the small cache surface the service needs for the
// summary projection. The Redis client satisfies it; a nil cache
// disables caching entirely, which is how the tests run.
type SummaryCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Service handles cart business logic
type Service struct {
	db      *gorm.DB
	catalog product.Catalog
	cache   SummaryCache
	config  *config.Config
	logger  *logrus.Logger
}

// NewService creates a new cart service. cache may be nil.
func NewService(db *gorm.DB, catalog product.Catalog, cache SummaryCache, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:      db,
		catalog: catalog,
		cache:   cache,
		config:  cfg,
		logger:  logger,
	}
}

// AddItemRequest represents an add-to-cart request
type AddItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateItemRequest represents a quantity change request
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart returns the user's cart, creating an empty one on first access.
// Stale lines (deleted, deactivated or out-of-stock products) are dropped
// and the repaired cart is persisted before it is returned.
func (s *Service) GetCart(ctx context.Context, userID uint) (*Cart, error) {
	c, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.reconcile(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// AddItem adds a product to the user's cart. When the product is already
// in the cart the quantities are merged and the original price snapshot
// is kept. The requested total quantity is checked against current stock.
func (s *Service) AddItem(ctx context.Context, userID uint, req *AddItemRequest) (*Cart, error) {
	if req.Quantity < 1 {
		return nil, apperr.Validation("quantity", "must be at least 1")
	}

	prod, err := s.catalog.GetByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if !prod.IsActive {
		return nil, fmt.Errorf("product %d: %w", prod.ID, apperr.ErrUnavailable)
	}

	c, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	requested := req.Quantity
	for i := range c.Items {
		if c.Items[i].ProductID == req.ProductID {
			requested += c.Items[i].Quantity
		}
	}
	if requested > prod.Stock {
		return nil, fmt.Errorf("product %d: %w", prod.ID, apperr.ErrInsufficientStock)
	}

	imageURL := ""
	if len(prod.Images) > 0 {
		imageURL = prod.Images[0].URL
	}
	c.AddItem(prod.ID, prod.Name, prod.Price, req.Quantity, imageURL)

	if err := s.persist(ctx, c); err != nil {
		return nil, err
	}
	s.invalidateSummary(ctx, userID)
	return c, nil
}

// UpdateQuantity sets the quantity of a cart line. Zero or negative
// quantities remove the line, matching an explicit removal.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID uint, quantity int) (*Cart, error) {
	c, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if quantity > 0 {
		prod, err := s.catalog.GetByID(ctx, productID)
		if err != nil {
			// A vanished product has no stock to cover any quantity. The
			// stale line itself is dropped on the next cart read.
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, fmt.Errorf("product %d: %w", productID, apperr.ErrInsufficientStock)
			}
			return nil, err
		}
		if quantity > prod.Stock {
			return nil, fmt.Errorf("product %d: %w", productID, apperr.ErrInsufficientStock)
		}
	}

	if !c.UpdateQuantity(productID, quantity) {
		return nil, fmt.Errorf("cart item for product %d: %w", productID, apperr.ErrNotFound)
	}

	if err := s.persist(ctx, c); err != nil {
		return nil, err
	}
	s.invalidateSummary(ctx, userID)
	return c, nil
}

// RemoveItem deletes a cart line. Removal is idempotent: a product with
// no line in the cart is not an error, the cart is simply returned as is.
func (s *Service) RemoveItem(ctx context.Context, userID, productID uint) (*Cart, error) {
	c, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !c.RemoveItem(productID) {
		return c, nil
	}

	if err := s.persist(ctx, c); err != nil {
		return nil, err
	}
	s.invalidateSummary(ctx, userID)
	return c, nil
}

// ClearCart removes every line and zeroes the cart's totals
func (s *Service) ClearCart(ctx context.Context, userID uint) (*Cart, error) {
	c, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.Clear()

	if err := s.persist(ctx, c); err != nil {
		return nil, err
	}
	s.invalidateSummary(ctx, userID)
	return c, nil
}

// GetSummary returns the compact cart projection, served from cache when
// possible. The cache is invalidated on every cart mutation, so a hit is
// never staler than the last write.
func (s *Service) GetSummary(ctx context.Context, userID uint) (*Summary, error) {
	key := summaryCacheKey(userID)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil && raw != "" {
			var cached Summary
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	c, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := c.GetSummary()

	if s.cache != nil {
		if encoded, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, key, string(encoded), summaryCacheTTL); err != nil && s.logger != nil {
				s.logger.WithError(err).Warn("failed to cache cart summary")
			}
		}
	}

	return &summary, nil
}

// loadOrCreate fetches the user's cart with its lines, creating an empty
// cart row on first access
func (s *Service) loadOrCreate(ctx context.Context, userID uint) (*Cart, error) {
	var c Cart
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("user_id = ?", userID).
		First(&c).Error
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	c = Cart{
		UserID:   userID,
		Currency: s.config.Checkout.Currency,
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return &c, nil
}

// reconcile drops lines whose product no longer exists, is inactive, or is
// out of stock, then persists the repaired cart when anything changed.
// Running it again on the repaired cart is a no-op.
func (s *Service) reconcile(ctx context.Context, c *Cart) error {
	if len(c.Items) == 0 {
		return s.reprice(ctx, c)
	}

	ids := make([]uint, 0, len(c.Items))
	for i := range c.Items {
		ids = append(ids, c.Items[i].ProductID)
	}

	resolved, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}

	kept := c.Items[:0]
	var dropped []CartItem
	for _, item := range c.Items {
		prod, ok := resolved[item.ProductID]
		if !ok || !prod.IsPurchasable() {
			dropped = append(dropped, item)
			continue
		}
		kept = append(kept, item)
	}

	if len(dropped) > 0 {
		c.Items = kept
		droppedIDs := make([]uint, 0, len(dropped))
		for _, item := range dropped {
			droppedIDs = append(droppedIDs, item.ID)
		}
		if err := s.db.WithContext(ctx).Delete(&CartItem{}, droppedIDs).Error; err != nil {
			return fmt.Errorf("failed to drop stale cart items: %w", err)
		}
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"cart_id":       c.ID,
				"dropped_lines": len(dropped),
			}).Info("removed stale cart lines")
		}
		s.invalidateSummary(ctx, c.UserID)
	}

	return s.reprice(ctx, c)
}

// reprice applies the configured shipping and tax policy and persists the
// totals when they changed
func (s *Service) reprice(ctx context.Context, c *Cart) error {
	prevSubtotal, prevShipping, prevTax, prevTotal := c.Subtotal, c.ShippingCost, c.Tax, c.Total

	c.ApplyPricing(
		s.config.Checkout.FlatShippingCost,
		s.config.Checkout.FreeShippingThreshold,
		s.config.Checkout.TaxRatePercent,
	)

	if c.Subtotal == prevSubtotal && c.ShippingCost == prevShipping &&
		c.Tax == prevTax && c.Total == prevTotal {
		return nil
	}
	return s.persistTotals(ctx, c)
}

// persist writes the cart's lines and totals in one transaction
func (s *Service) persist(ctx context.Context, c *Cart) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", c.ID).Delete(&CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to replace cart items: %w", err)
		}
		for i := range c.Items {
			c.Items[i].ID = 0
			c.Items[i].CartID = c.ID
		}
		if len(c.Items) > 0 {
			if err := tx.Create(&c.Items).Error; err != nil {
				return fmt.Errorf("failed to save cart items: %w", err)
			}
		}

		c.ApplyPricing(
			s.config.Checkout.FlatShippingCost,
			s.config.Checkout.FreeShippingThreshold,
			s.config.Checkout.TaxRatePercent,
		)
		return s.updateTotals(tx, c)
	})
}

func (s *Service) persistTotals(ctx context.Context, c *Cart) error {
	return s.updateTotals(s.db.WithContext(ctx), c)
}

func (s *Service) updateTotals(tx *gorm.DB, c *Cart) error {
	err := tx.Model(&Cart{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"subtotal":      c.Subtotal,
		"shipping_cost": c.ShippingCost,
		"tax":           c.Tax,
		"total":         c.Total,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to save cart totals: %w", err)
	}
	return nil
}

// InvalidateSummary drops the cached summary projection for a user. The
// checkout flow calls it after it empties the cart inside its own
// transaction.
func (s *Service) InvalidateSummary(ctx context.Context, userID uint) {
	s.invalidateSummary(ctx, userID)
}

func (s *Service) invalidateSummary(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, summaryCacheKey(userID)); err != nil && s.logger != nil {
		s.logger.WithError(err).Warn("failed to invalidate cart summary cache")
	}
}

func summaryCacheKey(userID uint) string {
	return fmt.Sprintf("cart:summary:%d", userID)
}
