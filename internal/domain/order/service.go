// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/thangka-store-backend/internal/config"
	"github.com/your-org/thangka-store-backend/internal/domain/cart"
	"github.com/your-org/thangka-store-backend/internal/domain/product"
	"github.com/your-org/thangka-store-backend/internal/pkg/apperr"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Service handles order business logic
type Service struct {
	db     *gorm.DB
	carts  *cart.Service
	config *config.Config
	logger *logrus.Logger
}

// NewService creates a new order service
func NewService(db *gorm.DB, carts *cart.Service, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		carts:  carts,
		config: cfg,
		logger: logger,
	}
}

// CreateOrderRequest represents checkout data
type CreateOrderRequest struct {
	ShippingAddress ShippingAddress `json:"shipping_address" binding:"required"`
	PaymentMethod   PaymentMethod   `json:"payment_method" binding:"required"`
	Notes           string          `json:"notes" binding:"max=500"`
	IsGift          bool            `json:"is_gift"`
	GiftMessage     string          `json:"gift_message" binding:"max=500"`
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page   int         `form:"page,default=1"`
	Limit  int         `form:"limit,default=10"`
	Status OrderStatus `form:"status"`
}

// OrderListResponse represents an order page
type OrderListResponse struct {
	Orders     []Order            `json:"orders"`
	Pagination product.Pagination `json:"pagination"`
}

// CreateOrder turns the user's cart into an order. The cart is read and
// repaired first, so stale lines never reach checkout. Stock is decremented
// per line inside the order transaction with a conditional guard; if any
// line cannot be covered the whole checkout rolls back, stock included,
// and the cart is left untouched. On success the cart is emptied in the
// same transaction.
func (s *Service) CreateOrder(ctx context.Context, userID uint, req *CreateOrderRequest) (*Order, error) {
	if err := validateShippingAddress(&req.ShippingAddress); err != nil {
		return nil, err
	}
	if !req.PaymentMethod.IsValid() {
		return nil, apperr.Validation("payment_method", fmt.Sprintf("invalid payment method %q", req.PaymentMethod))
	}

	userCart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if userCart.IsEmpty() {
		return nil, apperr.ErrEmptyCart
	}

	var created Order

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orderNumber, err := s.generateOrderNumber(tx)
		if err != nil {
			return err
		}

		newOrder := Order{
			OrderNumber:     orderNumber,
			UserID:          userID,
			Subtotal:        userCart.Subtotal,
			ShippingCost:    userCart.ShippingCost,
			Tax:             userCart.Tax,
			Total:           userCart.Total,
			Currency:        userCart.Currency,
			Status:          StatusPending,
			PaymentStatus:   PaymentPending,
			PaymentMethod:   req.PaymentMethod,
			ShippingAddress: req.ShippingAddress,
			Notes:           strings.TrimSpace(req.Notes),
			IsGift:          req.IsGift,
			GiftMessage:     strings.TrimSpace(req.GiftMessage),
		}
		for _, item := range userCart.Items {
			if err := product.DecrementStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
			newOrder.Items = append(newOrder.Items, OrderItem{
				ProductID: item.ProductID,
				Name:      item.Name,
				Price:     item.Price,
				Quantity:  item.Quantity,
				ImageURL:  item.ImageURL,
			})
		}

		if err := tx.Create(&newOrder).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		// Empty the cart in the same transaction so a crash between
		// checkout and cart cleanup cannot leave the items purchasable
		// twice.
		if err := tx.Where("cart_id = ?", userCart.ID).Delete(&cart.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		err = tx.Model(&cart.Cart{}).Where("id = ?", userCart.ID).Updates(map[string]interface{}{
			"subtotal":      0,
			"shipping_cost": 0,
			"tax":           0,
			"total":         0,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to reset cart totals: %w", err)
		}

		created = newOrder
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.carts.InvalidateSummary(ctx, userID)

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"order_number": created.OrderNumber,
			"user_id":      userID,
			"total":        created.Total,
		}).Info("order created")
	}

	return &created, nil
}

// GetOrder retrieves an order owned by the given user
func (s *Service) GetOrder(ctx context.Context, userID, orderID uint) (*Order, error) {
	var o Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &o, nil
}

// GetOrderByNumber retrieves an order by its public order number.
// Ownership is not checked; callers gate this behind admin access.
func (s *Service) GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	var o Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("order_number = ?", orderNumber).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &o, nil
}

// GetUserOrders retrieves a page of the user's orders, newest first
func (s *Service) GetUserOrders(ctx context.Context, userID uint, req *OrderListRequest) (*OrderListResponse, error) {
	return s.listOrders(ctx, req, s.db.WithContext(ctx).Where("user_id = ?", userID))
}

// GetAllOrders retrieves a page of every order, for admin use
func (s *Service) GetAllOrders(ctx context.Context, req *OrderListRequest) (*OrderListResponse, error) {
	return s.listOrders(ctx, req, s.db.WithContext(ctx))
}

func (s *Service) listOrders(ctx context.Context, req *OrderListRequest, query *gorm.DB) (*OrderListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 10
	}

	query = query.Model(&Order{}).Preload("Items")
	if req.Status != "" {
		if !req.Status.IsValid() {
			return nil, apperr.Validation("status", fmt.Sprintf("invalid status %q", req.Status))
		}
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	offset := (req.Page - 1) * req.Limit
	err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &OrderListResponse{
		Orders: orders,
		Pagination: product.Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// UpdateOrderStatus moves an order through the fulfillment state machine.
// Moving to cancelled restores the stock that checkout decremented.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID uint, newStatus OrderStatus) (*Order, error) {
	if !newStatus.IsValid() {
		return nil, apperr.Validation("status", fmt.Sprintf("invalid status %q", newStatus))
	}

	var updated Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o Order
		if err := tx.Preload("Items").First(&o, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return fmt.Errorf("failed to load order: %w", err)
		}

		if !o.Status.CanTransitionTo(newStatus) {
			return apperr.Validation("status",
				fmt.Sprintf("cannot transition from %s to %s", o.Status, newStatus))
		}

		if newStatus == StatusCancelled {
			for _, item := range o.Items {
				if err := product.RestoreStock(tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		if err := tx.Model(&o).Update("status", newStatus).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		o.Status = newStatus
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"order_number": updated.OrderNumber,
			"status":       updated.Status,
		}).Info("order status updated")
	}

	return &updated, nil
}

// UpdatePaymentStatus moves an order through the payment state machine
func (s *Service) UpdatePaymentStatus(ctx context.Context, orderID uint, newStatus PaymentStatus) (*Order, error) {
	if !newStatus.IsValid() {
		return nil, apperr.Validation("payment_status", fmt.Sprintf("invalid payment status %q", newStatus))
	}

	var o Order
	if err := s.db.WithContext(ctx).First(&o, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	if !o.PaymentStatus.CanTransitionTo(newStatus) {
		return nil, apperr.Validation("payment_status",
			fmt.Sprintf("cannot transition from %s to %s", o.PaymentStatus, newStatus))
	}

	if err := s.db.WithContext(ctx).Model(&o).Update("payment_status", newStatus).Error; err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	o.PaymentStatus = newStatus
	return &o, nil
}

// CancelOrder cancels an order on the owner's behalf and restores stock
func (s *Service) CancelOrder(ctx context.Context, userID, orderID uint) (*Order, error) {
	o, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !o.CanBeCancelled() {
		return nil, apperr.Validation("status",
			fmt.Sprintf("order in status %s cannot be cancelled", o.Status))
	}
	return s.UpdateOrderStatus(ctx, o.ID, StatusCancelled)
}

// SetTrackingNumber attaches a carrier tracking number and, optionally, an
// estimated delivery date to an order
func (s *Service) SetTrackingNumber(ctx context.Context, orderID uint, trackingNumber string, estimatedDelivery *time.Time) (*Order, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, apperr.Validation("tracking_number", "is required")
	}

	var o Order
	if err := s.db.WithContext(ctx).Preload("Items").First(&o, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	updates := map[string]interface{}{"tracking_number": trackingNumber}
	if estimatedDelivery != nil {
		updates["estimated_delivery"] = *estimatedDelivery
	}
	if err := s.db.WithContext(ctx).Model(&o).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to set tracking number: %w", err)
	}
	o.TrackingNumber = trackingNumber
	if estimatedDelivery != nil {
		o.EstimatedDelivery = estimatedDelivery
	}
	return &o, nil
}

// generateOrderNumber builds a unique order number like ORD-20260830-00042
func (s *Service) generateOrderNumber(tx *gorm.DB) (string, error) {
	date := time.Now().Format("20060102")

	var count int64
	err := tx.Model(&Order{}).
		Where("order_number LIKE ?", fmt.Sprintf("ORD-%s-%%", date)).
		Count(&count).Error
	if err != nil {
		return "", fmt.Errorf("failed to generate order number: %w", err)
	}

	return fmt.Sprintf("ORD-%s-%05d", date, count+1), nil
}

func validateShippingAddress(addr *ShippingAddress) error {
	fields := []struct {
		name  string
		value string
	}{
		{"first_name", addr.FirstName},
		{"last_name", addr.LastName},
		{"email", addr.Email},
		{"phone", addr.Phone},
		{"address", addr.Address},
		{"city", addr.City},
		{"state", addr.State},
		{"country", addr.Country},
		{"zip_code", addr.ZipCode},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return apperr.Validation(f.name, "is required")
		}
	}
	if !emailPattern.MatchString(addr.Email) {
		return apperr.Validation("email", "is not a valid email address")
	}
	return nil
}
