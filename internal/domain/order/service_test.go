package order

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/your-org/thangka-store-backend/internal/config"
	"github.com/your-org/thangka-store-backend/internal/domain/cart"
	"github.com/your-org/thangka-store-backend/internal/domain/product"
	"github.com/your-org/thangka-store-backend/internal/pkg/apperr"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&product.Product{},
		&product.ProductImage{},
		&product.ProductRating{},
		&cart.Cart{},
		&cart.CartItem{},
		&Order{},
		&OrderItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func newTestServices(t *testing.T, db *gorm.DB) (*Service, *cart.Service) {
	t.Helper()

	cfg := &config.Config{
		Checkout: config.CheckoutConfig{
			Currency: "USD",
		},
	}
	cartService := cart.NewService(db, product.NewCatalog(db), nil, cfg, nil)
	return NewService(db, cartService, cfg, nil), cartService
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price int64, stock int) *product.Product {
	t.Helper()

	prod := &product.Product{
		Name:        name,
		Description: "test product",
		Price:       price,
		Stock:       stock,
		IsActive:    true,
		Category:    product.CategoryBuddha,
		Condition:   product.ConditionGood,
	}
	if err := db.Create(prod).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return prod
}

func validAddress() ShippingAddress {
	return ShippingAddress{
		FirstName: "Pema",
		LastName:  "Sherpa",
		Email:     "pema@example.com",
		Phone:     "+9779812345678",
		Address:   "12 Boudha Road",
		City:      "Kathmandu",
		State:     "Bagmati",
		Country:   "Nepal",
		ZipCode:   "44600",
	}
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("creates order from cart and empties it", func(t *testing.T) {
		db := setupTestDB(t)
		svc, carts := newTestServices(t, db)
		prod := seedProduct(t, db, "Green Tara", 600, 5)

		if _, err := carts.AddItem(ctx, 1, &cart.AddItemRequest{ProductID: prod.ID, Quantity: 2}); err != nil {
			t.Fatalf("AddItem failed: %v", err)
		}

		o, err := svc.CreateOrder(ctx, 1, &CreateOrderRequest{
			ShippingAddress: validAddress(),
			PaymentMethod:   PaymentMethodStripe,
			IsGift:          true,
			GiftMessage:     "Tashi delek! ",
		})
		if err != nil {
			t.Fatalf("CreateOrder failed: %v", err)
		}

		if !o.IsGift || o.GiftMessage != "Tashi delek!" {
			t.Errorf("unexpected gift fields: is_gift=%v message=%q", o.IsGift, o.GiftMessage)
		}
		if o.Total != 1200 {
			t.Errorf("expected total 1200, got %d", o.Total)
		}
		if o.Status != StatusPending {
			t.Errorf("expected status pending, got %s", o.Status)
		}
		if o.PaymentStatus != PaymentPending {
			t.Errorf("expected payment status pending, got %s", o.PaymentStatus)
		}
		if len(o.Items) != 1 || o.Items[0].Name != "Green Tara" || o.Items[0].Price != 600 {
			t.Errorf("unexpected order items: %+v", o.Items)
		}
		if !strings.HasPrefix(o.OrderNumber, "ORD-") {
			t.Errorf("unexpected order number %q", o.OrderNumber)
		}

		// Stock decremented
		var reloaded product.Product
		if err := db.First(&reloaded, prod.ID).Error; err != nil {
			t.Fatalf("failed to reload product: %v", err)
		}
		if reloaded.Stock != 3 {
			t.Errorf("expected stock 3 after checkout, got %d", reloaded.Stock)
		}

		// Cart emptied
		c, err := carts.GetCart(ctx, 1)
		if err != nil {
			t.Fatalf("GetCart failed: %v", err)
		}
		if !c.IsEmpty() || c.Total != 0 {
			t.Errorf("expected emptied cart, got %+v", c)
		}
	})

	t.Run("empty cart", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestServices(t, db)

		_, err := svc.CreateOrder(ctx, 1, &CreateOrderRequest{
			ShippingAddress: validAddress(),
			PaymentMethod:   PaymentMethodStripe,
		})
		if !errors.Is(err, apperr.ErrEmptyCart) {
			t.Errorf("expected ErrEmptyCart, got %v", err)
		}
	})

	t.Run("missing address field", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestServices(t, db)

		addr := validAddress()
		addr.City = "  "
		_, err := svc.CreateOrder(ctx, 1, &CreateOrderRequest{
			ShippingAddress: addr,
			PaymentMethod:   PaymentMethodStripe,
		})
		if !apperr.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("malformed email", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestServices(t, db)

		addr := validAddress()
		addr.Email = "not-an-email"
		_, err := svc.CreateOrder(ctx, 1, &CreateOrderRequest{
			ShippingAddress: addr,
			PaymentMethod:   PaymentMethodStripe,
		})
		if !apperr.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("unknown payment method", func(t *testing.T) {
		db := setupTestDB(t)
		svc, _ := newTestServices(t, db)

		_, err := svc.CreateOrder(ctx, 1, &CreateOrderRequest{
			ShippingAddress: validAddress(),
			PaymentMethod:   "cheque",
		})
		if !apperr.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("insufficient stock rolls everything back", func(t *testing.T) {
		db := setupTestDB(t)
		svc, carts := newTestServices(t, db)
		prod := seedProduct(t, db, "Rare", 1000, 5)

		if _, err := carts.AddItem(ctx, 1, &cart.AddItemRequest{ProductID: prod.ID, Quantity: 3}); err != nil {
			t.Fatalf("AddItem failed: %v", err)
		}

		// Someone else buys most of the stock between cart and checkout
		if err := db.Model(&product.Product{}).Where("id = ?", prod.ID).Update("stock", 2).Error; err != nil {
			t.Fatalf("failed to shrink stock: %v", err)
		}

		_, err := svc.CreateOrder(ctx, 1, &CreateOrderRequest{
			ShippingAddress: validAddress(),
			PaymentMethod:   PaymentMethodPayPal,
		})
		if !errors.Is(err, apperr.ErrInsufficientStock) {
			t.Fatalf("expected ErrInsufficientStock, got %v", err)
		}

		// Stock untouched, no order rows, cart intact
		var reloaded product.Product
		if err := db.First(&reloaded, prod.ID).Error; err != nil {
			t.Fatalf("failed to reload product: %v", err)
		}
		if reloaded.Stock != 2 {
			t.Errorf("expected stock 2 after rollback, got %d", reloaded.Stock)
		}

		var orderCount int64
		db.Model(&Order{}).Count(&orderCount)
		if orderCount != 0 {
			t.Errorf("expected no orders, found %d", orderCount)
		}

		c, err := carts.GetCart(ctx, 1)
		if err != nil {
			t.Fatalf("GetCart failed: %v", err)
		}
		if len(c.Items) != 1 || c.Items[0].Quantity != 3 {
			t.Errorf("expected cart preserved, got %+v", c.Items)
		}
	})
}

func placeTestOrder(t *testing.T, db *gorm.DB, svc *Service, carts *cart.Service, userID uint, quantity int) *Order {
	t.Helper()
	ctx := context.Background()

	prod := seedProduct(t, db, "Mandala", 1000, quantity+5)
	if _, err := carts.AddItem(ctx, userID, &cart.AddItemRequest{ProductID: prod.ID, Quantity: quantity}); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	o, err := svc.CreateOrder(ctx, userID, &CreateOrderRequest{
		ShippingAddress: validAddress(),
		PaymentMethod:   PaymentMethodBankTransfer,
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	return o
}

func TestOrderStatusTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("walks the fulfillment chain", func(t *testing.T) {
		db := setupTestDB(t)
		svc, carts := newTestServices(t, db)
		o := placeTestOrder(t, db, svc, carts, 1, 1)

		for _, next := range []OrderStatus{StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered} {
			updated, err := svc.UpdateOrderStatus(ctx, o.ID, next)
			if err != nil {
				t.Fatalf("transition to %s failed: %v", next, err)
			}
			if updated.Status != next {
				t.Errorf("expected status %s, got %s", next, updated.Status)
			}
		}
	})

	t.Run("rejects skipping states", func(t *testing.T) {
		db := setupTestDB(t)
		svc, carts := newTestServices(t, db)
		o := placeTestOrder(t, db, svc, carts, 1, 1)

		_, err := svc.UpdateOrderStatus(ctx, o.ID, StatusShipped)
		if !apperr.IsValidation(err) {
			t.Errorf("expected validation error for pending->shipped, got %v", err)
		}
	})

	t.Run("rejects cancelling a delivered order", func(t *testing.T) {
		db := setupTestDB(t)
		svc, carts := newTestServices(t, db)
		o := placeTestOrder(t, db, svc, carts, 1, 1)

		for _, next := range []OrderStatus{StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered} {
			if _, err := svc.UpdateOrderStatus(ctx, o.ID, next); err != nil {
				t.Fatalf("transition to %s failed: %v", next, err)
			}
		}

		_, err := svc.UpdateOrderStatus(ctx, o.ID, StatusCancelled)
		if !apperr.IsValidation(err) {
			t.Errorf("expected validation error for delivered->cancelled, got %v", err)
		}
	})

	t.Run("cancel restores stock", func(t *testing.T) {
		db := setupTestDB(t)
		svc, carts := newTestServices(t, db)
		o := placeTestOrder(t, db, svc, carts, 1, 2)

		var before product.Product
		if err := db.First(&before, o.Items[0].ProductID).Error; err != nil {
			t.Fatalf("failed to load product: %v", err)
		}

		if _, err := svc.CancelOrder(ctx, 1, o.ID); err != nil {
			t.Fatalf("CancelOrder failed: %v", err)
		}

		var after product.Product
		if err := db.First(&after, o.Items[0].ProductID).Error; err != nil {
			t.Fatalf("failed to load product: %v", err)
		}
		if after.Stock != before.Stock+2 {
			t.Errorf("expected stock restored to %d, got %d", before.Stock+2, after.Stock)
		}
	})
}

func TestPaymentStatusTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("walks the payment chain", func(t *testing.T) {
		db := setupTestDB(t)
		svc, carts := newTestServices(t, db)
		o := placeTestOrder(t, db, svc, carts, 1, 1)

		for _, next := range []PaymentStatus{PaymentProcessing, PaymentCompleted, PaymentRefunded} {
			updated, err := svc.UpdatePaymentStatus(ctx, o.ID, next)
			if err != nil {
				t.Fatalf("transition to %s failed: %v", next, err)
			}
			if updated.PaymentStatus != next {
				t.Errorf("expected payment status %s, got %s", next, updated.PaymentStatus)
			}
		}
	})

	t.Run("rejects pending to completed", func(t *testing.T) {
		db := setupTestDB(t)
		svc, carts := newTestServices(t, db)
		o := placeTestOrder(t, db, svc, carts, 1, 1)

		_, err := svc.UpdatePaymentStatus(ctx, o.ID, PaymentCompleted)
		if !apperr.IsValidation(err) {
			t.Errorf("expected validation error for pending->completed, got %v", err)
		}
	})

	t.Run("rejects pending to failed", func(t *testing.T) {
		db := setupTestDB(t)
		svc, carts := newTestServices(t, db)
		o := placeTestOrder(t, db, svc, carts, 1, 1)

		// A payment can only fail after it has started processing
		_, err := svc.UpdatePaymentStatus(ctx, o.ID, PaymentFailed)
		if !apperr.IsValidation(err) {
			t.Errorf("expected validation error for pending->failed, got %v", err)
		}
	})

	t.Run("rejects refunding a failed payment", func(t *testing.T) {
		db := setupTestDB(t)
		svc, carts := newTestServices(t, db)
		o := placeTestOrder(t, db, svc, carts, 1, 1)

		if _, err := svc.UpdatePaymentStatus(ctx, o.ID, PaymentProcessing); err != nil {
			t.Fatalf("transition to processing errored: %v", err)
		}
		if _, err := svc.UpdatePaymentStatus(ctx, o.ID, PaymentFailed); err != nil {
			t.Fatalf("transition to failed errored: %v", err)
		}
		_, err := svc.UpdatePaymentStatus(ctx, o.ID, PaymentRefunded)
		if !apperr.IsValidation(err) {
			t.Errorf("expected validation error for failed->refunded, got %v", err)
		}
	})
}

func TestGetOrderOwnership(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, carts := newTestServices(t, db)
	o := placeTestOrder(t, db, svc, carts, 1, 1)

	if _, err := svc.GetOrder(ctx, 1, o.ID); err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}

	_, err := svc.GetOrder(ctx, 2, o.ID)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign order, got %v", err)
	}
}

func TestSetTrackingNumber(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, carts := newTestServices(t, db)
	o := placeTestOrder(t, db, svc, carts, 1, 1)

	eta := time.Now().AddDate(0, 0, 7).Truncate(time.Second)
	updated, err := svc.SetTrackingNumber(ctx, o.ID, " TRK-123 ", &eta)
	if err != nil {
		t.Fatalf("SetTrackingNumber failed: %v", err)
	}
	if updated.TrackingNumber != "TRK-123" {
		t.Errorf("expected trimmed tracking number, got %q", updated.TrackingNumber)
	}
	if updated.EstimatedDelivery == nil || !updated.EstimatedDelivery.Equal(eta) {
		t.Errorf("expected estimated delivery %v, got %v", eta, updated.EstimatedDelivery)
	}

	if _, err := svc.SetTrackingNumber(ctx, o.ID, "   ", nil); !apperr.IsValidation(err) {
		t.Errorf("expected validation error for blank tracking number, got %v", err)
	}
}

func TestOrderTimeline(t *testing.T) {
	t.Run("marks completed and current steps", func(t *testing.T) {
		o := &Order{Status: StatusProcessing}
		timeline := o.Timeline()

		if len(timeline) != 5 {
			t.Fatalf("expected 5 steps, got %d", len(timeline))
		}
		for i, entry := range timeline {
			wantCompleted := i <= 2
			if entry.Completed != wantCompleted {
				t.Errorf("step %s: completed=%v, want %v", entry.Status, entry.Completed, wantCompleted)
			}
			if entry.Current != (entry.Status == StatusProcessing) {
				t.Errorf("step %s: current=%v", entry.Status, entry.Current)
			}
		}
	})

	t.Run("cancelled orders collapse to two steps", func(t *testing.T) {
		o := &Order{Status: StatusCancelled}
		timeline := o.Timeline()

		if len(timeline) != 2 {
			t.Fatalf("expected 2 steps, got %d", len(timeline))
		}
		if timeline[1].Status != StatusCancelled || !timeline[1].Current {
			t.Errorf("unexpected final step: %+v", timeline[1])
		}
	})
}

func TestOrderNumberSequence(t *testing.T) {
	db := setupTestDB(t)
	svc, carts := newTestServices(t, db)

	first := placeTestOrder(t, db, svc, carts, 1, 1)
	second := placeTestOrder(t, db, svc, carts, 2, 1)

	if first.OrderNumber == second.OrderNumber {
		t.Errorf("expected distinct order numbers, both %q", first.OrderNumber)
	}
	if !strings.HasSuffix(first.OrderNumber, "-00001") {
		t.Errorf("expected first order of the day to end in -00001, got %q", first.OrderNumber)
	}
	if !strings.HasSuffix(second.OrderNumber, "-00002") {
		t.Errorf("expected second order of the day to end in -00002, got %q", second.OrderNumber)
	}
}
