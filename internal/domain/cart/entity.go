// internal/domain/cart/entity.go
package cart

import (
	"math"
	"time"
)

// Cart represents a user's shopping cart. Each user has at most one cart,
// created lazily on first access. Monetary fields are minor currency units.
type Cart struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	Items        []CartItem `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	Subtotal     int64      `gorm:"default:0" json:"subtotal"`
	ShippingCost int64      `gorm:"default:0" json:"shipping_cost"`
	Tax          int64      `gorm:"default:0" json:"tax"`
	Total        int64      `gorm:"default:0" json:"total"`
	Currency     string     `gorm:"size:3;default:'USD'" json:"currency"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CartItem represents a single product line in a cart. Price is a snapshot
// taken when the line was first added; later catalog price changes or
// quantity updates do not refresh it.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"not null;index" json:"cart_id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Name      string    `gorm:"not null;size:200" json:"name"`
	Price     int64     `gorm:"not null" json:"price"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	ImageURL  string    `gorm:"size:500" json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides
func (Cart) TableName() string     { return "carts" }
func (CartItem) TableName() string { return "cart_items" }

// Summary is a compact projection of the cart used by badge and
// mini-cart endpoints.
type Summary struct {
	ItemCount    int    `json:"item_count"`  // distinct lines
	TotalItems   int    `json:"total_items"` // sum of quantities
	Subtotal     int64  `json:"subtotal"`
	ShippingCost int64  `json:"shipping_cost"`
	Tax          int64  `json:"tax"`
	Total        int64  `json:"total"`
	Currency     string `json:"currency"`
}

// LineTotal returns the extended price of the line
func (i *CartItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

// AddItem merges quantity into an existing line for the product or appends
// a new line with the given price snapshot. When the line already exists
// its original snapshot price is kept. Totals are recomputed.
func (c *Cart) AddItem(productID uint, name string, price int64, quantity int, imageURL string) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			c.RecalculateTotals()
			return
		}
	}
	c.Items = append(c.Items, CartItem{
		CartID:    c.ID,
		ProductID: productID,
		Name:      name,
		Price:     price,
		Quantity:  quantity,
		ImageURL:  imageURL,
	})
	c.RecalculateTotals()
}

// UpdateQuantity sets the quantity of the line for productID. A quantity
// of zero or less removes the line. Returns false when no line for the
// product exists.
func (c *Cart) UpdateQuantity(productID uint, quantity int) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			if quantity <= 0 {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
			} else {
				c.Items[i].Quantity = quantity
			}
			c.RecalculateTotals()
			return true
		}
	}
	return false
}

// RemoveItem deletes the line for productID. Returns false when no line
// for the product exists.
func (c *Cart) RemoveItem(productID uint) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.RecalculateTotals()
			return true
		}
	}
	return false
}

// Clear removes every line and zeroes all monetary fields, including
// shipping and tax.
func (c *Cart) Clear() {
	c.Items = nil
	c.Subtotal = 0
	c.ShippingCost = 0
	c.Tax = 0
	c.Total = 0
}

// RecalculateTotals recomputes subtotal and total from the current lines.
// Shipping and tax are inputs set by the pricing policy before the call.
func (c *Cart) RecalculateTotals() {
	var subtotal int64
	for i := range c.Items {
		subtotal += c.Items[i].LineTotal()
	}
	c.Subtotal = subtotal
	if len(c.Items) == 0 {
		c.ShippingCost = 0
		c.Tax = 0
	}
	c.Total = c.Subtotal + c.ShippingCost + c.Tax
}

// ApplyPricing sets shipping and tax from the given policy inputs and
// recomputes totals. Tax is rounded half away from zero.
func (c *Cart) ApplyPricing(flatShipping, freeShippingThreshold int64, taxRatePercent float64) {
	c.RecalculateTotals()
	if len(c.Items) == 0 {
		return
	}

	shipping := flatShipping
	if freeShippingThreshold > 0 && c.Subtotal >= freeShippingThreshold {
		shipping = 0
	}
	c.ShippingCost = shipping
	c.Tax = int64(math.Round(float64(c.Subtotal) * taxRatePercent / 100))
	c.Total = c.Subtotal + c.ShippingCost + c.Tax
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// GetItemCount returns the number of distinct lines
func (c *Cart) GetItemCount() int {
	return len(c.Items)
}

// GetTotalItems returns the sum of quantities across all lines
func (c *Cart) GetTotalItems() int {
	total := 0
	for i := range c.Items {
		total += c.Items[i].Quantity
	}
	return total
}

// GetSummary builds the compact cart projection
func (c *Cart) GetSummary() Summary {
	return Summary{
		ItemCount:    c.GetItemCount(),
		TotalItems:   c.GetTotalItems(),
		Subtotal:     c.Subtotal,
		ShippingCost: c.ShippingCost,
		Tax:          c.Tax,
		Total:        c.Total,
		Currency:     c.Currency,
	}
}
