// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Category represents the fixed set of thangka categories
type Category string

const (
	CategoryBuddha      Category = "Buddha"
	CategoryBodhisattva Category = "Bodhisattva"
	CategoryDeity       Category = "Deity"
	CategoryMandala     Category = "Mandala"
	CategoryLandscape   Category = "Landscape"
	CategoryOther       Category = "Other"
)

// Categories returns all valid categories
func Categories() []Category {
	return []Category{
		CategoryBuddha,
		CategoryBodhisattva,
		CategoryDeity,
		CategoryMandala,
		CategoryLandscape,
		CategoryOther,
	}
}

// IsValid reports whether c is one of the known categories
func (c Category) IsValid() bool {
	switch c {
	case CategoryBuddha, CategoryBodhisattva, CategoryDeity,
		CategoryMandala, CategoryLandscape, CategoryOther:
		return true
	}
	return false
}

// Condition represents the physical condition of a piece
type Condition string

const (
	ConditionExcellent Condition = "Excellent"
	ConditionVeryGood  Condition = "Very Good"
	ConditionGood      Condition = "Good"
	ConditionFair      Condition = "Fair"
)

// IsValid reports whether c is one of the known conditions
func (c Condition) IsValid() bool {
	switch c {
	case ConditionExcellent, ConditionVeryGood, ConditionGood, ConditionFair:
		return true
	}
	return false
}

// Size represents the physical dimensions of a piece
type Size struct {
	Width  float64 `gorm:"not null" json:"width"`
	Height float64 `gorm:"not null" json:"height"`
	Unit   string  `gorm:"size:10;default:'cm'" json:"unit"`
}

// Product represents a catalog entry
type Product struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Name          string `gorm:"not null;size:200" json:"name"`
	Description   string `gorm:"type:text;not null" json:"description"`
	Price         int64  `gorm:"not null" json:"price"` // Price in minor currency units
	OriginalPrice int64  `json:"original_price"`        // Pre-discount price, 0 when not discounted
	// Stock and IsActive carry no column defaults: gorm omits zero-valued
	// fields with a default tag on insert, which would turn a deliberately
	// inactive or sold-out product into an active one with stock.
	Stock      int       `gorm:"not null" json:"stock"`
	IsActive   bool      `gorm:"not null" json:"is_active"`
	IsFeatured bool      `gorm:"not null" json:"is_featured"`
	Category   Category  `gorm:"not null;size:50;index" json:"category"`
	Condition  Condition `gorm:"size:20;default:'Good'" json:"condition"`
	Size       Size      `gorm:"embedded;embeddedPrefix:size_" json:"size"`
	Material   string    `gorm:"size:100" json:"material"`
	Artist     string    `gorm:"size:100" json:"artist"`
	Origin     string    `gorm:"size:100" json:"origin"`
	Tags       string    `gorm:"size:500" json:"tags"` // Comma-separated tags

	// Rating aggregate, recomputed atomically with every rating insertion
	AverageRating float64 `gorm:"default:0" json:"average_rating"`
	TotalReviews  int     `gorm:"default:0" json:"total_reviews"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Images  []ProductImage  `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images,omitempty"`
	Ratings []ProductRating `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"ratings,omitempty"`
}

// ProductImage represents a product image reference. Image files live in
// external storage; only the URL is persisted here.
type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	URL       string    `gorm:"not null;size:500" json:"url"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductRating represents a single user's rating of a product.
// A user may rate a product at most once.
type ProductRating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_product_ratings_user" json:"product_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_product_ratings_user" json:"user_id"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Review    string    `gorm:"size:500" json:"review,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides
func (Product) TableName() string       { return "products" }
func (ProductImage) TableName() string  { return "product_images" }
func (ProductRating) TableName() string { return "product_ratings" }

// Business methods for Product

// IsInStock reports whether the product has any stock left
func (p *Product) IsInStock() bool {
	return p.Stock > 0
}

// IsPurchasable reports whether the product can be added to a cart
func (p *Product) IsPurchasable() bool {
	return p.IsActive && p.IsInStock()
}

// GetFormattedPrice returns the price as a float in major units
func (p *Product) GetFormattedPrice() float64 {
	return float64(p.Price) / 100
}

// GetDiscountPercentage returns the discount relative to the original price
func (p *Product) GetDiscountPercentage() int {
	if p.OriginalPrice > 0 && p.Price < p.OriginalPrice {
		return int(((p.OriginalPrice - p.Price) * 100) / p.OriginalPrice)
	}
	return 0
}
