// internal/domain/product/service.go
package product

import (
	"fmt"
	"strings"

	"github.com/your-org/thangka-store-backend/internal/config"
	"github.com/your-org/thangka-store-backend/internal/pkg/apperr"
	"gorm.io/gorm"
)

// Service handles catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	Name          string    `json:"name" binding:"required,max=200"`
	Description   string    `json:"description" binding:"required"`
	Price         int64     `json:"price" binding:"min=0"`
	OriginalPrice int64     `json:"original_price" binding:"min=0"`
	Stock         int       `json:"stock" binding:"min=0"`
	Category      Category  `json:"category" binding:"required"`
	Condition     Condition `json:"condition"`
	Size          Size      `json:"size"`
	Material      string    `json:"material"`
	Artist        string    `json:"artist"`
	Origin        string    `json:"origin"`
	Tags          string    `json:"tags"`
	IsActive      *bool     `json:"is_active"`
	IsFeatured    *bool     `json:"is_featured"`
	ImageURLs     []string  `json:"image_urls"`
}

// UpdateProductRequest represents product update data; nil fields are left unchanged
type UpdateProductRequest struct {
	Name          *string    `json:"name,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Price         *int64     `json:"price,omitempty"`
	OriginalPrice *int64     `json:"original_price,omitempty"`
	Stock         *int       `json:"stock,omitempty"`
	Category      *Category  `json:"category,omitempty"`
	Condition     *Condition `json:"condition,omitempty"`
	Size          *Size      `json:"size,omitempty"`
	Material      *string    `json:"material,omitempty"`
	Artist        *string    `json:"artist,omitempty"`
	Origin        *string    `json:"origin,omitempty"`
	Tags          *string    `json:"tags,omitempty"`
	IsActive      *bool      `json:"is_active,omitempty"`
	IsFeatured    *bool      `json:"is_featured,omitempty"`
}

// ProductListRequest represents catalog list query parameters
type ProductListRequest struct {
	Page      int      `form:"page,default=1"`
	Limit     int      `form:"limit,default=12"`
	Category  Category `form:"category"`
	MinPrice  *int64   `form:"min_price"`
	MaxPrice  *int64   `form:"max_price"`
	Search    string   `form:"search"`
	SortBy    string   `form:"sort_by,default=created_at"`
	SortOrder string   `form:"sort_order,default=desc"`

	// IncludeInactive is only honored for admin listings
	IncludeInactive bool `form:"-"`
}

// ProductListResponse represents a product page with pagination
type ProductListResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// CreateProduct creates a new catalog entry
func (s *Service) CreateProduct(req *CreateProductRequest) (*Product, error) {
	if !req.Category.IsValid() {
		return nil, apperr.Validation("category", fmt.Sprintf("invalid category %q", req.Category))
	}

	condition := req.Condition
	if condition == "" {
		condition = ConditionGood
	}
	if !condition.IsValid() {
		return nil, apperr.Validation("condition", fmt.Sprintf("invalid condition %q", condition))
	}

	if req.OriginalPrice > 0 && req.OriginalPrice < req.Price {
		return nil, apperr.Validation("original_price", "cannot be lower than price")
	}

	prod := Product{
		Name:          strings.TrimSpace(req.Name),
		Description:   strings.TrimSpace(req.Description),
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Stock:         req.Stock,
		Category:      req.Category,
		Condition:     condition,
		Size:          req.Size,
		Material:      strings.TrimSpace(req.Material),
		Artist:        strings.TrimSpace(req.Artist),
		Origin:        strings.TrimSpace(req.Origin),
		Tags:          req.Tags,
		IsActive:      true,
	}
	if req.IsActive != nil {
		prod.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		prod.IsFeatured = *req.IsFeatured
	}
	if prod.Size.Unit == "" {
		prod.Size.Unit = "cm"
	}
	for i, url := range req.ImageURLs {
		prod.Images = append(prod.Images, ProductImage{URL: url, SortOrder: i})
	}

	if err := s.db.Create(&prod).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return &prod, nil
}

// UpdateProduct applies a partial update to a catalog entry
func (s *Service) UpdateProduct(id uint, req *UpdateProductRequest) (*Product, error) {
	var prod Product
	if err := s.db.First(&prod, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, apperr.Validation("price", "cannot be negative")
		}
		updates["price"] = *req.Price
	}
	if req.OriginalPrice != nil {
		updates["original_price"] = *req.OriginalPrice
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, apperr.Validation("stock", "cannot be negative")
		}
		updates["stock"] = *req.Stock
	}
	if req.Category != nil {
		if !req.Category.IsValid() {
			return nil, apperr.Validation("category", fmt.Sprintf("invalid category %q", *req.Category))
		}
		updates["category"] = *req.Category
	}
	if req.Condition != nil {
		if !req.Condition.IsValid() {
			return nil, apperr.Validation("condition", fmt.Sprintf("invalid condition %q", *req.Condition))
		}
		updates["condition"] = *req.Condition
	}
	if req.Size != nil {
		updates["size_width"] = req.Size.Width
		updates["size_height"] = req.Size.Height
		if req.Size.Unit != "" {
			updates["size_unit"] = req.Size.Unit
		}
	}
	if req.Material != nil {
		updates["material"] = strings.TrimSpace(*req.Material)
	}
	if req.Artist != nil {
		updates["artist"] = strings.TrimSpace(*req.Artist)
	}
	if req.Origin != nil {
		updates["origin"] = strings.TrimSpace(*req.Origin)
	}
	if req.Tags != nil {
		updates["tags"] = *req.Tags
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}

	if len(updates) == 0 {
		return &prod, nil
	}

	if err := s.db.Model(&prod).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return s.GetProduct(id)
}

// DeleteProduct soft-deletes a catalog entry. Carts referencing it are
// healed on their next read; orders keep their snapshots.
func (s *Service) DeleteProduct(id uint) error {
	result := s.db.Delete(&Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// GetProduct retrieves a single catalog entry with images and ratings
func (s *Service) GetProduct(id uint) (*Product, error) {
	var prod Product
	result := s.db.
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Ratings", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&prod, id)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &prod, nil
}

// GetProducts retrieves catalog entries with filtering and pagination.
// Non-admin listings only see active products.
func (s *Service) GetProducts(req *ProductListRequest) (*ProductListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 12
	}

	query := s.db.Model(&Product{}).Preload("Images")

	if !req.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if req.Category != "" {
		if !req.Category.IsValid() {
			return nil, apperr.Validation("category", fmt.Sprintf("invalid category %q", req.Category))
		}
		query = query.Where("category = ?", req.Category)
	}
	if req.MinPrice != nil {
		query = query.Where("price >= ?", *req.MinPrice)
	}
	if req.MaxPrice != nil {
		query = query.Where("price <= ?", *req.MaxPrice)
	}
	if req.Search != "" {
		searchTerm := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(artist) LIKE ? OR LOWER(tags) LIKE ?",
			searchTerm, searchTerm, searchTerm, searchTerm,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	query = query.Order(s.buildOrderClause(req.SortBy, req.SortOrder))

	offset := (req.Page - 1) * req.Limit
	var products []Product
	if err := query.Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ProductListResponse{
		Products: products,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// GetFeaturedProducts retrieves the most recent featured, active products
func (s *Service) GetFeaturedProducts(limit int) ([]Product, error) {
	if limit <= 0 || limit > 50 {
		limit = 8
	}

	var products []Product
	err := s.db.
		Preload("Images").
		Where("is_active = ? AND is_featured = ?", true, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve featured products: %w", err)
	}

	return products, nil
}

func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at":     true,
		"updated_at":     true,
		"price":          true,
		"name":           true,
		"average_rating": true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}
