// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/thangka-store-backend/internal/domain/cart"
	"github.com/your-org/thangka-store-backend/internal/domain/order"
	"github.com/your-org/thangka-store-backend/internal/domain/post"
	"github.com/your-org/thangka-store-backend/internal/domain/product"
	"github.com/your-org/thangka-store-backend/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
)

// Migration handles database migrations
type Migration struct {
	conn *Connection
}

// NewMigration creates a new migration instance
func NewMigration(conn *Connection) *Migration {
	return &Migration{
		conn: conn,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		&user.User{},

		&product.Product{},
		&product.ProductImage{},
		&product.ProductRating{},

		&cart.Cart{},
		&cart.CartItem{},

		&order.Order{},
		&order.OrderItem{},

		&post.Post{},
		&post.PostLike{},
		&post.PostComment{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.conn.DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",

		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_featured ON products(is_featured, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_cart_items_cart_product ON cart_items(cart_id, product_id)",

		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",

		"CREATE INDEX IF NOT EXISTS idx_posts_published_created ON posts(is_published, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_post_comments_post ON post_comments(post_id, created_at DESC)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.conn.DB.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := m.seedSampleProducts(); err != nil {
		return fmt.Errorf("failed to seed sample products: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

func (m *Migration) seedAdminUser() error {
	log.Println("👤 Seeding admin user...")

	var existing user.User
	result := m.conn.DB.Where("email = ?", "admin@example.com").First(&existing)
	if result.Error == nil {
		log.Printf("⏭️ Admin user already exists with ID: %d", existing.ID)
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), 10)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	adminUser := user.User{
		Email:     "admin@example.com",
		Password:  string(hashedPassword),
		FirstName: "Admin",
		LastName:  "User",
		IsActive:  true,
		IsAdmin:   true,
	}

	if err := m.conn.DB.Create(&adminUser).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Println("✅ Created admin user: admin@example.com (password: admin123)")
	return nil
}

func (m *Migration) seedSampleProducts() error {
	log.Println("🛍️ Seeding sample products...")

	var productCount int64
	m.conn.DB.Model(&product.Product{}).Count(&productCount)
	if productCount > 0 {
		log.Println("⏭️ Products already exist")
		return nil
	}

	samples := []product.Product{
		{
			Name:        "Shakyamuni Buddha Thangka",
			Description: "Hand-painted Shakyamuni Buddha thangka on cotton canvas with mineral pigments and 24k gold detailing. Painted in Kathmandu by a master artist over several months.",
			Price:       45000,
			Stock:       1,
			IsActive:    true,
			IsFeatured:  true,
			Category:    product.CategoryBuddha,
			Condition:   product.ConditionExcellent,
			Size:        product.Size{Width: 50, Height: 70, Unit: "cm"},
			Material:    "Cotton canvas, mineral pigments, gold",
			Origin:      "Nepal",
			Tags:        "buddha,shakyamuni,gold,hand-painted",
		},
		{
			Name:        "Green Tara Thangka",
			Description: "Traditional Green Tara thangka depicting the goddess of compassion in her classic posture, surrounded by lotus flowers and auspicious symbols.",
			Price:       32000,
			Stock:       2,
			IsActive:    true,
			IsFeatured:  true,
			Category:    product.CategoryBodhisattva,
			Condition:   product.ConditionVeryGood,
			Size:        product.Size{Width: 45, Height: 60, Unit: "cm"},
			Material:    "Cotton canvas, mineral pigments",
			Origin:      "Tibet",
			Tags:        "tara,green tara,compassion",
		},
		{
			Name:        "Kalachakra Mandala Thangka",
			Description: "Intricate Kalachakra mandala with fine geometric detail, painted in the traditional Menri style.",
			Price:       58000,
			Stock:       1,
			IsActive:    true,
			Category:    product.CategoryMandala,
			Condition:   product.ConditionExcellent,
			Size:        product.Size{Width: 60, Height: 60, Unit: "cm"},
			Material:    "Cotton canvas, mineral pigments, gold",
			Origin:      "Nepal",
			Tags:        "mandala,kalachakra,menri",
		},
	}

	for _, prod := range samples {
		if err := m.conn.DB.Create(&prod).Error; err != nil {
			log.Printf("⚠️ Failed to create sample product %s: %v", prod.Name, err)
		} else {
			log.Printf("✅ Created sample product: %s", prod.Name)
		}
	}

	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	log.Println("⚠️ WARNING: Dropping all database tables...")

	// Reverse dependency order
	tables := []string{
		"post_comments",
		"post_likes",
		"posts",
		"order_items",
		"orders",
		"cart_items",
		"carts",
		"product_ratings",
		"product_images",
		"products",
		"users",
	}

	for _, table := range tables {
		if err := m.conn.DB.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			log.Printf("⚠️ Failed to drop table %s: %v", table, err)
		} else {
			log.Printf("🗑️ Dropped table: %s", table)
		}
	}

	log.Println("✅ All tables dropped successfully")
	return nil
}
