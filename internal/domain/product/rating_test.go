package product

import (
	"errors"
	"testing"

	"github.com/your-org/thangka-store-backend/internal/pkg/apperr"
)

func TestAddRating(t *testing.T) {
	t.Run("recomputes the aggregate with each rating", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestService(t, db)
		prod := createTestProduct(t, svc, &CreateProductRequest{
			Name: "White Tara", Description: "x", Price: 40000, Stock: 1,
			Category: CategoryBodhisattva,
		})

		summary, err := svc.AddRating(prod.ID, 1, &AddRatingRequest{Rating: 5, Review: "Stunning detail"})
		if err != nil {
			t.Fatalf("AddRating failed: %v", err)
		}
		if summary.AverageRating != 5 || summary.TotalReviews != 1 {
			t.Errorf("unexpected summary after first rating: %+v", summary)
		}

		summary, err = svc.AddRating(prod.ID, 2, &AddRatingRequest{Rating: 4})
		if err != nil {
			t.Fatalf("AddRating failed: %v", err)
		}
		if summary.AverageRating != 4.5 || summary.TotalReviews != 2 {
			t.Errorf("unexpected summary after second rating: %+v", summary)
		}

		// Aggregate columns match the summary
		var reloaded Product
		db.First(&reloaded, prod.ID)
		if reloaded.AverageRating != 4.5 || reloaded.TotalReviews != 2 {
			t.Errorf("aggregate columns out of sync: avg=%v reviews=%d",
				reloaded.AverageRating, reloaded.TotalReviews)
		}
	})

	t.Run("duplicate rating leaves the aggregate untouched", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestService(t, db)
		prod := createTestProduct(t, svc, &CreateProductRequest{
			Name: "White Tara", Description: "x", Price: 40000, Stock: 1,
			Category: CategoryBodhisattva,
		})

		if _, err := svc.AddRating(prod.ID, 1, &AddRatingRequest{Rating: 3}); err != nil {
			t.Fatalf("AddRating failed: %v", err)
		}

		_, err := svc.AddRating(prod.ID, 1, &AddRatingRequest{Rating: 5})
		if !errors.Is(err, apperr.ErrDuplicateRating) {
			t.Fatalf("expected ErrDuplicateRating, got %v", err)
		}

		var reloaded Product
		db.First(&reloaded, prod.ID)
		if reloaded.AverageRating != 3 || reloaded.TotalReviews != 1 {
			t.Errorf("aggregate changed after rejected rating: avg=%v reviews=%d",
				reloaded.AverageRating, reloaded.TotalReviews)
		}
	})

	t.Run("rejects out-of-range rating", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestService(t, db)
		prod := createTestProduct(t, svc, &CreateProductRequest{
			Name: "White Tara", Description: "x", Price: 40000, Stock: 1,
			Category: CategoryBodhisattva,
		})

		if _, err := svc.AddRating(prod.ID, 1, &AddRatingRequest{Rating: 6}); !apperr.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
		if _, err := svc.AddRating(prod.ID, 1, &AddRatingRequest{Rating: 0}); !apperr.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestService(t, db)

		_, err := svc.AddRating(999, 1, &AddRatingRequest{Rating: 4})
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestGetRatings(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	prod := createTestProduct(t, svc, &CreateProductRequest{
		Name: "White Tara", Description: "x", Price: 40000, Stock: 1,
		Category: CategoryBodhisattva,
	})

	if _, err := svc.AddRating(prod.ID, 1, &AddRatingRequest{Rating: 5, Review: "first"}); err != nil {
		t.Fatalf("AddRating failed: %v", err)
	}
	if _, err := svc.AddRating(prod.ID, 2, &AddRatingRequest{Rating: 4, Review: "second"}); err != nil {
		t.Fatalf("AddRating failed: %v", err)
	}

	ratings, err := svc.GetRatings(prod.ID)
	if err != nil {
		t.Fatalf("GetRatings failed: %v", err)
	}
	if len(ratings) != 2 {
		t.Fatalf("expected 2 ratings, got %d", len(ratings))
	}

	if _, err := svc.GetRatings(999); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown product, got %v", err)
	}
}
