// internal/interfaces/http/handlers/response.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/thangka-store-backend/internal/pkg/apperr"
)

// respondError maps service errors to HTTP status codes. Validation errors
// and domain sentinels translate to 4xx; anything unrecognized is a 500
// with a generic message so internals never leak to clients.
func respondError(c *gin.Context, err error) {
	var validationErr *apperr.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Error(),
			"field": validationErr.Field,
		})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Resource not found",
		})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Not authorized",
		})
	case errors.Is(err, apperr.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Insufficient stock",
		})
	case errors.Is(err, apperr.ErrUnavailable):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Product is not available",
		})
	case errors.Is(err, apperr.ErrDuplicateRating):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Product already rated",
		})
	case errors.Is(err, apperr.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Cart is empty",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
