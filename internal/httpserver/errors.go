package httpserver

import (
	"errors"
	"net/http"
	"net/url"

	"commerce-sync/internal/domain"
	ordersvc "commerce-sync/internal/service/order"
	"github.com/gin-gonic/gin"
)

// writeError maps service errors to status codes. For provider rejections the
// entity's recorded messages and its current state are included.
func writeError(c *gin.Context, err error, messages domain.ValidationErrors, data any) {
	var urlErr *url.Error
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrAlreadyCreated), errors.Is(err, domain.ErrNotCreated), errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRejected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": messages.Last(), "errors": messages, "data": data})
	case errors.Is(err, ordersvc.ErrTaxUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.As(err, &urlErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "provider unreachable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
