package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"commerce-sync/internal/domain"
	"github.com/gin-gonic/gin"
)

type ctxKey string

const merchantCtxKey ctxKey = "merchant"

// merchantMiddleware resolves :merchantKey and stores the merchant on the request context.
func merchantMiddleware(repo merchantRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.Param("merchantKey"))
		if key == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "merchant key required"})
			return
		}
		m, err := repo.GetByKey(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "merchant not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to load merchant"})
			return
		}
		ctx := context.WithValue(c.Request.Context(), merchantCtxKey, m)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func merchantFrom(c *gin.Context) *domain.Merchant {
	m, _ := c.Request.Context().Value(merchantCtxKey).(*domain.Merchant)
	return m
}
