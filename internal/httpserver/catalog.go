package httpserver

import (
	"net/http"
	"strings"

	"commerce-sync/internal/domain"
	"github.com/gin-gonic/gin"
)

func listCatalogItemsHandler(svc catalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.List(c.Request.Context(), merchantFrom(c))
		if err != nil {
			writeError(c, err, nil, nil)
			return
		}
		if items == nil {
			items = []domain.CatalogItem{}
		}
		c.JSON(http.StatusOK, gin.H{"results": items, "count": len(items)})
	}
}

func getCatalogItemHandler(svc catalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := svc.Get(c.Request.Context(), merchantFrom(c), c.Param("id"))
		if err != nil {
			writeError(c, err, nil, nil)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func createCatalogItemHandler(svc catalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var spec domain.CatalogItemSpec
		if err := c.ShouldBindJSON(&spec); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		view, err := svc.Create(c.Request.Context(), merchantFrom(c), spec)
		if err != nil {
			var messages domain.ValidationErrors
			if view != nil {
				messages = view.Item.Errors
			}
			writeError(c, err, messages, view)
			return
		}
		c.JSON(http.StatusCreated, view)
	}
}

func updateCatalogItemHandler(svc catalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var spec domain.CatalogItemSpec
		if err := c.ShouldBindJSON(&spec); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		view, err := svc.Update(c.Request.Context(), merchantFrom(c), c.Param("id"), spec)
		if err != nil {
			var messages domain.ValidationErrors
			if view != nil {
				messages = view.Item.Errors
			}
			writeError(c, err, messages, view)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func deleteCatalogItemHandler(svc catalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := svc.Delete(c.Request.Context(), merchantFrom(c), c.Param("id"))
		if err != nil {
			var messages domain.ValidationErrors
			if item != nil {
				messages = item.Errors
			}
			writeError(c, err, messages, item)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func remoteCatalogItemsHandler(svc catalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.RemoteList(c.Request.Context(), merchantFrom(c), idsParam(c))
		if err != nil {
			writeError(c, err, nil, nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": items, "count": len(items)})
	}
}

// idsParam reads ?ids=a,b and repeated ?ids= values.
func idsParam(c *gin.Context) []string {
	var ids []string
	for _, raw := range c.QueryArray("ids") {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
