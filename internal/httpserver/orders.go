package httpserver

import (
	"net/http"

	"commerce-sync/internal/domain"
	ordersvc "commerce-sync/internal/service/order"
	"github.com/gin-gonic/gin"
)

func listOrdersHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.List(c.Request.Context(), merchantFrom(c))
		if err != nil {
			writeError(c, err, nil, nil)
			return
		}
		if orders == nil {
			orders = []domain.PurchaseOrder{}
		}
		c.JSON(http.StatusOK, gin.H{"results": orders, "count": len(orders)})
	}
}

func getOrderHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := svc.Get(c.Request.Context(), merchantFrom(c), c.Param("id"))
		if err != nil {
			writeError(c, err, nil, nil)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func createOrderHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in ordersvc.CreateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		view, err := svc.Create(c.Request.Context(), merchantFrom(c), in)
		if err != nil {
			writeOrderError(c, err, view)
			return
		}
		c.JSON(http.StatusCreated, view)
	}
}

func updateOrderHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in ordersvc.UpdateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		view, err := svc.Update(c.Request.Context(), merchantFrom(c), c.Param("id"), in)
		if err != nil {
			writeOrderError(c, err, view)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func payOrderHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in ordersvc.PayInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		view, err := svc.Pay(c.Request.Context(), merchantFrom(c), c.Param("id"), in)
		if err != nil {
			writeOrderError(c, err, view)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func quoteTaxHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := svc.QuoteTax(c.Request.Context(), merchantFrom(c), c.Param("id"))
		if err != nil {
			writeOrderError(c, err, view)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func remoteOrdersHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.RemoteList(c.Request.Context(), merchantFrom(c), idsParam(c))
		if err != nil {
			writeError(c, err, nil, nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": orders, "count": len(orders)})
	}
}

func writeOrderError(c *gin.Context, err error, view *ordersvc.View) {
	var messages domain.ValidationErrors
	if view != nil && view.Order != nil {
		messages = view.Order.Errors
	}
	writeError(c, err, messages, view)
}
