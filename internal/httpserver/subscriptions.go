package httpserver

import (
	"net/http"

	"commerce-sync/internal/domain"
	subscriptionsvc "commerce-sync/internal/service/subscription"
	"github.com/gin-gonic/gin"
)

func subscribeHandler(svc subscriptionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in subscriptionsvc.SubscribeInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		view, err := svc.Subscribe(c.Request.Context(), in)
		if err != nil {
			writeSubscriptionError(c, err, view)
			return
		}
		c.JSON(http.StatusCreated, view)
	}
}

func getSubscriptionHandler(svc subscriptionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err, nil, nil)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func cancelSubscriptionHandler(svc subscriptionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := svc.Cancel(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeSubscriptionError(c, err, view)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func reactivateSubscriptionHandler(svc subscriptionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := svc.Reactivate(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeSubscriptionError(c, err, view)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func writeSubscriptionError(c *gin.Context, err error, view *subscriptionsvc.View) {
	var messages domain.ValidationErrors
	if view != nil && view.Subscription != nil {
		messages = view.Subscription.Errors
	}
	writeError(c, err, messages, view)
}
