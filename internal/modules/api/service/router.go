package service

import (
	"strconv"
	"time"

	orders "stark_bridge/internal/modules/orders/service"
	"stark_bridge/pkg/logger"
	"stark_bridge/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// requestLogger пишет только 4xx/5xx, если не logAll.
func requestLogger(logAll bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequest(route, strconv.Itoa(status))

		if !logAll && status < 400 {
			return
		}
		msg := c.Errors.ByType(gin.ErrorTypePrivate).String()
		logger.Info("[GIN] %d | %v | %s | %-7s %s %s",
			status, time.Since(start), c.ClientIP(), c.Request.Method, c.Request.URL.Path, msg)
	}
}

func NewRouter(h *Handler, logAll bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logAll))

	onboarding := r.Group("/onboarding")
	{
		onboarding.GET("/referral-code", h.referralCode)
		onboarding.POST("/start", h.onboardingStart)
		onboarding.POST("/complete", h.onboardingComplete)
	}

	accounts := r.Group("/accounts")
	{
		accounts.POST("", h.upsertAccount)
		accounts.POST("/api-key/challenge", h.apiKeyChallenge)
		accounts.POST("/api-key", h.issueAPIKey)
	}

	session := r.Group("/session")
	{
		session.POST("/start", h.sessionStart)
		session.POST("/verify", h.sessionVerify)
	}

	ordersGroup := r.Group("/orders")
	{
		ordersGroup.POST("", h.placeOrder)
		ordersGroup.POST("/build", h.buildOrder)
		ordersGroup.POST("/create-and-place", h.createAndPlaceOrder)
		ordersGroup.GET("", h.private(orders.PathOrders, "status", "market"))
	}

	r.GET("/balances", h.private(orders.PathBalance))
	r.GET("/positions", h.private(orders.PathPositions, "market"))

	return r
}
