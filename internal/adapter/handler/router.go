package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type RouterConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(h *BookingHandler, cfg RouterConfig, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(log))
	router.Use(Recovery(log))
	if cfg.RateLimitRPS > 0 {
		router.Use(RateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst), log))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
			"service":   "booking-management-system",
		})
	})

	v1 := router.Group("/api/v1")
	{
		orders := v1.Group("/orders")
		orders.POST("/blockOrder", h.BlockOrder)
		orders.POST("/confirmOrder", h.ConfirmOrder)

		v1.GET("/resources/:id/availability", h.GetAvailability)
	}

	return router
}
