package middleware

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/services"
	"github.com/staynest/booking-backend/internal/utils"
)

// RateLimit throttles requests per client IP
func RateLimit(limiter *services.RateLimitService, limitType string, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := utils.ClientIP(c)

		err := limiter.Check(limitType, ip)
		if err == nil {
			c.Next()
			return
		}

		var rateErr *services.RateLimitError
		if !errors.As(err, &rateErr) {
			c.Next()
			return
		}

		retryAfter := int(math.Ceil(time.Until(rateErr.RetryAfter).Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}

		logger.WithFields(logrus.Fields{
			"ip":   ip,
			"type": limitType,
			"path": c.Request.URL.Path,
		}).Warn("Rate limit exceeded")

		c.Header("Retry-After", strconv.Itoa(retryAfter))
		abortJSON(c, http.StatusTooManyRequests, "rate_limited", rateErr.Message, "RATE_LIMIT_EXCEEDED")
	}
}
