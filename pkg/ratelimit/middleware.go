package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"aviato/internal/shared/utils/response"
	"aviato/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Middleware applies per-IP rate limits, tiered by route
func Middleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := getClientIP(c)
		limitType := getLimitType(c.FullPath())

		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
		if err != nil {
			// A broken limiter must not take the API down
			logger.GetDefault().Warn("rate limit check failed, allowing request", "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetTime))

		if !result.Allowed {
			logger.GetDefault().LogRateLimitExceeded(c.Request.Context(), clientIP, c.FullPath())
			response.RespondJSON(c, "error", http.StatusTooManyRequests,
				"Rate limit exceeded", nil, map[string]interface{}{
					"limit":      result.Limit,
					"reset_time": result.ResetTime,
				})
			c.Abort()
			return
		}

		c.Next()
	}
}

// getLimitType buckets a route into a limit tier. Seat holds and bookings
// get the tightest budget since they contend for inventory rows.
func getLimitType(path string) LimitType {
	switch {
	case strings.Contains(path, "/admin/"):
		return LimitTypeAdmin

	case strings.Contains(path, "/hold"),
		strings.Contains(path, "/bookings"),
		strings.Contains(path, "/refunds"):
		return LimitTypeBooking

	case strings.Contains(path, "/flights"),
		strings.Contains(path, "/flash-sales"),
		strings.Contains(path, "/seats"),
		strings.Contains(path, "/auth/"):
		return LimitTypePublic

	default:
		return LimitTypeDefault
	}
}

// getClientIP extracts the real client IP, honoring proxy headers
func getClientIP(c *gin.Context) string {
	xForwardedFor := c.GetHeader("X-Forwarded-For")
	if xForwardedFor != "" {
		ips := strings.Split(xForwardedFor, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	xRealIP := c.GetHeader("X-Real-IP")
	if xRealIP != "" {
		if net.ParseIP(xRealIP) != nil {
			return xRealIP
		}
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}

	return ip
}
