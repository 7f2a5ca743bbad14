package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kindergarten-canvas/backend/internal/app/models/dto"
	"github.com/kindergarten-canvas/backend/internal/pkg/ratelimit"
	"github.com/rs/zerolog"
)

// RateLimitOptions configures RateLimit.
type RateLimitOptions struct {
	// SkipSuccessful takes back the hit of requests answered with a status
	// below 400, so only failures count.
	SkipSuccessful bool
	Message        string
	Logger         zerolog.Logger
}

// RateLimit limits requests per client IP. A failing store lets requests
// through and logs the error.
func RateLimit(limiter *ratelimit.Limiter, opts RateLimitOptions) gin.HandlerFunc {
	if opts.Message == "" {
		opts.Message = dto.MsgRateLimitExceeded
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ip := c.ClientIP()

		res, err := limiter.Allow(ctx, ip)
		if err != nil {
			opts.Logger.Error().Err(err).Str("client_ip", ip).Msg("Rate limiter unavailable")
			c.Next()
			return
		}

		c.Header("RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
		c.Header("RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))

		if !res.Allowed {
			retryAfter := int(math.Ceil(res.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			opts.Logger.Warn().
				Str("client_ip", ip).
				Str("path", c.Request.URL.Path).
				Int64("count", res.Count).
				Msg("Rate limit exceeded")
			RespondError(c, http.StatusTooManyRequests, dto.NewErrorDetail(dto.ErrorCodeRateLimit, opts.Message))
			return
		}

		c.Next()

		if opts.SkipSuccessful && c.Writer.Status() < http.StatusBadRequest {
			if err := limiter.Undo(ctx, ip); err != nil {
				opts.Logger.Warn().Err(err).Str("client_ip", ip).Msg("Failed to undo rate limit hit")
			}
		}
	}
}
