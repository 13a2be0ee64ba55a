package httpgin

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/barberbook/internal/auth"
)

const ctxUserID = "user_id"

func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}

		c.Writer.Header().Set("X-Request-ID", reqID)
		c.Set("request_id", reqID)

		c.Next()
	}
}

func CORS() gin.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			"GET", "POST", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
			"If-None-Match",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"ETag",
			"Cache-Control",
			"Retry-After",
		},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	return cors.New(cfg)
}

func LoggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery
		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		reqID, _ := c.Get("request_id")
		attrs := []any{
			slog.Int("status", c.Writer.Status()),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("ip", c.ClientIP()),
			slog.String("ua", c.Request.UserAgent()),
			slog.Any("request_id", reqID),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes_out", c.Writer.Size()),
		}

		if userID := c.GetString(ctxUserID); userID != "" {
			attrs = append(attrs, slog.String("user_id", userID))
		}

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusInternalServerError {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
			logger.Error("http", slog.Group("http", attrs...))
			return
		}

		logger.Info("http", slog.Group("http", attrs...))
	}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// token subject under "user_id".
func RequireAuth(v *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := auth.FromHeader(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "missing bearer token"})
			return
		}

		sub, err := v.Subject(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
			return
		}

		c.Set(ctxUserID, sub)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin(v *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !v.IsAdmin(c.GetString(ctxUserID)) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "admin only"})
			return
		}

		c.Next()
	}
}
