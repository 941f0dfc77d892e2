package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"

	"github.com/sipalaciosv/inspeccion-vehicular/internal/metrics"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/model"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/repository"
)

// Context keys set by the authentication middleware
const (
	contextUserKey = "current_user"
)

// Logger returns a gin middleware for logging requests
func Logger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		clientIP := c.ClientIP()
		method := c.Request.Method

		entry := log.WithFields(logrus.Fields{
			"status":     statusCode,
			"latency":    latency,
			"client_ip":  clientIP,
			"method":     method,
			"path":       path,
			"request_id": c.GetHeader("X-Request-ID"),
		})

		if statusCode >= 500 {
			entry.Error("Server error")
		} else if statusCode >= 400 {
			entry.Warn("Client error")
		} else {
			entry.Info("Request processed")
		}
	}
}

// Metrics returns a gin middleware recording request metrics
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		collector := metrics.GetMetricsCollector()
		collector.RecordHTTPRequest(c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// NewRelicMiddleware returns a gin middleware for New Relic tracing
func NewRelicMiddleware(app *newrelic.Application) gin.HandlerFunc {
	return nrgin.Middleware(app)
}

// CORS returns a gin middleware handling cross-origin requests. An empty
// whitelist or a "*" entry allows every origin; otherwise only listed
// origins receive the allow headers.
func CORS(whitelist []string) gin.HandlerFunc {
	allowAll := len(whitelist) == 0
	allowed := make(map[string]bool, len(whitelist))
	for _, origin := range whitelist {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-ID, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Authenticate resolves the calling user from the X-User-ID header and
// stores the profile on the request context. Requests without a resolvable
// user are rejected.
func Authenticate(userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(ErrUnauthorized.StatusCode, ErrorResponse{
				Message: ErrUnauthorized.Message,
				Code:    ErrUnauthorized.Code,
			})
			return
		}

		user, err := userRepo.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(ErrUnauthorized.StatusCode, ErrorResponse{
				Message: ErrUnauthorized.Message,
				Code:    ErrUnauthorized.Code,
			})
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// RequireRole gates a route group behind a single role check. The check
// reads the profile resolved by Authenticate; there is exactly one place
// deciding capability.
func RequireRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || user.Role != role {
			c.AbortWithStatusJSON(ErrForbidden.StatusCode, ErrorResponse{
				Message: ErrForbidden.Message,
				Code:    ErrForbidden.Code,
			})
			return
		}
		c.Next()
	}
}

// currentUser returns the authenticated user profile, or nil
func currentUser(c *gin.Context) *model.User {
	value, exists := c.Get(contextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*model.User)
	if !ok {
		return nil
	}
	return user
}
