// internal/api/middleware.go
package api

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"swipe-screening/internal/auth"
	apperrors "swipe-screening/internal/common/errors"
	"swipe-screening/internal/models"
)

const principalKey = "principal"

const (
	candidateRole = models.RoleCandidate
	hrRole        = models.RoleHR
)

// requestLogger logs every request and records it on the HTTP metrics. Errors are
// rendered first so the logged status is the one the client saw.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogRoutePath: true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			route := v.RoutePath
			if route == "" {
				route = "unmatched"
			}
			if s.deps.Obs != nil {
				s.deps.Obs.RecordRequest(c.Request().Context(), v.Method, route, v.Status, v.Latency)
			}
			s.log.Debug("Request served", map[string]interface{}{
				"method":    v.Method,
				"uri":       v.URI,
				"status":    v.Status,
				"latencyMs": float64(v.Latency.Microseconds()) / 1000,
				"requestId": v.RequestID,
			})
			return nil
		},
	})
}

// authenticate resolves the bearer token and stores the caller on the context.
func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return apperrors.NewUnauthorizedError("missing bearer token")
		}
		p, err := s.deps.Auth.Authenticate(c.Request().Context(), token)
		if err != nil {
			return err
		}
		c.Set(principalKey, p)
		return next(c)
	}
}

func requireRole(role models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if principal(c).Account.Role() != role {
				return apperrors.NewForbiddenError("requires " + string(role) + " account")
			}
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// principal is only valid behind authenticate.
func principal(c echo.Context) *auth.Principal {
	return c.Get(principalKey).(*auth.Principal)
}

func hrAccount(c echo.Context) models.HRAccount {
	return principal(c).Account.(models.HRAccount)
}

func candidateAccount(c echo.Context) models.CandidateAccount {
	return principal(c).Account.(models.CandidateAccount)
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

// bind decodes the request body, reporting malformed input as a validation failure.
func bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return apperrors.NewValidationFailedError("malformed request body")
	}
	return nil
}

func now() time.Time {
	return time.Now().UTC()
}
