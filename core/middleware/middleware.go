package middleware

import (
	"context"
	"net/http"
	"time"

	"nuon-api/core/cache"
	"nuon-api/core/constants"
	"nuon-api/core/controller"
	"nuon-api/core/errors"
	"nuon-api/core/logger"
	"nuon-api/core/utils"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Middleware struct {
	cache cache.Cache
}

func NewMiddleware(c cache.Cache) *Middleware {
	return &Middleware{cache: c}
}

// AuthMiddleware validates the bearer access token and stores its claims
// under constants.ContextTokenData.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := utils.GetTokenFromHeader(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				code := errors.ErrInvalidTokenFormat
				if err == utils.ErrMissingToken {
					code = errors.ErrMissingAuthorizationHeader
				}
				return controller.NewErrorResponse(http.StatusUnauthorized, code, err.Error())
			}

			claims, err := utils.ValidateAndParseToken(token)
			if err != nil {
				code := errors.ErrUnauthorized
				if err == utils.ErrTokenExpired {
					code = errors.ErrTokenExpired
				}
				return controller.NewErrorResponse(http.StatusUnauthorized, code, err.Error())
			}

			if m.cache != nil {
				ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second)
				blacklisted, err := m.cache.IsTokenBlacklisted(ctx, token)
				cancel()
				if err != nil {
					logger.Warn("Middleware:AuthMiddleware:Blacklist", "error", err)
				} else if blacklisted {
					return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrUnauthorized, "token has been revoked")
				}
			}

			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}

// RequireRole must run after AuthMiddleware.
func (m *Middleware) RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
			if !ok || claims == nil {
				return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrUnauthorized, "unauthorized")
			}
			if !claims.HasRole(roles...) {
				return controller.NewErrorResponse(http.StatusForbidden, errors.ErrForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}

func RequestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			keyvals := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.String(),
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				keyvals = append(keyvals, "error", v.Error.Error())
				logger.Warn("HTTP:Request", keyvals...)
				return nil
			}
			logger.Info("HTTP:Request", keyvals...)
			return nil
		},
	})
}
