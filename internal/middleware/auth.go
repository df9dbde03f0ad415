package middleware

import (
	"net/http"
	"strings"

	"github.com/bahriwassim/zishop1-sub000/pkg/jwtutil"
	"github.com/bahriwassim/zishop1-sub000/pkg/logger"
	"github.com/bahriwassim/zishop1-sub000/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const claimsKey = "claims"

// AuthMiddleware validates the bearer token and stores its claims.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Warn("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		c.Set(claimsKey, claims)
		c.Set(logger.EchoKey, log.With(zap.String("subject", claims.Subject)))
		return next(c)
	}
}

// ClaimsFrom returns the claims stored by AuthMiddleware.
func ClaimsFrom(c echo.Context) (*jwtutil.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*jwtutil.Claims)
	return claims, ok
}
