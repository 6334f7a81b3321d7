// Package middleware provides authentication, logging and rate limiting middleware.
package middleware

import (
	"context"
	"strconv"
	"strings"

	"dakku/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Token issuer and audience claims. Tokens minted by the auth handlers carry
// these values and the parser rejects anything else.
const (
	TokenIssuer   = "dakku-api"
	TokenAudience = "dakku-client"
)

var cfg *config.Config

// revocationCheck reports whether a token ID has been revoked. Wired by the
// server when Redis is available; nil means no revocation store.
var revocationCheck func(ctx context.Context, jti string) bool

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// SetRevocationCheck installs the token revocation lookup used by AuthRequired.
func SetRevocationCheck(fn func(ctx context.Context, jti string) bool) {
	revocationCheck = fn
}

// userIDFromBearer parses the Authorization header and returns the user ID
// from the token's subject claim along with the token ID.
func userIDFromBearer(c *fiber.Ctx) (uint, string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Authorization header required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithIssuer(TokenIssuer), jwt.WithAudience(TokenAudience))
	if err != nil || !token.Valid {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	// Subject claim carries the user ID per RFC 7519.
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token structure - missing subject")
	}

	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}

	jti, _ := claims["jti"].(string)

	return uint(userID), jti, nil
}

// AuthRequired enforces authentication for protected routes. The resolved
// user ID is stored in c.Locals("userID") and synced into the request context
// for downstream logging.
func AuthRequired(c *fiber.Ctx) error {
	userID, jti, err := userIDFromBearer(c)
	if err != nil {
		msg := "Unauthorized"
		status := fiber.StatusUnauthorized
		if fe, ok := err.(*fiber.Error); ok {
			msg = fe.Message
			status = fe.Code
		}
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	if revocationCheck != nil && jti != "" && revocationCheck(c.UserContext(), jti) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token has been revoked"})
	}

	c.Locals("userID", userID)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
	return c.Next()
}

// OptionalAuth resolves the user ID when a valid token is present but lets
// anonymous requests through. Used on public reads that personalize output,
// such as the liked flag on a post detail.
func OptionalAuth(c *fiber.Ctx) error {
	if c.Get("Authorization") == "" {
		return c.Next()
	}

	userID, jti, err := userIDFromBearer(c)
	if err != nil {
		return c.Next()
	}
	if revocationCheck != nil && jti != "" && revocationCheck(c.UserContext(), jti) {
		return c.Next()
	}

	c.Locals("userID", userID)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
	return c.Next()
}

// TokenClaims extracts the token ID and expiry from a raw signed token. Used
// by logout to blacklist the presented token for its remaining lifetime.
func TokenClaims(tokenString string) (jti string, exp int64, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithIssuer(TokenIssuer), jwt.WithAudience(TokenAudience))
	if err != nil || !token.Valid {
		return "", 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	jti, _ = claims["jti"].(string)
	expTime, err := claims.GetExpirationTime()
	if err != nil || expTime == nil {
		return "", 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid token expiry")
	}

	return jti, expTime.Unix(), nil
}
