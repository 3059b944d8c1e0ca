package middlewares

import (
	"auction-house/cmd/server/ctxkeys"
	"auction-house/cmd/server/handlers/httperr"
	"auction-house/internal/config"
	"auction-house/internal/logger"
	"auction-house/internal/services/auth"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWT returns a configured Fiber middleware that:
//
//   - validates the Bearer token signature using cfg.JWTSecret (HS256 only)
//   - makes sure the token carries "id" and "email" claims
//   - stores those values in ctx.Locals under ctxkeys.UserIDKey and
//     ctxkeys.UserEmailKey so downstream handlers can trust them.
//
// On any problem it bubbles up a 401 via the global httperr handler.
func JWT(cfg config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		ContextKey: ctxkeys.TokenKey,
		SuccessHandler: func(c *fiber.Ctx) error {
			token := c.Locals(ctxkeys.TokenKey).(*jwt.Token)
			userID, email, ok := IdentityFromClaims(token)
			if !ok {
				logger.L().Warn("token missing identity claims", "path", c.Path())
				return httperr.Fail(httperr.ErrUnauthorized)
			}

			c.Locals(ctxkeys.UserIDKey, userID)
			c.Locals(ctxkeys.UserEmailKey, email)
			return c.Next()
		},

		// Override the default "unauthorized" JSON to match the project style
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			logger.L().Debug("jwt rejected", "path", c.Path(), "error", err)
			return httperr.Fail(httperr.ErrUnauthorized)
		},
	})
}

// IdentityFromClaims reads the user id and email a login token carries.
func IdentityFromClaims(token *jwt.Token) (userID, email string, ok bool) {
	if token == nil {
		return "", "", false
	}
	claims, isMap := token.Claims.(jwt.MapClaims)
	if !isMap {
		return "", "", false
	}
	userID, _ = claims[auth.ClaimUserID].(string)
	email, _ = claims[auth.ClaimEmail].(string)
	return userID, email, userID != "" && email != ""
}
