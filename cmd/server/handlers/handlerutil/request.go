package handlerutil

import (
	"errors"

	"auction-house/cmd/server/ctxkeys"
	"auction-house/cmd/server/handlers/httperr"
	"auction-house/internal/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// GetUserID extracts user ID from fiber context
func GetUserID(c *fiber.Ctx) (bson.ObjectID, error) {
	userIDStr, ok := c.Locals(ctxkeys.UserIDKey).(string)
	if !ok {
		logger.L().Error("user ID not found in context", "handler", "getUserID", "path", c.Path())
		return bson.ObjectID{}, httperr.Fail(httperr.ErrUserNotAuthenticated)
	}

	userID, err := bson.ObjectIDFromHex(userIDStr)
	if err != nil {
		logger.L().Error("invalid user ID", "handler", "getUserID", "userIDStr", userIDStr, "path", c.Path(), "error", err)
		return bson.ObjectID{}, httperr.Fail(httperr.ErrUnauthorized)
	}

	return userID, nil
}

// RuleError answers a failed validation tag with a fixed API error.
type RuleError struct {
	Tag string
	Err httperr.E
}

// ParseAndValidateBody parses the request body and validates it. A failed
// "required" rule is answered with missing; then the first rule in order whose
// tag failed; any other rule with InvalidInput.
func ParseAndValidateBody(c *fiber.Ctx, req any, v *validator.Validate, handlerName string, missing httperr.E, rules ...RuleError) error {
	userIDHex, _ := c.Locals(ctxkeys.UserIDKey).(string)

	if err := c.BodyParser(req); err != nil {
		logger.L().Warn("failed to parse request body", "handler", handlerName, "userID", userIDHex, "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := v.Struct(req); err != nil {
		logger.L().Warn("request validation failed", "handler", handlerName, "userID", userIDHex, "error", err)
		if failedTag(err, "required") {
			return httperr.Fail(missing)
		}
		for _, r := range rules {
			if failedTag(err, r.Tag) {
				return httperr.Fail(r.Err)
			}
		}
		return httperr.InvalidInput(err)
	}

	return nil
}

func failedTag(err error, tag string) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Tag() == tag {
			return true
		}
	}
	return false
}

// ExtractProductID parses the :id route parameter. A malformed id is
// reported as a missing product.
func ExtractProductID(c *fiber.Ctx, handlerName string) (bson.ObjectID, error) {
	raw := c.Params("id")
	productID, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		logger.L().Info("invalid product ID parameter", "handler", handlerName, "productIDStr", raw, "error", err)
		return bson.ObjectID{}, httperr.Fail(httperr.ErrProductNotFound)
	}
	return productID, nil
}
