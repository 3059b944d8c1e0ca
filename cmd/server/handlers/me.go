package handlers

import (
	"auction-house/cmd/server/ctxkeys"

	"github.com/gofiber/fiber/v2"
)

// Me returns the identity carried by the caller's token.
// @Summary Get current user
// @Description Identity from the bearer token
// @Tags auth
// @Produce json
// @Security Bearer
// @Success 200 {object} map[string]string
// @Failure 401 {object} httperr.E
// @Router /me [get]
func Me(c *fiber.Ctx) error {
	userID, _ := c.Locals(ctxkeys.UserIDKey).(string)
	userEmail, _ := c.Locals(ctxkeys.UserEmailKey).(string)
	return c.JSON(fiber.Map{
		"uid":   userID,
		"email": userEmail,
	})
}
