package auth

import (
	"context"
	"errors"

	"auction-house/cmd/server/handlers/handlerutil"
	"auction-house/cmd/server/handlers/httperr"
	"auction-house/internal/logger"
	"auction-house/internal/services/auth"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthService defines the interface for auth service
type AuthService interface {
	Register(ctx context.Context, req auth.RegisterRequest) (*auth.User, error)
	Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error)
}

// Handlers contains the auth HTTP handlers
type Handlers struct {
	authService AuthService
	validator   *validator.Validate
}

// NewHandlers creates new auth handlers
func NewHandlers(authService AuthService, validator *validator.Validate) *Handlers {
	return &Handlers{
		authService: authService,
		validator:   validator,
	}
}

var (
	errAllFieldsRequired = httperr.BadRequest("All fields are required")
	errPasswordMismatch  = httperr.BadRequest("Passwords do not match")

	// missing fields first, then a mismatched confirmation, then strength
	registerRules = []handlerutil.RuleError{{Tag: "eqfield", Err: errPasswordMismatch}}
)

// Register handles user registration
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.RegisterRequest true "Registration request"
// @Success 201 {object} auth.RegisterResponse
// @Failure 400 {object} httperr.E
// @Failure 500 {object} httperr.E
// @Router /auth/register [post]
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req auth.RegisterRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Register", errAllFieldsRequired, registerRules...); err != nil {
		return err
	}

	user, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingFields):
			return httperr.Fail(errAllFieldsRequired)
		case errors.Is(err, auth.ErrPasswordMismatch):
			return httperr.Fail(errPasswordMismatch)
		case errors.Is(err, auth.ErrEmailRegistered):
			return httperr.Fail(httperr.BadRequest("Email already registered"))
		}
		logger.L().Error("register service failed", "handler", "Register", "email", req.Email, "error", err)
		return httperr.Fail(httperr.InternalError("Server error"))
	}

	return c.Status(fiber.StatusCreated).JSON(auth.RegisterResponse{
		Message: "Registration successful",
		User:    user,
	})
}

// Login handles user authentication
// @Summary Authenticate a user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.LoginRequest true "Login request"
// @Success 200 {object} auth.LoginResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 429 {object} httperr.E
// @Router /auth/login [post]
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req auth.LoginRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Login", errAllFieldsRequired); err != nil {
		return err
	}

	resp, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logger.L().Info("login rejected", "handler", "Login", "remote", c.IP())
			return httperr.Fail(httperr.ErrInvalidCredentials)
		}
		logger.L().Error("login service failed", "handler", "Login", "email", req.Email, "error", err)
		return httperr.Fail(httperr.InternalError("Server error"))
	}

	return c.JSON(resp)
}
