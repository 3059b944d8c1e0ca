package auth

import "errors"

// ErrDuplicate is returned by repositories when the email is already taken.
var ErrDuplicate = errors.New("user with this email already exists")

// ErrUserNotFound is returned by repositories when no user matches.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailRegistered is returned to callers registering a taken email.
var ErrEmailRegistered = errors.New("email already registered")

// ErrPasswordMismatch is returned when password and confirmPassword differ.
var ErrPasswordMismatch = errors.New("passwords do not match")

// ErrMissingFields is returned when a name is empty once sanitized.
var ErrMissingFields = errors.New("all fields are required")

// ErrInvalidCredentials hides whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrCreateUser masks storage failures during registration.
var ErrCreateUser = errors.New("failed to create user")

// ErrHashPassword masks bcrypt failures.
var ErrHashPassword = errors.New("failed to process password")

// ErrGenAccessToken is returned when we cannot create a JWT.
var ErrGenAccessToken = errors.New("failed to generate access token")

// ErrUnsupportedJWTAlg is returned for any signing algorithm other than HS256.
var ErrUnsupportedJWTAlg = errors.New("unsupported JWT algorithm")
