package products

import "errors"

// ErrProductNotFound is returned when the product does not exist or the id is malformed.
var ErrProductNotFound = errors.New("product not found")

// ErrNotSeller is returned when someone other than the seller closes a product.
var ErrNotSeller = errors.New("caller is not the seller")

// ErrSellerCannotRegister is returned when the seller tries to register for their own product.
var ErrSellerCannotRegister = errors.New("seller cannot register for own product")

// ErrRegistrationClosed is returned when the product is no longer Upcoming.
var ErrRegistrationClosed = errors.New("registration closed")

// ErrAlreadyRegistered is returned when the caller is already in the ledger.
var ErrAlreadyRegistered = errors.New("already registered")

// ErrRegistrationFull is returned when the ledger has reached maxRegistrations.
var ErrRegistrationFull = errors.New("registration full")

// ErrRegistrationBusy is returned when concurrent writers kept winning the append.
var ErrRegistrationBusy = errors.New("registration busy")

// ErrRegistrationConflict is returned by repositories when the conditional append matched nothing.
var ErrRegistrationConflict = errors.New("registration state changed")

// ErrBidIncrementTooLow is returned when an explicit bid increment is below 1.
var ErrBidIncrementTooLow = errors.New("bid increment must be at least 1")

// ErrCreateProduct is returned when product creation fails.
var ErrCreateProduct = errors.New("failed to create product")

// ErrListProducts is returned when product listing fails.
var ErrListProducts = errors.New("failed to list products")

// ErrGetProduct is returned when a product lookup fails.
var ErrGetProduct = errors.New("failed to get product")

// ErrCloseProduct is returned when closing a product fails.
var ErrCloseProduct = errors.New("failed to close product")

// ErrRegisterBidder is returned when the registration append fails.
var ErrRegisterBidder = errors.New("failed to register bidder")

// ErrCreateProductsRepo is returned when products repository creation fails.
var ErrCreateProductsRepo = errors.New("failed to create products repository")

// ErrMissingFields is returned when a required text field is empty after sanitizing.
var ErrMissingFields = errors.New("all required fields must be filled")
