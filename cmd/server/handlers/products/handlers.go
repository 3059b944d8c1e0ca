package products

import (
	"context"
	"errors"

	"auction-house/cmd/server/handlers/handlerutil"
	"auction-house/cmd/server/handlers/httperr"
	"auction-house/internal/logger"
	"auction-house/internal/services/products"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ProductsService defines the interface for products service
type ProductsService interface {
	Create(ctx context.Context, sellerID bson.ObjectID, req products.CreateProductRequest) (*products.Product, error)
	List(ctx context.Context) ([]*products.Product, error)
	ListBySeller(ctx context.Context, sellerID bson.ObjectID) ([]*products.Product, error)
	Get(ctx context.Context, productID bson.ObjectID) (*products.Product, error)
	Close(ctx context.Context, productID, callerID bson.ObjectID) (*products.Product, error)
	Register(ctx context.Context, productID, userID bson.ObjectID, req products.RegisterRequest) (*products.RegistrationResult, error)
}

// RegistrationObserver records registration outcomes
type RegistrationObserver interface {
	ObserveRegistration(outcome string)
}

// Handlers contains the products HTTP handlers
type Handlers struct {
	productsService ProductsService
	validator       *validator.Validate
	observer        RegistrationObserver
}

// NewHandlers creates new products handlers. observer may be nil.
func NewHandlers(productsService ProductsService, validator *validator.Validate, observer RegistrationObserver) *Handlers {
	return &Handlers{
		productsService: productsService,
		validator:       validator,
		observer:        observer,
	}
}

var (
	errRequiredFields    = httperr.BadRequest("All required fields must be filled")
	errBidIncrementLow   = httperr.BadRequest("Bid increment must be at least 1")
	errSellerCannotBid   = httperr.BadRequest("Seller cannot register for own product")
	errRegistrationShut  = httperr.BadRequest("Registration closed")
	errAlreadyRegistered = httperr.BadRequest("Already registered")
	errRegistrationFull  = httperr.BadRequest("Registration full")
)

// Create handles product creation
// @Summary Create an auction product
// @Tags products
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body products.CreateProductRequest true "Product"
// @Success 201 {object} products.ProductCreatedResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 500 {object} httperr.E
// @Router /products [post]
func (h *Handlers) Create(c *fiber.Ctx) error {
	sellerID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req products.CreateProductRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "CreateProduct", errRequiredFields); err != nil {
		return err
	}

	product, err := h.productsService.Create(c.UserContext(), sellerID, req)
	if err != nil {
		switch {
		case errors.Is(err, products.ErrBidIncrementTooLow):
			return httperr.Fail(errBidIncrementLow)
		case errors.Is(err, products.ErrMissingFields):
			return httperr.Fail(errRequiredFields)
		}
		logger.L().Error("create product failed", "handler", "CreateProduct", "userID", sellerID.Hex(), "error", err)
		return httperr.Fail(httperr.InternalError("Failed to add product"))
	}

	return c.Status(fiber.StatusCreated).JSON(products.ProductCreatedResponse{
		Message: "Product added successfully",
		Product: product,
	})
}

// List handles listing every product
// @Summary List auction products
// @Description Every non-archived product, newest first, with status resolved at request time
// @Tags products
// @Produce json
// @Security Bearer
// @Success 200 {array} products.Product
// @Failure 401 {object} httperr.E
// @Failure 500 {object} httperr.E
// @Router /products [get]
func (h *Handlers) List(c *fiber.Ctx) error {
	list, err := h.productsService.List(c.UserContext())
	if err != nil {
		logger.L().Error("list products failed", "handler", "ListProducts", "error", err)
		return httperr.Fail(httperr.InternalError("Failed to fetch products"))
	}
	return c.JSON(list)
}

// MyProducts handles listing the caller's own products
// @Summary List my products
// @Tags products
// @Produce json
// @Security Bearer
// @Success 200 {array} products.Product
// @Failure 401 {object} httperr.E
// @Failure 500 {object} httperr.E
// @Router /products/my-products [get]
func (h *Handlers) MyProducts(c *fiber.Ctx) error {
	sellerID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	list, err := h.productsService.ListBySeller(c.UserContext(), sellerID)
	if err != nil {
		logger.L().Error("list my products failed", "handler", "MyProducts", "userID", sellerID.Hex(), "error", err)
		return httperr.Fail(httperr.InternalError("Failed to fetch my products"))
	}
	return c.JSON(list)
}

// Get handles fetching one product
// @Summary Get an auction product
// @Tags products
// @Produce json
// @Security Bearer
// @Param id path string true "Product ID"
// @Success 200 {object} products.Product
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Failure 500 {object} httperr.E
// @Router /products/{id} [get]
func (h *Handlers) Get(c *fiber.Ctx) error {
	productID, err := handlerutil.ExtractProductID(c, "GetProduct")
	if err != nil {
		return err
	}

	product, err := h.productsService.Get(c.UserContext(), productID)
	if err != nil {
		if errors.Is(err, products.ErrProductNotFound) {
			return httperr.Fail(httperr.ErrProductNotFound)
		}
		logger.L().Error("get product failed", "handler", "GetProduct", "productID", productID.Hex(), "error", err)
		return httperr.Fail(httperr.InternalError("Failed to fetch product"))
	}
	return c.JSON(product)
}

// Close handles the seller ending an auction
// @Summary Close bidding
// @Description Ends the auction immediately; only the seller may close. Closing an ended product succeeds again.
// @Tags products
// @Produce json
// @Security Bearer
// @Param id path string true "Product ID"
// @Success 200 {object} products.ProductClosedResponse
// @Failure 401 {object} httperr.E
// @Failure 403 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Failure 500 {object} httperr.E
// @Router /products/close/{id} [patch]
func (h *Handlers) Close(c *fiber.Ctx) error {
	callerID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}
	productID, err := handlerutil.ExtractProductID(c, "CloseProduct")
	if err != nil {
		return err
	}

	product, err := h.productsService.Close(c.UserContext(), productID, callerID)
	if err != nil {
		switch {
		case errors.Is(err, products.ErrProductNotFound):
			return httperr.Fail(httperr.ErrProductNotFound)
		case errors.Is(err, products.ErrNotSeller):
			return httperr.Fail(httperr.ErrForbidden)
		}
		logger.L().Error("close product failed", "handler", "CloseProduct", "userID", callerID.Hex(), "productID", productID.Hex(), "error", err)
		return httperr.Fail(httperr.InternalError("Failed to close bid"))
	}

	return c.JSON(products.ProductClosedResponse{
		Message: "Bidding closed successfully",
		Product: product,
	})
}

// Register handles a bidder registering for an upcoming auction
// @Summary Register as bidder
// @Description Checks, in order: product exists, caller is not the seller, auction is Upcoming, caller not yet registered, capacity left.
// @Tags products
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Product ID"
// @Param request body products.RegisterRequest false "Optional bidder name"
// @Success 201 {object} products.RegisterResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Failure 409 {object} httperr.E
// @Failure 500 {object} httperr.E
// @Router /products/register/{id} [post]
func (h *Handlers) Register(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}
	productID, err := handlerutil.ExtractProductID(c, "RegisterBidder")
	if err != nil {
		return err
	}

	// the body is optional
	var req products.RegisterRequest
	if len(c.Body()) > 0 {
		if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "RegisterBidder", httperr.ErrBadRequest); err != nil {
			return err
		}
	}

	result, err := h.productsService.Register(c.UserContext(), productID, userID, req)
	h.observe(registrationOutcome(err))
	if err != nil {
		if mapped, ok := registrationError(err); ok {
			return httperr.Fail(mapped)
		}
		logger.L().Error("register bidder failed", "handler", "RegisterBidder", "userID", userID.Hex(), "productID", productID.Hex(), "error", err)
		return httperr.Fail(httperr.InternalError("Failed to register"))
	}

	return c.Status(fiber.StatusCreated).JSON(products.RegisterResponse{
		Message:      "Registered successfully",
		BidderNumber: result.BidderNumber,
		BidderName:   result.BidderName,
	})
}

func (h *Handlers) observe(outcome string) {
	if h.observer != nil {
		h.observer.ObserveRegistration(outcome)
	}
}

func registrationError(err error) (httperr.E, bool) {
	switch {
	case errors.Is(err, products.ErrProductNotFound):
		return httperr.ErrProductNotFound, true
	case errors.Is(err, products.ErrSellerCannotRegister):
		return errSellerCannotBid, true
	case errors.Is(err, products.ErrRegistrationClosed):
		return errRegistrationShut, true
	case errors.Is(err, products.ErrAlreadyRegistered):
		return errAlreadyRegistered, true
	case errors.Is(err, products.ErrRegistrationFull):
		return errRegistrationFull, true
	case errors.Is(err, products.ErrRegistrationBusy):
		return httperr.ErrRegistrationBusy, true
	}
	return httperr.E{}, false
}

func registrationOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, products.ErrProductNotFound):
		return "not_found"
	case errors.Is(err, products.ErrSellerCannotRegister):
		return "seller"
	case errors.Is(err, products.ErrRegistrationClosed):
		return "closed"
	case errors.Is(err, products.ErrAlreadyRegistered):
		return "duplicate"
	case errors.Is(err, products.ErrRegistrationFull):
		return "full"
	case errors.Is(err, products.ErrRegistrationBusy):
		return "busy"
	}
	return "error"
}
