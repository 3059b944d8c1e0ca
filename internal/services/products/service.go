package products

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"auction-house/internal/utils/sanitize"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service handles products business logic
type Service struct {
	repo        Repository
	bus         Bus
	log         *slog.Logger
	maxAttempts int
	now         func() time.Time
}

// NewService creates a new products service. maxAttempts bounds how many
// times a registration is re-read and retried after losing a concurrent append.
func NewService(repo Repository, bus Bus, maxAttempts int, log *slog.Logger) *Service {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Service{
		repo:        repo,
		bus:         bus,
		log:         log,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Title            string    `json:"title" validate:"required" example:"Victorian pocket watch"`
	Description      string    `json:"description" validate:"required" example:"Gold plated, working condition"`
	Images           []string  `json:"images" validate:"required,min=1,dive,required"`
	Category         string    `json:"category" example:"Watches"`
	Condition        Condition `json:"condition" validate:"omitempty,oneof=New Used Antique" example:"Antique"`
	StartingPrice    float64   `json:"startingPrice" validate:"required,gt=0" example:"150"`
	BidIncrement     *float64  `json:"bidIncrement,omitempty" example:"10"`
	AuctionStart     time.Time `json:"auctionStart" validate:"required" example:"2025-07-01T18:00:00Z"`
	MaxRegistrations int       `json:"maxRegistrations" validate:"required,gte=1" example:"20"`
}

// RegisterRequest represents a bidder registration request
type RegisterRequest struct {
	BidderName string `json:"bidderName" validate:"omitempty,max=64" example:"Collector42"`
}

// RegistrationResult is the outcome of a successful registration
type RegistrationResult struct {
	BidderNumber int
	BidderName   string
	Product      *Product
}

// ProductCreatedResponse represents the create product response
type ProductCreatedResponse struct {
	Message string   `json:"message" example:"Product added successfully"`
	Product *Product `json:"product"`
}

// ProductClosedResponse represents the close bidding response
type ProductClosedResponse struct {
	Message string   `json:"message" example:"Bidding closed successfully"`
	Product *Product `json:"product"`
}

// RegisterResponse represents the bidder registration response
type RegisterResponse struct {
	Message      string `json:"message" example:"Registered successfully"`
	BidderNumber int    `json:"bidderNumber" example:"1"`
	BidderName   string `json:"bidderName" example:"Bidder_1"`
}

// Create creates a new product owned by sellerID
func (s *Service) Create(ctx context.Context, sellerID bson.ObjectID, req CreateProductRequest) (*Product, error) {
	increment := DefaultBidIncrement
	if req.BidIncrement != nil {
		if *req.BidIncrement < 1 {
			return nil, ErrBidIncrementTooLow
		}
		increment = *req.BidIncrement
	}

	title := sanitize.Line(req.Title)
	description := sanitize.Clean(req.Description)
	if title == "" || description == "" {
		return nil, ErrMissingFields
	}

	condition := req.Condition
	if condition == "" {
		condition = ConditionUsed
	}

	now := s.now()
	product := &Product{
		ID:                 bson.NewObjectID(),
		Title:              title,
		Description:        description,
		Images:             req.Images,
		Category:           sanitize.Line(req.Category),
		Condition:          condition,
		StartingPrice:      req.StartingPrice,
		CurrentBid:         0,
		BidIncrement:       increment,
		BidsCount:          0,
		AuctionStart:       req.AuctionStart.UTC(),
		Status:             StatusUpcoming,
		SellerID:           sellerID,
		MaxRegistrations:   req.MaxRegistrations,
		RegisteredUsers:    []Registration{},
		RegistrationClosed: false,
		PaymentStatus:      PaymentPending,
		DeliveryStatus:     DeliveryPending,
		IsArchived:         false,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		s.log.Error(ErrCreateProduct.Error(), "error", err, "seller_id", sellerID.Hex())
		return nil, ErrCreateProduct
	}

	resolved := Resolved(product, now)
	s.bus.Broadcast(ctx, NewEvent(EventCreated, resolved, now))

	return resolved, nil
}

// List returns every product, newest first, with resolved status
func (s *Service) List(ctx context.Context) ([]*Product, error) {
	ps, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		s.log.Error(ErrListProducts.Error(), "error", err)
		return nil, ErrListProducts
	}
	return ResolveAll(ps, s.now()), nil
}

// ListBySeller returns the seller's own products, newest first, with resolved status
func (s *Service) ListBySeller(ctx context.Context, sellerID bson.ObjectID) ([]*Product, error) {
	ps, err := s.repo.List(ctx, ListFilter{SellerID: &sellerID})
	if err != nil {
		s.log.Error(ErrListProducts.Error(), "error", err, "seller_id", sellerID.Hex())
		return nil, ErrListProducts
	}
	return ResolveAll(ps, s.now()), nil
}

// Get returns one product with resolved status
func (s *Service) Get(ctx context.Context, productID bson.ObjectID) (*Product, error) {
	p, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		s.log.Error(ErrGetProduct.Error(), "error", err, "product_id", productID.Hex())
		return nil, ErrGetProduct
	}
	return Resolved(p, s.now()), nil
}

// Close ends the auction immediately. Only the seller may close, and closing
// an already ended product succeeds again.
func (s *Service) Close(ctx context.Context, productID, callerID bson.ObjectID) (*Product, error) {
	p, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		s.log.Error(ErrCloseProduct.Error(), "error", err, "product_id", productID.Hex())
		return nil, ErrCloseProduct
	}

	if p.SellerID != callerID {
		s.log.Info("close rejected for non-seller", "product_id", productID.Hex(), "user_id", callerID.Hex())
		return nil, ErrNotSeller
	}

	now := s.now()
	updated, err := s.repo.MarkEnded(ctx, productID, callerID, now)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		s.log.Error(ErrCloseProduct.Error(), "error", err, "product_id", productID.Hex())
		return nil, ErrCloseProduct
	}

	resolved := Resolved(updated, now)
	s.bus.Broadcast(ctx, NewEvent(EventClosed, resolved, now))

	return resolved, nil
}

// Register admits userID into the product's registration ledger.
//
// Eligibility is checked against a fresh read and the append is conditional on
// that read still being current. When another writer wins in between, the
// whole check runs again, at most maxAttempts times.
func (s *Service) Register(ctx context.Context, productID, userID bson.ObjectID, req RegisterRequest) (*RegistrationResult, error) {
	name := sanitize.Line(req.BidderName)

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		p, err := s.repo.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				return nil, ErrProductNotFound
			}
			s.log.Error(ErrRegisterBidder.Error(), "error", err, "product_id", productID.Hex(), "user_id", userID.Hex())
			return nil, ErrRegisterBidder
		}

		now := s.now()
		if err := CheckRegistration(p, userID, now); err != nil {
			s.log.Info("registration rejected", "reason", err.Error(), "product_id", productID.Hex(), "user_id", userID.Hex())
			return nil, err
		}

		reg := NewRegistration(p, userID, name, now)
		updated, err := s.repo.AppendRegistration(ctx, RegistrationAppend{
			ProductID:          productID,
			ExpectedCount:      len(p.RegisteredUsers),
			Registration:       reg,
			ClosesRegistration: reg.BidderNumber >= p.MaxRegistrations,
			Now:                now,
		})
		if errors.Is(err, ErrRegistrationConflict) {
			s.log.Debug("registration append lost race", "attempt", attempt, "product_id", productID.Hex(), "user_id", userID.Hex())
			continue
		}
		if err != nil {
			s.log.Error(ErrRegisterBidder.Error(), "error", err, "product_id", productID.Hex(), "user_id", userID.Hex())
			return nil, ErrRegisterBidder
		}

		resolved := Resolved(updated, now)
		s.bus.Broadcast(ctx, NewEvent(EventRegistered, resolved, now))

		return &RegistrationResult{
			BidderNumber: reg.BidderNumber,
			BidderName:   reg.BidderName,
			Product:      resolved,
		}, nil
	}

	s.log.Warn("registration gave up after repeated conflicts", "attempts", s.maxAttempts, "product_id", productID.Hex(), "user_id", userID.Hex())
	return nil, ErrRegistrationBusy
}
