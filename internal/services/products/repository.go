package products

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ListFilter narrows List; a nil SellerID lists every product.
type ListFilter struct {
	SellerID *bson.ObjectID
}

// RegistrationAppend describes a conditional ledger append.
// The append only applies while the ledger still holds ExpectedCount entries,
// the caller is absent, the product is not Ended and AuctionStart is after Now.
type RegistrationAppend struct {
	ProductID          bson.ObjectID
	ExpectedCount      int
	Registration       Registration
	ClosesRegistration bool
	Now                time.Time
}

// Repository defines the interface for products repository operations
type Repository interface {
	Create(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id bson.ObjectID) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]*Product, error)
	MarkEnded(ctx context.Context, id, sellerID bson.ObjectID, now time.Time) (*Product, error)
	AppendRegistration(ctx context.Context, req RegistrationAppend) (*Product, error)
}

// Bus defines the interface for event broadcasting
type Bus interface {
	Broadcast(ctx context.Context, ev ProductEvent)
}
