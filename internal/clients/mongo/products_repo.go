package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-house/internal/logger"
	"auction-house/internal/services/products"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ProductsRepo implements the products.Repository interface for MongoDB
type ProductsRepo struct {
	collection *mongo.Collection
}

// translateProductNotFound maps the driver ErrNoDocuments to products.ErrProductNotFound.
func translateProductNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return products.ErrProductNotFound
	}
	return err
}

// NewProductsRepo creates a new products repository
func NewProductsRepo(parentCtx context.Context, db *mongo.Database) (*ProductsRepo, error) {
	collection := db.Collection("products")

	indexes := []mongo.IndexModel{
		// listing, newest first
		{
			Keys:    newestFirst,
			Options: options.Index().SetName("created_desc_id_desc"),
		},
		// "my products"
		{
			Keys: bson.D{
				{Key: "seller_id", Value: 1},
				{Key: "created_at", Value: -1},
				{Key: "_id", Value: -1},
			},
			Options: options.Index().SetName("seller_created_desc_id_desc"),
		},
		// duplicate check inside the conditional registration append
		{
			Keys:    bson.D{{Key: "registered_users.user_id", Value: 1}},
			Options: options.Index().SetName("registered_user_id"),
		},
	}

	ctx, cancel := context.WithTimeout(parentCtx, OpTimeout)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.L().Error("failed to create index", "collection", "products", "error", err)
		return nil, fmt.Errorf("%w: %w", products.ErrCreateProductsRepo, err)
	}

	return &ProductsRepo{
		collection: collection,
	}, nil
}

// Create inserts a new product
func (r *ProductsRepo) Create(ctx context.Context, p *products.Product) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, p)
	return err
}

// FindByID returns the stored product, unresolved
func (r *ProductsRepo) FindByID(ctx context.Context, id bson.ObjectID) (*products.Product, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var p products.Product
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translateProductNotFound(err)
	}
	return &p, nil
}

// List returns non-archived products, newest first, optionally for one seller
func (r *ProductsRepo) List(ctx context.Context, filter products.ListFilter) ([]*products.Product, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	cursor, err := r.collection.Find(ctx, buildListFilter(filter), options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	defer func(ctxToClose context.Context) {
		if cerr := cursor.Close(ctxToClose); cerr != nil {
			logger.L().Error("failed to close cursor", "error", cerr)
		}
	}(ctx)

	list := []*products.Product{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// MarkEnded persists the terminal status. The seller id is part of the
// filter, so a product that changed hands between read and write is not found.
func (r *ProductsRepo) MarkEnded(ctx context.Context, id, sellerID bson.ObjectID, now time.Time) (*products.Product, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":              products.StatusEnded,
		"registration_closed": true,
		"updated_at":          now,
	}}

	var p products.Product
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "seller_id": sellerID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		return nil, translateProductNotFound(err)
	}
	return &p, nil
}

// AppendRegistration pushes req.Registration in a single conditional update.
// products.ErrRegistrationConflict means the filter no longer matched: the
// ledger grew, the caller appeared in it, the product ended, the auction
// started, or the product is gone.
func (r *ProductsRepo) AppendRegistration(ctx context.Context, req products.RegistrationAppend) (*products.Product, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	set := bson.M{"updated_at": req.Now}
	if req.ClosesRegistration {
		set["registration_closed"] = true
	}
	update := bson.M{
		"$push": bson.M{"registered_users": req.Registration},
		"$set":  set,
	}

	var p products.Product
	err := r.collection.FindOneAndUpdate(ctx,
		buildAppendFilter(req),
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, products.ErrRegistrationConflict
		}
		return nil, err
	}
	return &p, nil
}

// buildListFilter constructs the MongoDB filter for List
func buildListFilter(filter products.ListFilter) bson.M {
	f := bson.M{"is_archived": NotTrue}
	if filter.SellerID != nil {
		f["seller_id"] = *filter.SellerID
	}
	return f
}

// buildAppendFilter encodes every ledger rule as a match condition so the
// check and the push happen in one document update.
func buildAppendFilter(req products.RegistrationAppend) bson.M {
	userID := req.Registration.UserID
	return bson.M{
		"_id":                      req.ProductID,
		"status":                   bson.M{"$ne": products.StatusEnded},
		"auction_start":            bson.M{"$gt": req.Now},
		"seller_id":                bson.M{"$ne": userID},
		"registered_users":         bson.M{"$size": req.ExpectedCount},
		"registered_users.user_id": bson.M{"$ne": userID},
		"max_registrations":        bson.M{"$gt": req.ExpectedCount},
	}
}
