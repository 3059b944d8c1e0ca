package products

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var (
	ErrDBMsg        = "db error"
	mockProduct     = mock.AnythingOfType("*products.Product")
	mockAppend      = mock.AnythingOfType("products.RegistrationAppend")
	mockListFilter  = mock.AnythingOfType("products.ListFilter")
	fixedNow        = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	validCreateBody = CreateProductRequest{
		Title:            "Pocket watch",
		Description:      "Gold plated",
		Images:           []string{"data:image/png;base64,AAAA"},
		StartingPrice:    150,
		AuctionStart:     fixedNow.Add(48 * time.Hour),
		MaxRegistrations: 2,
	}
)

// MockProductsRepo is a mock implementation of Repository
type MockProductsRepo struct {
	mock.Mock
}

func (m *MockProductsRepo) Create(ctx context.Context, p *Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductsRepo) FindByID(ctx context.Context, id bson.ObjectID) (*Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockProductsRepo) List(ctx context.Context, filter ListFilter) ([]*Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Product), args.Error(1)
}

func (m *MockProductsRepo) MarkEnded(ctx context.Context, id, sellerID bson.ObjectID, now time.Time) (*Product, error) {
	args := m.Called(ctx, id, sellerID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockProductsRepo) AppendRegistration(ctx context.Context, req RegistrationAppend) (*Product, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

// MockBus is a mock implementation of Bus
type MockBus struct {
	mock.Mock
}

func (m *MockBus) Broadcast(ctx context.Context, ev ProductEvent) {
	m.Called(ctx, ev)
}

func newTestService(repo Repository, bus Bus) *Service {
	svc := NewService(repo, bus, 3, silentLogger)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func floatPtr(v float64) *float64 { return &v }

func TestServiceCreate(t *testing.T) {
	sellerID := bson.NewObjectID()

	tests := []struct {
		name    string
		req     func() CreateProductRequest
		setup   func(*MockProductsRepo, *MockBus)
		check   func(*testing.T, *Product)
		wantErr error
	}{
		{
			name: "defaults applied when increment and condition omitted",
			req:  func() CreateProductRequest { return validCreateBody },
			setup: func(repo *MockProductsRepo, bus *MockBus) {
				repo.On("Create", mock.Anything, mockProduct).Return(nil)
				bus.On("Broadcast", mock.Anything, mock.MatchedBy(func(ev ProductEvent) bool {
					return ev.Type == EventCreated && ev.Product != nil
				})).Return()
			},
			check: func(t *testing.T, p *Product) {
				assert.Equal(t, DefaultBidIncrement, p.BidIncrement)
				assert.Equal(t, ConditionUsed, p.Condition)
				assert.Equal(t, StatusUpcoming, p.Status)
				assert.Equal(t, sellerID, p.SellerID)
				assert.Zero(t, p.CurrentBid)
				assert.Zero(t, p.BidsCount)
				assert.NotNil(t, p.RegisteredUsers)
				assert.Empty(t, p.RegisteredUsers)
				assert.Equal(t, PaymentPending, p.PaymentStatus)
				assert.Equal(t, DeliveryPending, p.DeliveryStatus)
				assert.False(t, p.IsArchived)
				assert.False(t, p.ID.IsZero())
			},
		},
		{
			name: "explicit increment and condition kept",
			req: func() CreateProductRequest {
				r := validCreateBody
				r.BidIncrement = floatPtr(25)
				r.Condition = ConditionAntique
				return r
			},
			setup: func(repo *MockProductsRepo, bus *MockBus) {
				repo.On("Create", mock.Anything, mockProduct).Return(nil)
				bus.On("Broadcast", mock.Anything, mock.Anything).Return()
			},
			check: func(t *testing.T, p *Product) {
				assert.Equal(t, 25.0, p.BidIncrement)
				assert.Equal(t, ConditionAntique, p.Condition)
			},
		},
		{
			name: "html stripped from text fields",
			req: func() CreateProductRequest {
				r := validCreateBody
				r.Title = "<b>Pocket</b> watch<script>alert(1)</script>"
				return r
			},
			setup: func(repo *MockProductsRepo, bus *MockBus) {
				repo.On("Create", mock.Anything, mockProduct).Return(nil)
				bus.On("Broadcast", mock.Anything, mock.Anything).Return()
			},
			check: func(t *testing.T, p *Product) {
				assert.Equal(t, "Pocket watch", p.Title)
			},
		},
		{
			name: "increment below one rejected",
			req: func() CreateProductRequest {
				r := validCreateBody
				r.BidIncrement = floatPtr(0.5)
				return r
			},
			setup:   func(*MockProductsRepo, *MockBus) {},
			wantErr: ErrBidIncrementTooLow,
		},
		{
			name: "title empty after sanitizing rejected",
			req: func() CreateProductRequest {
				r := validCreateBody
				r.Title = "<script>x</script>"
				return r
			},
			setup:   func(*MockProductsRepo, *MockBus) {},
			wantErr: ErrMissingFields,
		},
		{
			name: "repository error masked",
			req:  func() CreateProductRequest { return validCreateBody },
			setup: func(repo *MockProductsRepo, bus *MockBus) {
				repo.On("Create", mock.Anything, mockProduct).Return(errors.New(ErrDBMsg))
			},
			wantErr: ErrCreateProduct,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockProductsRepo)
			bus := new(MockBus)
			tt.setup(repo, bus)

			svc := newTestService(repo, bus)
			p, err := svc.Create(context.Background(), sellerID, tt.req())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
				bus.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				require.NotNil(t, p)
				tt.check(t, p)
			}

			repo.AssertExpectations(t)
			bus.AssertExpectations(t)
		})
	}
}

func TestServiceList_ResolvesStatus(t *testing.T) {
	repo := new(MockProductsRepo)
	bus := new(MockBus)

	stored := []*Product{
		{ID: bson.NewObjectID(), Status: StatusUpcoming, AuctionStart: fixedNow.Add(-time.Minute)},
		{ID: bson.NewObjectID(), Status: StatusUpcoming, AuctionStart: fixedNow.Add(time.Minute)},
		{ID: bson.NewObjectID(), Status: StatusEnded, AuctionStart: fixedNow.Add(time.Hour)},
	}
	repo.On("List", mock.Anything, ListFilter{}).Return(stored, nil)

	out, err := newTestService(repo, bus).List(context.Background())

	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, StatusActive, out[0].Status)
	assert.Equal(t, StatusUpcoming, out[1].Status)
	assert.Equal(t, StatusEnded, out[2].Status)
	repo.AssertExpectations(t)
}

func TestServiceList_RepositoryError(t *testing.T) {
	repo := new(MockProductsRepo)
	repo.On("List", mock.Anything, mockListFilter).Return(nil, errors.New(ErrDBMsg))

	_, err := newTestService(repo, new(MockBus)).List(context.Background())

	assert.ErrorIs(t, err, ErrListProducts)
}

func TestServiceListBySeller_FiltersBySeller(t *testing.T) {
	repo := new(MockProductsRepo)
	sellerID := bson.NewObjectID()

	repo.On("List", mock.Anything, mock.MatchedBy(func(f ListFilter) bool {
		return f.SellerID != nil && *f.SellerID == sellerID
	})).Return([]*Product{{SellerID: sellerID, Status: StatusUpcoming, AuctionStart: fixedNow.Add(time.Hour)}}, nil)

	out, err := newTestService(repo, new(MockBus)).ListBySeller(context.Background(), sellerID)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, StatusUpcoming, out[0].Status)
	repo.AssertExpectations(t)
}

func TestServiceGet(t *testing.T) {
	id := bson.NewObjectID()

	t.Run("resolved product", func(t *testing.T) {
		repo := new(MockProductsRepo)
		repo.On("FindByID", mock.Anything, id).Return(&Product{ID: id, Status: StatusUpcoming, AuctionStart: fixedNow}, nil)

		p, err := newTestService(repo, new(MockBus)).Get(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, StatusActive, p.Status)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockProductsRepo)
		repo.On("FindByID", mock.Anything, id).Return(nil, ErrProductNotFound)

		_, err := newTestService(repo, new(MockBus)).Get(context.Background(), id)

		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("repository error masked", func(t *testing.T) {
		repo := new(MockProductsRepo)
		repo.On("FindByID", mock.Anything, id).Return(nil, errors.New(ErrDBMsg))

		_, err := newTestService(repo, new(MockBus)).Get(context.Background(), id)

		assert.ErrorIs(t, err, ErrGetProduct)
	})
}

func TestServiceClose(t *testing.T) {
	seller := bson.NewObjectID()
	other := bson.NewObjectID()
	id := bson.NewObjectID()

	upcoming := func() *Product {
		return &Product{ID: id, SellerID: seller, Status: StatusUpcoming, AuctionStart: fixedNow.Add(time.Hour)}
	}
	ended := func() *Product {
		p := upcoming()
		p.Status = StatusEnded
		p.RegistrationClosed = true
		return p
	}

	tests := []struct {
		name    string
		caller  bson.ObjectID
		setup   func(*MockProductsRepo, *MockBus)
		wantErr error
	}{
		{
			name:   "seller closes upcoming product",
			caller: seller,
			setup: func(repo *MockProductsRepo, bus *MockBus) {
				repo.On("FindByID", mock.Anything, id).Return(upcoming(), nil)
				repo.On("MarkEnded", mock.Anything, id, seller, fixedNow).Return(ended(), nil)
				bus.On("Broadcast", mock.Anything, mock.MatchedBy(func(ev ProductEvent) bool {
					return ev.Type == EventClosed && ev.Product.Status == StatusEnded
				})).Return()
			},
		},
		{
			name:   "closing twice succeeds",
			caller: seller,
			setup: func(repo *MockProductsRepo, bus *MockBus) {
				repo.On("FindByID", mock.Anything, id).Return(ended(), nil)
				repo.On("MarkEnded", mock.Anything, id, seller, fixedNow).Return(ended(), nil)
				bus.On("Broadcast", mock.Anything, mock.Anything).Return()
			},
		},
		{
			name:   "non-seller rejected",
			caller: other,
			setup: func(repo *MockProductsRepo, bus *MockBus) {
				repo.On("FindByID", mock.Anything, id).Return(upcoming(), nil)
			},
			wantErr: ErrNotSeller,
		},
		{
			name:   "not found",
			caller: seller,
			setup: func(repo *MockProductsRepo, bus *MockBus) {
				repo.On("FindByID", mock.Anything, id).Return(nil, ErrProductNotFound)
			},
			wantErr: ErrProductNotFound,
		},
		{
			name:   "update failure masked",
			caller: seller,
			setup: func(repo *MockProductsRepo, bus *MockBus) {
				repo.On("FindByID", mock.Anything, id).Return(upcoming(), nil)
				repo.On("MarkEnded", mock.Anything, id, seller, fixedNow).Return(nil, errors.New(ErrDBMsg))
			},
			wantErr: ErrCloseProduct,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockProductsRepo)
			bus := new(MockBus)
			tt.setup(repo, bus)

			p, err := newTestService(repo, bus).Close(context.Background(), id, tt.caller)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "MarkEnded", mock.Anything, mock.Anything, other, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, StatusEnded, p.Status)
			}
			repo.AssertExpectations(t)
			bus.AssertExpectations(t)
		})
	}
}

func TestServiceRegister_AppendRequest(t *testing.T) {
	seller := bson.NewObjectID()
	bidder := bson.NewObjectID()
	p := upcomingProduct(seller, 2, fixedNow)

	repo := new(MockProductsRepo)
	bus := new(MockBus)

	repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	repo.On("AppendRegistration", mock.Anything, mock.MatchedBy(func(req RegistrationAppend) bool {
		return req.ProductID == p.ID &&
			req.ExpectedCount == 0 &&
			req.Registration.UserID == bidder &&
			req.Registration.BidderNumber == 1 &&
			req.Registration.BidderName == "Bidder_1" &&
			!req.ClosesRegistration &&
			req.Now.Equal(fixedNow)
	})).Return(&Product{ID: p.ID, SellerID: seller, AuctionStart: p.AuctionStart, Status: StatusUpcoming,
		MaxRegistrations: 2, RegisteredUsers: []Registration{{UserID: bidder, BidderNumber: 1, BidderName: "Bidder_1"}}}, nil)
	bus.On("Broadcast", mock.Anything, mock.MatchedBy(func(ev ProductEvent) bool {
		return ev.Type == EventRegistered && len(ev.Product.RegisteredUsers) == 1
	})).Return()

	res, err := newTestService(repo, bus).Register(context.Background(), p.ID, bidder, RegisterRequest{})

	require.NoError(t, err)
	assert.Equal(t, 1, res.BidderNumber)
	assert.Equal(t, "Bidder_1", res.BidderName)
	repo.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestServiceRegister_LastSlotClosesRegistration(t *testing.T) {
	seller := bson.NewObjectID()
	p := upcomingProduct(seller, 1, fixedNow)

	repo := new(MockProductsRepo)
	bus := new(MockBus)
	repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	repo.On("AppendRegistration", mock.Anything, mock.MatchedBy(func(req RegistrationAppend) bool {
		return req.ClosesRegistration
	})).Return(p, nil)
	bus.On("Broadcast", mock.Anything, mock.Anything).Return()

	_, err := newTestService(repo, bus).Register(context.Background(), p.ID, bson.NewObjectID(), RegisterRequest{BidderName: "<i>Ann</i>"})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestServiceRegister_RetriesOnConflict(t *testing.T) {
	seller := bson.NewObjectID()
	bidder := bson.NewObjectID()
	rival := bson.NewObjectID()

	before := upcomingProduct(seller, 3, fixedNow)
	after := *before
	after.RegisteredUsers = []Registration{{UserID: rival, BidderNumber: 1, BidderName: "Bidder_1"}}

	repo := new(MockProductsRepo)
	bus := new(MockBus)

	repo.On("FindByID", mock.Anything, before.ID).Return(before, nil).Once()
	repo.On("AppendRegistration", mock.Anything, mock.MatchedBy(func(req RegistrationAppend) bool {
		return req.ExpectedCount == 0
	})).Return(nil, ErrRegistrationConflict).Once()
	repo.On("FindByID", mock.Anything, before.ID).Return(&after, nil).Once()
	repo.On("AppendRegistration", mock.Anything, mock.MatchedBy(func(req RegistrationAppend) bool {
		return req.ExpectedCount == 1 && req.Registration.BidderNumber == 2
	})).Return(&after, nil).Once()
	bus.On("Broadcast", mock.Anything, mock.Anything).Return()

	res, err := newTestService(repo, bus).Register(context.Background(), before.ID, bidder, RegisterRequest{})

	require.NoError(t, err)
	assert.Equal(t, 2, res.BidderNumber)
	assert.Equal(t, "Bidder_2", res.BidderName)
	repo.AssertExpectations(t)
}

func TestServiceRegister_GivesUpAfterMaxAttempts(t *testing.T) {
	p := upcomingProduct(bson.NewObjectID(), 3, fixedNow)

	repo := new(MockProductsRepo)
	bus := new(MockBus)
	repo.On("FindByID", mock.Anything, p.ID).Return(p, nil).Times(3)
	repo.On("AppendRegistration", mock.Anything, mockAppend).Return(nil, ErrRegistrationConflict).Times(3)

	_, err := newTestService(repo, bus).Register(context.Background(), p.ID, bson.NewObjectID(), RegisterRequest{})

	assert.ErrorIs(t, err, ErrRegistrationBusy)
	repo.AssertExpectations(t)
	bus.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
}

func TestServiceRegister_ConflictThenRejected(t *testing.T) {
	seller := bson.NewObjectID()
	before := upcomingProduct(seller, 1, fixedNow)
	full := *before
	full.RegisteredUsers = []Registration{{UserID: bson.NewObjectID(), BidderNumber: 1}}

	repo := new(MockProductsRepo)
	repo.On("FindByID", mock.Anything, before.ID).Return(before, nil).Once()
	repo.On("AppendRegistration", mock.Anything, mockAppend).Return(nil, ErrRegistrationConflict).Once()
	repo.On("FindByID", mock.Anything, before.ID).Return(&full, nil).Once()

	_, err := newTestService(repo, new(MockBus)).Register(context.Background(), before.ID, bson.NewObjectID(), RegisterRequest{})

	assert.ErrorIs(t, err, ErrRegistrationFull)
	repo.AssertExpectations(t)
}

func TestServiceRegister_Failures(t *testing.T) {
	id := bson.NewObjectID()

	t.Run("not found", func(t *testing.T) {
		repo := new(MockProductsRepo)
		repo.On("FindByID", mock.Anything, id).Return(nil, ErrProductNotFound)

		_, err := newTestService(repo, new(MockBus)).Register(context.Background(), id, bson.NewObjectID(), RegisterRequest{})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("append error masked", func(t *testing.T) {
		p := upcomingProduct(bson.NewObjectID(), 2, fixedNow)
		repo := new(MockProductsRepo)
		repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		repo.On("AppendRegistration", mock.Anything, mockAppend).Return(nil, errors.New(ErrDBMsg))

		_, err := newTestService(repo, new(MockBus)).Register(context.Background(), p.ID, bson.NewObjectID(), RegisterRequest{})
		assert.ErrorIs(t, err, ErrRegisterBidder)
	})
}

// memRepo is an in-memory Repository whose AppendRegistration applies the
// same conditions the Mongo filter does.
type memRepo struct {
	mu       sync.Mutex
	products map[bson.ObjectID]*Product
}

func newMemRepo() *memRepo {
	return &memRepo{products: make(map[bson.ObjectID]*Product)}
}

func clone(p *Product) *Product {
	out := *p
	out.RegisteredUsers = append([]Registration{}, p.RegisteredUsers...)
	return &out
}

func (r *memRepo) Create(_ context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = clone(p)
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id bson.ObjectID) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return clone(p), nil
}

func (r *memRepo) List(_ context.Context, filter ListFilter) ([]*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*Product{}
	for _, p := range r.products {
		if filter.SellerID == nil || *filter.SellerID == p.SellerID {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func (r *memRepo) MarkEnded(_ context.Context, id, sellerID bson.ObjectID, now time.Time) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.SellerID != sellerID {
		return nil, ErrProductNotFound
	}
	p.Status = StatusEnded
	p.RegistrationClosed = true
	p.UpdatedAt = now
	return clone(p), nil
}

func (r *memRepo) AppendRegistration(_ context.Context, req RegistrationAppend) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[req.ProductID]
	if !ok ||
		p.Status == StatusEnded ||
		!p.AuctionStart.After(req.Now) ||
		p.SellerID == req.Registration.UserID ||
		IsRegistered(p, req.Registration.UserID) ||
		len(p.RegisteredUsers) != req.ExpectedCount ||
		p.MaxRegistrations <= req.ExpectedCount {
		return nil, ErrRegistrationConflict
	}
	p.RegisteredUsers = append(p.RegisteredUsers, req.Registration)
	if req.ClosesRegistration {
		p.RegistrationClosed = true
	}
	return clone(p), nil
}

type nopBus struct{}

func (nopBus) Broadcast(context.Context, ProductEvent) {}

func seedProduct(t *testing.T, svc *Service, seller bson.ObjectID, capacity int) *Product {
	t.Helper()
	req := validCreateBody
	req.MaxRegistrations = capacity
	p, err := svc.Create(context.Background(), seller, req)
	require.NoError(t, err)
	return p
}

func TestScenario_CapacityTwoThirdRejected(t *testing.T) {
	svc := newTestService(newMemRepo(), nopBus{})
	ctx := context.Background()
	p := seedProduct(t, svc, bson.NewObjectID(), 2)

	r1, err := svc.Register(ctx, p.ID, bson.NewObjectID(), RegisterRequest{})
	require.NoError(t, err)
	r2, err := svc.Register(ctx, p.ID, bson.NewObjectID(), RegisterRequest{})
	require.NoError(t, err)
	_, err = svc.Register(ctx, p.ID, bson.NewObjectID(), RegisterRequest{})

	assert.Equal(t, 1, r1.BidderNumber)
	assert.Equal(t, 2, r2.BidderNumber)
	assert.ErrorIs(t, err, ErrRegistrationFull)
	assert.True(t, r2.Product.RegistrationClosed, "filling the last slot marks registration closed")
}

func TestScenario_SellerClosesUpcomingThenRegistrationClosed(t *testing.T) {
	svc := newTestService(newMemRepo(), nopBus{})
	ctx := context.Background()
	seller := bson.NewObjectID()
	p := seedProduct(t, svc, seller, 5)

	closed, err := svc.Close(ctx, p.ID, seller)
	require.NoError(t, err)
	assert.Equal(t, StatusEnded, closed.Status)

	for range 3 {
		_, err := svc.Register(ctx, p.ID, bson.NewObjectID(), RegisterRequest{})
		assert.ErrorIs(t, err, ErrRegistrationClosed)
	}

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusEnded, got.Status, "status stays ended even before auctionStart")
	assert.Empty(t, got.RegisteredUsers)
}

func TestScenario_DuplicateRegistrationKeepsCount(t *testing.T) {
	svc := newTestService(newMemRepo(), nopBus{})
	ctx := context.Background()
	p := seedProduct(t, svc, bson.NewObjectID(), 5)
	bidder := bson.NewObjectID()

	_, err := svc.Register(ctx, p.ID, bidder, RegisterRequest{})
	require.NoError(t, err)
	_, err = svc.Register(ctx, p.ID, bidder, RegisterRequest{})
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.RegisteredUsers, 1)
}

func TestScenario_SellerCannotRegister(t *testing.T) {
	svc := newTestService(newMemRepo(), nopBus{})
	seller := bson.NewObjectID()
	p := seedProduct(t, svc, seller, 5)

	_, err := svc.Register(context.Background(), p.ID, seller, RegisterRequest{})
	assert.ErrorIs(t, err, ErrSellerCannotRegister)
}

func TestScenario_ActiveProductRejectsRegistration(t *testing.T) {
	svc := newTestService(newMemRepo(), nopBus{})
	p := seedProduct(t, svc, bson.NewObjectID(), 5)

	svc.now = func() time.Time { return p.AuctionStart }

	_, err := svc.Register(context.Background(), p.ID, bson.NewObjectID(), RegisterRequest{})
	assert.ErrorIs(t, err, ErrRegistrationClosed)
}

func TestScenario_OmittedBidIncrementPersistsTen(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nopBus{})
	p := seedProduct(t, svc, bson.NewObjectID(), 1)

	stored, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, stored.BidIncrement)
}

func TestScenario_ConcurrentRegistrationsRespectCapacity(t *testing.T) {
	const (
		capacity = 5
		bidders  = 40
	)

	svc := NewService(newMemRepo(), nopBus{}, bidders, silentLogger)
	svc.now = func() time.Time { return fixedNow }
	p := seedProduct(t, svc, bson.NewObjectID(), capacity)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []int
	)
	for range bidders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Register(context.Background(), p.ID, bson.NewObjectID(), RegisterRequest{})
			if err != nil {
				assert.ErrorIs(t, err, ErrRegistrationFull)
				return
			}
			mu.Lock()
			numbers = append(numbers, res.BidderNumber)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5}, numbers)

	got, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, got.RegisteredUsers, capacity)
	for i, r := range got.RegisteredUsers {
		assert.Equal(t, i+1, r.BidderNumber)
	}
}
