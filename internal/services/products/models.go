package products

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Status is the lifecycle phase of an auction
type Status string

// Lifecycle phases. Only StatusEnded is authoritative when persisted.
const (
	StatusUpcoming Status = "Upcoming"
	StatusActive   Status = "Active"
	StatusEnded    Status = "Ended"
)

// Condition describes the physical state of the item
type Condition string

const (
	ConditionNew     Condition = "New"
	ConditionUsed    Condition = "Used"
	ConditionAntique Condition = "Antique"
)

// PaymentStatus is stored for completeness; nothing acts on it.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
)

// DeliveryStatus is stored for completeness; nothing acts on it.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "Pending"
	DeliveryShipped   DeliveryStatus = "Shipped"
	DeliveryDelivered DeliveryStatus = "Delivered"
)

// DefaultBidIncrement applies when a seller omits bidIncrement
const DefaultBidIncrement = 10.0

// Registration is one bidder's entry in a product's registration ledger
type Registration struct {
	UserID       bson.ObjectID `bson:"user_id" json:"userId" example:"683cdb8aa96ad71e8e075bd0"`
	BidderNumber int           `bson:"bidder_number" json:"bidderNumber" example:"1"`
	BidderName   string        `bson:"bidder_name" json:"bidderName" example:"Bidder_1"`
	RegisteredAt time.Time     `bson:"registered_at" json:"registeredAt" example:"2025-06-01T23:00:26.005703677Z"`
	Notified     bool          `bson:"notified" json:"notified" example:"false"`
}

// Product is an auction listing
type Product struct {
	ID                 bson.ObjectID  `bson:"_id,omitempty" json:"_id" example:"683cdb8aa96ad71e8e075bd1"`
	Title              string         `bson:"title" json:"title" example:"Victorian pocket watch"`
	Description        string         `bson:"description" json:"description" example:"Gold plated, working condition"`
	Images             []string       `bson:"images" json:"images"`
	Category           string         `bson:"category" json:"category" example:"Watches"`
	Condition          Condition      `bson:"condition" json:"condition" example:"Antique"`
	StartingPrice      float64        `bson:"starting_price" json:"startingPrice" example:"150"`
	CurrentBid         float64        `bson:"current_bid" json:"currentBid" example:"0"`
	BidIncrement       float64        `bson:"bid_increment" json:"bidIncrement" example:"10"`
	BidsCount          int            `bson:"bids_count" json:"bidsCount" example:"0"`
	AuctionStart       time.Time      `bson:"auction_start" json:"auctionStart" example:"2025-07-01T18:00:00Z"`
	Status             Status         `bson:"status" json:"status" example:"Upcoming"`
	SellerID           bson.ObjectID  `bson:"seller_id" json:"sellerId" example:"683cdb8aa96ad71e8e075bd0"`
	HighestBidderID    *bson.ObjectID `bson:"highest_bidder_id,omitempty" json:"highestBidderId"`
	WinnerID           *bson.ObjectID `bson:"winner_id,omitempty" json:"winnerId"`
	MaxRegistrations   int            `bson:"max_registrations" json:"maxRegistrations" example:"20"`
	RegisteredUsers    []Registration `bson:"registered_users" json:"registeredUsers"`
	RegistrationClosed bool           `bson:"registration_closed" json:"registrationClosed" example:"false"`
	PaymentStatus      PaymentStatus  `bson:"payment_status" json:"paymentStatus" example:"Pending"`
	DeliveryStatus     DeliveryStatus `bson:"delivery_status" json:"deliveryStatus" example:"Pending"`
	IsArchived         bool           `bson:"is_archived" json:"isArchived" example:"false"`
	CreatedAt          time.Time      `bson:"created_at" json:"createdAt" example:"2025-06-01T23:00:26.005703677Z"`
	UpdatedAt          time.Time      `bson:"updated_at" json:"updatedAt" example:"2025-06-01T23:00:26.005703677Z"`
}

// EventType names what happened to a product
type EventType string

const (
	EventCreated    EventType = "created"
	EventRegistered EventType = "registered"
	EventClosed     EventType = "closed"
)

// ProductEvent is pushed to stream watchers and relayed between instances
type ProductEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       EventType `json:"type"`
	Product    *Product  `json:"product"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewEvent stamps a fresh event for p
func NewEvent(t EventType, p *Product, at time.Time) ProductEvent {
	return ProductEvent{
		ID:         uuid.New(),
		Type:       t,
		Product:    p,
		OccurredAt: at,
	}
}
