package products

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// CheckRegistration runs the eligibility rules for userID against p at now.
// Rules run in a fixed order and the first failure is returned.
func CheckRegistration(p *Product, userID bson.ObjectID, now time.Time) error {
	if p.SellerID == userID {
		return ErrSellerCannotRegister
	}
	if ResolveStatus(p, now) != StatusUpcoming {
		return ErrRegistrationClosed
	}
	if IsRegistered(p, userID) {
		return ErrAlreadyRegistered
	}
	if len(p.RegisteredUsers) >= p.MaxRegistrations {
		return ErrRegistrationFull
	}
	return nil
}

// IsRegistered reports whether userID already holds a bidder number on p.
func IsRegistered(p *Product, userID bson.ObjectID) bool {
	for _, r := range p.RegisteredUsers {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// DefaultBidderName is the display name used when a bidder gives none.
func DefaultBidderName(bidderNumber int) string {
	return fmt.Sprintf("Bidder_%d", bidderNumber)
}

// NewRegistration builds the next ledger entry for userID on p.
func NewRegistration(p *Product, userID bson.ObjectID, bidderName string, now time.Time) Registration {
	n := len(p.RegisteredUsers) + 1
	if bidderName == "" {
		bidderName = DefaultBidderName(n)
	}
	return Registration{
		UserID:       userID,
		BidderNumber: n,
		BidderName:   bidderName,
		RegisteredAt: now,
		Notified:     false,
	}
}
