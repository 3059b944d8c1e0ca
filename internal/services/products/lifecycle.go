package products

import "time"

// ResolveStatus returns the externally visible status of p at now.
// A persisted Ended is terminal and wins over any timestamp.
func ResolveStatus(p *Product, now time.Time) Status {
	if p.Status == StatusEnded {
		return StatusEnded
	}
	if !now.Before(p.AuctionStart) {
		return StatusActive
	}
	return StatusUpcoming
}

// Resolved returns a shallow copy of p carrying its resolved status.
func Resolved(p *Product, now time.Time) *Product {
	if p == nil {
		return nil
	}
	out := *p
	out.Status = ResolveStatus(p, now)
	if out.RegisteredUsers == nil {
		out.RegisteredUsers = []Registration{}
	}
	if out.Images == nil {
		out.Images = []string{}
	}
	return &out
}

// ResolveAll applies Resolved to every product in ps.
func ResolveAll(ps []*Product, now time.Time) []*Product {
	out := make([]*Product, 0, len(ps))
	for _, p := range ps {
		out = append(out, Resolved(p, now))
	}
	return out
}
