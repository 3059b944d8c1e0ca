// Package docs AuctionHouse API
//
// @title  AuctionHouse API
// @version 1.0
// @description Auction listings, bidder registration and a live product event stream.
// @host      localhost:8080
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package docs

import (
	_ "auction-house/cmd/server/handlers/httperr"
	_ "auction-house/internal/services/auth"
	_ "auction-house/internal/services/products"
)
