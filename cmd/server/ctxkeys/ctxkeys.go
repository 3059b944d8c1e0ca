// Package ctxkeys holds the keys handlers and middlewares share through fiber.Ctx.Locals.
package ctxkeys

const (
	// UserIDKey carries the authenticated user's hex ObjectID.
	UserIDKey = "userID"
	// UserEmailKey carries the authenticated user's email.
	UserEmailKey = "userEmail"
	// TokenKey is where the JWT middleware leaves the parsed *jwt.Token.
	TokenKey = "user"
	// ParentCtxKey carries the request-scoped context.Context that outlives the fasthttp ctx.
	ParentCtxKey = "parentCtx"
	// WatchProductKey carries the product a stream connection watches.
	WatchProductKey = "watchProduct"
)
