package main

import (
	"strings"
	"time"

	"auction-house/cmd/server/handlers"
	authHandlers "auction-house/cmd/server/handlers/auth"
	"auction-house/cmd/server/handlers/httperr"
	productsHandlers "auction-house/cmd/server/handlers/products"
	"auction-house/cmd/server/middlewares"
	"auction-house/internal/config"
	"auction-house/internal/logger"
	authServices "auction-house/internal/services/auth"
	productsServices "auction-house/internal/services/products"
	util "auction-house/internal/utils"

	_ "auction-house/docs" // Load swagger docs

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

const (
	RateLimitExpiration = 1 * time.Minute
)

// routerDeps are the storage and event plumbing the routes run on.
type routerDeps struct {
	Users    authServices.UsersRepo
	Products productsServices.Repository
	Hub      *productsServices.Hub
	// Bus receives product events; the hub itself when no relay is configured.
	Bus productsServices.Bus
}

// setupRouter configures and returns a Fiber app with all routes
func setupRouter(cfg config.Config, deps routerDeps) *fiber.App {
	v, err := util.NewValidator()
	if err != nil {
		logger.L().Error("failed to build validator", "err", err)
		panic(err)
	}

	// Validate JWT algorithm at boot
	if strings.ToUpper(cfg.JWTAlgorithm) != "HS256" {
		logger.L().Error(authServices.ErrUnsupportedJWTAlg.Error(), "algorithm", cfg.JWTAlgorithm)
		panic(authServices.ErrUnsupportedJWTAlg.Error() + ": " + cfg.JWTAlgorithm)
	}

	if deps.Bus == nil {
		deps.Bus = deps.Hub
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
		Immutable:    true, // make Fiber copy all request-derived strings
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
	})

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: "Content-Type, Authorization",
		AllowMethods: "GET,POST,PATCH,OPTIONS",
	}))

	var metrics *middlewares.Metrics
	if cfg.RouteMetricsEnabled {
		metrics = middlewares.AttachMetrics(app, deps.Hub)
	}

	// Health check endpoint, outside the API group to avoid logging
	app.Get("/healthz", handlers.Healthz)

	app.Get("/docs/*", swagger.HandlerDefault)

	var api fiber.Router
	if cfg.RequestLoggingEnabled {
		api = app.Group("/api", fiberlogger.New())
		logger.L().Info("request logging enabled")
	} else {
		api = app.Group("/api")
		logger.L().Info("request logging disabled")
	}

	jwtMiddleware := middlewares.JWT(cfg)
	loginLimiter := middlewares.BuildRateLimiter(cfg.SignInRatePerMin, RateLimitExpiration)

	// Auth routes
	authSvc := authServices.NewService(deps.Users, cfg, logger.L())
	authH := authHandlers.NewHandlers(authSvc, v)

	authGrp := api.Group("/auth")
	authGrp.Post("/register", authH.Register)
	authGrp.Post("/login", loginLimiter, authH.Login)

	api.Get("/me", jwtMiddleware, handlers.Me)

	// Products routes
	productsSvc := productsServices.NewService(deps.Products, deps.Bus, cfg.RegistrationMaxAttempts, logger.L())
	productsH := productsHandlers.NewHandlers(productsSvc, v, metrics)

	productsGrp := api.Group("/products", jwtMiddleware)
	productsGrp.Get("/", productsH.List)
	productsGrp.Post("/", productsH.Create)
	productsGrp.Get("/my-products", productsH.MyProducts)
	productsGrp.Patch("/close/:id", productsH.Close)
	productsGrp.Post("/register/:id", productsH.Register)
	productsGrp.Get("/:id", productsH.Get)

	// WebSocket routes
	wsHandlers := productsHandlers.NewWebSocketHandlers(deps.Hub, cfg.JWTSecret, cfg.WSMaxSessionSec)
	app.Use("/ws", productsHandlers.LogWSConnections(cfg.JWTSecret))
	app.Get("/ws/products/stream", wsHandlers.WSUpgrade, websocket.New(wsHandlers.WSProductsStream))

	return app
}
