// @title AuctionHouse API
// @version 1.0
// @description Auction listings, bidder registration and a live product event stream.
// @BasePath /api
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auction-house/internal/clients/mongo"
	"auction-house/internal/clients/redis"
	"auction-house/internal/config"
	"auction-house/internal/logger"
	"auction-house/internal/services/products"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 25 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Create bootstrap logger for early errors
	bootstrapLog := log.New(os.Stderr, "bootstrap: ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		bootstrapLog.Printf("config load failed: %v", err)
		os.Exit(1)
	}

	logg, err := logger.Init(cfg)
	if err != nil {
		bootstrapLog.Printf("logger init failed: %v", err)
		os.Exit(1)
	}

	undoMaxprocs, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logg.Info(fmt.Sprintf(format, args...))
	}))
	if err != nil {
		logg.Warn("automaxprocs", "err", err)
	}
	defer undoMaxprocs()

	if profiler := startProfiler(cfg, logg); profiler != nil {
		defer func() {
			if err := profiler.Stop(); err != nil {
				logg.Warn("pyroscope stop", "err", err)
			}
		}()
	}

	_, db, err := mongo.Init(ctx, cfg, logg)
	if err != nil {
		logg.Error("mongo init", "err", err)
		os.Exit(1)
	}
	logg.Info("connected to mongo", "db", db.Name())

	usersRepo, err := mongo.NewUsersRepo(ctx, db)
	if err != nil {
		logg.Error("users repository", "err", err)
		os.Exit(1)
	}
	productsRepo, err := mongo.NewProductsRepo(ctx, db)
	if err != nil {
		logg.Error("products repository", "err", err)
		os.Exit(1)
	}

	hub := products.NewHub(cfg.WSOutboxBuffer)
	deps := routerDeps{Users: usersRepo, Products: productsRepo, Hub: hub, Bus: hub}

	var relay *redis.Relay
	if cfg.RedisURL != "" {
		rdb, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			logg.Error("redis init", "err", err)
			os.Exit(1)
		}
		relay = redis.NewRelay(rdb, cfg.RedisEventsChannel, hub, logg)
		deps.Bus = relay
		g.Go(func() error {
			return relay.Run(ctx)
		})
		logg.Info("product event relay enabled", "channel", cfg.RedisEventsChannel)
	}

	logg.Info("starting AuctionHouse", "port", cfg.AppPort)

	app := setupRouter(cfg, deps)
	portStr := fmt.Sprintf(":%d", cfg.AppPort)

	g.Go(func() error {
		err := app.Listen(portStr)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	// Graceful shutdown
	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		if relay != nil {
			if err := relay.Close(); err != nil {
				logg.Warn("redis close", "err", err)
			}
		}
		return mongo.Shutdown(shutdownCtx)
	})

	// Wait and exit
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error("fatal", "err", err)
		os.Exit(1)
	}
	logg.Info("graceful shutdown complete")
}

// startProfiler starts continuous profiling when a Pyroscope server is configured.
func startProfiler(cfg config.Config, logg *slog.Logger) *pyroscope.Profiler {
	if cfg.PyroscopeServerAddress == "" {
		return nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: "auction-house",
		ServerAddress:   cfg.PyroscopeServerAddress,
		Tags:            map[string]string{"service": "auction-house"},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		logg.Warn("pyroscope start", "err", err)
		return nil
	}
	logg.Info("continuous profiling enabled", "server", cfg.PyroscopeServerAddress)
	return profiler
}
