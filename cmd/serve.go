package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gigflow/internal/auth"
	bidding "gigflow/internal/biddingService"
	"gigflow/internal/config"
	hiring "gigflow/internal/hiringService"
	"gigflow/internal/metrics"
	"gigflow/internal/notify"
	"gigflow/internal/presence"
	"gigflow/internal/realtime"
	"gigflow/internal/repository"
	"gigflow/internal/server"
	"gigflow/services/bidding/helpers"
	"gigflow/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and live channel",
	Long:  "Starts the marketplace HTTP API, the WebSocket live channel and the notification workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close(context.WithoutCancel(ctx))
			return fmt.Errorf("migrate: %w", err)
		}

		return serve(ctx, cfg, store)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// serve runs the application on store until ctx is cancelled and then shuts
// every component down in dependency order.
func serve(ctx context.Context, cfg config.Config, store repository.Store) error {
	registry := presence.NewRegistry(presence.WithGauge(metrics.PresenceOnline))
	dispatcher := notify.NewDispatcher(registry)

	group, groupCtx := errgroup.WithContext(ctx)

	// a single node delivers queued events itself; with Redis every node
	// publishes and delivers what it receives to its own connections
	deliver := notify.HandlerFunc(dispatcher.Handle)
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		bus := notify.NewRedisBus(redisClient, cfg.RedisEventsChannel, dispatcher.Handle)
		if err := bus.Ping(ctx); err != nil {
			_ = redisClient.Close()
			_ = store.Close(context.WithoutCancel(ctx))
			return fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		deliver = bus.Forward
		group.Go(func() error { return bus.Run(groupCtx) })
	}
	queue := notify.NewQueue(deliver, cfg.NotifyWorkers, cfg.NotifyQueueSize, cfg.NotifyTimeout)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiresIn)
	authService := auth.NewService(store, tokens, auth.DefaultCost)
	biddingService := bidding.NewBiddingService(store)
	hiringService := hiring.NewHiringService(store, queue)
	live := realtime.NewHandler(tokens, registry, cfg.CookieName, cfg.CORSOrigin)

	router := server.SetupRouter(server.Dependencies{
		Auth:       authService,
		Bidding:    biddingService,
		Hiring:     hiringService,
		LiveSocket: live.ServeWS,
		Cookie: helpers.CookieOptions{
			Name:   cfg.CookieName,
			MaxAge: cfg.JWTExpiresIn,
			Secure: cfg.IsProduction(),
		},
		CORSOrigin: cfg.CORSOrigin,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group.Go(func() error {
		utils.Info("HTTP server listening", map[string]any{
			"addr":    srv.Addr,
			"env":     cfg.AppEnv,
			"storage": cfg.StorageDriver,
			"redis":   cfg.RedisAddr != "",
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			utils.Warn("HTTP server shutdown", map[string]any{"error": err.Error()})
		}
		live.Shutdown()
		queue.Shutdown()
		if redisClient != nil {
			_ = redisClient.Close()
		}
		if err := store.Close(shutdownCtx); err != nil {
			utils.Warn("store close", map[string]any{"error": err.Error()})
		}
		return nil
	})

	err := group.Wait()
	utils.Info("HTTP server and notification workers shut down gracefully", nil)
	return err
}
