package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"github.com/vasiliy-maslov/delivery-api/internal/account"
	"github.com/vasiliy-maslov/delivery-api/internal/auth"
	"github.com/vasiliy-maslov/delivery-api/internal/config"
	"github.com/vasiliy-maslov/delivery-api/internal/db"
	deliveryHttp "github.com/vasiliy-maslov/delivery-api/internal/handler/http"
	"github.com/vasiliy-maslov/delivery-api/internal/order"
	"github.com/vasiliy-maslov/delivery-api/internal/product"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "skip-migrations",
				Usage: "do not apply pending migrations on startup",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			return serve(c.Context, cfg, c.Bool("skip-migrations"))
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, skipMigrations bool) error {
	log.Info().Msg("Starting delivery-api...")

	cancelPolicy, err := order.ParseCancelPolicy(cfg.Order.CancelPolicy)
	if err != nil {
		return err
	}

	if !skipMigrations {
		if err := db.MigrateUp(cfg.Postgres); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	connectCtx, cancelConnect := context.WithTimeout(ctx, 10*time.Second)
	defer cancelConnect()

	dbPool, err := db.New(connectCtx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbPool.Close()

	accountSvc := account.NewService(account.NewRepository(dbPool.Pool))
	issuer := auth.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	authSvc := auth.NewService(accountSvc, issuer)
	productSvc := product.NewService(product.NewRepository(dbPool.Pool))
	orderSvc := order.NewService(order.NewUnitOfWork(dbPool.Pool), cancelPolicy)

	router := deliveryHttp.NewRouter(log.Logger, deliveryHttp.RouterServices{
		Accounts: accountSvc,
		Auth:     authSvc,
		Products: productSvc,
		Orders:   orderSvc,
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
		IdleTimeout:  cfg.App.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.App.Port).Str("cancel_policy", cancelPolicy.String()).Dur("token_ttl", issuer.TTL()).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stopCh)

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("could not listen on %s: %w", cfg.App.Port, err)
		}
	case sig := <-stopCh:
		log.Info().Str("signal", sig.String()).Msg("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info().Msg("delivery-api stopped gracefully")
	return nil
}
