package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/erazemk/phonestock/internal/api"
	"github.com/erazemk/phonestock/internal/auth"
	"github.com/erazemk/phonestock/internal/config"
	"github.com/erazemk/phonestock/internal/db"
	"github.com/erazemk/phonestock/internal/inspect"
	"github.com/erazemk/phonestock/internal/logger"
	"github.com/erazemk/phonestock/internal/metrics"
	"github.com/erazemk/phonestock/internal/model"
	"github.com/erazemk/phonestock/internal/redis"
	"github.com/erazemk/phonestock/internal/store"
)

const usage = "Usage: phonestock <serve|init|migrate|reset-admin-password>"

func main() {
	// A missing .env file is fine; the environment alone may be enough.
	_ = godotenv.Load()

	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = cmdServe(args)
	case "init":
		err = cmdInit(args)
	case "migrate":
		err = cmdMigrate(args)
	case "reset-admin-password":
		err = cmdResetAdminPassword(args)
	case "-h", "-help", "--help", "help":
		fmt.Fprintln(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n%s\n", cmd, usage)
		os.Exit(1)
	}
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads the config, builds the logger and opens the database.
func bootstrap() (*config.Config, *logger.Logger, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	logg, err := logger.New(logger.Options{
		ServiceName: "phonestock",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		File:        cfg.App.LogFile,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	database, err := db.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		logg.Close()
		return nil, nil, nil, err
	}
	if cfg.DB.Driver == db.DriverMySQL {
		database.SetMaxOpenConns(cfg.DB.MaxOpenConns)
		database.SetMaxIdleConns(cfg.DB.MaxIdleConns)
		database.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	}
	return cfg, logg, database, nil
}

func cmdServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", "", "listen address (overrides PHONESTOCK_ADDR)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logg, database, err := bootstrap()
	if err != nil {
		return err
	}
	defer logg.Close()
	defer database.Close()

	ctx := context.Background()
	if *addr != "" {
		cfg.App.Addr = *addr
	}

	if err := db.Migrate(ctx, database, cfg.DB.Driver, logg); err != nil {
		return err
	}
	logg.Info(logg.WithField(ctx, "driver", cfg.DB.Driver), "database ready")

	secret := cfg.JWT.Secret
	if secret == "" {
		secret, err = store.GetJWTSecret(ctx, database)
		if err != nil {
			return fmt.Errorf("loading jwt secret: %w", err)
		}
	}

	page, err := inspect.LoadPage()
	if err != nil {
		return err
	}

	opts := api.Options{
		DB:         database,
		Driver:     cfg.DB.Driver,
		Tokens:     auth.NewTokens(secret, cfg.JWT.TTL),
		Logger:     logg,
		Metrics:    metrics.New(),
		SchemaPage: page,
		LoginRate: api.LoginRateLimitPolicy{
			Window:    cfg.RateLimit.LoginWindow,
			IPLimit:   cfg.RateLimit.LoginIPLimit,
			UserLimit: cfg.RateLimit.LoginUserLimit,
		},
		Env:          cfg.App.Env,
		LoginURL:     cfg.App.LoginURL,
		CookieSecure: cfg.App.CookieSecure,
		TrustProxy:   cfg.App.TrustProxy,
		SetupToken:   cfg.Setup.Token,
	}

	if cfg.Redis.Enabled() {
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer client.Close()
		opts.Limiter = client
		opts.Redis = client
	} else {
		logg.Warn(ctx, "redis not configured, login rate limiting disabled")
	}

	server := &http.Server{
		Addr:              cfg.App.Addr,
		Handler:           api.NewRouter(opts),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "server forced to shutdown", err)
		}
	}()

	logg.Info(logg.WithField(ctx, "addr", cfg.App.Addr), "server started")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	logg.Info(ctx, "server stopped, closing database")
	return nil
}

func cmdInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	username := fs.String("user", "admin", "admin username")
	fullName := fs.String("name", "Administrator", "admin full name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logg, database, err := bootstrap()
	if err != nil {
		return err
	}
	defer logg.Close()
	defer database.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx, database, cfg.DB.Driver, logg); err != nil {
		return err
	}

	existing, err := store.GetFirstAdmin(ctx, database)
	if err != nil {
		return err
	}
	if existing != nil {
		fmt.Printf("Admin account already exists: %s\n", existing.Username)
		return nil
	}

	password, err := auth.GeneratePassword(16)
	if err != nil {
		return fmt.Errorf("generating password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := store.CreateUser(ctx, database, *username, *fullName, hash, model.RoleAdmin); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", *username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	return nil
}

func cmdMigrate(args []string) error {
	command := "up"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	cfg, logg, database, err := bootstrap()
	if err != nil {
		return err
	}
	defer logg.Close()
	defer database.Close()

	return db.Run(context.Background(), database, cfg.DB.Driver, command, args...)
}

func cmdResetAdminPassword(args []string) error {
	fs := flag.NewFlagSet("reset-admin-password", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logg, database, err := bootstrap()
	if err != nil {
		return err
	}
	defer logg.Close()
	defer database.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx, database, cfg.DB.Driver, logg); err != nil {
		return err
	}

	password, err := auth.GeneratePassword(16)
	if err != nil {
		return fmt.Errorf("generating password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	admin, err := store.ResetAdminPassword(ctx, database, hash, 0)
	if err != nil {
		return err
	}

	fmt.Printf("Password reset for %s\n", admin.Username)
	fmt.Printf("  New password: %s\n", password)
	return nil
}
