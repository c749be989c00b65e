package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mekaroindia/mekaro/internal/auth"
	"github.com/mekaroindia/mekaro/internal/backend"
	"github.com/mekaroindia/mekaro/internal/cart"
	"github.com/mekaroindia/mekaro/internal/catalog"
	"github.com/mekaroindia/mekaro/internal/store"
	"github.com/mekaroindia/mekaro/pkg/config"
	"github.com/mekaroindia/mekaro/pkg/logger"
)

type app struct {
	cfg     config.Config
	log     *slog.Logger
	durable *store.Durable
	session *store.Session
	guard   *auth.Guard
	api     *backend.Client
	cart    *cart.Manager
	catalog *catalog.Service
}

func newApp() (*app, error) {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(logger.Options{Service: "mekaro", Env: cfg.Env, Level: cfg.LogLevel})

	durable, err := store.OpenDurable(filepath.Join(cfg.DataDir, "mekaro.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open client store: %w", err)
	}

	session := store.NewSession()
	guard := auth.NewGuard(durable, session, log)
	api := backend.New(backend.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.RequestTimeout,
	}, guard, log)

	return &app{
		cfg:     cfg,
		log:     log,
		durable: durable,
		session: session,
		guard:   guard,
		api:     api,
		cart:    cart.NewManager(durable, log),
		catalog: catalog.NewService(api, log),
	}, nil
}

func (a *app) close() {
	if err := a.durable.Close(); err != nil {
		a.log.Warn("failed to close store", "error", err)
	}
}

// splash prints the intro banner once per session.
func (a *app) splash() {
	if _, seen, _ := a.session.Get(store.KeySplashSeen); seen {
		return
	}
	_ = a.session.Set(store.KeySplashSeen, []byte("1"))
	fmt.Println("Mekaro — storefront client")
}

func main() {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer a.close()

	root := &cobra.Command{
		Use:          "mekaro",
		Short:        "Mekaro storefront client",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.splash()
		},
	}
	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.productsCmd(),
		a.categoriesCmd(),
		a.cartCmd(),
		a.checkoutCmd(),
		a.ordersCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
