package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hopebridge/donation-management/internal"
	"github.com/hopebridge/donation-management/internal/campaign"
	"github.com/hopebridge/donation-management/internal/core/events"
	"github.com/hopebridge/donation-management/internal/donation"
	donationPostgres "github.com/hopebridge/donation-management/internal/donation/postgres"
	"github.com/hopebridge/donation-management/internal/mailer"
	"github.com/hopebridge/donation-management/internal/member"
	memberPostgres "github.com/hopebridge/donation-management/internal/member/postgres"
	"github.com/hopebridge/donation-management/internal/newsletter"
	newsletterPostgres "github.com/hopebridge/donation-management/internal/newsletter/postgres"
	"github.com/hopebridge/donation-management/internal/notification"
	"github.com/hopebridge/donation-management/internal/paymentgateway"
	"github.com/hopebridge/donation-management/internal/transport"
	"github.com/hopebridge/donation-management/internal/transport/rest"
	"github.com/hopebridge/donation-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Router   *chi.Mux
	Handlers rest.Handlers
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Config.Security, deps.Handlers, deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Environment)
	appLogger := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm rides on the existing pgx connection pool
	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	eventBus := events.NewEventBus(appLogger)
	baseHandler := transport.NewBaseHandler(appLogger)

	// repositories
	donationRepo := donationPostgres.NewDonationRepository(gormDB)
	memberRepo := memberPostgres.NewMemberRepository(gormDB)
	subscriptionRepo := newsletterPostgres.NewSubscriptionRepository(gormDB)

	// outbound clients
	gatewayClient := paymentgateway.NewClient(paymentgateway.Config{
		BaseURL:        config.Payment.GatewayBaseURL,
		SecretKey:      config.Payment.SecretKey,
		CallbackURL:    config.Payment.CallbackURL,
		RequestTimeout: config.Payment.RequestTimeout,
	}, appLogger)
	mailSender := mailer.NewResendMailer(config.Mailer, appLogger)
	notifier := notification.NewConfirmationNotifier(mailSender, appLogger)

	// services
	donationService := donation.NewService(donationRepo, gatewayClient, eventBus, appLogger)
	memberService := member.NewService(memberRepo, appLogger)
	newsletterService := newsletter.NewService(subscriptionRepo, appLogger)
	campaignService := campaign.NewService(donationRepo, memberRepo, subscriptionRepo, mailSender, campaign.Config{
		BatchSize:       config.Campaign.BatchSize,
		MaxConcurrency:  config.Campaign.MaxConcurrency,
		InterBatchDelay: config.Campaign.InterBatchDelay,
	}, appLogger)

	// event handlers run side effects off the reconciliation path
	donationEvents := donation.NewEventHandler(notifier, appLogger)
	donationEvents.RegisterEventHandlers(eventBus)

	handlers := rest.Handlers{
		Donation:   donation.NewHandler(baseHandler, donationService, appLogger),
		Webhook:    donation.NewWebhookHandler(baseHandler, donationService, appLogger),
		Newsletter: newsletter.NewHandler(baseHandler, newsletterService, appLogger),
		Campaign:   campaign.NewHandler(baseHandler, campaignService, appLogger),
		Member:     member.NewHandler(baseHandler, memberService, appLogger),
	}

	return &Dependencies{
		Config:   config,
		Logger:   appLogger,
		DB:       db,
		GormDB:   gormDB,
		Router:   chi.NewRouter(),
		Handlers: handlers,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
