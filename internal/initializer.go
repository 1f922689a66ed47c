package internal

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"library-admin/internal/config"
	"library-admin/internal/managers"
	"library-admin/internal/routing"
	"library-admin/internal/schemas"
)

const shutdownTimeout = 10 * time.Second

// Serve starts the web application and blocks until SIGINT or SIGTERM, then drains open requests.
func Serve() error {
	cfg := setup()

	pool, err := initializeDatabase(cfg.Database)
	if err != nil {
		return err
	}

	// Initialize database manager, it owns the pool from here on
	databaseMgr := managers.NewDatabaseManager(pool)
	defer databaseMgr.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = databaseMgr.Migrate(ctx); err != nil {
		return err
	}

	// Initialize mail manager
	mailMgr := managers.NewMailManager(cfg.Mail, cfg.IsProduction())

	// Initialize JWT manager
	jwtMgr, err := managers.NewJWTManagerFromFile(cfg.KeyPairPath)
	if err != nil {
		return err
	}

	// Initialize router
	r, err := routing.InitRouter(cfg, databaseMgr, mailMgr, jwtMgr)
	if err != nil {
		return err
	}
	log.Info("Initialized router")

	server := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting server on port %s...", cfg.HTTP.Port)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err = <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// Migrate creates the tables and indexes and exits.
func Migrate() error {
	cfg := setup()

	pool, err := initializeDatabase(cfg.Database)
	if err != nil {
		return err
	}
	databaseMgr := managers.NewDatabaseManager(pool)
	defer databaseMgr.Close()

	if err = databaseMgr.Migrate(context.Background()); err != nil {
		return err
	}
	log.Info("Database schema is up to date")
	return nil
}

// CreateUser registers a member directly in the database. The first staff account has to be created this way,
// since the users page is only reachable with a session.
func CreateUser(request *schemas.MemberRequest) (int, error) {
	cfg := setup()

	pool, err := initializeDatabase(cfg.Database)
	if err != nil {
		return 0, err
	}
	databaseMgr := managers.NewDatabaseManager(pool)
	defer databaseMgr.Close()

	ctx := context.Background()
	if err = databaseMgr.Migrate(ctx); err != nil {
		return 0, err
	}

	return managers.NewMemberManager(databaseMgr, nil).AddMember(ctx, request)
}

func setup() *config.Config {
	cfg := config.Load()
	setLogLevel(cfg.LogLevel)
	log.Debugf("Configuration: port=%s environment=%s db=%s@%s:%s/%s",
		cfg.HTTP.Port, cfg.Environment, cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	return cfg
}

func initializeDatabase(cfg config.Database) (*pgxpool.Pool, error) {
	log.Info("Initializing database")

	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		log.Error("error configuring database: ", err)
		return nil, err
	}

	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MaxConnIdleTime = time.Minute * 2
	poolConfig.HealthCheckPeriod = time.Minute * 1

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Error("error connecting to database: ", err)
		return nil, err
	}
	log.Info("Connected to database")
	return pool, nil
}

func setLogLevel(logLevel string) {
	switch logLevel {
	case "DEBUG":
		log.SetLevel(log.DebugLevel)
	case "INFO":
		log.SetLevel(log.InfoLevel)
	case "WARN":
		log.SetLevel(log.WarnLevel)
	case "ERROR":
		log.SetLevel(log.ErrorLevel)
	case "FATAL":
		log.SetLevel(log.FatalLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	log.SetReportCaller(true)

	log.SetOutput(os.Stdout)
}
