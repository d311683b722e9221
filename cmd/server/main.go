package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rbyte/rbyte-api/internal/config"
	"github.com/rbyte/rbyte-api/internal/handlers"
	"github.com/rbyte/rbyte-api/internal/metrics"
	"github.com/rbyte/rbyte-api/internal/middleware"
	"github.com/rbyte/rbyte-api/internal/repository"
	"github.com/rbyte/rbyte-api/internal/service"
	"github.com/rbyte/rbyte-api/internal/sms"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithField("level", cfg.Log.Level).Warn("Unknown LOG_LEVEL, using info")
	}

	ctx := context.Background()
	var closers []func()

	// DynamoDB is shared by the lead and OTP stores when either selects it.
	var dynamoClient *dynamodb.Client
	if cfg.Store.Driver == config.StoreDynamoDB || cfg.OTP.Store == config.StoreDynamoDB {
		dynamoClient, err = initDynamoDB(cfg, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize DynamoDB")
		}
	}

	leadRepo, closeLeads, err := initLeadRepository(ctx, cfg, dynamoClient, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize lead store")
	}
	closers = append(closers, closeLeads)

	otpStore, closeOTP, err := initOTPStore(ctx, cfg, dynamoClient, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize OTP store")
	}
	closers = append(closers, closeOTP)

	gateway := initSMSGateway(cfg, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize services
	otpService := service.NewOTPService(otpStore, gateway, &cfg.OTP, m, logger)
	leadService := service.NewLeadService(leadRepo, gateway, cfg.SMS.OwnerPhone, m, logger)
	listingService := service.NewListingService(leadRepo, logger)

	var tokenService *service.VerificationTokenService
	if cfg.Verification.SecretKey != "" {
		tokenService, err = service.NewVerificationTokenService(&cfg.Verification, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize verification token service")
		}
	}

	deps := handlers.RouterDeps{
		OTP:     handlers.NewOTPHandlers(otpService, tokenService, logger),
		Leads:   handlers.NewLeadHandlers(leadService, logger),
		Admin:   handlers.NewAdminHandlers(listingService, logger),
		Assets:  handlers.NewAssetHandlers(cfg.Server.CurriculumPath, logger),
		Metrics: m,
		Logger:  logger,
	}
	if cfg.Verification.Required {
		deps.Verification = middleware.NewVerificationMiddleware(tokenService, logger)
	}
	if cfg.Server.EnableDebug {
		logger.Warn("Debug endpoints enabled, OTP codes are returned by /api/test-otp")
		deps.Debug = handlers.NewDebugHandlers(cfg, leadRepo, otpService, logger)
	}

	router := handlers.NewRouter(deps)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":         cfg.Server.Port,
			"store":        cfg.Store.Driver,
			"otp_store":    cfg.OTP.Store,
			"sms_provider": cfg.SMS.Provider,
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}

	logger.Info("Server exited")
}

func initDynamoDB(cfg *config.Config, logger *logrus.Logger) (*dynamodb.Client, error) {
	var awsCfg aws.Config
	var err error

	if cfg.DynamoDB.Endpoint != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(cfg.DynamoDB.Region),
			awsconfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
				func(service, region string, options ...interface{}) (aws.Endpoint, error) {
					return aws.Endpoint{
						URL:           cfg.DynamoDB.Endpoint,
						SigningRegion: cfg.DynamoDB.Region,
					}, nil
				})),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(cfg.DynamoDB.Region))
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg)
	logger.WithField("table", cfg.DynamoDB.TableName).Info("DynamoDB client initialized")
	return client, nil
}

func initLeadRepository(ctx context.Context, cfg *config.Config, dynamoClient *dynamodb.Client, logger *logrus.Logger) (repository.LeadRepository, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDynamoDB:
		return repository.NewDynamoLeadRepository(dynamoClient, cfg.DynamoDB.TableName, logger), func() {}, nil

	case config.StorePostgres:
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
		sqldb.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		sqldb.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		db := bun.NewDB(sqldb, pgdialect.New())

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}

		repo := repository.NewPostgresLeadRepository(db, logger)
		if err := repo.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("Postgres lead store initialized")

		return repo, func() {
			if err := db.Close(); err != nil {
				logger.WithError(err).Warn("Failed to close postgres connection")
			}
		}, nil

	default:
		logger.Warn("Using in-memory lead store, records are lost on restart")
		return repository.NewMemoryLeadRepository(logger), func() {}, nil
	}
}

func initOTPStore(ctx context.Context, cfg *config.Config, dynamoClient *dynamodb.Client, logger *logrus.Logger) (repository.OTPStore, func(), error) {
	// Entries outlive their expiry by this much so that a late verify
	// reports the code as expired rather than never sent.
	retention := cfg.OTP.Expiry

	switch cfg.OTP.Store {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Endpoint,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.WithField("endpoint", cfg.Redis.Endpoint).Info("Redis OTP store initialized")

		return repository.NewRedisOTPStore(client, retention, logger), func() {
			if err := client.Close(); err != nil {
				logger.WithError(err).Warn("Failed to close redis client")
			}
		}, nil

	case config.StoreDynamoDB:
		return repository.NewDynamoOTPStore(dynamoClient, cfg.DynamoDB.TableName, retention, logger), func() {}, nil

	default:
		return repository.NewMemoryOTPStore(), func() {}, nil
	}
}

func initSMSGateway(cfg *config.Config, logger *logrus.Logger) sms.Gateway {
	if cfg.SMS.Provider == config.SMSProviderLog {
		logger.Warn("SMS provider is 'log', messages are not delivered")
		return sms.NewLogGateway(logger)
	}

	logger.WithField("from", cfg.SMS.FromNumber).Info("Twilio SMS gateway initialized")
	return sms.NewTwilioGateway(cfg.SMS.AccountSID, cfg.SMS.AuthToken, cfg.SMS.FromNumber, logger)
}
