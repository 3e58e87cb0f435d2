package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"FoodShare-Backend/internal/api/handlers"
	"FoodShare-Backend/internal/api/presenters"
	"FoodShare-Backend/internal/api/routes"
	"FoodShare-Backend/internal/middleware"
	"FoodShare-Backend/internal/utils"
	"FoodShare-Backend/internal/utils/mailing"
	"FoodShare-Backend/internal/utils/storage"
	"FoodShare-Backend/pkg/donation"
	"FoodShare-Backend/pkg/geocoder"
	"FoodShare-Backend/pkg/jwt"
	"FoodShare-Backend/pkg/matching"
	"FoodShare-Backend/pkg/notification"
	"FoodShare-Backend/pkg/user"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// App bundles the HTTP server with the background workers it owns.
type App struct {
	Fiber      *fiber.App
	Dispatcher *notification.Dispatcher
	Scheduler  *donation.LifecycleScheduler

	logFile *os.File
}

func NewApp(cfg *utils.Config, db *gorm.DB) (*App, error) {
	setLogLevel(cfg.LogLevel)
	utils.InitValidator()
	validator := utils.Validate

	app := fiber.New(fiber.Config{
		ErrorHandler: presenters.ErrorHandler,
	})
	middlewares := middleware.NewMiddleware(cfg.CORSOrigins)

	// a panicking handler becomes a 500 through ErrorHandler
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))

	// setting up logging and limiter
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), os.ModePerm); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	file, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   cfg.LogTimeZone,
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: utils.Duration(cfg.RateLimitEvery, time.Second),
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/metrics"
		},
	}))

	// utils
	s3, err := storage.NewAwsS3(cfg)
	if err != nil {
		return nil, err
	}
	resolver := geocoder.NewCachedResolver(
		geocoder.NewGoogleGeocoder(cfg.GoogleMapsAPIKey, geocoder.DefaultBaseURL, utils.Duration(cfg.GeocoderTimeout, 5*time.Second)),
		cfg.GeocoderCacheSize,
		utils.Duration(cfg.GeocoderCacheTTL, 24*time.Hour),
	)
	if cfg.GoogleMapsAPIKey == "" {
		log.Warn("GOOGLE_MAPS_API_KEY not set, addresses resolve to the fallback location")
	}

	// Repository
	userRepository := user.NewUserRepository(db)
	donationRepository := donation.NewDonationRepository(db)
	notificationRepository := notification.NewNotificationRepository(db)

	// Notification
	channels, err := notificationChannels(cfg)
	if err != nil {
		return nil, err
	}
	dispatcher := notification.NewDispatcher(notification.DispatcherConfig{
		Workers:   cfg.NotifyWorkers,
		QueueSize: cfg.NotifyQueueSize,
		Timeout:   utils.Duration(cfg.NotifyTimeout, 30*time.Second),
	}, notificationRepository, channels...)
	hub := notification.NewHub()

	// Service
	jwtService := jwt.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer)
	matchingService := matching.NewMatchingService(userRepository, matching.Config{
		RadiusMiles:   cfg.MatchRadiusMiles,
		Limit:         cfg.MatchLimit,
		MaxCandidates: cfg.GeoMaxCandidates,
	})
	coordinator := donation.NewClaimCoordinator(donationRepository, nil)
	userService := user.NewUserService(userRepository, matchingService, resolver)
	donationService := donation.NewDonationService(
		donationRepository,
		userRepository,
		coordinator,
		matchingService,
		resolver,
		s3,
		dispatcher,
		hub,
		donation.Config{
			ListDefaultLimit:  cfg.ListDefaultLimit,
			ListDefaultRadius: cfg.ListDefaultRadius,
			MaxCandidates:     cfg.GeoMaxCandidates,
		},
	)
	scheduler := donation.NewLifecycleScheduler(donationRepository, coordinator, dispatcher, donation.SchedulerConfig{
		Interval:           utils.Duration(cfg.SweepInterval, 5*time.Minute),
		BatchSize:          cfg.SweepBatchSize,
		ReminderLeadTime:   utils.Duration(cfg.ReminderLeadTime, 24*time.Hour),
		RemindersScheduled: cfg.RemindersScheduled,
	})

	// Handler
	userHandler := handlers.NewUserHandler(userService, donationService, validator)
	donationHandler := handlers.NewDonationHandler(donationService, validator)
	adminHandler := handlers.NewAdminHandler(userService, donationService, scheduler, validator)
	realtimeHandler := handlers.NewRealtimeHandler(hub)

	// routes
	routesConfig := routes.Config{
		App:             app,
		UserHandler:     userHandler,
		DonationHandler: donationHandler,
		AdminHandler:    adminHandler,
		RealtimeHandler: realtimeHandler,
		Middleware:      middlewares,
		JWTService:      jwtService,
	}
	routesConfig.Setup()

	return &App{
		Fiber:      app,
		Dispatcher: dispatcher,
		Scheduler:  scheduler,
		logFile:    file,
	}, nil
}

// Start launches the background workers.
func (a *App) Start(ctx context.Context) {
	a.Dispatcher.Start()
	a.Scheduler.Start(ctx)
}

// Shutdown stops accepting requests, then drains the workers.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.Fiber.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	a.Scheduler.Stop()
	if err := a.Dispatcher.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("drain notifications: %w", err))
	}
	if err := a.logFile.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func notificationChannels(cfg *utils.Config) ([]notification.Channel, error) {
	var channels []notification.Channel

	mailer := mailing.NewMailer(mailing.LoadMailConfig(cfg))
	if mailer.Configured() {
		channels = append(channels, notification.NewEmailChannel(mailer, mailer.AppURL()))
	} else {
		log.Warn("SMTP not configured, email notifications disabled")
	}

	if cfg.SMSEnabled {
		opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
		if cfg.AWSAccessKey != "" && cfg.AWSSecretKey != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
			))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config for sns: %w", err)
		}
		channels = append(channels, notification.NewSMSChannel(sns.NewFromConfig(awsCfg), cfg.SNSSenderID))
	}
	return channels, nil
}

func setLogLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		log.SetLevel(log.LevelDebug)
	case "warn":
		log.SetLevel(log.LevelWarn)
	case "error":
		log.SetLevel(log.LevelError)
	default:
		log.SetLevel(log.LevelInfo)
	}
}
