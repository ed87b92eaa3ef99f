package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ctrlroom/config"
	"ctrlroom/cron"
	"ctrlroom/database"
	bookingRepo "ctrlroom/database/repository/booking"
	engineerRepo "ctrlroom/database/repository/engineer"
	fileRepo "ctrlroom/database/repository/files"
	"ctrlroom/database/repository/memstore"
	scheduleRepo "ctrlroom/database/repository/schedule"
	studioRepo "ctrlroom/database/repository/studio"
	userRepo "ctrlroom/database/repository/user"
	"ctrlroom/handlers"
	"ctrlroom/metrics"
	"ctrlroom/middleware"
	"ctrlroom/routes"
	"ctrlroom/services/auth"
	"ctrlroom/services/booking"
	"ctrlroom/services/engineer"
	"ctrlroom/services/files"
	"ctrlroom/services/notification"
	"ctrlroom/services/payment"
	"ctrlroom/services/report"
	"ctrlroom/services/storage"
	"ctrlroom/services/studio"
	"ctrlroom/services/tasks"
	"ctrlroom/services/user"
	"ctrlroom/utils"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type repos struct {
	bookings  bookingRepo.BookingRepository
	engineers engineerRepo.EngineerRepository
	schedules scheduleRepo.ScheduleRepository
	users     userRepo.UserRepository
	files     fileRepo.FileRepository
	studio    studioRepo.StudioRepository
}

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()
	metrics.Register()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Store backend.
	var (
		r        repos
		health   = map[string]utils.Pinger{}
		cache    *redis.Client
		queue    tasks.Queue
		local    *cron.LocalQueue
		asynqQ   *tasks.AsynqQueue
		events   payment.EventLog
		redisOpt = asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisQueueDB}
	)
	switch cfg.StoreBackend {
	case "memory":
		logger.Warn("Using in-memory store; data is lost on restart")
		st := memstore.New()
		r = repos{st.Bookings(), st.Engineers(), st.Schedules(), st.Users(), st.Files(), st.Studio()}
		local = cron.NewLocalQueue(logger)
		queue = local
		events = payment.NewMemoryEventLog()
	case "mongo":
		if err := database.InitDB(); err != nil {
			logger.Fatal("main: database", zap.Error(err))
		}
		db := database.Database()
		r = repos{
			bookings:  bookingRepo.NewMongoBookingRepo(db),
			engineers: engineerRepo.NewMongoEngineerRepo(db),
			schedules: scheduleRepo.NewMongoScheduleRepo(db),
			users:     userRepo.NewMongoUserRepo(db),
			files:     fileRepo.NewMongoFileRepo(db),
			studio:    studioRepo.NewMongoStudioRepo(db),
		}
		health["mongo"] = utils.MongoPinger(database.MongoClient)

		var err error
		cache, err = utils.InitCache(ctx, cfg)
		if err != nil {
			logger.Fatal("main: redis", zap.Error(err))
		}
		health["redis"] = utils.RedisPinger(cache)
		events = payment.NewRedisEventLog(cache)
		asynqQ = tasks.NewAsynqQueue(redisOpt)
		queue = asynqQ
	default:
		logger.Fatal("main: unknown STORE_BACKEND", zap.String("backend", cfg.StoreBackend))
	}

	// Firebase backs push delivery and, with AUTH_PROVIDER=firebase, identity.
	var fbApp *firebase.App
	if cfg.FirebaseCredentialsFile != "" {
		app, err := utils.NewFirebaseApp(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			logger.Fatal("main: firebase", zap.Error(err))
		}
		fbApp = app
	}

	var (
		verifier auth.Verifier
		tokens   user.TokenIssuer
	)
	switch cfg.AuthProvider {
	case "jwt":
		jwtAuth, err := auth.NewJWTAuthenticator(cfg.JWTSecret, 24*time.Hour)
		if err != nil {
			logger.Fatal("main: auth", zap.Error(err))
		}
		verifier, tokens = jwtAuth, jwtAuth
	case "firebase":
		if fbApp == nil {
			logger.Fatal("main: AUTH_PROVIDER=firebase needs FIREBASE_CREDENTIALS_FILE")
		}
		fv, err := auth.NewFirebaseVerifier(ctx, fbApp)
		if err != nil {
			logger.Fatal("main: auth", zap.Error(err))
		}
		verifier = fv
	default:
		logger.Fatal("main: unknown AUTH_PROVIDER", zap.String("provider", cfg.AuthProvider))
	}

	var dispatcher notification.Dispatcher = notification.LogDispatcher{Logger: logger}
	if fbApp != nil {
		mc, err := fbApp.Messaging(ctx)
		if err != nil {
			logger.Fatal("main: firebase messaging", zap.Error(err))
		}
		fcm, err := notification.NewFCMDispatcher(mc, logger)
		if err != nil {
			logger.Fatal("main: notifications", zap.Error(err))
		}
		dispatcher = fcm
	}

	var gateway payment.Gateway
	if cfg.StripeSecretKey != "" {
		gateway = payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret, logger)
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set; payment intents are unavailable")
	}

	var fileStore storage.FileStore
	if cld, err := utils.Cloudinary(cfg, logger); err == nil {
		fileStore = cld
	} else {
		logger.Warn("Cloudinary not configured; keeping uploads in memory", zap.Error(err))
		fileStore = storage.NewMemoryStore()
	}

	// services.
	userService := user.NewUserService(r.users, tokens, cfg.Admins(), logger)
	bookingService := booking.NewService(booking.Deps{
		Bookings:  r.bookings,
		Engineers: r.engineers,
		Schedules: r.schedules,
		Studio:    r.studio,
		Queue:     queue,
		Gateway:   gateway,
		Policy:    booking.PolicyFromConfig(cfg),
		Logger:    logger,
	})
	notifier := notification.NewBookingNotifier(r.bookings, r.engineers, r.users, dispatcher, logger)

	var worker *cron.Worker
	if local != nil {
		local.Handle(cron.NewServeMux(notifier, bookingService, logger))
	} else {
		worker = cron.NewWorker(redisOpt, notifier, bookingService, logger)
		if err := worker.Start(); err != nil {
			logger.Fatal("main: worker", zap.Error(err))
		}
	}

	monitor := utils.NewHealthMonitor(health)
	go monitor.Run(ctx, 60*time.Second)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Verifier:  verifier,
		Health:    monitor,
		Users:     &handlers.UserHandler{UserService: userService},
		Engineers: &handlers.EngineerHandler{Engineers: engineer.NewService(r.engineers, userService, logger)},
		Bookings:  &handlers.BookingHandler{Bookings: bookingService},
		Webhooks: &handlers.WebhookHandler{
			Verifier:  payment.NewStripeVerifier(cfg.StripeWebhookSecret, logger),
			Events:    events,
			Confirmer: bookingService,
		},
		Files:  &handlers.FileHandler{Files: files.NewService(r.files, r.bookings, r.engineers, fileStore, logger)},
		Studio: &handlers.StudioHandler{Studio: studio.NewService(r.studio, studio.Defaults{HourlyRate: cfg.StudioHourlyRate, EngineerRate: cfg.DefaultEngineerRate}, logger)},
		Export: &handlers.ExportHandler{Exporter: report.NewExporter(r.bookings, r.engineers)},
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.NewRateLimiter(cfg.MaxRequestsPerMin).Middleware())
	routes.RegisterRoutes(router, handlerBundle, cfg.Origins())

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("store", cfg.StoreBackend), zap.String("auth", cfg.AuthProvider))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	stop()
	if worker != nil {
		worker.Shutdown()
	}
	if local != nil {
		local.Wait()
	}
	if asynqQ != nil {
		asynqQ.Close()
	}
	if cache != nil {
		cache.Close()
	}
	if err := database.Close(shutdownCtx); err != nil {
		logger.Warn("main: closing database", zap.Error(err))
	}
	logger.Info("main: server stopped gracefully")
}
