package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"applybrain-backend/config"
	_ "applybrain-backend/docs" // Important for Swagger
	v1 "applybrain-backend/internal/delivery/http/v1"
	"applybrain-backend/internal/delivery/http/web"
	"applybrain-backend/internal/domain"
	"applybrain-backend/internal/repository/objectstore"
	"applybrain-backend/internal/repository/postgres"
	"applybrain-backend/internal/repository/redisstore"
	"applybrain-backend/internal/usecase"
	"applybrain-backend/internal/wizard"
	"applybrain-backend/pkg/auth"
	"applybrain-backend/pkg/database"
	"applybrain-backend/pkg/email"
	"applybrain-backend/pkg/logger"
	"applybrain-backend/pkg/redis"
	"applybrain-backend/pkg/security"
	"applybrain-backend/pkg/security/antivirus"
	"applybrain-backend/pkg/storage"
	"applybrain-backend/pkg/telemetry"
	"applybrain-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
)

// @title           ApplyBrain API
// @version         1.0
// @description     Onboarding wizard, session gate and profile API for the ApplyBrain job search app.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	production := os.Getenv("GIN_MODE") == "release"
	environment := "development"
	if production {
		environment = "production"
	}

	// 2. Setup Loggers and Tracing
	logger.Init()
	logger.Log.Info("Starting applybrain backend", "port", cfg.Port)

	secLog := security.InitSecurityLogger(cfg.ServiceName, environment)
	defer secLog.Sync()

	ctx := context.Background()
	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.ServiceName, cfg.OTELCollectorURL)
	if err != nil {
		logger.Log.Warn("Tracing disabled", "error", err)
		shutdownTracer = func() {}
	}
	defer shutdownTracer()

	// 3. Setup Database and Redis
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if cfg.UpstashRedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory fallback", "error", err)
		}
	}
	defer redis.Close()

	// 4. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	profileRepo := postgres.NewProfileRepository(dbPool)
	drafts := redisstore.NewDraftStore(cfg.DraftTTL)
	defer drafts.Close()
	flagCache := redisstore.NewFlagCache(cfg.FlagCacheTTL)
	resumes := newResumeStore(ctx, cfg, dbPool)

	// 5. Setup Email Service
	emailService := email.NewEmailService(cfg)
	var notifier domain.Notifier
	if emailService.IsConfigured() {
		notifier = emailService
	} else {
		logger.Log.Warn("Email service not configured - welcome emails disabled")
	}

	// 6. Setup Auth Provider (JWKS + GoTrue)
	jwksURL := cfg.SupabaseUrl + "/auth/v1/.well-known/jwks.json"
	verifier := auth.NewVerifier(cfg.SupabaseJWTSecret, auth.NewKeySet(jwksURL))
	identity := auth.NewGoTrueClient(cfg.SupabaseUrl, cfg.SupabaseKey, cfg.FrontendURL)

	// 7. Setup UseCases
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.ConfigureEngine(v)
	}
	mode := validation.ModeOnSubmit
	if cfg.OnboardingLiveChecks {
		mode = validation.ModeOnChange
	}
	upload := wizard.DefaultUploadGate()
	upload.MinBytes, upload.MaxBytes = cfg.UploadMinBytes, cfg.UploadMaxBytes

	health := map[string]usecase.HealthCheck{
		"database": dbPool.Ping,
		"redis":    redis.HealthCheck,
	}
	var scanner antivirus.Scanner
	if cfg.ClamAVAddress != "" {
		clam := antivirus.NewClamAV(cfg.ClamAVAddress, cfg.ClamAVTimeout)
		scanner = clam
		health["antivirus"] = clam.Ping
	} else {
		logger.Log.Warn("CLAMAV_ADDRESS not set - resumes are not scanned for malware")
	}

	gate := usecase.NewSessionGate(verifier, userRepo, flagCache)
	authUC := usecase.NewAuthUsecase(identity, userRepo, gate)
	onboardingUC := usecase.NewOnboardingUsecase(drafts, profileRepo, resumes, gate, notifier, usecase.OnboardingConfig{
		Schema:            validation.DefaultSchema(mode),
		Upload:            upload,
		AllowCustomSkills: cfg.AllowCustomSkills,
		Scanner:           scanner,
	})
	profileUC := usecase.NewProfileUsecase(profileRepo, resumes)
	healthUC := usecase.NewHealthUsecase(health)
	logins := security.NewLoginTracker(security.LoginTrackerConfig{
		MaxAttempts:   cfg.LoginMaxAttempts,
		AttemptWindow: cfg.LoginBlock,
		BlockDuration: cfg.LoginBlock,
	}, secLog)

	// 8. Setup Router
	templates, err := web.LoadTemplates()
	if err != nil {
		logger.Log.Error("Failed to parse page templates", "error", err)
		os.Exit(1)
	}
	if production {
		gin.SetMode(gin.ReleaseMode)
	}
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:       authUC,
		OnboardingUC: onboardingUC,
		ProfileUC:    profileUC,
		HealthUC:     healthUC,
		Gate:         gate,
		Logins:       logins,
		SecLog:       secLog,
		Templates:    templates,
		Config:       cfg,
		Production:   production,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

// newResumeStore uses the object bucket when S3 credentials are set and
// falls back to the database otherwise.
func newResumeStore(ctx context.Context, cfg *config.Config, db *pgxpool.Pool) domain.ResumeStore {
	s3cfg := storage.S3Config{
		Provider:        storage.Provider(cfg.S3Provider),
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		Endpoint:        cfg.S3Endpoint,
	}
	if !s3cfg.Enabled() {
		logger.Log.Info("Resume bucket not configured, storing resumes in Postgres")
		return postgres.NewResumeRepository(db)
	}

	client, err := storage.NewS3Client(ctx, s3cfg)
	if err == nil {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = storage.CheckBucket(checkCtx, client, s3cfg.Bucket)
		cancel()
	}
	if err != nil {
		logger.Log.Warn("Resume bucket unavailable, storing resumes in Postgres", "bucket", s3cfg.Bucket, "error", err)
		return postgres.NewResumeRepository(db)
	}
	logger.Log.Info("Storing resumes in object storage", "provider", s3cfg.Provider, "bucket", s3cfg.Bucket)
	return objectstore.NewResumeBucket(client, s3cfg.Bucket)
}
