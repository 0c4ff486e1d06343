package v1

import (
	"html/template"
	"net/http"
	"time"

	"applybrain-backend/config"
	"applybrain-backend/internal/delivery/http/middleware"
	"applybrain-backend/internal/delivery/http/response"
	"applybrain-backend/internal/delivery/http/web"
	"applybrain-backend/internal/domain"
	"applybrain-backend/internal/usecase"
	"applybrain-backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC       domain.AuthUsecase
	OnboardingUC domain.OnboardingUsecase
	ProfileUC    domain.ProfileUsecase
	HealthUC     usecase.HealthUsecase
	Gate         domain.SessionGate
	Logins       *security.LoginTracker
	SecLog       *security.SecurityLogger
	Templates    *template.Template
	Config       *config.Config
	Production   bool
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	r := gin.New()
	r.SetHTMLTemplate(deps.Templates)

	guard := middleware.NewSessionGuard(deps.Gate, middleware.CookieConfig{Secure: cfg.CookieSecure}, deps.SecLog)
	throttle := middleware.NewLoginThrottle(deps.Logins, deps.SecLog)
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(middleware.RequestIDMiddleware())
	r.Use(web.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeadersMiddleware(cfg.CookieSecure))

	web.Register(r, guard, throttle, deps.AuthUC, deps.OnboardingUC)

	v1 := r.Group("/v1")
	v1.Use(middleware.CORSMiddleware(cfg.FrontendURL, deps.Production))
	v1.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window), deps.SecLog))
	v1.Use(middleware.CSRFMiddleware(cfg.CookieSecure, deps.SecLog))
	v1.Use(middleware.ErrorHandler())
	v1.Use(guard.Resolve())

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		status, healthy := deps.HealthUC.Check(c.Request.Context())
		if !healthy {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	loginLimit := middleware.RateLimitMiddleware(middleware.LoginRateLimitConfig(cfg.RateLimitLoginThreshold, window), deps.SecLog)
	uploadLimit := middleware.RateLimitMiddleware(middleware.UploadRateLimitConfig(cfg.RateLimitUploadThreshold, window), deps.SecLog)

	protected := v1.Group("")
	protected.Use(guard.RequireAuth())
	{
		NewAuthHandler(v1, protected, deps.AuthUC, guard, throttle, deps.SecLog, loginLimit)
		NewOnboardingHandler(protected, deps.OnboardingUC, guard, deps.SecLog, uploadLimit)
		NewProfileHandler(protected, deps.ProfileUC)
	}

	return r
}
