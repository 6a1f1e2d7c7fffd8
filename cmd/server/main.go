package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/reviewrelay/review-relay/config"
	"github.com/reviewrelay/review-relay/internal/cache"
	"github.com/reviewrelay/review-relay/internal/filter"
	"github.com/reviewrelay/review-relay/internal/handler"
	"github.com/reviewrelay/review-relay/internal/messaging"
	"github.com/reviewrelay/review-relay/internal/middleware"
	"github.com/reviewrelay/review-relay/internal/repository"
	"github.com/reviewrelay/review-relay/internal/service"
	"github.com/reviewrelay/review-relay/internal/textgen"
	"github.com/reviewrelay/review-relay/internal/utils"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := utils.InitSnowflake(cfg.Snowflake.DatacenterID, cfg.Snowflake.WorkerID); err != nil {
		log.Fatalf("Failed to initialize Snowflake: %v", err)
	}

	db, err := repository.NewDB(cfg.MySQL.DSN(), cfg.MySQL.MaxIdleConns, cfg.MySQL.MaxOpenConns)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer repository.CloseDB(db)

	linkRepo := repository.NewLinkRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	redisCache, err := cache.NewRedisCache(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		log.Fatalf("Failed to initialize Redis cache: %v", err)
	}
	defer redisCache.Close()

	codeFilter := filter.NewCodeFilter(
		cfg.BloomFilter.Capacity,
		cfg.BloomFilter.FalsePositiveRate,
	)

	codeGen := utils.NewCodeGenerator(cfg.ShortLink.CodeLength)
	linkService := service.NewShortLinkService(linkRepo, redisCache, codeFilter, codeGen, &cfg.ShortLink)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := linkService.WarmCodeFilter(ctx); err != nil {
		log.Printf("Warning: failed to warm code filter: %v", err)
	}

	var sender messaging.Sender
	sender, err = messaging.NewTwilioSender(&cfg.Twilio)
	if err != nil {
		log.Printf("Warning: messaging disabled: %v", err)
		sender = messaging.Disabled{}
	}

	var generator textgen.Generator
	generator, err = textgen.NewGeminiGenerator(context.Background(), &cfg.Gemini)
	if err != nil {
		log.Printf("Warning: review generation disabled: %v", err)
		generator = textgen.Unconfigured{}
	}

	reviewService := service.NewReviewService(reviewRepo, linkService, sender, cfg.App.BaseURL, cfg.App.ShopName)
	redirectService := service.NewRedirectService(linkService, cfg.App.BusinessWhatsAppNumber)

	redirectHandler := handler.NewRedirectHandler(redirectService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	generateHandler := handler.NewGenerateHandler(generator)

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()

	if cfg.RateLimit.Enabled {
		log.Println("Rate limiting enabled with strategy:", cfg.RateLimit.Strategy)
		globalLimiter := middleware.NewRateLimiter(redisCache.GetClient(), &middleware.RateLimitConfig{
			Strategy: middleware.ParseStrategy(cfg.RateLimit.Strategy),
			Limit:    cfg.RateLimit.Global.Limit,
			Window:   time.Duration(cfg.RateLimit.Global.Window) * time.Second,
			SkipFunc: middleware.SkipHealthCheck,
		})
		router.Use(globalLimiter.Middleware())
	}

	// endpointChain prepends a per-endpoint limiter when one is configured
	endpointChain := func(path string, h gin.HandlerFunc) []gin.HandlerFunc {
		if cfg.RateLimit.Enabled {
			if rule, ok := cfg.RateLimit.Endpoints[path]; ok {
				limiter := middleware.NewRateLimiter(redisCache.GetClient(), &middleware.RateLimitConfig{
					Strategy: middleware.ParseStrategy(cfg.RateLimit.Strategy),
					Limit:    rule.Limit,
					Window:   time.Duration(rule.Window) * time.Second,
				})
				return []gin.HandlerFunc{limiter.Middleware(), h}
			}
		}
		return []gin.HandlerFunc{h}
	}

	router.GET("/health", redirectHandler.HealthCheck)
	router.GET("/r/:code", endpointChain("/r/:code", redirectHandler.Redirect)...)

	api := router.Group("/api")
	{
		api.POST("/reviews", endpointChain("/api/reviews", reviewHandler.SubmitReview)...)
		api.POST("/reviews/whatsapp", reviewHandler.SubmitWhatsAppReview)
		api.POST("/generate-review", generateHandler.GenerateReview)
		api.GET("/wa-redirect", redirectHandler.WhatsAppRedirect)
		api.POST("/wa-redirect", redirectHandler.WhatsAppRedirectURL)
	}

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Server starting on port %d...", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
