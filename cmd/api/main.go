package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"alfredoptarigan/research-advisor/internal/config"
	"alfredoptarigan/research-advisor/internal/handlers"
	"alfredoptarigan/research-advisor/internal/logger"
	"alfredoptarigan/research-advisor/internal/repositories"
	"alfredoptarigan/research-advisor/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := logger.New("research-advisor", cfg.Server.Env)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log.Info().
		Str("cv_analysis_provider", cfg.Services.CVAnalysisProvider).
		Str("paper_trend_provider", cfg.Services.PaperTrendProvider).
		Msg("config loaded")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	retryPolicy := services.RetryPolicy{
		MaxAttempts:  cfg.Worker.RetryMaxAttempts,
		InitialDelay: cfg.Worker.RetryInitialDelay,
		MaxDelay:     cfg.Worker.RetryMaxDelay,
	}

	// Initialize Gemini AI only when a provider needs it
	var geminiService services.GeminiService
	if cfg.NeedsGemini() {
		var err error
		geminiService, err = services.NewGeminiService(ctx, services.GeminiOptions{
			APIKey:            cfg.Gemini.APIKey,
			Model:             cfg.Gemini.Model,
			EmbedModel:        cfg.Gemini.EmbedModel,
			RequestsPerMinute: cfg.Gemini.RequestsPerMinute,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Gemini AI")
		}
		log.Info().Str("model", cfg.Gemini.Model).Msg("Gemini AI initialized")
	}

	cvAnalysis, err := newCVAnalysisClient(cfg, geminiService, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize CV analysis client")
	}
	cvAnalysis = services.WithCVAnalysisRetry(cvAnalysis, retryPolicy, log)

	paperTrend, err := newPaperTrendClient(ctx, cfg, geminiService, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize paper trend client")
	}
	paperTrend = services.WithPaperTrendRetry(paperTrend, retryPolicy, log)

	// Initialize the pipeline
	orchestrator := services.NewAnalysisOrchestrator(
		services.NewTextExtractor(log),
		services.NewInterestClassifier(services.DefaultMainInterests),
		cvAnalysis,
		paperTrend,
		cfg.Services.ExtractionTimeout,
		log,
	)
	uploads := services.NewUploadReader(cfg.Storage.MaxFileSize, cfg.Storage.AllowedExtensions)

	// Initialize worker
	runRepo := repositories.NewRunRepository()
	worker := services.NewWorker(runRepo, orchestrator, services.WorkerOptions{
		Concurrency: cfg.Worker.Concurrency,
		QueueSize:   cfg.Worker.QueueSize,
		Retention:   cfg.Worker.RunRetention,
	}, log)
	worker.Start(ctx)

	// Initialize Handlers
	analysisHandler := handlers.NewAnalysisHandler(orchestrator, uploads, log)
	runHandler := handlers.NewRunHandler(worker, uploads, log)
	interestHandler := handlers.NewInterestHandler(services.DefaultMainInterests)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Research Advisor API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Accept-Language, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Get("/interests", interestHandler.HandleList)
	api.Post("/analyze", analysisHandler.HandleAnalyze)
	api.Post("/analyses", runHandler.HandleSubmit)
	api.Get("/analyses/:id", runHandler.HandleGet)
	api.Delete("/analyses/:id", runHandler.HandleCancel)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Research Advisor API",
			"version": "1.0.0",
			"endpoints": []string{
				"GET /api/v1/interests",
				"POST /api/v1/analyze",
				"POST /api/v1/analyses",
				"GET /api/v1/analyses/:id",
				"DELETE /api/v1/analyses/:id",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("shutting down server")
		worker.Stop()
		stop()
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("server forced to shutdown")
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("server starting")

	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

func newCVAnalysisClient(cfg *config.Config, gemini services.GeminiService, log *logger.Logger) (services.CVAnalysisClient, error) {
	switch cfg.Services.CVAnalysisProvider {
	case config.ProviderHTTP:
		return services.NewHTTPCVAnalysisClient(cfg.Services.CVAnalysisURL, cfg.Services.CVAnalysisTimeout, log), nil
	case config.ProviderGemini:
		return services.NewGeminiCVAnalysisClient(gemini, cfg.Services.CVAnalysisTimeout, log), nil
	default:
		return nil, fmt.Errorf("unknown CV analysis provider: %s", cfg.Services.CVAnalysisProvider)
	}
}

func newPaperTrendClient(ctx context.Context, cfg *config.Config, gemini services.GeminiService, log *logger.Logger) (services.PaperTrendClient, error) {
	switch cfg.Services.PaperTrendProvider {
	case config.ProviderHTTP:
		return services.NewHTTPPaperTrendClient(cfg.Services.PaperTrendURL, cfg.Services.PaperTrendTimeout, log), nil
	case config.ProviderQdrant:
		// Initialize Qdrant
		qdrantService, err := services.NewQdrantService(
			cfg.Qdrant.URL,
			cfg.Qdrant.APIKey,
			cfg.Qdrant.Collection,
			cfg.Qdrant.VectorSize,
			log,
		)
		if err != nil {
			return nil, err
		}
		if err := qdrantService.InitCollection(ctx); err != nil {
			return nil, err
		}
		return services.NewQdrantPaperTrendClient(gemini, qdrantService, cfg.Services.PaperTrendTimeout, log), nil
	default:
		return nil, fmt.Errorf("unknown paper trend provider: %s", cfg.Services.PaperTrendProvider)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
