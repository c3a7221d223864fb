package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"bankbot/internal/config"
	"bankbot/internal/corpus"
	"bankbot/internal/database"
	"bankbot/internal/handlers"
	"bankbot/internal/jobs"
	"bankbot/internal/logging"
	"bankbot/internal/middleware"
	"bankbot/internal/services"
	"bankbot/pkg/auth"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting BankBot Portal Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Load configuration
	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, Data: %s)", cfg.Port, cfg.DataDir)

	// Optional chatbot tuning file
	var botCfg *config.BotConfig
	if cfg.BotConfigPath != "" {
		var err error
		botCfg, err = config.LoadBotConfig(cfg.BotConfigPath)
		if err != nil {
			log.Printf("⚠️  Failed to load bot config: %v (using defaults)", err)
		} else {
			log.Printf("✅ Bot config loaded from %s", cfg.BotConfigPath)
		}
	}

	learning := cfg.LearningEnabled
	if botCfg != nil && botCfg.Learning != nil && os.Getenv("CORPUS_LEARNING_ENABLED") == "" {
		learning = *botCfg.Learning
	}
	if learning {
		log.Println("🧠 Self-learning corpus growth enabled")
	}

	// Initialize SQLite database for portal accounts
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("❌ Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	log.Printf("✅ Database ready at %s", cfg.DatabasePath)

	// Load the chatbot corpus
	corpusStore := corpus.NewStore(cfg.CorpusPath)
	if err := corpusStore.Load(); err != nil {
		log.Fatalf("❌ Failed to load corpus: %v", err)
	}
	log.Printf("✅ Corpus loaded: %d rows from %s", corpusStore.Len(), cfg.CorpusPath)

	// Reload the corpus when the file changes on disk (admin edits, seeds)
	stopWatch, err := corpusStore.Watch()
	if err != nil {
		log.Printf("⚠️  Corpus file watcher disabled: %v", err)
	} else {
		defer stopWatch()
		log.Println("👀 Corpus file watcher started")
	}

	// Load per-user chat contexts
	contextService := services.NewUserContextService(cfg.UserDataPath)
	if err := contextService.Load(); err != nil {
		log.Fatalf("❌ Failed to load user contexts: %v", err)
	}
	log.Printf("✅ User contexts loaded: %d users", contextService.Count())

	// Load FAQs
	faqService := services.NewFAQService(cfg.FAQPath)
	if err := faqService.Load(); err != nil {
		log.Printf("⚠️  Failed to load FAQs: %v (starting empty)", err)
	}

	queryLogService := services.NewQueryLogService(cfg.QueryLogPath)
	userService := services.NewUserService(db)

	// Initialize Prometheus metrics
	services.InitMetrics(corpusStore)
	log.Println("✅ Prometheus metrics initialized")

	// Chat pipeline
	chatOpts := []services.ChatOption{services.WithLearning(learning)}
	if botCfg != nil && len(botCfg.IntentColors) > 0 {
		chatOpts = append(chatOpts, services.WithPalette(botCfg.IntentColors))
	}
	chatService := services.NewChatService(corpusStore, contextService, queryLogService, chatOpts...)
	log.Println("✅ Chat service initialized")

	// JWT auth (nil means dev-mode bypass in the auth middleware)
	var jwtAuth *auth.LocalJWTAuth
	if cfg.JWTSecret != "" {
		jwtAuth, err = auth.NewLocalJWTAuth(cfg.JWTSecret, 0, 0)
		if err != nil {
			log.Fatalf("❌ Failed to initialize JWT auth: %v", err)
		}
		log.Println("✅ Local JWT auth initialized")
	} else {
		if os.Getenv("ENVIRONMENT") == "production" {
			log.Fatal("❌ JWT_SECRET is required in production")
		}
		log.Println("⚠️  JWT_SECRET not set - auth bypass active (development only)")
	}

	// Background jobs
	jobScheduler, err := jobs.NewScheduler(contextService, queryLogService)
	if err != nil {
		log.Fatalf("❌ Failed to create job scheduler: %v", err)
	}
	if err := jobScheduler.Start(cfg.ContextFlushInterval); err != nil {
		log.Fatalf("❌ Failed to start background jobs: %v", err)
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "BankBot Portal v1.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  90 * time.Second,
		BodyLimit:    5 * 1024 * 1024, // dataset uploads stay small
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("bankbot")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	// CORS configuration with environment-based origins
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: allowedOrigins != "*",
	}))

	// Brute-force protection on the auth endpoints
	authLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 15 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many attempts, please try again later",
			})
		},
	})

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(corpusStore)
	authHandler := handlers.NewAuthHandler(jwtAuth, userService)
	accountHandler := handlers.NewAccountHandler(userService)
	chatHandler := handlers.NewChatHandler(chatService, userService)
	chatWSHandler := handlers.NewChatWebSocketHandler(chatHandler)
	adminHandler := handlers.NewAdminHandler(corpusStore, queryLogService, faqService, userService, contextService)

	// Public routes
	app.Get("/health", healthHandler.Handle)

	authRoutes := app.Group("/api/auth")
	authRoutes.Post("/register", authLimiter, authHandler.Register)
	authRoutes.Post("/login", authLimiter, authHandler.Login)
	authRoutes.Post("/refresh", authHandler.RefreshToken)
	authRoutes.Post("/logout", authHandler.Logout)
	authRoutes.Get("/me", middleware.LocalAuthMiddleware(jwtAuth), authHandler.GetCurrentUser)

	// Authenticated portal routes
	api := app.Group("/api", middleware.LocalAuthMiddleware(jwtAuth))
	api.Get("/dashboard", accountHandler.Dashboard)
	api.Post("/account", accountHandler.CreateAccount)
	api.Post("/account/balance", accountHandler.CheckBalance)
	api.Post("/chat", chatHandler.Chat)
	api.Get("/chat/history", chatHandler.History)

	// Admin dashboard routes
	admin := api.Group("/admin", middleware.AdminMiddleware())
	admin.Get("/corpus", adminHandler.ListCorpus)
	admin.Post("/corpus", adminHandler.AddCorpusRow)
	admin.Post("/corpus/upload", adminHandler.UploadCorpus)
	admin.Get("/queries", adminHandler.ListQueries)
	admin.Get("/queries/export/csv", adminHandler.DownloadQueriesCSV)
	admin.Get("/queries/export/xlsx", adminHandler.ExportQueriesXLSX)
	admin.Get("/faqs", adminHandler.ListFAQs)
	admin.Post("/faqs", adminHandler.AddFAQ)
	admin.Get("/stats", adminHandler.Stats)
	admin.Get("/stats/intents", adminHandler.StatsBreakdown)

	// WebSocket chat endpoint
	app.Use("/ws/chat", handlers.UpgradeMiddleware())
	app.Use("/ws/chat", middleware.LocalAuthMiddleware(jwtAuth))
	app.Get("/ws/chat", websocket.New(chatWSHandler.HandleConnection))

	// Start server
	log.Printf("✅ Server ready on port %s", cfg.Port)
	log.Printf("🔗 WebSocket endpoint: ws://localhost:%s/ws/chat", cfg.Port)
	log.Printf("📡 Health check: http://localhost:%s/health", cfg.Port)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		if err := jobScheduler.Stop(); err != nil {
			log.Printf("⚠️ Error stopping background jobs: %v", err)
		}

		// Final flush of chat contexts
		if err := contextService.Save(); err != nil {
			log.Printf("⚠️ Error saving user contexts: %v", err)
		}

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
