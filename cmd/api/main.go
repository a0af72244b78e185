// @title Nalar API
// @version 1.0
// @description AI tutoring backend: quizzes, knowledge graph, learning plans and tutor chat.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"nalar/database"
	"nalar/internal/adapter"
	"nalar/internal/adapter/quizgen"
	"nalar/internal/adapter/search"
	"nalar/internal/cache"
	"nalar/internal/config"
	"nalar/internal/handler"
	"nalar/internal/logger"
	"nalar/internal/middleware"
	"nalar/internal/queue"
	"nalar/internal/repository"
	"nalar/internal/service"

	_ "nalar/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

// requestLogger logs one line per HTTP request.
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
		)
		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	llm, err := quizgen.NewLLM(cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	db, err := database.Connect(cfg.DB)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	userRepository := repository.NewSQLXUserRepository(db)
	quizRepository := repository.NewSQLXQuizRepository(db)
	knowledgeRepository := repository.NewSQLXKnowledgeRepository(db)
	planRepository := repository.NewSQLXLearningPlanRepository(db)
	chatRepository := repository.NewSQLXChatRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)
	taskQueue := queue.NewRedisTaskQueue(redisClient, cfg.Generation.QueueKey, cfg.Generation.PollTimeout)
	appLogger.Info("Redis connected", zap.String("queue_key", cfg.Generation.QueueKey))

	quizGenerator := quizgen.NewLLMQuizGenerator(llm, cfg.LLM, appLogger)
	planGenerator := quizgen.NewLLMPlanGenerator(llm, cfg.LLM, appLogger)
	searchService := search.NewHTTPSearchService(cfg.Search)

	resultCache := service.NewQuizResultCacheService(cacheAdapter, cfg.Generation.ResultCacheTTL)
	quizService := service.NewQuizService(quizRepository, quizGenerator, taskQueue, resultCache, txManager)
	knowledgeService := service.NewKnowledgeService(knowledgeRepository, txManager)
	chatService := service.NewChatService(llm, chatRepository, quizService, knowledgeService)
	learningService := service.NewLearningService(planRepository, userRepository, chatRepository, planGenerator, searchService, chatService, taskQueue, cfg.Search.Limit)
	userService := service.NewUserService(userRepository, taskQueue)

	authService, err := service.NewAuthService(userRepository, cfg)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}

	authHandler := handler.NewAuthHandler(authService, cfg)
	userHandler := handler.NewUserHandler(userService)
	quizHandler := handler.NewQuizHandler(userService, quizService)
	knowledgeHandler := handler.NewKnowledgeHandler(userService, knowledgeService)
	learningHandler := handler.NewLearningHandler(userService, learningService)
	chatHandler := handler.NewChatHandler(userService, chatService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())

	app.Get("/swagger/*", swagger.HandlerDefault)

	apiGroup := app.Group("/api")

	authGroup := apiGroup.Group("/auth")
	authGroup.Get("/google/login", authHandler.GoogleLogin)
	authGroup.Get("/google/callback", authHandler.GoogleCallback)
	authGroup.Post("/refresh", authHandler.RefreshToken)

	userGroup := apiGroup.Group("/users", middleware.Protected(authService))
	userGroup.Get("/me", userHandler.GetMe)
	userGroup.Post("/me/onboarding", userHandler.CompleteOnboarding)

	quizGroup := apiGroup.Group("/quizzes", middleware.Protected(authService))
	quizGroup.Get("/", quizHandler.GetHistory)
	quizGroup.Post("/", quizHandler.CreateQuiz)
	quizGroup.Get("/:id", quizHandler.GetQuiz)
	quizGroup.Post("/:id/start", quizHandler.StartQuiz)
	quizGroup.Post("/:id/answers", quizHandler.SubmitAnswer)
	quizGroup.Post("/:id/complete", quizHandler.CompleteQuiz)
	quizGroup.Get("/:id/results", quizHandler.GetQuizResults)

	knowledgeGroup := apiGroup.Group("/knowledge", middleware.Protected(authService))
	knowledgeGroup.Get("/graph", knowledgeHandler.GetGraph)
	knowledgeGroup.Post("/graph", knowledgeHandler.UpdateGraph)
	knowledgeGroup.Patch("/graph/understanding", knowledgeHandler.SetUnderstanding)

	learningGroup := apiGroup.Group("/learning", middleware.Protected(authService))
	learningGroup.Get("/plan", learningHandler.GetMyPlan)
	learningGroup.Post("/plan", learningHandler.RequestPlan)
	learningGroup.Patch("/plan/:id/steps", learningHandler.UpdateStepStatus)
	learningGroup.Post("/plan/:id/ask", learningHandler.AskTutor)

	chatGroup := apiGroup.Group("/chat", middleware.Protected(authService))
	chatGroup.Post("/", chatHandler.SendMessage)
	chatGroup.Get("/threads", chatHandler.GetThreads)
	chatGroup.Get("/threads/:id/messages", chatHandler.GetMessages)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
