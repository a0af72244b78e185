package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"nalar/internal/adapter"
	"nalar/internal/adapter/quizgen"
	"nalar/internal/adapter/search"
	"nalar/internal/cache"
	"nalar/internal/config"
	"nalar/internal/database"
	"nalar/internal/logger"
	"nalar/internal/queue"
	"nalar/internal/repository"
	"nalar/internal/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

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

	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
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

	quizGenerator := quizgen.NewLLMQuizGenerator(llm, cfg.LLM, appLogger)
	planGenerator := quizgen.NewLLMPlanGenerator(llm, cfg.LLM, appLogger)
	searchService := search.NewHTTPSearchService(cfg.Search)

	resultCache := service.NewQuizResultCacheService(cacheAdapter, cfg.Generation.ResultCacheTTL)
	quizService := service.NewQuizService(quizRepository, quizGenerator, taskQueue, resultCache, txManager)
	knowledgeService := service.NewKnowledgeService(knowledgeRepository, txManager)
	chatService := service.NewChatService(llm, chatRepository, quizService, knowledgeService)
	learningService := service.NewLearningService(planRepository, userRepository, chatRepository, planGenerator, searchService, chatService, taskQueue, cfg.Search.Limit)

	worker := service.NewGenerationWorker(taskQueue, quizService, learningService)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workers := cfg.Generation.Workers
	if workers < 1 {
		workers = 1
	}
	appLogger.Info("Starting generation workers",
		zap.Int("workers", workers),
		zap.String("queue_key", cfg.Generation.QueueKey))

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			return worker.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil && err != context.Canceled {
		appLogger.Error("Worker pool stopped", zap.Error(err))
		os.Exit(1)
	}
	appLogger.Info("Workers exited gracefully")
}
