package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/ai-quiz-api/internal/config"
	"github.com/yourusername/ai-quiz-api/internal/handler"
	"github.com/yourusername/ai-quiz-api/internal/middleware"
	fileRepo "github.com/yourusername/ai-quiz-api/internal/repository/file"
	pgRepo "github.com/yourusername/ai-quiz-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/ai-quiz-api/internal/repository/redis"
	"github.com/yourusername/ai-quiz-api/internal/service"
	"github.com/yourusername/ai-quiz-api/pkg/database"
	"github.com/yourusername/ai-quiz-api/pkg/gigachat"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	log.Printf("Загрузка конфигурации (CONFIG_PATH=%q)", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Корпус вопросов загружается один раз при старте
	questionRepo, err := fileRepo.NewQuestionRepo(cfg.Quiz.QuestionsPath)
	if err != nil {
		log.Printf("Failed to load question corpus: %v", err)
		os.Exit(1)
	}

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	sessionRepo := pgRepo.NewSessionRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Клиент GigaChat создается один раз и внедряется в сервисы
	gigaClient, err := gigachat.NewClient(gigachat.Config{
		Credentials:    cfg.GigaChat.Credentials,
		Scope:          cfg.GigaChat.Scope,
		Model:          cfg.GigaChat.Model,
		Temperature:    cfg.GigaChat.Temperature,
		VerifySSLCerts: cfg.GigaChat.VerifySSLCerts,
		AuthURL:        cfg.GigaChat.AuthURL,
		BaseURL:        cfg.GigaChat.BaseURL,
		Timeout:        time.Duration(cfg.GigaChat.TimeoutSec) * time.Second,
	})
	if err != nil {
		log.Printf("Failed to initialize GigaChat client: %v", err)
		os.Exit(1)
	}

	// Инициализируем сервисы
	graderService := service.NewGraderService(gigaClient)
	sessionService := service.NewSessionService(
		sessionRepo, userRepo, questionRepo, cacheRepo, graderService,
		cfg.Quiz.PassScore, cfg.Quiz.DefaultQuizID,
	)
	exportService := service.NewExportService(sessionService)

	// Инициализируем обработчики
	quizHandler := handler.NewQuizHandler(questionRepo, sessionService, cfg.Quiz.PassScore, cfg.Quiz.DefaultQuizID, cfg.Quiz.Debug)
	sessionHandler := handler.NewSessionHandler(sessionService, cfg.Quiz.Debug)
	leaderboardHandler := handler.NewLeaderboardHandler(sessionService, exportService, cfg.Quiz.Debug)
	userHandler := handler.NewUserHandler(sessionService, cfg.Quiz.Debug)

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode
	if isProduction {
		// Production: не доверять прокси-заголовкам
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		// Development: доверяем localhost
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORS.FrontendOrigin, "http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", quizHandler.Health)

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		api.GET("/meta", quizHandler.Meta)

		api.GET("/questions", quizHandler.ListQuestions)
		api.GET("/questions/:id", quizHandler.GetQuestion)

		// Бессессионная оценка и итоговый отзыв (совместимость со старым фронтом)
		api.POST("/grade", quizHandler.Grade)
		api.POST("/final_feedback", quizHandler.FinalFeedback)

		sessions := api.Group("/sessions")
		{
			sessions.POST("", sessionHandler.CreateSession)

			sessionWithID := sessions.Group("/:id")
			sessionWithID.Use(middleware.ExtractSessionID("id", "sessionID"))
			{
				sessionWithID.GET("", sessionHandler.GetSession)
				sessionWithID.POST("/answers", sessionHandler.SubmitAnswer)
				sessionWithID.POST("/finish", sessionHandler.FinishSession)
			}
		}

		api.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
		api.GET("/leaderboard/export", leaderboardHandler.Export)

		api.GET("/users/:nickname", userHandler.GetUserStats)
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	// Ждем сигнал остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
