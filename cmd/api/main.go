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

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/config"
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/handler"
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/middleware"
	pgRepo "github.com/danielgol1997-byte/Referee-Website-sub001/internal/repository/postgres"
	redisRepo "github.com/danielgol1997-byte/Referee-Website-sub001/internal/repository/redis"
	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/service"
	"github.com/danielgol1997-byte/Referee-Website-sub001/pkg/auth"
	"github.com/danielgol1997-byte/Referee-Website-sub001/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

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

	// Инициализируем подключение к Redis с использованием унифицированной конфигурации
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	categoryRepo := pgRepo.NewTagCategoryRepo(db)
	tagRepo := pgRepo.NewTagRepo(db)
	clipRepo := pgRepo.NewVideoClipRepo(db)
	testRepo := pgRepo.NewVideoTestRepo(db)
	sessionRepo := pgRepo.NewVideoTestSessionRepo(db)
	lawQuestionRepo := pgRepo.NewLawQuestionRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем JWT сервис
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Инициализируем сервисы
	authService := service.NewAuthService(userRepo, jwtService)
	userService := service.NewUserService(userRepo)
	tagService := service.NewTagService(categoryRepo, tagRepo, cacheRepo)
	clipService := service.NewVideoClipService(clipRepo, tagRepo)
	testService := service.NewVideoTestService(
		testRepo,
		clipRepo,
		sessionRepo,
		tagRepo,
		userRepo,
		cacheRepo,
		db,
		time.Duration(cfg.Tests.ViewCounterTTLHrs)*time.Hour,
	)
	lawService := service.NewLawTestService(
		lawQuestionRepo,
		userRepo,
		cfg.Tests.LawQuestionsPerTest,
		cfg.Tests.LawPassingScore,
	)

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService, userService)
	userHandler := handler.NewUserHandler(userService)
	tagHandler := handler.NewTagHandler(tagService)
	clipHandler := handler.NewVideoClipHandler(clipService)
	testHandler := handler.NewVideoTestHandler(testService)
	lawHandler := handler.NewLawTestHandler(lawService)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	isProduction := gin.Mode() == gin.ReleaseMode

	// Инициализируем роутер Gin
	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		// Production: не доверять прокси-заголовкам.
		// Если используете load balancer, замените nil на []string{"IP_БАЛАНСИРОВЩИКА"}
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
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Аутентификация
		authGroup := api.Group("/auth")
		{
			strictLimit := rateLimiter.Limit(middleware.StrictAuthRateLimitConfig())
			authGroup.POST("/register", strictLimit, authHandler.Register)
			authGroup.POST("/login", strictLimit, authHandler.Login)

			authedAuth := authGroup.Group("/")
			authedAuth.Use(authMiddleware.RequireAuth())
			{
				authedAuth.GET("/me", authHandler.GetMe)
				authedAuth.POST("/change-password", authHandler.ChangePassword)
			}
		}

		// Таксономия тегов (читается конструктором решений на клиенте)
		tags := api.Group("/tags")
		tags.Use(authMiddleware.RequireAuth())
		{
			tags.GET("/taxonomy", tagHandler.GetTaxonomy)
		}

		// Видеотесты: прохождение
		videoTests := api.Group("/tests/videos")
		videoTests.Use(authMiddleware.RequireAuth())
		{
			videoTests.GET("/mandatory", testHandler.GetMandatoryTests)
			videoTests.GET("/available", testHandler.GetAvailableTests)
			videoTests.POST("", testHandler.CreateUserTest)

			testWithID := videoTests.Group("/:id")
			testWithID.Use(middleware.ExtractUintParam("id", "testID"))
			{
				testWithID.POST("/sessions", testHandler.StartSession)
			}

			sessions := videoTests.Group("/sessions")
			{
				sessions.GET("/my", testHandler.GetMySessions)

				sessionWithID := sessions.Group("/:id")
				sessionWithID.Use(middleware.ExtractUintParam("id", "sessionID"))
				{
					sessionWithID.GET("", testHandler.GetSession)
					sessionWithID.POST("/submit", testHandler.SubmitAnswers)
					sessionWithID.GET("/summary", testHandler.GetSessionSummary)
					sessionWithID.POST(
						"/clips/:clip_id/view",
						middleware.ExtractUintParam("clip_id", "clipID"),
						testHandler.RegisterClipView,
					)
				}
			}
		}

		// Тесты по Правилам игры
		lawTests := api.Group("/tests/laws")
		lawTests.Use(authMiddleware.RequireAuth())
		{
			lawTests.GET("/start", lawHandler.StartTest)
			lawTests.POST("/submit", lawHandler.SubmitTest)
			lawTests.GET("/results", lawHandler.GetMyResults)
		}

		// Админка: только для суперадминов
		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.SuperAdminOnly())
		{
			// Категории тегов и теги
			admin.POST("/tag-categories", tagHandler.CreateCategory)
			admin.PUT(
				"/tag-categories/:id",
				middleware.ExtractUintParam("id", "categoryID"),
				tagHandler.UpdateCategory,
			)
			admin.POST("/tags", tagHandler.CreateTag)
			adminTagWithID := admin.Group("/tags/:id")
			adminTagWithID.Use(middleware.ExtractUintParam("id", "tagID"))
			{
				adminTagWithID.PUT("", tagHandler.UpdateTag)
				adminTagWithID.DELETE("", tagHandler.DeleteTag)
			}

			// Видеоэпизоды
			admin.GET("/clips", clipHandler.ListClips)
			admin.POST("/clips", clipHandler.CreateClip)
			adminClipWithID := admin.Group("/clips/:id")
			adminClipWithID.Use(middleware.ExtractUintParam("id", "clipID"))
			{
				adminClipWithID.GET("", clipHandler.GetClip)
				adminClipWithID.PUT("", clipHandler.UpdateClip)
				adminClipWithID.PATCH("/active", clipHandler.SetClipActive)
				adminClipWithID.DELETE("", clipHandler.DeleteClip)
			}

			// Видеотесты
			admin.GET("/tests", testHandler.ListTests)
			admin.POST("/tests", testHandler.CreateTest)
			adminTestWithID := admin.Group("/tests/:id")
			adminTestWithID.Use(middleware.ExtractUintParam("id", "testID"))
			{
				adminTestWithID.GET("", testHandler.GetTest)
				adminTestWithID.PUT("", testHandler.UpdateTest)
				adminTestWithID.PUT("/clips", testHandler.ReplaceClips)
				adminTestWithID.POST("/resample", testHandler.ResampleClips)
				adminTestWithID.DELETE("", testHandler.DeleteTest)
				adminTestWithID.GET("/results/export", testHandler.ExportTestResults)
			}

			// Вопросы по Правилам игры
			admin.POST("/law-questions", lawHandler.CreateQuestion)
			adminQuestionWithID := admin.Group("/law-questions/:id")
			adminQuestionWithID.Use(middleware.ExtractUintParam("id", "questionID"))
			{
				adminQuestionWithID.PUT("", lawHandler.UpdateQuestion)
				adminQuestionWithID.DELETE("", lawHandler.DeleteQuestion)
			}

			// Пользователи
			admin.GET("/users", userHandler.ListUsers)
			admin.GET(
				"/users/:id",
				middleware.ExtractUintParam("id", "userID"),
				userHandler.GetUser,
			)
		}
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	readTimeout := cfg.Server.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 15
	}
	writeTimeout := cfg.Server.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30
	}
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	// Ждем сигнал SIGINT или SIGTERM для корректного завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Создаем контекст с таймаутом для graceful shutdown сервера
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
