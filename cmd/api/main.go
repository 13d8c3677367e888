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

	"github.com/garyai/picks-api/internal/config"
	"github.com/garyai/picks-api/internal/handler"
	"github.com/garyai/picks-api/internal/middleware"
	pgRepo "github.com/garyai/picks-api/internal/repository/postgres"
	redisRepo "github.com/garyai/picks-api/internal/repository/redis"
	"github.com/garyai/picks-api/internal/service"
	"github.com/garyai/picks-api/internal/service/grader"
	"github.com/garyai/picks-api/internal/service/sportsfeed"
	ws "github.com/garyai/picks-api/internal/websocket"
	"github.com/garyai/picks-api/pkg/auth"
	"github.com/garyai/picks-api/pkg/database"
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
	db, err := database.NewPostgresDB(
		cfg.Database.PostgresConnectionString(),
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
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
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	pickRepo := pgRepo.NewPickRepo(db)
	decisionRepo := pgRepo.NewDecisionRepo(db)
	gameResultRepo := pgRepo.NewGameResultRepo(db)
	statsRepo := pgRepo.NewStatsRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем JWT
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Корневой контекст приложения: отмена завершает фоновые горутины
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Инициализация WebSocket ---
	wsHub := ws.NewHub()

	var pubSubProvider ws.PubSubProvider = &ws.NoOpPubSub{}
	if cfg.WebSocket.Cluster.Enabled {
		log.Println("Инициализация Redis PubSub для кластеризации WebSocket...")
		redisPubSubClient, errPubSub := database.NewUniversalRedisClient(cfg.Redis)
		if errPubSub != nil {
			log.Printf("Ошибка при инициализации Redis клиента для PubSub: %v. Кластеризация WS будет неактивна.", errPubSub)
		} else {
			redisProvider, errProv := ws.NewRedisPubSub(redisPubSubClient, cfg.WebSocket.Cluster.MaxRetries)
			if errProv != nil {
				log.Printf("Ошибка при создании Redis PubSub провайдера: %v. Кластеризация WS будет неактивна.", errProv)
				redisPubSubClient.Close()
			} else {
				log.Println("Redis PubSub провайдер успешно инициализирован")
				pubSubProvider = redisProvider
			}
		}
	}

	clusterHub := ws.NewClusterHub(wsHub, cfg.WebSocket.Cluster, pubSubProvider)
	wsHub.SetCluster(clusterHub)
	if err := clusterHub.Start(); err != nil {
		log.Printf("Ошибка запуска кластерного хаба: %v", err)
		os.Exit(1)
	}
	go wsHub.Run(ctx)

	wsManager := ws.NewManager(wsHub)
	// --- Конец инициализации WebSocket ---

	// Инициализируем сервисы
	authService := service.NewAuthService(userRepo, jwtService)
	userService := service.NewUserService(userRepo, statsRepo, decisionRepo)
	pickService := service.NewPickService(pickRepo, cacheRepo)
	decisionService := service.NewDecisionService(decisionRepo, pickRepo, statsRepo, db)
	leaderboardService := service.NewLeaderboardService(statsRepo, cacheRepo)

	var emailService service.EmailService = &service.NoopEmailService{}
	if cfg.Email.Enabled {
		resendService, errEmail := service.NewResendEmailService(cfg.Email.APIKey, cfg.Email.FromAddress)
		if errEmail != nil {
			log.Printf("Failed to initialize Resend email service: %v", errEmail)
			os.Exit(1)
		}
		emailService = resendService
	}

	// --- Инициализация сверки решений ---
	graderConfig := grader.DefaultConfig()
	if cfg.Grader.SweepInterval > 0 {
		graderConfig.SweepInterval = cfg.Grader.SweepInterval
	}
	if cfg.Grader.BatchSize > 0 {
		graderConfig.BatchSize = cfg.Grader.BatchSize
	}
	if cfg.Grader.PendingAfter > 0 {
		graderConfig.PendingAfter = cfg.Grader.PendingAfter
	}

	graderDeps := &grader.Dependencies{
		DecisionRepo:   decisionRepo,
		PickRepo:       pickRepo,
		StatsRepo:      statsRepo,
		UserRepo:       userRepo,
		GameResultRepo: gameResultRepo,
		Notifier:       wsManager,
		EmailSender:    emailService,
		DB:             db,
		Config:         graderConfig,
	}

	reconciler := grader.NewReconciler(graderConfig, graderDeps)
	sweeper := grader.NewSweeper(graderConfig, reconciler, graderDeps)
	go sweeper.Run(ctx)

	// Опрос внешнего фида результатов, если он сконфигурирован
	if cfg.Feed.BaseURL != "" {
		feedClient, errFeed := sportsfeed.NewClient(cfg.Feed.BaseURL, cfg.Feed.APIKey, cfg.Feed.Timeout)
		if errFeed != nil {
			log.Printf("Failed to initialize sports feed client: %v", errFeed)
			os.Exit(1)
		}
		feedService := sportsfeed.NewService(feedClient, pickRepo, reconciler, cfg.Feed.Sports, cfg.Feed.PollInterval)
		go feedService.Run(ctx)
	} else {
		log.Println("Фид результатов не сконфигурирован, игры закрываются только вручную")
	}

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	pickHandler := handler.NewPickHandler(pickService)
	decisionHandler := handler.NewDecisionHandler(decisionService)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService)
	adminHandler := handler.NewAdminHandler(pickService, reconciler, statsRepo, decisionRepo, wsManager)
	wsHandler := handler.NewWSHandler(wsHub, wsManager, jwtService)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Инициализируем роутер Gin
	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	isProduction := gin.Mode() == gin.ReleaseMode
	if isProduction {
		// Production: не доверять прокси-заголовкам
		// Если используете load balancer, замените nil на []string{"IP_БАЛАНСИРОВЩИКА"}
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS (список синхронизирован с CheckOrigin в ws_handler.go)
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://app.garyai.com", "https://admin.garyai.com", "http://localhost:5173", "http://localhost:3000"},
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
		authGroup.Use(rateLimiter.LimitByIP(middleware.StrictAuthRateLimitConfig()))
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// Профиль текущего пользователя
		me := api.Group("/me")
		me.Use(authMiddleware.RequireAuth())
		{
			me.GET("", userHandler.GetMe)
			me.PUT("", userHandler.UpdateMe)
			me.GET("/stats", userHandler.GetMyStats)
			me.GET("/decisions", userHandler.GetMyDecisions)
		}

		// Публичная статистика пользователя
		userWithID := api.Group("/users/:id")
		userWithID.Use(middleware.ExtractUintParam("id", "userID"))
		{
			userWithID.GET("/stats", userHandler.GetUserStats)
		}

		// Лидерборд (публичный маршрут)
		api.GET("/leaderboard", leaderboardHandler.GetLeaderboard)

		// Пики
		picks := api.Group("/picks")
		{
			picks.GET("", pickHandler.ListPicks)
			picks.GET("/today", pickHandler.GetTodaysPicks)

			pickWithID := picks.Group("/:id")
			pickWithID.Use(middleware.ExtractUintParam("id", "pickID"))
			{
				pickWithID.GET("", pickHandler.GetPick)

				// Решения по пику (ride/fade)
				authedPick := pickWithID.Group("")
				authedPick.Use(authMiddleware.RequireAuth())
				{
					authedPick.POST("/decision",
						rateLimiter.Limit(middleware.DecisionRateLimitConfig()),
						decisionHandler.RecordDecision)
					authedPick.GET("/decision", decisionHandler.GetMyDecisionForPick)
				}

				// Администрирование конкретного пика
				adminPick := pickWithID.Group("")
				adminPick.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
				{
					adminPick.POST("/result", adminHandler.PostGameResult)
					adminPick.GET("/decisions/export", adminHandler.ExportPickDecisionsXLSX)
				}
			}

			// Создание пика (только администраторы)
			adminCreatePick := picks.Group("")
			adminCreatePick.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
			{
				adminCreatePick.POST("", adminHandler.CreatePick)
			}
		}

		// Прочие административные маршруты
		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
		{
			admin.POST("/reconcile", adminHandler.TriggerReconcile)
			admin.GET("/leaderboard/export", adminHandler.ExportLeaderboardXLSX)
		}
	}

	// WebSocket маршрут
	router.GET("/ws", wsHandler.HandleConnection)

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

	log.Printf("Server started on port %s", cfg.Server.Port)

	// После получения SIGINT или SIGTERM вызываем cancel() для завершения горутин
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancel()

	clusterHub.Stop()
	if err := pubSubProvider.Close(); err != nil {
		log.Printf("Error closing PubSub provider: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
