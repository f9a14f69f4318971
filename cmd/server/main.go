// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dreamtrace-go/internal/archive"
	"dreamtrace-go/internal/config"
	"dreamtrace-go/internal/handler"
	"dreamtrace-go/internal/middleware"
	"dreamtrace-go/internal/repository"
	"dreamtrace-go/internal/service"
	"dreamtrace-go/pkg/database"
	"dreamtrace-go/pkg/emotion"
	"dreamtrace-go/pkg/es"
	"dreamtrace-go/pkg/kafka"
	"dreamtrace-go/pkg/llm"
	"dreamtrace-go/pkg/log"
	"dreamtrace-go/pkg/storage"
	"dreamtrace-go/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库与外部依赖
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	if err := es.InitES(cfg.Elasticsearch); err != nil {
		log.Errorf("es 初始化失败 %s", err)
		return
	}
	kafka.InitProducer(cfg.Kafka)

	// 4. 初始化 Repository
	userRepo := repository.NewUserRepository(database.DB)
	dreamRepo := repository.NewDreamRepository(database.DB)
	dictRepo := repository.NewDictionaryRepository(database.DB, database.RDB)
	sessionRepo := repository.NewSessionRepository(database.RDB)

	// 4.1 词典为空时导入内置条目（幂等）
	if err := dictRepo.SeedDefaults(); err != nil {
		log.Errorf("词典初始化导入失败: %v", err)
		return
	}

	// 5. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	llmClient := llm.NewClient(cfg.LLM)
	classifier := emotion.NewClassifier(llmClient)
	userService := service.NewUserService(userRepo, jwtManager)
	analysisService := service.NewAnalysisService(dictRepo, classifier)
	dreamService := service.NewDreamService(dreamRepo, sessionRepo)
	chatService := service.NewChatService(dreamRepo, sessionRepo, analysisService, llmClient)
	dictionaryService := service.NewDictionaryService(dictRepo)

	// 6. 启动后台 Kafka 消费者处理归档任务
	archiver := archive.NewArchiver(dreamRepo, cfg.MinIO)
	go kafka.StartConsumer(cfg.Kafka, archiver)

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 8. 注册路由
	apiV1 := r.Group("/api/v1")
	{
		// Auth 路由组
		auth := apiV1.Group("/auth")
		{
			auth.POST("/refreshToken", handler.NewAuthHandler(userService).RefreshToken)
		}

		users := apiV1.Group("/users")
		{
			// 无需认证的路由 (公开访问)
			users.POST("/register", handler.NewUserHandler(userService).Register)
			users.POST("/login", handler.NewUserHandler(userService).Login)

			// 需要认证的路由 (仅限登录用户访问)
			authed := users.Group("/")
			authed.Use(middleware.AuthMiddleware(jwtManager, userService))
			{
				authed.GET("/me", handler.NewUserHandler(userService).GetProfile)
				authed.POST("/logout", handler.NewUserHandler(userService).Logout)
			}
		}

		// 脚本化对话路由，需要认证
		chat := apiV1.Group("/chat")
		chat.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			chat.POST("/message", handler.NewChatHandler(chatService, userService, jwtManager).PostMessage)
		}

		// 梦境日记路由组，需要认证
		dreams := apiV1.Group("/dreams")
		dreams.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			dreamHandler := handler.NewDreamHandler(dreamService)
			dreams.GET("", dreamHandler.List)
			dreams.GET("/search", dreamHandler.Search)
			dreams.GET("/trends", dreamHandler.Trends)
			dreams.GET("/stats", dreamHandler.Stats)
			dreams.GET("/export", dreamHandler.Export)
			dreams.GET("/:id", dreamHandler.Get)
			dreams.DELETE("/:id", dreamHandler.Delete)
		}

		// 符号词典路由组，需要认证
		dictionary := apiV1.Group("/dictionary")
		dictionary.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			dictionary.GET("", handler.NewDictionaryHandler(dictionaryService).List)
			dictionary.GET("/:id", handler.NewDictionaryHandler(dictionaryService).Get)
		}
	}

	// 引导式对话 (WebSocket)，token 走路径参数
	r.GET("/chat/guided/:token", handler.NewChatHandler(chatService, userService, jwtManager).HandleGuided)

	// 9. 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	// Kafka 消费者的 FetchMessage 循环会随进程退出自然结束，
	// 无需在此单独关闭。
	log.Info("服务已优雅关闭")
}
