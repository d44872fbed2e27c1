package main

import (
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/reviewclub/internal/application/user"
	"github.com/xiebiao/reviewclub/internal/domain/book"
	"github.com/xiebiao/reviewclub/internal/domain/category"
	"github.com/xiebiao/reviewclub/internal/domain/review"
	"github.com/xiebiao/reviewclub/internal/domain/reviewer"
	"github.com/xiebiao/reviewclub/internal/domain/user"
	"github.com/xiebiao/reviewclub/internal/infrastructure/config"
	"github.com/xiebiao/reviewclub/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/reviewclub/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/reviewclub/internal/infrastructure/storage"
	"github.com/xiebiao/reviewclub/internal/interface/http/handler"
	"github.com/xiebiao/reviewclub/internal/interface/http/middleware"
	"github.com/xiebiao/reviewclub/pkg/jwt"
	"github.com/xiebiao/reviewclub/pkg/metrics"
	"github.com/xiebiao/reviewclub/pkg/mq"
)

// main 主程序入口
// 说明：手动依赖注入（wire.go提供等价的Wire版本,运行wire gen生成）
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())

	// 2. 初始化Prometheus指标
	metrics.InitMetrics()

	// 3. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 4. 初始化Redis连接
	// Redis不可用时降级运行:无缓存、无会话黑名单,JWT本身仍然有效
	var (
		sessionStore *redis.SessionStore
		cacheStore   *redis.BookCacheStore
	)
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Printf("⚠ Redis不可用,以无缓存模式运行: %v", err)
	} else {
		sessionStore = redis.NewSessionStore(redisClient)
		cacheStore = redis.NewBookCacheStore(redisClient, cfg.Redis.BookListTTL, cfg.Redis.BookDetailTTL)
	}

	// 5. 初始化事件发布(未启用MQ时为Noop)
	var publisher mq.EventPublisher
	if cfg.MQ.Enabled {
		p, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
		if err != nil {
			log.Fatalf("初始化RabbitMQ失败: %v", err)
		}
		defer p.Close()
		publisher = p
	} else {
		publisher = mq.NewNoopPublisher()
	}

	// 6. 初始化封面存储
	imageStore, err := storage.NewLocalImageStore(cfg.Storage.ImageRoot)
	if err != nil {
		log.Fatalf("初始化封面存储失败: %v", err)
	}

	// 7. 依赖注入（手动组装）
	// Repository ← Service ← (UseCase) ← Handler

	// 基础设施层
	txManager := mysql.NewTxManager(db)
	userRepo := mysql.NewUserRepository(db)
	categoryRepo := mysql.NewCategoryRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	reviewRepo := mysql.NewReviewRepository(db)
	reviewerRepo := mysql.NewReviewerRepository(db)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 领域层
	userService := user.NewService(userRepo)
	categoryService := category.NewService(categoryRepo, txManager)
	bookService := book.NewService(bookRepo, txManager, imageStore)
	reviewService := review.NewService(reviewRepo)
	reviewerService := reviewer.NewService(reviewerRepo, txManager)

	// 应用层(账号用例涉及JWT与会话编排)
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore, cfg.JWT.RefreshTokenExpire)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore, cfg.JWT.AccessTokenExpire)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase)
	categoryHandler := handler.NewCategoryHandler(categoryService, cacheStore, publisher)
	bookHandler := handler.NewBookHandler(bookService, cacheStore, publisher)
	reviewHandler := handler.NewReviewHandler(reviewService, cacheStore, publisher)
	reviewerHandler := handler.NewReviewerHandler(reviewerService, cacheStore)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 8. 初始化Gin引擎并注册路由
	r := newRouter(cfg,
		userHandler, categoryHandler, bookHandler, reviewHandler, reviewerHandler,
		authMiddleware, gin.WrapH(promhttp.Handler()))

	// 9. 启动服务
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Printf("\n🚀 服务启动成功！\n")
	fmt.Printf("   访问地址: http://localhost%s\n", addr)
	fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
	fmt.Printf("   API文档: http://localhost%s/swagger/index.html\n", addr)
	fmt.Printf("   指标: http://localhost%s/metrics\n", addr)
	fmt.Printf("\n按Ctrl+C停止服务\n\n")

	if err := r.Run(addr); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}
