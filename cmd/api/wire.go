//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入不同，Wire在编译期生成代码
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

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
	"github.com/xiebiao/reviewclub/pkg/mq"
)

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,
	mysql.NewDB,
	redis.NewClient,
	provideSessionStore,
	provideCacheStore,
	providePublisher,
	provideImageStore,
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewCategoryRepository,
	mysql.NewBookRepository,
	mysql.NewReviewRepository,
	mysql.NewReviewerRepository,
	mysql.NewTxManager,
	provideCategoryTransactor,
	provideBookTransactor,
	provideReviewerTransactor,
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	user.NewService,
	category.NewService,
	book.NewService,
	review.NewService,
	reviewer.NewService,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	provideLoginUseCase,
	provideLogoutUseCase,
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewCategoryHandler,
	handler.NewBookHandler,
	handler.NewReviewHandler,
	handler.NewReviewerHandler,
)

// ========================================
// Custom Providers
// ========================================
// 构造参数需要从Config提取、或需要接口适配的依赖,手动编写Provider

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideCacheStore 从Redis客户端创建图书缓存
func provideCacheStore(cfg *config.Config, client *goredis.Client) *redis.BookCacheStore {
	return redis.NewBookCacheStore(client, cfg.Redis.BookListTTL, cfg.Redis.BookDetailTTL)
}

// providePublisher 根据配置创建事件发布者(未启用MQ时为Noop)
func providePublisher(cfg *config.Config) (mq.EventPublisher, error) {
	if !cfg.MQ.Enabled {
		return mq.NewNoopPublisher(), nil
	}
	return mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
}

// provideImageStore 创建本地封面存储
func provideImageStore(cfg *config.Config) (book.ImageStore, error) {
	return storage.NewLocalImageStore(cfg.Storage.ImageRoot)
}

// provideLoginUseCase 登录用例(会话TTL来自JWT配置)
func provideLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore *redis.SessionStore,
	cfg *config.Config,
) *appuser.LoginUseCase {
	return appuser.NewLoginUseCase(userService, jwtManager, sessionStore, cfg.JWT.RefreshTokenExpire)
}

// provideLogoutUseCase 登出用例(黑名单TTL = Access Token有效期)
func provideLogoutUseCase(sessionStore *redis.SessionStore, cfg *config.Config) *appuser.LogoutUseCase {
	return appuser.NewLogoutUseCase(sessionStore, cfg.JWT.AccessTokenExpire)
}

// Transactor接口适配:各领域包声明自己的Transactor接口,
// 都由*mysql.TxManager实现,Wire需要显式绑定

func provideCategoryTransactor(tm *mysql.TxManager) category.Transactor { return tm }

func provideBookTransactor(tm *mysql.TxManager) book.Transactor { return tm }

func provideReviewerTransactor(tm *mysql.TxManager) reviewer.Transactor { return tm }

// provideGinEngine 创建并配置Gin引擎(复用router.go的注册逻辑)
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	categoryHandler *handler.CategoryHandler,
	bookHandler *handler.BookHandler,
	reviewHandler *handler.ReviewHandler,
	reviewerHandler *handler.ReviewerHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	return newRouter(cfg,
		userHandler, categoryHandler, bookHandler, reviewHandler, reviewerHandler,
		authMiddleware, gin.WrapH(promhttp.Handler()))
}

// InitializeApp Wire注入器入口
// 运行 `wire gen ./cmd/api` 生成wire_gen.go
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideGinEngine,
	)
	return nil, nil
}
