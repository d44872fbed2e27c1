package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/reviewclub/internal/infrastructure/config"
	"github.com/xiebiao/reviewclub/internal/interface/http/handler"
	"github.com/xiebiao/reviewclub/internal/interface/http/middleware"
	"github.com/xiebiao/reviewclub/pkg/response"
)

// newRouter 创建并配置Gin引擎
// 路由设计:
// 1. 读接口全部公开(列表、详情、分类图书、书评)
// 2. 写接口(增删改、审核、上传封面)需要管理员登录
// 3. /metrics暴露Prometheus指标,/swagger暴露API文档
func newRouter(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	categoryHandler *handler.CategoryHandler,
	bookHandler *handler.BookHandler,
	reviewHandler *handler.ReviewHandler,
	reviewerHandler *handler.ReviewerHandler,
	authMiddleware *middleware.AuthMiddleware,
	metricsHandler gin.HandlerFunc,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.Metrics())

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", metricsHandler)

	// Swagger文档
	// 访问 http://localhost:8080/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 账号模块
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
		}

		// 分类模块
		categories := v1.Group("/categories")
		{
			categories.GET("", categoryHandler.ListCategories)
			categories.GET("/:id", categoryHandler.GetCategory)
			categories.GET("/:id/books", categoryHandler.GetCategoryBooks)

			categories.POST("", authMiddleware.RequireAuth(), categoryHandler.AddCategory)
			categories.PUT("/:id", authMiddleware.RequireAuth(), categoryHandler.UpdateCategory)
			categories.DELETE("/:id", authMiddleware.RequireAuth(), categoryHandler.DeleteCategory)
		}

		// 图书模块
		books := v1.Group("/books")
		{
			books.GET("", bookHandler.ListBooks)
			books.GET("/:id", bookHandler.GetBook)
			books.GET("/:id/reviews", reviewHandler.ListBookReviews)

			books.POST("", authMiddleware.RequireAuth(), bookHandler.AddBook)
			books.PUT("/:id", authMiddleware.RequireAuth(), bookHandler.UpdateBook)
			books.DELETE("/:id", authMiddleware.RequireAuth(), bookHandler.DeleteBook)
			books.POST("/:id/image", authMiddleware.RequireAuth(), bookHandler.UploadBookImage)
		}

		// 书评模块
		reviews := v1.Group("/reviews")
		{
			reviews.GET("", reviewHandler.ListReviews)
			reviews.GET("/:id", reviewHandler.GetReview)

			reviews.POST("", authMiddleware.RequireAuth(), reviewHandler.AddReview)
			reviews.PUT("/:id", authMiddleware.RequireAuth(), reviewHandler.UpdateReview)
			reviews.DELETE("/:id", authMiddleware.RequireAuth(), reviewHandler.DeleteReview)
			reviews.POST("/:id/approve", authMiddleware.RequireAuth(), reviewHandler.ApproveReview)
		}

		// 评论人模块
		reviewers := v1.Group("/reviewers")
		{
			reviewers.GET("", reviewerHandler.ListReviewers)
			reviewers.GET("/:id", reviewerHandler.GetReviewer)

			reviewers.POST("", authMiddleware.RequireAuth(), reviewerHandler.AddReviewer)
			reviewers.PUT("/:id", authMiddleware.RequireAuth(), reviewerHandler.UpdateReviewer)
			reviewers.DELETE("/:id", authMiddleware.RequireAuth(), reviewerHandler.DeleteReviewer)
		}
	}

	return r
}
