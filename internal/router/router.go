package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/Tavhidjon/RealEstate/internal/config"
	"github.com/Tavhidjon/RealEstate/internal/handler"
	"github.com/Tavhidjon/RealEstate/internal/middleware"
	"github.com/Tavhidjon/RealEstate/internal/service"
)

// SetupRouter 设置路由
func SetupRouter(
	cfg *config.Config,
	authService *service.AuthService,
	authHandler *handler.AuthHandler,
	chatHandler *handler.ChatHandler,
	estateHandler *handler.EstateHandler,
) *gin.Engine {
	gin.SetMode(cfg.App.Mode)

	r := gin.New()

	// 全局中间件
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowCredentials,
	))

	// Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1
	v1 := r.Group("/api/v1")
	{
		// 认证接口（无需登录）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}

		// 公开的楼盘查询接口
		v1.GET("/companies", estateHandler.ListCompanies)
		v1.GET("/companies/:id", estateHandler.GetCompany)
		v1.GET("/buildings", estateHandler.ListBuildings)
		v1.GET("/buildings/:id", estateHandler.GetBuilding)
		v1.GET("/buildings/:id/floors", estateHandler.ListFloors)
		v1.GET("/floors/:id/flats", estateHandler.ListFlats)

		// 需要认证的接口
		authenticated := v1.Group("")
		authenticated.Use(middleware.JWTAuth(authService))
		{
			// 登出
			authenticated.POST("/auth/logout", authHandler.Logout)

			// 用户资料
			authenticated.GET("/user/profile", authHandler.Profile)
			authenticated.PUT("/user/profile", authHandler.UpdateProfile)

			// 会话接口
			chats := authenticated.Group("/chats")
			{
				chats.GET("", chatHandler.List)
				chats.POST("/start", chatHandler.Start)
				chats.GET("/unread", chatHandler.UnreadCounts)
				chats.GET("/companies", chatHandler.CompaniesOverview)
				chats.GET("/:id/messages", chatHandler.Messages)
				chats.POST("/:id/messages", chatHandler.Send)
				chats.POST("/:id/read", chatHandler.MarkRead)
				chats.POST("/:id/close", chatHandler.Close)
			}

			// 楼盘管理接口
			authenticated.POST("/companies", estateHandler.CreateCompany)
			authenticated.PUT("/companies/:id", estateHandler.UpdateCompany)
			authenticated.POST("/companies/:id/buildings", estateHandler.CreateBuilding)
			authenticated.PUT("/buildings/:id", estateHandler.UpdateBuilding)
			authenticated.DELETE("/buildings/:id", estateHandler.DeleteBuilding)
			authenticated.POST("/floors", estateHandler.CreateFloor)
			authenticated.DELETE("/floors/:id", estateHandler.DeleteFloor)
			authenticated.POST("/flats", estateHandler.CreateFlat)
			authenticated.DELETE("/flats/:id", estateHandler.DeleteFlat)
		}
	}

	return r
}
