// Package main 是应用程序入口
package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yuewen2025/homestay-backend/internal/common/config"
	"github.com/yuewen2025/homestay-backend/internal/common/jwt"
	"github.com/yuewen2025/homestay-backend/internal/common/metrics"
	commonMiddleware "github.com/yuewen2025/homestay-backend/internal/common/middleware"
	authHandler "github.com/yuewen2025/homestay-backend/internal/handler/auth"
	bookingHandler "github.com/yuewen2025/homestay-backend/internal/handler/booking"
	couponHandler "github.com/yuewen2025/homestay-backend/internal/handler/coupon"
	hotelHandler "github.com/yuewen2025/homestay-backend/internal/handler/hotel"
	"github.com/yuewen2025/homestay-backend/internal/middleware"
	"github.com/yuewen2025/homestay-backend/internal/repository"
	authService "github.com/yuewen2025/homestay-backend/internal/service/auth"
	bookingService "github.com/yuewen2025/homestay-backend/internal/service/booking"
	couponService "github.com/yuewen2025/homestay-backend/internal/service/coupon"
	hotelService "github.com/yuewen2025/homestay-backend/internal/service/hotel"
)

// application 聚合已装配的服务，供路由与定时任务共用
type application struct {
	bookingRepo *repository.BookingRepository
	bookingSvc  *bookingService.BookingService
}

// setupRouter 设置路由
func setupRouter(
	r *gin.Engine,
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
) *application {
	// 创建 JWT 管理器
	jwtManager := jwt.NewManager(&jwt.Config{
		Secret:            cfg.JWT.Secret,
		AccessExpireTime:  cfg.JWT.AccessTokenDuration(),
		RefreshExpireTime: cfg.JWT.RefreshTokenDuration(),
		Issuer:            cfg.JWT.Issuer,
	})

	// 初始化仓储
	userRepo := repository.NewUserRepository(db)
	hotelRepo := repository.NewHotelRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	operationLogRepo := repository.NewOperationLogRepository(db)

	// 初始化服务
	authSvc := authService.NewAuthService(db, userRepo, jwtManager, redisClient, cfg.JWT.RefreshTokenDuration())
	hotelSvc := hotelService.NewHotelService(db, hotelRepo, bookingRepo)
	couponSvc := couponService.NewCouponService(db, couponRepo, hotelRepo)
	bookingSvc := bookingService.NewBookingService(db, bookingRepo, hotelRepo, couponSvc)

	// 初始化处理器
	authH := authHandler.NewHandler(authSvc)
	hotelH := hotelHandler.NewHandler(hotelSvc)
	bookingH := bookingHandler.NewHandler(bookingSvc)
	couponH := couponHandler.NewHandler(couponSvc)

	// 操作日志
	opLogger := commonMiddleware.NewOperationLogger(operationLogRepo)

	// 全局中间件
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RealIP())
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.RequestSizeLimiter(1 << 20)) // 1MB
	r.Use(middleware.CORS(nil))
	r.Use(middleware.AccessLog(logger))
	if cfg.Metrics.Enabled {
		r.Use(metrics.GetMetrics().Middleware())
	}
	if cfg.Tracing.Enabled {
		r.Use(commonMiddleware.Tracing(&commonMiddleware.TracingConfig{
			ServiceName: cfg.Tracing.ServiceName,
			SkipPaths:   []string{"/health", "/ping", "/ready", "/metrics"},
		}))
	}

	// 健康检查（不需要认证）
	r.GET("/health", healthHandler)
	r.GET("/ping", pingHandler)
	r.GET("/ready", readyHandler(db, redisClient))

	// Prometheus 指标
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metrics.Handler())
	}

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		// 公开接口（无需认证）
		public := v1.Group("")
		{
			auth := public.Group("/auth")
			{
				auth.POST("/register", authH.Register)
				auth.POST("/login", middleware.LoginRateLimit(redisClient), authH.Login)
				auth.POST("/refresh", authH.RefreshToken)
			}

			public.GET("/hotels", hotelH.GetHotelList)
			public.GET("/hotels/cities", hotelH.GetCities)
			public.GET("/hotels/:id", hotelH.GetHotelDetail)
			public.GET("/hotels/:id/coupons", couponH.ListUsableCoupons)
		}

		// 登录用户接口
		user := v1.Group("")
		user.Use(middleware.UserAuth(jwtManager))
		{
			user.POST("/auth/logout", authH.Logout)
			user.GET("/auth/profile", authH.GetProfile)
			user.PUT("/auth/profile", authH.UpdateProfile)

			user.POST("/bookings", middleware.UserRateLimit(redisClient, 10, time.Minute), bookingH.CreateBooking)
			user.GET("/bookings", bookingH.ListMyBookings)
			user.GET("/bookings/no/:booking_no", bookingH.GetBookingByNo)
			user.GET("/bookings/:id", bookingH.GetBooking)
			user.GET("/bookings/:id/qrcode", bookingH.GetCheckInQRCode)
			user.POST("/bookings/:id/pay", bookingH.PayBooking)
			user.POST("/bookings/:id/cancel", bookingH.CancelBooking)
			user.PUT("/bookings/:id/reschedule", bookingH.Reschedule)
		}

		// 房东接口
		host := v1.Group("/host")
		host.Use(middleware.HostAuth(jwtManager))
		host.Use(opLogger.Log())
		{
			host.POST("/hotels", hotelH.CreateHotel)
			host.GET("/hotels", hotelH.ListHostHotels)
			host.GET("/hotels/:id", hotelH.GetHostHotel)
			host.PUT("/hotels/:id", hotelH.UpdateHotel)
			host.DELETE("/hotels/:id", hotelH.DeleteHotel)
			host.GET("/hotels/:id/bookings", bookingH.ListHotelBookings)

			host.POST("/hotels/:id/coupons", couponH.CreateCoupon)
			host.GET("/hotels/:id/coupons", couponH.ListHotelCoupons)
			host.GET("/coupons/:id", couponH.GetCoupon)
			host.PUT("/coupons/:id", couponH.UpdateCoupon)
			host.DELETE("/coupons/:id", couponH.DeleteCoupon)

			host.POST("/bookings/:id/confirm", bookingH.ConfirmBooking)
			host.POST("/bookings/:id/reject", bookingH.RejectBooking)
			host.POST("/bookings/:id/check-in", bookingH.CheckInBooking)
			host.POST("/bookings/:id/check-out", bookingH.CheckOutBooking)
		}
	}

	// 404 处理
	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"code":    404,
			"message": "接口不存在",
		})
	})

	return &application{
		bookingRepo: bookingRepo,
		bookingSvc:  bookingSvc,
	}
}
