package api

import (
	"database/sql"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/citylight/citylight-go/internal/config"
	"github.com/citylight/citylight-go/internal/geocoder"
	"github.com/citylight/citylight-go/internal/handler"
	"github.com/citylight/citylight-go/internal/metrics"
	"github.com/citylight/citylight-go/internal/middleware"
	"github.com/citylight/citylight-go/internal/repository"
	"github.com/citylight/citylight-go/internal/service"
)

// SetupRouter 设置路由并完成各层装配
func SetupRouter(cfg *config.Config, db *sql.DB) (*gin.Engine, error) {
	// 逆地理编码：无 Redis 时使用进程内有界 LRU 缓存
	var cache geocoder.PlaceCache
	if cfg.RedisAddr != "" {
		cache = geocoder.NewRedisCache(cfg.RedisAddr, cfg.GeocodeCacheTTL)
	} else {
		lruCache, err := geocoder.NewLRUCache(cfg.GeocodeCacheCap)
		if err != nil {
			return nil, err
		}
		cache = lruCache
	}

	// 未配置密钥时 provider 为空，解析结果恒为未知占位
	var provider geocoder.Provider
	if cfg.AmapKey != "" {
		provider = geocoder.NewAmapClient(cfg.AmapKey, cfg.GeocodeTimeout)
	}
	resolver := geocoder.NewResolver(provider, cache, cfg.GeocodeTimeout)

	traceRepo := repository.NewTraceRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	visitService := service.NewVisitService(db, visitRepo, traceRepo)
	ingestService := service.NewIngestService(resolver, traceRepo, visitService, cfg.IngestTimeout)
	traceService := service.NewTraceService(traceRepo)
	statsService := service.NewStatsService(statsRepo)

	locationHandler := handler.NewLocationHandler(ingestService, traceService)
	cityHandler := handler.NewCityHandler(visitService)
	statsHandler := handler.NewStatsHandler(statsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
	}))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "citylight API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// 业务接口全部要求已认证用户
	authed := r.Group("", middleware.Auth(cfg.JWTSecret))
	{
		authed.POST("/location",
			middleware.RateLimit(cfg.RateLimit, cfg.RateWindow),
			locationHandler.UploadLocation,
		)
		authed.GET("/trajectory", locationHandler.GetTrajectory)
		authed.GET("/cities", cityHandler.ListCities)
		authed.GET("/cities/:id", cityHandler.GetCityByID)
		authed.GET("/stats", statsHandler.GetStats)
	}

	return r, nil
}
