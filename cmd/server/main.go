package main

import (
	"log"

	"github.com/citylight/citylight-go/internal/api"
	"github.com/citylight/citylight-go/internal/config"
	"github.com/citylight/citylight-go/internal/database"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化数据库
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// 初始化路由
	router, err := api.SetupRouter(cfg, db)
	if err != nil {
		log.Fatal("Failed to set up router:", err)
	}

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
