// Package main 是应用程序入口
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const dependencyCheckTimeout = 3 * time.Second

// healthHandler 存活检查，只表示进程在运行
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "homestay-backend",
		"timestamp": time.Now().Unix(),
	})
}

// pingHandler Ping 检查
func pingHandler(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

// readyHandler 就绪检查，探测数据库与 Redis
// 任一依赖不可用时返回 503，摘掉流量直到恢复
func readyHandler(db *gorm.DB, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := map[string]string{
			"database": checkDatabase(db),
			"redis":    checkRedis(redisClient),
		}

		status := http.StatusOK
		statusText := "ready"
		for _, result := range checks {
			if result != "ok" {
				status = http.StatusServiceUnavailable
				statusText = "not ready"
				break
			}
		}

		c.JSON(status, gin.H{
			"status":    statusText,
			"timestamp": time.Now().Unix(),
			"checks":    checks,
		})
	}
}

func checkDatabase(db *gorm.DB) string {
	sqlDB, err := db.DB()
	if err != nil {
		return "error: " + err.Error()
	}
	ctx, cancel := context.WithTimeout(context.Background(), dependencyCheckTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func checkRedis(redisClient *redis.Client) string {
	ctx, cancel := context.WithTimeout(context.Background(), dependencyCheckTimeout)
	defer cancel()
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
