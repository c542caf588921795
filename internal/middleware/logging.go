// Package middleware 提供 HTTP 中间件
package middleware

import (
	"bytes"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	commonLogger "github.com/yuewen2025/homestay-backend/internal/common/logger"
	commonMiddleware "github.com/yuewen2025/homestay-backend/internal/common/middleware"
)

// LoggingConfig 访问日志配置
type LoggingConfig struct {
	Logger         *zap.Logger
	SkipPaths      []string // 跳过日志的路径
	LogRequestBody bool     // 是否记录请求体
	MaxBodySize    int      // 请求体记录上限（字节）
}

// DefaultLoggingConfig 默认访问日志配置
// 健康检查探针的请求量大且无业务含义，默认不记
func DefaultLoggingConfig(logger *zap.Logger) *LoggingConfig {
	return &LoggingConfig{
		Logger:         logger,
		SkipPaths:      []string{"/health", "/ping", "/ready", "/metrics"},
		LogRequestBody: false,
		MaxBodySize:    1024,
	}
}

// Logging 请求日志中间件
// 按状态码分级：5xx 记 Error，4xx 记 Warn，其余记 Info
func Logging(config *LoggingConfig) gin.HandlerFunc {
	skipPaths := make(map[string]struct{}, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skipPaths[path] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skipPaths[path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = c.GetString(ContextKeyRequestID)
		}

		var requestBody string
		if config.LogRequestBody && c.Request.Body != nil {
			bodyBytes, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			if len(bodyBytes) > config.MaxBodySize {
				requestBody = string(bodyBytes[:config.MaxBodySize]) + "...(truncated)"
			} else {
				requestBody = string(bodyBytes)
			}
		}

		c.Next()

		statusCode := c.Writer.Status()
		fields := []zap.Field{
			commonLogger.RequestID(requestID),
			commonLogger.Method(c.Request.Method),
			commonLogger.Path(path),
			zap.String("query", c.Request.URL.RawQuery),
			commonLogger.StatusCode(statusCode),
			commonLogger.Latency(time.Since(start)),
			commonLogger.IP(c.ClientIP()),
		}

		if traceID := commonMiddleware.GetTraceID(c); traceID != "" {
			fields = append(fields, zap.String("trace_id", traceID))
		}
		if userID := GetUserID(c); userID > 0 {
			fields = append(fields, commonLogger.UserID(userID))
		}
		if requestBody != "" {
			fields = append(fields, zap.String("request_body", requestBody))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case statusCode >= 500:
			config.Logger.Error("HTTP Request", fields...)
		case statusCode >= 400:
			config.Logger.Warn("HTTP Request", fields...)
		default:
			config.Logger.Info("HTTP Request", fields...)
		}
	}
}

// AccessLog 默认配置的访问日志中间件
func AccessLog(logger *zap.Logger) gin.HandlerFunc {
	return Logging(DefaultLoggingConfig(logger))
}
