// Package handler 按业务域组织 HTTP Handler 子包（auth、booking、coupon、hotel）。
//
// 这个文件让 `swag init --dir ./internal/handler` 等工具把本目录当作
// 有效的 Go 包，避免 "no Go files" 告警。
package handler
