package models

import (
	"fmt"
	"net/http"
	"strings"
)

// HeaderConfig 请求头配置文件结构
type HeaderConfig struct {
	// Headers 自定义HTTP头部键值对
	Headers map[string]string `mapstructure:"headers" yaml:"headers"`
}

// CliHeaders 命令行传递的头部列表,每项格式为 "Name: Value"
type CliHeaders []string

// Parse 将字符串列表解析为 http.Header
func (ch CliHeaders) Parse() (http.Header, error) {
	result := make(http.Header)
	for i, s := range ch {
		name, value, err := parseHeaderString(s)
		if err != nil {
			return nil, fmt.Errorf("参数 --header 第%d项格式错误: %w", i+1, err)
		}
		result.Set(name, value)
	}
	return result, nil
}

// parseHeaderString 解析单个头部字符串 "Name: Value"
func parseHeaderString(s string) (name, value string, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("格式错误: 缺少冒号分隔符,应为 'Name: Value'")
	}

	name = strings.TrimSpace(parts[0])
	value = strings.TrimSpace(parts[1])

	if name == "" {
		return "", "", fmt.Errorf("头部名称不能为空")
	}

	return name, value, nil
}

// HeaderProvider 提供合并后的HTTP请求头部
// 返回的http.Header已按优先级合并(默认 < 配置 < 命令行)
type HeaderProvider interface {
	GetHeaders() (http.Header, error)
}

// ValidationError 头部验证错误
type ValidationError struct {
	Field      string // 出错的字段 ("name" 或 "value")
	HeaderName string // 头部名称
	Reason     string // 错误原因
	Suggestion string // 修复建议 (可选)
}

// Error 实现error接口
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("头部验证失败 [%s]: %s", e.HeaderName, e.Reason)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (建议: %s)", e.Suggestion)
	}
	return msg
}

// ConfigError 配置文件解析错误
type ConfigError struct {
	FilePath string // 配置文件路径
	Cause    error  // 底层错误
}

// Error 实现error接口
func (e *ConfigError) Error() string {
	return fmt.Sprintf("配置文件错误 [%s]: %v", e.FilePath, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
