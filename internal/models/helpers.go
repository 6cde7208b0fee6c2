package models

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// ValidateURL 校验是否为可抓取的HTTP地址
func ValidateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("无效的URL: %w", err)
	}
	switch parsed.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("URL必须是HTTP或HTTPS协议")
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL必须包含主机名")
	}
	return nil
}

// generateID 生成任务唯一ID
func generateID() string {
	return uuid.New().String()
}
