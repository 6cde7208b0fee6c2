package main

import (
	"fmt"
)

// ValidateFlags 验证命令行标志
func ValidateFlags(limit int, scrollDelay float64, waitTime int) error {
	// 验证采集上限
	if limit < 1 || limit > 10000 {
		return fmt.Errorf("采集上限必须在1-10000之间,当前值: %d", limit)
	}

	// 验证滚动间隔
	if scrollDelay < 0.1 || scrollDelay > 10 {
		return fmt.Errorf("滚动间隔必须在0.1-10秒之间,当前值: %.2f", scrollDelay)
	}

	// 验证等待时间
	if waitTime < 1 || waitTime > 60 {
		return fmt.Errorf("等待时间必须在1-60秒之间,当前值: %d", waitTime)
	}

	return nil
}
