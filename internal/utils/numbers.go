package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// compactNumberRe 匹配文本中的第一个数字片段及其可选的数量级后缀
var compactNumberRe = regexp.MustCompile(`([\d.,]+)\s*([kKmMbB]?)`)

// ParseCompactNumber 将缩写计数文本还原为整数字符串
// 例如 "12.3K" -> "12300","4,321" -> "4321"
// 无法解析时返回空串,调用方据此保留字段为空
func ParseCompactNumber(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	match := compactNumberRe.FindStringSubmatch(text)
	if match == nil {
		return ""
	}

	numeric := strings.ReplaceAll(match[1], ",", "")
	value, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return ""
	}

	switch strings.ToLower(match[2]) {
	case "k":
		value *= 1_000
	case "m":
		value *= 1_000_000
	case "b":
		value *= 1_000_000_000
	}

	return strconv.FormatInt(int64(math.Round(value)), 10)
}
