package crawlers

import (
	"context"
	"strings"
	"time"

	"github.com/RecoveryAshes/PinHarvest/internal/models"
	"github.com/RecoveryAshes/PinHarvest/internal/utils"
)

// filterSelectors 搜索筛选器控件的候选选择器
var filterSelectors = []string{
	"[role='tablist'] a",
	"[data-test-id='search-guides'] a",
	"[data-test-id*='filter'] a",
	"[data-test-id*='chip'] a",
}

// baseFilterLabel 基础结果集的筛选器标签
const baseFilterLabel = "All Pins"

// DiscoverFilters 在搜索页上发现可用的结果筛选器
// 基础结果集始终位列首位;发现的筛选器必须指向站内搜索页,
// 按目标URL去重,标签折叠空白,空标签回退为通用名
func DiscoverFilters(ctx context.Context, session models.PageSession, keyword string, waitTime time.Duration) []models.FilterOption {
	base := models.FilterOption{Label: baseFilterLabel, URL: models.SearchURLFor(keyword)}
	options := []models.FilterOption{base}
	seen := map[string]bool{base.URL: true}

	if err := session.Navigate(ctx, base.URL); err != nil {
		utils.Warnf("打开搜索页失败,跳过筛选器发现 [%s]: %v", base.URL, err)
		return options
	}
	session.WaitUntilAny(listingReadySelectors, waitTime)

	for _, selector := range filterSelectors {
		for _, node := range session.QueryAll(selector) {
			target := normalizeFilterURL(session.ReadAttribute(node, "href"))
			if target == "" {
				target = normalizeFilterURL(session.ReadAttribute(node, "data-redirect-url"))
			}
			if target == "" || seen[target] {
				continue
			}
			seen[target] = true

			label := collapseWhitespace(session.ReadText(node))
			if label == "" {
				label = "Filter"
			}
			options = append(options, models.FilterOption{Label: label, URL: target})
		}
	}

	utils.Infof("🔍 发现 %d 个搜索筛选器 [%s]", len(options), keyword)
	return options
}

// normalizeFilterURL 归一化筛选器目标地址
// 只接受站内搜索页链接,丢弃片段部分
func normalizeFilterURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || !strings.Contains(href, "/search/") {
		return ""
	}
	if idx := strings.IndexByte(href, '#'); idx >= 0 {
		href = href[:idx]
	}
	if strings.HasPrefix(href, "/") {
		return models.PinBaseURL + href
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return ""
}

// collapseWhitespace 将连续空白折叠为单个空格
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
