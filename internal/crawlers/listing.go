package crawlers

import (
	"context"
	"fmt"
	"time"

	"github.com/RecoveryAshes/PinHarvest/internal/models"
	"github.com/RecoveryAshes/PinHarvest/internal/utils"
)

const (
	// idleThreshold 连续无新结果的轮次上限,达到即判定列表见底
	idleThreshold = 6

	// scrollStep 单次滚动距离(像素)
	scrollStep = 1200
)

// listingReadySelectors 列表页就绪判定的候选选择器
var listingReadySelectors = []string{
	"div[data-test-id='pin']",
	"a[href*='/pin/']",
	"img",
}

// ListingCrawler 在无限滚动的搜索列表页上收集Pin链接
type ListingCrawler struct {
	session models.PageSession
	delay   time.Duration
}

// NewListingCrawler 创建列表页采集器
func NewListingCrawler(session models.PageSession, scrollDelay float64) *ListingCrawler {
	return &ListingCrawler{
		session: session,
		delay:   time.Duration(scrollDelay * float64(time.Second)),
	}
}

// CollectPinURLs 滚动收集列表页中的Pin链接
// 每轮先提取当前可见链接,数量达标立即停止,不做多余滚动;
// 连续idleThreshold轮无新增时判定列表见底提前返回
// 返回的链接按首次出现顺序排列且已去重
func (lc *ListingCrawler) CollectPinURLs(ctx context.Context, searchURL string, limit int, waitTime time.Duration) ([]string, error) {
	if err := lc.session.Navigate(ctx, searchURL); err != nil {
		return nil, fmt.Errorf("打开列表页失败 [%s]: %w", searchURL, err)
	}
	lc.session.WaitUntilAny(listingReadySelectors, waitTime)

	seen := make(map[string]bool)
	collected := make([]string, 0, limit)
	idle := 0

	for {
		added := 0
		for _, node := range lc.session.QueryAll("a[href*='/pin/']") {
			href := lc.session.ReadAttribute(node, "href")
			pinURL := models.NormalizePinURL(href)
			if pinURL == "" || seen[pinURL] {
				continue
			}
			seen[pinURL] = true
			collected = append(collected, pinURL)
			added++
			if len(collected) >= limit {
				break
			}
		}

		if len(collected) >= limit {
			break
		}

		if added == 0 {
			idle++
		} else {
			idle = 0
		}
		if idle >= idleThreshold {
			utils.Infof("列表已见底,收集到 %d 个Pin链接 (目标 %d)", len(collected), limit)
			break
		}

		if _, err := lc.session.RunScript(fmt.Sprintf("() => window.scrollBy(0, %d)", scrollStep)); err != nil {
			utils.Warnf("滚动失败: %v", err)
		}

		select {
		case <-ctx.Done():
			return collected, ctx.Err()
		case <-time.After(lc.delay):
		}
	}

	utils.Debugf("列表页收集完成: %d 个Pin链接", len(collected))
	return collected, nil
}
