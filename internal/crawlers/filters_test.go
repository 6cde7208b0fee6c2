package crawlers

import (
	"context"
	"testing"
	"time"
)

func TestDiscoverFilters(t *testing.T) {
	session := newFakeListingSession()
	session.anchors["[role='tablist'] a"] = []*fakeAnchor{
		{href: "/search/pins/?q=cats&rs=filter", text: "  All\n Pins  "},
		{href: "/search/boards/?q=cats", text: "Boards"},
		{href: "/search/pins/?q=cats&rs=filter#top", text: "重复项"},
		{href: "/search/pins/?q=cats&rs=people", text: ""},
		{href: "/ideas/cats/", text: "Ideas"},
	}

	filters := DiscoverFilters(context.Background(), session, "cats", time.Millisecond)

	// 基础结果集始终位列首位
	if filters[0].Label != "All Pins" {
		t.Fatalf("首位不是基础结果集: %+v", filters[0])
	}
	if filters[0].URL != "https://www.pinterest.com/search/pins/?q=cats" {
		t.Errorf("基础结果集URL = %s", filters[0].URL)
	}

	// 发现3项,带片段的重复项被去重,非搜索路径被丢弃
	if len(filters) != 4 {
		t.Fatalf("筛选器数量 = %d, 期望 4: %+v", len(filters), filters)
	}

	if filters[1].Label != "All Pins" {
		t.Errorf("标签未折叠空白: %q", filters[1].Label)
	}
	if filters[1].URL != "https://www.pinterest.com/search/pins/?q=cats&rs=filter" {
		t.Errorf("筛选器URL = %s", filters[1].URL)
	}
	if filters[2].Label != "Boards" {
		t.Errorf("筛选器标签 = %s", filters[2].Label)
	}
	// 空标签回退为通用名
	if filters[3].Label != "Filter" {
		t.Errorf("空标签未回退: %q", filters[3].Label)
	}
}

func TestDiscoverFiltersNavigateFailed(t *testing.T) {
	session := newFakeListingSession()
	session.navErr = context.DeadlineExceeded

	filters := DiscoverFilters(context.Background(), session, "cats", time.Millisecond)

	// 导航失败时退回仅含基础结果集
	if len(filters) != 1 || filters[0].Label != "All Pins" {
		t.Errorf("应当只返回基础结果集: %+v", filters)
	}
}

func TestNormalizeFilterURL(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{"相对搜索路径", "/search/pins/?q=dogs", "https://www.pinterest.com/search/pins/?q=dogs"},
		{"绝对搜索路径", "https://www.pinterest.com/search/pins/?q=dogs", "https://www.pinterest.com/search/pins/?q=dogs"},
		{"去除片段", "/search/pins/?q=dogs#guide", "https://www.pinterest.com/search/pins/?q=dogs"},
		{"非搜索路径", "/ideas/dogs/", ""},
		{"空字符串", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeFilterURL(tt.href); got != tt.want {
				t.Errorf("normalizeFilterURL(%q) = %q, 期望 %q", tt.href, got, tt.want)
			}
		})
	}
}
