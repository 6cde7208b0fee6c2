package models

import (
	"net/url"
	"regexp"
	"strings"
)

// PinBaseURL Pinterest站点根地址,用于相对链接补全和Profile/Board URL拼接
const PinBaseURL = "https://www.pinterest.com"

// pinIDRe 从Pin URL中提取数字ID: /pin/123456/
var pinIDRe = regexp.MustCompile(`/pin/(\d+)/?`)

// PinRecord 单个Pin的规范化输出记录
// 不变量: 所有字段均为字符串,缺失统一用空字符串表示,绝不使用nil
// 生命周期: 由解析级联构建完成后冻结,之后不再修改
type PinRecord struct {
	Keyword          string `json:"keyword"`            // 产生该记录的搜索关键词
	FilterLabel      string `json:"filter_label"`       // 筛选器标签(可选)
	SearchURL        string `json:"search_url"`         // 来源搜索页URL
	PinURL           string `json:"pin_url"`            // Pin详情页URL(去重键)
	PinID            string `json:"pin_id"`             // 从URL解析的Pin ID
	Title            string `json:"title"`              // 标题
	Description      string `json:"description"`        // 描述
	ImageURL         string `json:"image_url"`          // 主图URL
	ImageWidth       string `json:"image_width"`        // 主图宽度
	ImageHeight      string `json:"image_height"`       // 主图高度
	SaveCount        string `json:"save_count"`         // 收藏数(十进制整数字符串)
	CommentCount     string `json:"comment_count"`      // 评论数(十进制整数字符串)
	PinnerUsername   string `json:"pinner_username"`    // 发布者用户名
	PinnerFullname   string `json:"pinner_fullname"`    // 发布者显示名
	PinnerProfileURL string `json:"pinner_profile_url"` // 发布者主页URL
	BoardName        string `json:"board_name"`         // 所属Board名称
	BoardURL         string `json:"board_url"`          // 所属Board URL
	OutboundLink     string `json:"outbound_link"`      // 外部落地链接
	CreatedAt        string `json:"created_at"`         // 创建时间
}

// RecordColumns CSV导出的列名,顺序与字段声明顺序一致
var RecordColumns = []string{
	"keyword", "filter_label", "search_url", "pin_url", "pin_id",
	"title", "description", "image_url", "image_width", "image_height",
	"save_count", "comment_count",
	"pinner_username", "pinner_fullname", "pinner_profile_url",
	"board_name", "board_url", "outbound_link", "created_at",
}

// Row 按RecordColumns顺序返回字段值
func (r PinRecord) Row() []string {
	return []string{
		r.Keyword, r.FilterLabel, r.SearchURL, r.PinURL, r.PinID,
		r.Title, r.Description, r.ImageURL, r.ImageWidth, r.ImageHeight,
		r.SaveCount, r.CommentCount,
		r.PinnerUsername, r.PinnerFullname, r.PinnerProfileURL,
		r.BoardName, r.BoardURL, r.OutboundLink, r.CreatedAt,
	}
}

// NormalizePinURL 规范化Pin链接: 去掉查询串和片段,相对链接按站点根地址补全
// 非Pin链接(不含/pin/)返回空字符串
func NormalizePinURL(href string) string {
	if href == "" || !strings.Contains(href, "/pin/") {
		return ""
	}
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	if strings.HasPrefix(href, "/") {
		return PinBaseURL + href
	}
	if parsed, err := url.Parse(href); err != nil || parsed.Scheme == "" {
		return ""
	}
	return href
}

// ParsePinID 从Pin URL中提取数字ID,未匹配返回空字符串
func ParsePinID(pinURL string) string {
	m := pinIDRe.FindStringSubmatch(pinURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// DedupeRecords 按PinURL去重,保留首次出现的记录(稳定顺序,先见者胜)
func DedupeRecords(records []PinRecord) []PinRecord {
	seen := make(map[string]bool, len(records))
	out := make([]PinRecord, 0, len(records))
	for _, r := range records {
		if seen[r.PinURL] {
			continue
		}
		seen[r.PinURL] = true
		out = append(out, r)
	}
	return out
}

// KeywordTask 一个关键词及其抓取上限
type KeywordTask struct {
	Keyword string `json:"keyword"`
	Limit   int    `json:"limit"`
}

// FilterOption 搜索页上发现的一个筛选器(标签 + 搜索URL)
type FilterOption struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// SearchURLFor 构造关键词的搜索页URL
// 空格按原站点习惯编码为%20
func SearchURLFor(keyword string) string {
	return PinBaseURL + "/search/pins/?q=" + strings.ReplaceAll(keyword, " ", "%20")
}
