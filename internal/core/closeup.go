package core

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/RecoveryAshes/PinHarvest/internal/models"
)

// closeupQueryName 详情接口的请求标识
const closeupQueryName = "CloseupDetailQuery"

// ExtractCloseup 从一个JSON块中提取详情数据节点
// 优先按标准形状取 response.data.v3GetPinQuery.data,
// 形状不符时深度搜索任意位置的 v3GetPinQuery 节点
func ExtractCloseup(blob gjson.Result) (gjson.Result, bool) {
	if blob.Get("requestParameters.name").String() == closeupQueryName {
		data := blob.Get("response.data.v3GetPinQuery.data")
		if data.IsObject() {
			return data, true
		}
	}

	stack := []gjson.Result{blob}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node.IsObject() {
			data := node.Get("v3GetPinQuery.data")
			if data.IsObject() {
				return data, true
			}
		}

		if node.IsObject() || node.IsArray() {
			node.ForEach(func(_, value gjson.Result) bool {
				if value.IsObject() || value.IsArray() {
					stack = append(stack, value)
				}
				return true
			})
		}
	}

	return gjson.Result{}, false
}

// imageTiers 图片规格降级顺序,三个维度必须取自同一规格
var imageTiers = []string{"orig", "564x", "474x", "236x"}

// counterBlocks 聚合计数所在的块名,按命名风格依次尝试
var counterBlocks = []string{"aggregatedPinData", "aggregated_pin_data"}

// ApplyCloseup 将详情数据映射到工作集,只填充仍为空的字段
func ApplyCloseup(ws *workingSet, data gjson.Result) {
	rec := &ws.rec

	ws.set(&rec.Title, firstString(data, "gridTitle", "grid_title", "title"))
	ws.set(&rec.Description, firstString(data, "closeupUnifiedDescription", "closeup_unified_description", "description"))
	ws.set(&rec.CreatedAt, firstString(data, "createdAt", "created_at"))

	// 聚合计数
	for _, block := range counterBlocks {
		agg := data.Get(block)
		if !agg.IsObject() {
			continue
		}
		ws.set(&rec.SaveCount, firstString(agg, "saveCount", "save_count"))
		ws.set(&rec.CommentCount, firstString(agg, "commentCount", "comment_count"))
	}
	// 旧字段回退
	ws.set(&rec.SaveCount, firstString(data, "repinCount", "repin_count"))
	ws.set(&rec.CommentCount, firstString(data, "commentCount", "comment_count"))

	// 发布者
	pinner := data.Get("pinner")
	if pinner.IsObject() {
		username := firstString(pinner, "username")
		ws.set(&rec.PinnerUsername, username)
		ws.set(&rec.PinnerFullname, firstString(pinner, "fullName", "full_name"))
		if username != "" {
			ws.set(&rec.PinnerProfileURL, models.PinBaseURL+"/"+username+"/")
		}
	}

	// 画板
	board := data.Get("board")
	if board.IsObject() {
		ws.set(&rec.BoardName, firstString(board, "name"))
		ws.set(&rec.BoardURL, composeBoardURL(board))
	}

	ws.set(&rec.OutboundLink, firstString(data, "link", "dominant_link", "dominantLink"))

	applyImageTiers(ws, data.Get("images"))
}

// applyImageTiers 按规格降级顺序填充图片三元组
// URL、宽、高取自同一规格,禁止跨规格混配
func applyImageTiers(ws *workingSet, images gjson.Result) {
	if !images.IsObject() {
		return
	}
	rec := &ws.rec
	if rec.ImageURL != "" {
		return
	}

	for _, tier := range imageTiers {
		img := images.Get(tier)
		if !img.IsObject() {
			continue
		}
		url := img.Get("url").String()
		if url == "" {
			continue
		}
		ws.set(&rec.ImageURL, url)
		ws.set(&rec.ImageWidth, img.Get("width").String())
		ws.set(&rec.ImageHeight, img.Get("height").String())
		return
	}
}

// composeBoardURL 生成画板完整链接
// 优先使用board.url相对路径,缺失时由 owner用户名/slug 拼接
func composeBoardURL(board gjson.Result) string {
	if u := board.Get("url").String(); u != "" {
		if strings.HasPrefix(u, "/") {
			return models.PinBaseURL + u
		}
		return u
	}

	owner := firstString(board.Get("owner"), "username")
	slug := firstString(board, "slug")
	if owner != "" && slug != "" {
		return models.PinBaseURL + "/" + owner + "/" + slug + "/"
	}
	return ""
}

// firstString 按顺序取首个非空字段的字符串值
func firstString(node gjson.Result, keys ...string) string {
	for _, key := range keys {
		v := node.Get(key)
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		s := v.String()
		if s != "" {
			return s
		}
	}
	return ""
}
