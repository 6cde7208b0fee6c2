package core

import (
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/net/html"

	"github.com/RecoveryAshes/PinHarvest/internal/models"
	"github.com/RecoveryAshes/PinHarvest/internal/utils"
)

// pinLikeKeys Pin对象的特征字段,命中id加其中之一即视为候选
var pinLikeKeys = []string{"images", "grid_title", "gridTitle", "title"}

// isPinLike 判断节点是否形如一个Pin对象
func isPinLike(node gjson.Result) bool {
	if !node.IsObject() {
		return false
	}
	if !node.Get("id").Exists() {
		return false
	}
	for _, key := range pinLikeKeys {
		if node.Get(key).Exists() {
			return true
		}
	}
	return false
}

// FindPinLike 在任意JSON结构中深度搜索Pin对象
// 显式栈遍历,避免深层嵌套导致的递归爆栈
// idHint非空时优先返回id匹配的节点,扫描完仍未命中则退回首个候选
func FindPinLike(root gjson.Result, idHint string) (gjson.Result, bool) {
	var fallback gjson.Result
	haveFallback := false

	stack := []gjson.Result{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if isPinLike(node) {
			if idHint != "" && node.Get("id").String() == idHint {
				return node, true
			}
			if !haveFallback {
				fallback = node
				haveFallback = true
				if idHint == "" {
					return fallback, true
				}
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

	return fallback, haveFallback
}

// blobKeyHints 脚本片段扫描的键名线索,无任一线索的片段直接跳过
var blobKeyHints = []string{
	`"id"`,
	`"images"`,
	`"pinner"`,
	`"board"`,
	`"commentCount"`,
	`"saveCount"`,
	`"CloseupDetailQuery"`,
}

// maxScriptBlobs 单页脚本扫描收集的JSON块上限
const maxScriptBlobs = 64

// HuntScriptBlobs 暴力扫描页面所有脚本标签,收集可解析的JSON块
// 两条路径: 整段脚本本身是JSON时直接收录;否则在脚本文本中
// 提取括号配平的候选片段,按键名线索过滤后解析
func HuntScriptBlobs(session models.PageSession) []gjson.Result {
	markup, err := session.HTML()
	if err != nil {
		utils.Warnf("读取页面标记失败: %v", err)
		return nil
	}

	blobs := make([]gjson.Result, 0)
	for _, text := range collectScriptTexts(markup) {
		if len(blobs) >= maxScriptBlobs {
			break
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		// 整段脚本即JSON (如 application/json 数据岛)
		if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
			if hasBlobHint(text) && gjson.Valid(text) {
				blobs = append(blobs, gjson.Parse(text))
				continue
			}
		}

		// 脚本内嵌JSON片段
		for _, chunk := range scanJSONChunks(text, maxScriptBlobs-len(blobs)) {
			blobs = append(blobs, gjson.Parse(chunk))
		}
	}

	utils.Debugf("脚本扫描收集到 %d 个JSON块", len(blobs))
	return blobs
}

// collectScriptTexts 解析页面标记,返回所有script节点的文本内容
func collectScriptTexts(markup string) []string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	texts := make([]string, 0)
	stack := []*html.Node{doc}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node.Type == html.ElementNode && node.Data == "script" {
			var sb strings.Builder
			for child := node.FirstChild; child != nil; child = child.NextSibling {
				if child.Type == html.TextNode {
					sb.WriteString(child.Data)
				}
			}
			if sb.Len() > 0 {
				texts = append(texts, sb.String())
			}
			continue
		}

		for child := node.FirstChild; child != nil; child = child.NextSibling {
			stack = append(stack, child)
		}
	}

	return texts
}

// hasBlobHint 检查文本是否包含任一键名线索
func hasBlobHint(text string) bool {
	for _, hint := range blobKeyHints {
		if strings.Contains(text, hint) {
			return true
		}
	}
	return false
}

// scanJSONChunks 在脚本文本中提取括号配平的JSON对象片段
// 只在 `{"` 处起扫,片段需包含键名线索且通过gjson校验
func scanJSONChunks(text string, limit int) []string {
	chunks := make([]string, 0)
	offset := 0
	for len(chunks) < limit {
		idx := strings.Index(text[offset:], `{"`)
		if idx < 0 {
			break
		}
		start := offset + idx

		chunk, end, ok := extractBalanced(text, start)
		if !ok {
			offset = start + 1
			continue
		}

		if hasBlobHint(chunk) && gjson.Valid(chunk) {
			chunks = append(chunks, chunk)
			offset = end
		} else {
			offset = start + 1
		}
	}
	return chunks
}

// extractBalanced 从start处提取括号配平的片段,正确跳过字符串与转义
func extractBalanced(text string, start int) (string, int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if escaped {
			escaped = false
			continue
		}

		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1], i + 1, true
				}
			}
		}
	}

	return "", start, false
}
