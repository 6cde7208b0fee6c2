package core

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"encoding/base64"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/tidwall/gjson"

	"github.com/RecoveryAshes/PinHarvest/internal/models"
	"github.com/RecoveryAshes/PinHarvest/internal/utils"
)

// DefaultCaptureWindow 默认只检查捕获日志末尾的条数
const DefaultCaptureWindow = 600

// CaptureMiner 从网络捕获日志中挖掘JSON载荷
// 响应体每条只能成功拉取一次,因此首次挖掘时一次性扫描
// 并缓存全部可解析载荷,后续查询复用缓存
type CaptureMiner struct {
	session models.PageSession
	window  int

	scanned  bool
	payloads []gjson.Result // 按新到旧排序
}

// NewCaptureMiner 创建捕获日志挖掘器
func NewCaptureMiner(session models.PageSession, window int) *CaptureMiner {
	if window <= 0 {
		window = DefaultCaptureWindow
	}
	return &CaptureMiner{session: session, window: window}
}

// scan 一次性扫描捕获日志,解码并缓存所有JSON载荷
func (m *CaptureMiner) scan() {
	if m.scanned {
		return
	}
	m.scanned = true

	entries := m.session.CaptureLog()
	if len(entries) > m.window {
		entries = entries[len(entries)-m.window:]
	}

	// 新响应优先,详情接口的响应通常在日志末尾
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		if !strings.Contains(strings.ToLower(entry.MIMEType), "json") {
			continue
		}

		body, err := m.session.FetchResponseBody(entry.RequestID)
		if err != nil {
			utils.Debugf("拉取响应体失败 [%s]: %v", entry.URL, err)
			continue
		}

		text, ok := decodePayload(body)
		if !ok {
			continue
		}
		m.payloads = append(m.payloads, gjson.Parse(text))
	}

	utils.Debugf("捕获日志扫描完成,缓存 %d 个JSON载荷", len(m.payloads))
}

// MinePin 在捕获的载荷中挖掘Pin对象
// 每个载荷先按详情接口形状匹配,命中立即返回;
// 否则深度搜索Pin形节点,给定idHint时要求id严格匹配
func (m *CaptureMiner) MinePin(idHint string) (gjson.Result, bool) {
	m.scan()

	for _, payload := range m.payloads {
		if data, ok := ExtractCloseup(payload); ok {
			return data, true
		}

		node, ok := FindPinLike(payload, idHint)
		if !ok {
			continue
		}
		if idHint != "" && node.Get("id").String() != idHint {
			continue
		}
		return node, true
	}

	return gjson.Result{}, false
}

// MineCloseup 在捕获的载荷中挖掘详情数据节点
func (m *CaptureMiner) MineCloseup() (gjson.Result, bool) {
	m.scan()

	for _, payload := range m.payloads {
		if data, ok := ExtractCloseup(payload); ok {
			return data, true
		}
	}
	return gjson.Result{}, false
}

// decodePayload 解码响应体为JSON文本
// base64解码后依次尝试brotli、gzip、deflate解压,
// 最后校验UTF-8并作廉价的首字符过滤
func decodePayload(body models.ResponseBody) (string, bool) {
	raw := []byte(body.Text)
	if body.Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body.Text)
		if err != nil {
			return "", false
		}
		raw = decoded
	}

	raw = tryDecompress(raw)

	text := strings.TrimSpace(strings.ToValidUTF8(string(raw), "�"))
	if !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "[") {
		return "", false
	}
	if !gjson.Valid(text) {
		return "", false
	}
	return text, true
}

// tryDecompress 尝试解压数据,已是明文JSON时原样返回
// 解压结果同样要求形如JSON,避免误解压明文
func tryDecompress(data []byte) []byte {
	if looksLikeJSON(data) {
		return data
	}

	if out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data))); err == nil && looksLikeJSON(out) {
		return out
	}

	if reader, err := gzip.NewReader(bytes.NewReader(data)); err == nil {
		if out, err := io.ReadAll(reader); err == nil && looksLikeJSON(out) {
			return out
		}
	}

	if out, err := io.ReadAll(flate.NewReader(bytes.NewReader(data))); err == nil && looksLikeJSON(out) {
		return out
	}

	return data
}

// looksLikeJSON 廉价判断数据是否以JSON起始符开头
func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}
