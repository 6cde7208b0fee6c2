package core

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"testing"

	"github.com/RecoveryAshes/PinHarvest/internal/models"
)

func gzipBase64(t *testing.T, text string) string {
	t.Helper()
	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)
	if _, err := writer.Write([]byte(text)); err != nil {
		t.Fatalf("压缩失败: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("压缩失败: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestCaptureMinerMinePin(t *testing.T) {
	session := newFakeSession()
	session.entries = []models.CaptureEntry{
		{RequestID: "r1", URL: "https://www.pinterest.com/static/app.js", MIMEType: "application/javascript"},
		{RequestID: "r2", URL: "https://www.pinterest.com/resource/SearchResource/get/", MIMEType: "application/json"},
		{RequestID: "r3", URL: "https://www.pinterest.com/resource/Noise/get/", MIMEType: "application/json"},
	}
	session.bodies = map[string]models.ResponseBody{
		"r2": {Text: `{"results": [{"id": "42", "grid_title": "捕获到的Pin"}]}`},
		"r3": {Text: `<html>not json</html>`},
	}

	miner := NewCaptureMiner(session, 600)
	node, ok := miner.MinePin("42")
	if !ok {
		t.Fatal("未从捕获日志挖到Pin")
	}
	if node.Get("grid_title").String() != "捕获到的Pin" {
		t.Errorf("挖到错误的节点: %s", node.Raw)
	}

	// 非JSON的MIME类型不得拉取响应体
	if session.fetched["r1"] != 0 {
		t.Error("非JSON响应不应拉取正文")
	}
}

func TestCaptureMinerIDMismatch(t *testing.T) {
	session := newFakeSession()
	session.entries = []models.CaptureEntry{
		{RequestID: "r1", URL: "https://www.pinterest.com/resource/get/", MIMEType: "application/json"},
	}
	session.bodies = map[string]models.ResponseBody{
		"r1": {Text: `{"id": "7", "title": "别的Pin"}`},
	}

	miner := NewCaptureMiner(session, 600)
	if _, ok := miner.MinePin("42"); ok {
		t.Error("给定提示ID时不得返回不匹配的Pin")
	}
}

func TestCaptureMinerCloseupShapeFirst(t *testing.T) {
	closeupBody := `{
		"requestParameters": {"name": "CloseupDetailQuery"},
		"response": {"data": {"v3GetPinQuery": {"data": {"entityId": "9", "gridTitle": "详情数据"}}}}
	}`

	session := newFakeSession()
	session.entries = []models.CaptureEntry{
		{RequestID: "r1", URL: "https://www.pinterest.com/resource/get/", MIMEType: "application/json"},
		{RequestID: "r2", URL: "https://www.pinterest.com/api/graphql/", MIMEType: "application/json"},
	}
	session.bodies = map[string]models.ResponseBody{
		"r1": {Text: `{"id": "9", "title": "列表数据"}`},
		"r2": {Text: gzipBase64(t, closeupBody), Encoded: true},
	}

	miner := NewCaptureMiner(session, 600)

	node, ok := miner.MinePin("")
	if !ok {
		t.Fatal("未挖到任何数据")
	}
	// 日志从新到旧扫描,且详情形状优先于Pin形节点
	if node.Get("gridTitle").String() != "详情数据" {
		t.Errorf("未优先返回详情数据: %s", node.Raw)
	}

	closeup, ok := miner.MineCloseup()
	if !ok {
		t.Fatal("未挖到详情数据")
	}
	if closeup.Get("entityId").String() != "9" {
		t.Errorf("详情节点错误: %s", closeup.Raw)
	}

	// 两次挖掘共享一次性扫描,响应体只拉取一次
	for id, count := range session.fetched {
		if count > 1 {
			t.Errorf("响应体 [%s] 被拉取了 %d 次", id, count)
		}
	}
}

func TestCaptureMinerWindow(t *testing.T) {
	session := newFakeSession()
	session.entries = []models.CaptureEntry{
		{RequestID: "old", URL: "https://www.pinterest.com/resource/old/", MIMEType: "application/json"},
		{RequestID: "new", URL: "https://www.pinterest.com/resource/new/", MIMEType: "application/json"},
	}
	session.bodies = map[string]models.ResponseBody{
		"old": {Text: `{"id": "1", "title": "窗口外"}`},
		"new": {Text: `{"id": "2", "title": "窗口内"}`},
	}

	// 窗口为1时只检查最新一条
	miner := NewCaptureMiner(session, 1)
	node, ok := miner.MinePin("")
	if !ok || node.Get("id").String() != "2" {
		t.Errorf("窗口裁剪错误: %v", node.Raw)
	}
	if session.fetched["old"] != 0 {
		t.Error("窗口外的响应不应拉取正文")
	}
}

func TestDecodePayload(t *testing.T) {
	t.Run("明文JSON", func(t *testing.T) {
		text, ok := decodePayload(models.ResponseBody{Text: `{"a": 1}`})
		if !ok || text != `{"a": 1}` {
			t.Errorf("明文解析失败: %q, %v", text, ok)
		}
	})

	t.Run("base64加gzip", func(t *testing.T) {
		text, ok := decodePayload(models.ResponseBody{Text: gzipBase64(t, `{"b": 2}`), Encoded: true})
		if !ok || text != `{"b": 2}` {
			t.Errorf("解压失败: %q, %v", text, ok)
		}
	})

	t.Run("非JSON拒绝", func(t *testing.T) {
		if _, ok := decodePayload(models.ResponseBody{Text: "plain text"}); ok {
			t.Error("非JSON文本不应通过")
		}
	})

	t.Run("非法base64", func(t *testing.T) {
		if _, ok := decodePayload(models.ResponseBody{Text: "!!!", Encoded: true}); ok {
			t.Error("非法base64不应通过")
		}
	})

	t.Run("JSON数组", func(t *testing.T) {
		text, ok := decodePayload(models.ResponseBody{Text: `[1, 2, 3]`})
		if !ok || text != `[1, 2, 3]` {
			t.Errorf("数组解析失败: %q, %v", text, ok)
		}
	})
}
