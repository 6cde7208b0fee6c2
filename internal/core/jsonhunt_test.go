package core

import (
	"testing"

	"github.com/tidwall/gjson"
)

func TestFindPinLike(t *testing.T) {
	doc := `{
		"a": {"id": "1", "title": "第一个候选"},
		"b": {"nested": {"id": "2", "grid_title": "目标Pin"}},
		"c": [{"id": "3"}]
	}`

	t.Run("命中提示ID", func(t *testing.T) {
		node, ok := FindPinLike(gjson.Parse(doc), "2")
		if !ok {
			t.Fatal("未找到节点")
		}
		if node.Get("grid_title").String() != "目标Pin" {
			t.Errorf("命中了错误的节点: %s", node.Raw)
		}
	})

	t.Run("提示未命中退回首个候选", func(t *testing.T) {
		node, ok := FindPinLike(gjson.Parse(doc), "999")
		if !ok {
			t.Fatal("未找到节点")
		}
		// id为3的对象缺少特征字段,不是候选
		id := node.Get("id").String()
		if id != "1" && id != "2" {
			t.Errorf("退回节点不是Pin候选: %s", node.Raw)
		}
	})

	t.Run("无提示返回首个候选", func(t *testing.T) {
		_, ok := FindPinLike(gjson.Parse(doc), "")
		if !ok {
			t.Fatal("未找到节点")
		}
	})

	t.Run("无候选", func(t *testing.T) {
		if _, ok := FindPinLike(gjson.Parse(`{"x": {"id": "5"}, "y": [1, 2]}`), ""); ok {
			t.Error("缺少特征字段的对象不应命中")
		}
	})

	t.Run("数组嵌套", func(t *testing.T) {
		node, ok := FindPinLike(gjson.Parse(`[[{"id": "7", "images": {}}]]`), "7")
		if !ok || node.Get("id").String() != "7" {
			t.Error("数组嵌套中的候选未命中")
		}
	})
}

func TestScanJSONChunks(t *testing.T) {
	script := `window.__init = {"id": "42", "title": "嵌在脚本里"}; var x = {"noise": 1};`

	chunks := scanJSONChunks(script, 10)
	if len(chunks) != 1 {
		t.Fatalf("片段数量 = %d, 期望 1 (噪音对象无键名线索)", len(chunks))
	}
	if gjson.Parse(chunks[0]).Get("id").String() != "42" {
		t.Errorf("提取的片段错误: %s", chunks[0])
	}
}

func TestExtractBalanced(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		start int
		want  string
		ok    bool
	}{
		{"简单对象", `{"a": 1}`, 0, `{"a": 1}`, true},
		{"嵌套对象", `{"a": {"b": 2}} extra`, 0, `{"a": {"b": 2}}`, true},
		{"字符串内花括号", `{"a": "x}y"}`, 0, `{"a": "x}y"}`, true},
		{"字符串内转义引号", `{"a": "x\"}"}`, 0, `{"a": "x\"}"}`, true},
		{"未闭合", `{"a": 1`, 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, ok := extractBalanced(tt.text, tt.start)
			if ok != tt.ok || got != tt.want {
				t.Errorf("extractBalanced(%q) = (%q, %v), 期望 (%q, %v)", tt.text, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestHuntScriptBlobs(t *testing.T) {
	session := newFakeSession()
	session.markup = `<html><head>
		<script type="application/json">{"id": "100", "images": {"orig": {"url": "https://i.pinimg.com/a.jpg"}}}</script>
		<script>var data = {"pinner": {"username": "alice"}, "id": "100"}; doSomething();</script>
		<script>console.log("no json here");</script>
	</head><body></body></html>`

	blobs := HuntScriptBlobs(session)
	if len(blobs) != 2 {
		t.Fatalf("JSON块数量 = %d, 期望 2", len(blobs))
	}
}
