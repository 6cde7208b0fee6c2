package core

import (
	"context"
	"fmt"
	"time"

	"github.com/RecoveryAshes/PinHarvest/internal/models"
)

// fakeNode 内存页面中的一个元素
type fakeNode struct {
	text  string
	attrs map[string]string
}

// fakeSession 内存实现的页面会话,供解析逻辑测试使用
type fakeSession struct {
	markup    string
	nodes     map[string][]*fakeNode // 选择器 -> 元素列表
	scripts   map[string]string      // 脚本 -> 返回值
	entries   []models.CaptureEntry
	bodies    map[string]models.ResponseBody
	fetched   map[string]int // 响应体拉取次数
	navErr    error
	navigated []string
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		nodes:   make(map[string][]*fakeNode),
		scripts: make(map[string]string),
		bodies:  make(map[string]models.ResponseBody),
		fetched: make(map[string]int),
	}
}

func (f *fakeSession) Navigate(_ context.Context, url string) error {
	f.navigated = append(f.navigated, url)
	return f.navErr
}

func (f *fakeSession) WaitUntilAny(_ []string, _ time.Duration) {}

func (f *fakeSession) QueryAll(selector string) []models.NodeRef {
	nodes := make([]models.NodeRef, 0, len(f.nodes[selector]))
	for _, n := range f.nodes[selector] {
		nodes = append(nodes, n)
	}
	return nodes
}

func (f *fakeSession) QueryFirst(selector string) (models.NodeRef, bool) {
	if list := f.nodes[selector]; len(list) > 0 {
		return list[0], true
	}
	return nil, false
}

func (f *fakeSession) ReadAttribute(node models.NodeRef, name string) string {
	if n, ok := node.(*fakeNode); ok {
		return n.attrs[name]
	}
	return ""
}

func (f *fakeSession) ReadText(node models.NodeRef) string {
	if n, ok := node.(*fakeNode); ok {
		return n.text
	}
	return ""
}

func (f *fakeSession) RunScript(js string) (string, error) {
	return f.scripts[js], nil
}

func (f *fakeSession) HTML() (string, error) {
	return f.markup, nil
}

func (f *fakeSession) CaptureLog() []models.CaptureEntry {
	return f.entries
}

func (f *fakeSession) FetchResponseBody(requestID string) (models.ResponseBody, error) {
	f.fetched[requestID]++
	if f.fetched[requestID] > 1 {
		return models.ResponseBody{}, fmt.Errorf("响应体已拉取过 [%s]", requestID)
	}
	body, ok := f.bodies[requestID]
	if !ok {
		return models.ResponseBody{}, fmt.Errorf("无此响应体 [%s]", requestID)
	}
	return body, nil
}

func (f *fakeSession) Close() error { return nil }
