package crawlers

import (
	"context"
	"fmt"
	"time"

	"github.com/RecoveryAshes/PinHarvest/internal/models"
)

// fakeAnchor 内存页面中的一个链接元素
type fakeAnchor struct {
	href string
	text string
}

// fakeListingSession 模拟无限滚动列表页的内存会话
// 可见链接集合由已滚动次数决定
type fakeListingSession struct {
	hrefsAt func(scrolls int) []string // 滚动n次后可见的链接
	anchors map[string][]*fakeAnchor   // 其他选择器的静态元素

	scrolls  int
	extracts int
	navErr   error
}

func newFakeListingSession() *fakeListingSession {
	return &fakeListingSession{
		hrefsAt: func(int) []string { return nil },
		anchors: make(map[string][]*fakeAnchor),
	}
}

func (f *fakeListingSession) Navigate(_ context.Context, _ string) error { return f.navErr }

func (f *fakeListingSession) WaitUntilAny(_ []string, _ time.Duration) {}

func (f *fakeListingSession) QueryAll(selector string) []models.NodeRef {
	if selector == "a[href*='/pin/']" {
		f.extracts++
		hrefs := f.hrefsAt(f.scrolls)
		nodes := make([]models.NodeRef, 0, len(hrefs))
		for _, href := range hrefs {
			nodes = append(nodes, &fakeAnchor{href: href})
		}
		return nodes
	}

	nodes := make([]models.NodeRef, 0, len(f.anchors[selector]))
	for _, a := range f.anchors[selector] {
		nodes = append(nodes, a)
	}
	return nodes
}

func (f *fakeListingSession) QueryFirst(selector string) (models.NodeRef, bool) {
	all := f.QueryAll(selector)
	if len(all) == 0 {
		return nil, false
	}
	return all[0], true
}

func (f *fakeListingSession) ReadAttribute(node models.NodeRef, name string) string {
	if a, ok := node.(*fakeAnchor); ok && (name == "href" || name == "data-redirect-url") {
		return a.href
	}
	return ""
}

func (f *fakeListingSession) ReadText(node models.NodeRef) string {
	if a, ok := node.(*fakeAnchor); ok {
		return a.text
	}
	return ""
}

func (f *fakeListingSession) RunScript(_ string) (string, error) {
	f.scrolls++
	return "", nil
}

func (f *fakeListingSession) HTML() (string, error) { return "", nil }

func (f *fakeListingSession) CaptureLog() []models.CaptureEntry { return nil }

func (f *fakeListingSession) FetchResponseBody(requestID string) (models.ResponseBody, error) {
	return models.ResponseBody{}, fmt.Errorf("无此响应体 [%s]", requestID)
}

func (f *fakeListingSession) Close() error { return nil }
