package models

import (
	"context"
	"time"
)

// NodeRef 页面元素句柄,由具体会话实现承载
type NodeRef interface{}

// CaptureEntry 网络捕获日志中的一条响应记录
type CaptureEntry struct {
	RequestID string // 响应体拉取凭据
	URL       string // 请求URL
	Method    string // HTTP方法
	MIMEType  string // 响应MIME类型
}

// ResponseBody 拉取到的响应正文
type ResponseBody struct {
	Text    string // 正文内容
	Encoded bool   // 是否为base64编码
}

// PageSession 抽象一个受控的浏览器页面会话。
// 所有解析逻辑只依赖该接口,便于在测试中替换为内存实现。
type PageSession interface {
	// Navigate 导航到目标URL并等待文档加载
	Navigate(ctx context.Context, url string) error

	// WaitUntilAny 等待任一选择器出现,超时不报错直接继续
	WaitUntilAny(selectors []string, timeout time.Duration)

	// QueryAll 查询所有匹配元素
	QueryAll(selector string) []NodeRef

	// QueryFirst 查询首个匹配元素
	QueryFirst(selector string) (NodeRef, bool)

	// ReadAttribute 读取元素属性,属性缺失返回空串
	ReadAttribute(node NodeRef, name string) string

	// ReadText 读取元素可见文本
	ReadText(node NodeRef) string

	// RunScript 执行页面脚本并返回字符串结果
	RunScript(js string) (string, error)

	// HTML 返回当前页面完整标记
	HTML() (string, error)

	// CaptureLog 返回按时间顺序累积的网络捕获日志
	CaptureLog() []CaptureEntry

	// FetchResponseBody 拉取指定响应的正文,每条记录只能成功拉取一次
	FetchResponseBody(requestID string) (ResponseBody, error)

	// Close 关闭会话并释放浏览器资源
	Close() error
}
