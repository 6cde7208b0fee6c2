package crawlers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/RecoveryAshes/PinHarvest/internal/models"
	"github.com/RecoveryAshes/PinHarvest/internal/utils"
)

// maxCaptureEntries 捕获日志最大累积条数,超出后丢弃最旧的记录
const maxCaptureEntries = 5000

// stealthScript 弱化自动化指纹,避免被前端脚本直接识别
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
window.chrome = window.chrome || { runtime: {} };
`

// RodSession 基于受控浏览器的页面会话
// 实现 models.PageSession 接口
type RodSession struct {
	browser *rod.Browser
	launch  *launcher.Launcher
	page    *rod.Page
	headers models.HeaderProvider

	mu      sync.Mutex
	capture []models.CaptureEntry
	methods map[string]string
	fetched map[string]bool
}

// NewRodSession 启动受控浏览器并创建页面会话
func NewRodSession(config models.CrawlConfig, headers models.HeaderProvider) (*RodSession, error) {
	l := launcher.New().
		Headless(config.Headless).
		NoSandbox(true).
		Set("disable-gpu").
		Set("disable-blink-features", "AutomationControlled").
		Set("window-size", "1400,1000")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("启动浏览器失败: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("连接浏览器失败: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		l.Cleanup()
		return nil, fmt.Errorf("创建页面失败: %w", err)
	}

	session := &RodSession{
		browser: browser,
		launch:  l,
		page:    page,
		headers: headers,
		methods: make(map[string]string),
		fetched: make(map[string]bool),
	}

	if err := session.setup(); err != nil {
		_ = session.Close()
		return nil, err
	}

	return session, nil
}

// setup 注入反检测脚本、挂载请求头拦截并开始累积网络捕获日志
func (s *RodSession) setup() error {
	if _, err := (proto.PageAddScriptToEvaluateOnNewDocument{Source: stealthScript}).Call(s.page); err != nil {
		return fmt.Errorf("注入页面脚本失败: %w", err)
	}

	if err := (proto.NetworkEnable{}).Call(s.page); err != nil {
		return fmt.Errorf("启用网络监听失败: %w", err)
	}

	// 请求头拦截: 所有出站请求统一应用合并后的头部
	merged, err := s.headers.GetHeaders()
	if err != nil {
		return err
	}
	router := s.page.HijackRequests()
	if err := router.Add("*", "", func(hijack *rod.Hijack) {
		for name, values := range merged {
			if len(values) > 0 {
				hijack.Request.Req().Header.Set(name, values[0])
			}
		}
		hijack.ContinueRequest(&proto.FetchContinueRequest{})
	}); err != nil {
		return fmt.Errorf("配置请求拦截失败: %w", err)
	}
	go router.Run()

	// 网络事件累积: 记录方法与响应元数据,正文按需拉取
	go s.page.EachEvent(
		func(e *proto.NetworkRequestWillBeSent) {
			s.mu.Lock()
			s.methods[string(e.RequestID)] = e.Request.Method
			s.mu.Unlock()
		},
		func(e *proto.NetworkResponseReceived) {
			s.mu.Lock()
			entry := models.CaptureEntry{
				RequestID: string(e.RequestID),
				URL:       e.Response.URL,
				Method:    s.methods[string(e.RequestID)],
				MIMEType:  e.Response.MIMEType,
			}
			delete(s.methods, string(e.RequestID))
			s.capture = append(s.capture, entry)
			if len(s.capture) > maxCaptureEntries {
				s.capture = s.capture[len(s.capture)-maxCaptureEntries:]
			}
			s.mu.Unlock()
		},
	)()

	return nil
}

// Navigate 导航到目标URL并等待文档加载完成
func (s *RodSession) Navigate(ctx context.Context, url string) error {
	page := s.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("导航失败 [%s]: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		// 重资源页面load事件可能迟迟不触发,降级继续
		utils.Debugf("等待页面加载超时 [%s]: %v", url, err)
	}
	return nil
}

// WaitUntilAny 轮询等待任一选择器出现,超时不报错直接返回
func (s *RodSession) WaitUntilAny(selectors []string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		for _, selector := range selectors {
			has, _, err := s.page.Has(selector)
			if err == nil && has {
				return
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	utils.Debugf("页面就绪等待超时: %v", selectors)
}

// QueryAll 查询所有匹配元素,不等待
func (s *RodSession) QueryAll(selector string) []models.NodeRef {
	elements, err := s.page.Elements(selector)
	if err != nil {
		return nil
	}
	nodes := make([]models.NodeRef, 0, len(elements))
	for _, el := range elements {
		nodes = append(nodes, el)
	}
	return nodes
}

// QueryFirst 查询首个匹配元素,不等待
func (s *RodSession) QueryFirst(selector string) (models.NodeRef, bool) {
	elements, err := s.page.Elements(selector)
	if err != nil || len(elements) == 0 {
		return nil, false
	}
	return elements[0], true
}

// ReadAttribute 读取元素属性
// 优先读DOM属性(href等会被解析为绝对地址),回退到标记属性
func (s *RodSession) ReadAttribute(node models.NodeRef, name string) string {
	el, ok := node.(*rod.Element)
	if !ok {
		return ""
	}

	if prop, err := el.Property(name); err == nil {
		if v := prop.Str(); v != "" {
			return v
		}
	}
	if attr, err := el.Attribute(name); err == nil && attr != nil {
		return *attr
	}
	return ""
}

// ReadText 读取元素文本内容,对script等非可见元素同样有效
func (s *RodSession) ReadText(node models.NodeRef) string {
	el, ok := node.(*rod.Element)
	if !ok {
		return ""
	}
	prop, err := el.Property("textContent")
	if err != nil {
		return ""
	}
	return prop.Str()
}

// RunScript 执行页面脚本并返回字符串结果
func (s *RodSession) RunScript(js string) (string, error) {
	result, err := s.page.Eval(js)
	if err != nil {
		return "", fmt.Errorf("执行页面脚本失败: %w", err)
	}
	return result.Value.Str(), nil
}

// HTML 返回当前页面完整标记
func (s *RodSession) HTML() (string, error) {
	return s.page.HTML()
}

// CaptureLog 返回按时间顺序累积的网络捕获日志快照
func (s *RodSession) CaptureLog() []models.CaptureEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]models.CaptureEntry, len(s.capture))
	copy(snapshot, s.capture)
	return snapshot
}

// FetchResponseBody 拉取指定响应的正文
// 每条记录只拉取一次,重复拉取直接报错
func (s *RodSession) FetchResponseBody(requestID string) (models.ResponseBody, error) {
	s.mu.Lock()
	if s.fetched[requestID] {
		s.mu.Unlock()
		return models.ResponseBody{}, fmt.Errorf("响应体已拉取过 [%s]", requestID)
	}
	s.fetched[requestID] = true
	s.mu.Unlock()

	result, err := proto.NetworkGetResponseBody{
		RequestID: proto.NetworkRequestID(requestID),
	}.Call(s.page)
	if err != nil {
		return models.ResponseBody{}, fmt.Errorf("拉取响应体失败 [%s]: %w", requestID, err)
	}

	return models.ResponseBody{Text: result.Body, Encoded: result.Base64Encoded}, nil
}

// Close 关闭会话并释放浏览器资源
func (s *RodSession) Close() error {
	err := s.browser.Close()
	s.launch.Cleanup()
	return err
}
