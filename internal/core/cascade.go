package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/RecoveryAshes/PinHarvest/internal/models"
	"github.com/RecoveryAshes/PinHarvest/internal/utils"
)

// workingSet 解析过程中的可变字段集
// 字段只能由空变为非空,先到的数据源胜出
type workingSet struct {
	rec models.PinRecord
}

// set 仅在字段仍为空时写入
func (w *workingSet) set(field *string, value string) {
	if *field != "" {
		return
	}
	value = strings.TrimSpace(value)
	if value != "" {
		*field = value
	}
}

// pinReadySelectors 详情页就绪判定的候选选择器
var pinReadySelectors = []string{
	"script#__PWS_DATA__",
	"div[data-test-id='pin']",
	"img",
}

// Resolver 对单个Pin详情页执行多级解析
// 各级数据源可信度递减,后级只补前级留下的空字段,
// 除导航失败外总会产出一条记录
type Resolver struct {
	session models.PageSession
	config  models.CrawlConfig

	miner       *CaptureMiner
	blobs       []gjson.Result
	blobsLoaded bool
}

// NewResolver 创建解析器,每个详情页使用独立实例
func NewResolver(session models.PageSession, config models.CrawlConfig) *Resolver {
	return &Resolver{
		session: session,
		config:  config,
		miner:   NewCaptureMiner(session, config.CaptureWindow),
	}
}

// scriptBlobs 懒加载脚本JSON块,同一页面只扫描一次
func (r *Resolver) scriptBlobs() []gjson.Result {
	if !r.blobsLoaded {
		r.blobs = HuntScriptBlobs(r.session)
		r.blobsLoaded = true
	}
	return r.blobs
}

// Resolve 解析单个Pin详情页为记录
// 解析链: 内嵌JSON -> 网络捕获 -> 脚本暴力扫描 -> 详情数据补全 -> DOM兜底 -> 计数归一化
func (r *Resolver) Resolve(ctx context.Context, pinURL, keyword, filterLabel, searchURL string) (models.PinRecord, error) {
	ws := &workingSet{
		rec: models.PinRecord{
			Keyword:     keyword,
			FilterLabel: filterLabel,
			SearchURL:   searchURL,
			PinURL:      pinURL,
			PinID:       models.ParsePinID(pinURL),
		},
	}

	if err := r.session.Navigate(ctx, pinURL); err != nil {
		return models.PinRecord{}, fmt.Errorf("打开详情页失败 [%s]: %w", pinURL, err)
	}
	r.session.WaitUntilAny(pinReadySelectors, time.Duration(r.config.WaitTime)*time.Second)

	pinID := ws.rec.PinID

	// 第一级: 页面内嵌数据岛
	r.applyInlineJSON(ws, pinID)

	// 第二级: 网络捕获日志,仅在核心字段仍缺失时启用
	if r.coreFieldsMissing(ws) {
		if node, ok := r.miner.MinePin(pinID); ok {
			ApplyCloseup(ws, node)
			utils.Debugf("捕获日志命中Pin数据 [%s]", pinID)
		}
	}

	// 第三级: 脚本标签暴力扫描
	if r.identityFieldsMissing(ws) {
		r.applyScriptBlobs(ws, pinID)
	}

	// 第四级: 详情数据无条件补全,各来源的详情节点字段最全
	if data, ok := r.closeupFromAny(); ok {
		ApplyCloseup(ws, data)
	}

	// 第五级: DOM与meta兜底
	applyDOMFallback(ws, r.session)

	// 第六级: 计数字段归一化
	normalizeCounters(ws)

	return ws.rec, nil
}

// applyInlineJSON 解析内嵌数据岛并填充字段
func (r *Resolver) applyInlineJSON(ws *workingSet, pinID string) {
	node, ok := r.session.QueryFirst("script#__PWS_DATA__")
	if !ok {
		return
	}

	text := strings.TrimSpace(r.session.ReadText(node))
	if text == "" || !gjson.Valid(text) {
		return
	}

	if pin, found := FindPinLike(gjson.Parse(text), pinID); found {
		ApplyCloseup(ws, pin)
		utils.Debugf("内嵌数据岛命中Pin数据 [%s]", pinID)
	}
}

// applyScriptBlobs 扫描脚本JSON块,详情形状优先,其次为Pin形节点
func (r *Resolver) applyScriptBlobs(ws *workingSet, pinID string) {
	for _, blob := range r.scriptBlobs() {
		if data, ok := ExtractCloseup(blob); ok {
			ApplyCloseup(ws, data)
			return
		}
		if node, ok := FindPinLike(blob, pinID); ok {
			if pinID != "" && node.Get("id").String() != pinID {
				continue
			}
			ApplyCloseup(ws, node)
			return
		}
	}
}

// closeupFromAny 从捕获日志或脚本块中取详情数据节点
func (r *Resolver) closeupFromAny() (gjson.Result, bool) {
	if data, ok := r.miner.MineCloseup(); ok {
		return data, true
	}
	for _, blob := range r.scriptBlobs() {
		if data, ok := ExtractCloseup(blob); ok {
			return data, true
		}
	}
	return gjson.Result{}, false
}

// coreFieldsMissing 判断是否仍缺少任何核心字段
func (r *Resolver) coreFieldsMissing(ws *workingSet) bool {
	rec := &ws.rec
	return rec.PinnerUsername == "" && rec.BoardName == "" &&
		rec.ImageURL == "" && rec.SaveCount == ""
}

// identityFieldsMissing 判断是否仍缺少归属与图片字段
func (r *Resolver) identityFieldsMissing(ws *workingSet) bool {
	rec := &ws.rec
	return rec.PinnerUsername == "" && rec.BoardName == "" && rec.ImageURL == ""
}

// normalizeCounters 将非纯数字的计数文本还原为整数字符串
// 还原失败时清空字段,保证输出只含数字或空
func normalizeCounters(ws *workingSet) {
	rec := &ws.rec
	rec.SaveCount = normalizeCounter(rec.SaveCount)
	rec.CommentCount = normalizeCounter(rec.CommentCount)
}

// normalizeCounter 归一化单个计数值
func normalizeCounter(value string) string {
	if value == "" {
		return ""
	}
	if isDigits(value) {
		return value
	}
	return utils.ParseCompactNumber(value)
}

// isDigits 判断字符串是否为纯数字
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
