package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TaskStatus 任务状态
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"   // 待执行
	TaskStatusRunning   TaskStatus = "running"   // 执行中
	TaskStatusCompleted TaskStatus = "completed" // 已完成
	TaskStatusFailed    TaskStatus = "failed"    // 失败
	TaskStatusCancelled TaskStatus = "cancelled" // 已取消
)

// TaskStats 任务统计
type TaskStats struct {
	Keywords      int     `json:"keywords"`       // 处理的关键词数
	Filters       int     `json:"filters"`        // 处理的筛选器数
	ListedPins    int     `json:"listed_pins"`    // 列表页发现的Pin数
	ResolvedPins  int     `json:"resolved_pins"`  // 成功解析的Pin数
	FailedPins    int     `json:"failed_pins"`    // 解析失败跳过的Pin数
	DuplicatePins int     `json:"duplicate_pins"` // 最终去重丢弃的记录数
	Duration      float64 `json:"duration"`       // 总耗时(秒)
}

// CrawlConfig 抓取配置
type CrawlConfig struct {
	DefaultLimit    int     `json:"default_limit" mapstructure:"default_limit"`       // 每关键词默认抓取上限 (默认:40)
	ScrollDelay     float64 `json:"scroll_delay" mapstructure:"scroll_delay"`         // 滚动间隔(秒) (默认:1.0)
	WaitTime        int     `json:"wait_time" mapstructure:"wait_time"`               // 页面就绪等待上限(秒) (默认:12)
	Headless        bool    `json:"headless" mapstructure:"headless"`                 // 无头模式 (默认:true)
	DiscoverFilters bool    `json:"discover_filters" mapstructure:"discover_filters"` // 是否发现并遍历搜索筛选器
	CaptureWindow   int     `json:"capture_window" mapstructure:"capture_window"`     // 网络捕获日志检查窗口(条) (默认:600)
}

// Validate 验证配置
func (c *CrawlConfig) Validate() error {
	if c.DefaultLimit < 1 || c.DefaultLimit > 10000 {
		return fmt.Errorf("抓取上限必须在1-10000之间")
	}
	if c.ScrollDelay < 0.1 || c.ScrollDelay > 10 {
		return fmt.Errorf("滚动间隔必须在0.1-10秒之间")
	}
	if c.WaitTime < 1 || c.WaitTime > 60 {
		return fmt.Errorf("等待时间必须在1-60秒之间")
	}
	if c.CaptureWindow < 1 || c.CaptureWindow > 10000 {
		return fmt.Errorf("捕获窗口必须在1-10000条之间")
	}
	return nil
}

// ScrapeTask 一次完整抓取运行
type ScrapeTask struct {
	// 基本信息
	ID          string     `json:"id"`                     // 任务唯一ID (UUID)
	CreatedAt   time.Time  `json:"created_at"`             // 创建时间
	StartedAt   *time.Time `json:"started_at,omitempty"`   // 开始时间
	CompletedAt *time.Time `json:"completed_at,omitempty"` // 完成时间

	// 输入
	Keywords []KeywordTask `json:"keywords"` // 关键词列表
	Config   CrawlConfig   `json:"config"`   // 抓取配置

	// 执行状态
	Status TaskStatus `json:"status"`

	// 统计信息
	Stats TaskStats `json:"stats"`

	// 错误信息
	ErrorMessage string `json:"error_message,omitempty"`
}

// NewScrapeTask 创建新任务
func NewScrapeTask(keywords []KeywordTask, config CrawlConfig) (*ScrapeTask, error) {
	if len(keywords) == 0 {
		return nil, fmt.Errorf("关键词列表为空")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &ScrapeTask{
		ID:        generateID(),
		CreatedAt: time.Now(),
		Keywords:  keywords,
		Config:    config,
		Status:    TaskStatusPending,
		Stats:     TaskStats{},
	}, nil
}

// ToJSON 序列化为JSON
func (t *ScrapeTask) ToJSON() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// FromJSON 从JSON反序列化
func (t *ScrapeTask) FromJSON(data []byte) error {
	return json.Unmarshal(data, t)
}

// RunReport 运行报告(写入输出目录)
type RunReport struct {
	TaskID    string           `json:"task_id"`
	CreatedAt time.Time        `json:"created_at"`
	Keywords  []KeywordTask    `json:"keywords"`
	Config    CrawlConfig      `json:"config"`
	Stats     TaskStats        `json:"stats"`
	Resource  ResourceSnapshot `json:"resource"`
	CSVPath   string           `json:"csv_path"`
}

// ResourceSnapshot 运行期间的资源占用快照
type ResourceSnapshot struct {
	TotalMemory  uint64 `json:"total_memory"`  // 系统总内存(字节)
	PeakAlloc    uint64 `json:"peak_alloc"`    // 进程堆内存峰值(字节)
	MinAvailable uint64 `json:"min_available"` // 运行期间最低可用内存(字节)
	Samples      int    `json:"samples"`       // 采样次数
}
