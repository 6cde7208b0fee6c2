package core

import (
	"sync"

	"github.com/RecoveryAshes/PinHarvest/internal/models"
)

// CrawlSession 一次运行期间累积的解析结果
type CrawlSession struct {
	mu      sync.Mutex
	records []models.PinRecord
}

// NewCrawlSession 创建结果累积器
func NewCrawlSession() *CrawlSession {
	return &CrawlSession{}
}

// AddRecord 追加一条解析结果
func (cs *CrawlSession) AddRecord(record models.PinRecord) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.records = append(cs.records, record)
}

// Records 返回结果快照,保持追加顺序
func (cs *CrawlSession) Records() []models.PinRecord {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	snapshot := make([]models.PinRecord, len(cs.records))
	copy(snapshot, cs.records)
	return snapshot
}

// Len 当前累积条数
func (cs *CrawlSession) Len() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.records)
}
