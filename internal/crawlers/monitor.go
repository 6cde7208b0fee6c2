package crawlers

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/RecoveryAshes/PinHarvest/internal/models"
	"github.com/RecoveryAshes/PinHarvest/internal/utils"
)

// lowMemoryWarnMB 可用内存低于该值(MB)时告警
const lowMemoryWarnMB = 300

// ResourceMonitor 运行期资源监控器
// 周期性采样进程堆内存与系统可用内存,供运行报告使用
type ResourceMonitor struct {
	interval time.Duration

	mu       sync.Mutex
	snapshot models.ResourceSnapshot

	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewResourceMonitor 创建资源监控器
func NewResourceMonitor(interval time.Duration) *ResourceMonitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	monitor := &ResourceMonitor{interval: interval}

	vmStat, err := mem.VirtualMemory()
	if err != nil {
		utils.Warnf("获取系统内存失败: %v", err)
	} else {
		monitor.snapshot.TotalMemory = vmStat.Total
		utils.Infof("系统总内存: %.2f GB", float64(vmStat.Total)/(1024*1024*1024))
	}

	return monitor
}

// Start 启动后台采样,重复调用是幂等的
func (m *ResourceMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.running = true

	go m.loop(ctx)
}

// loop 后台采样循环
func (m *ResourceMonitor) loop(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sample()
		}
	}
}

// sample 采样一次并更新峰值统计
func (m *ResourceMonitor) sample() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	var available uint64
	if vmStat, err := mem.VirtualMemory(); err == nil {
		available = vmStat.Available
	}

	m.mu.Lock()
	m.snapshot.Samples++
	if memStats.Alloc > m.snapshot.PeakAlloc {
		m.snapshot.PeakAlloc = memStats.Alloc
	}
	if available > 0 && (m.snapshot.MinAvailable == 0 || available < m.snapshot.MinAvailable) {
		m.snapshot.MinAvailable = available
	}
	m.mu.Unlock()

	if available > 0 && available/(1024*1024) < lowMemoryWarnMB {
		utils.Warnf("可用内存不足(当前%dMB)", available/(1024*1024))
	}
}

// Stop 停止采样并返回统计快照
func (m *ResourceMonitor) Stop() models.ResourceSnapshot {
	m.mu.Lock()
	running := m.running
	m.running = false
	m.mu.Unlock()

	if running {
		m.cancel()
		<-m.done
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}
