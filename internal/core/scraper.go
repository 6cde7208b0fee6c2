package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RecoveryAshes/PinHarvest/internal/crawlers"
	"github.com/RecoveryAshes/PinHarvest/internal/models"
	"github.com/RecoveryAshes/PinHarvest/internal/utils"
)

// Scraper 整次抓取运行的调度器
// 按 关键词 x 筛选器 展开列表采集,逐个详情页解析,
// 最终去重并导出CSV与运行报告
type Scraper struct {
	config  *Config
	headers models.HeaderProvider
	task    *models.ScrapeTask
}

// NewScraper 创建调度器
func NewScraper(config *Config, headers models.HeaderProvider, task *models.ScrapeTask) *Scraper {
	return &Scraper{
		config:  config,
		headers: headers,
		task:    task,
	}
}

// Run 执行完整抓取流程
func (s *Scraper) Run(ctx context.Context) error {
	start := time.Now()
	s.task.Status = models.TaskStatusRunning
	s.task.StartedAt = &start

	session, err := crawlers.NewRodSession(s.config.Crawl, s.headers)
	if err != nil {
		s.fail(err)
		return err
	}
	defer session.Close()

	monitor := crawlers.NewResourceMonitor(5 * time.Second)
	monitor.Start()

	state := NewCrawlSession()
	runErr := s.crawl(ctx, session, state)

	resource := monitor.Stop()

	// 即使中途取消,已解析的结果依然导出
	records := models.DedupeRecords(state.Records())
	s.task.Stats.DuplicatePins = state.Len() - len(records)
	s.task.Stats.Duration = time.Since(start).Seconds()

	reporter := utils.NewReporter(s.config.Output.BaseDir)
	csvPath, exportErr := reporter.WriteRecordsCSV(records)
	if exportErr != nil {
		utils.Errorf("导出CSV失败: %v", exportErr)
	}

	report := models.RunReport{
		TaskID:    s.task.ID,
		CreatedAt: s.task.CreatedAt,
		Keywords:  s.task.Keywords,
		Config:    s.task.Config,
		Stats:     s.task.Stats,
		Resource:  resource,
		CSVPath:   csvPath,
	}
	if err := reporter.GenerateReport(report); err != nil {
		utils.Errorf("生成报告失败: %v", err)
	}

	now := time.Now()
	s.task.CompletedAt = &now

	switch {
	case errors.Is(runErr, context.Canceled):
		s.task.Status = models.TaskStatusCancelled
		utils.Warnf("任务被取消,已导出 %d 条记录", len(records))
		return runErr
	case runErr != nil:
		s.fail(runErr)
		return runErr
	case exportErr != nil:
		s.fail(exportErr)
		return exportErr
	}

	s.task.Status = models.TaskStatusCompleted
	utils.Infof("🎉 抓取完成: %d 条记录 (列表 %d, 解析失败 %d, 去重 %d), 耗时 %.1fs",
		len(records), s.task.Stats.ListedPins, s.task.Stats.FailedPins,
		s.task.Stats.DuplicatePins, s.task.Stats.Duration)
	return nil
}

// crawl 遍历 关键词 x 筛选器,采集并解析所有详情页
func (s *Scraper) crawl(ctx context.Context, session models.PageSession, state *CrawlSession) error {
	waitTime := time.Duration(s.config.Crawl.WaitTime) * time.Second

	for _, kw := range s.task.Keywords {
		if err := ctx.Err(); err != nil {
			return err
		}

		limit := kw.Limit
		if limit <= 0 {
			limit = s.config.Crawl.DefaultLimit
		}

		filters := []models.FilterOption{{Label: "All Pins", URL: models.SearchURLFor(kw.Keyword)}}
		if s.config.Crawl.DiscoverFilters {
			filters = crawlers.DiscoverFilters(ctx, session, kw.Keyword, waitTime)
		}

		s.task.Stats.Keywords++
		utils.Infof("🚀 开始关键词 [%s]: 上限 %d, 筛选器 %d 个", kw.Keyword, limit, len(filters))

		for _, filter := range filters {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.task.Stats.Filters++

			listing := crawlers.NewListingCrawler(session, s.config.Crawl.ScrollDelay)
			pinURLs, err := listing.CollectPinURLs(ctx, filter.URL, limit, waitTime)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				utils.Warnf("列表采集失败 [%s / %s]: %v", kw.Keyword, filter.Label, err)
				continue
			}
			s.task.Stats.ListedPins += len(pinURLs)

			bar := utils.NewProgressBar(len(pinURLs), fmt.Sprintf("解析 %s", kw.Keyword))
			for _, pinURL := range pinURLs {
				if err := ctx.Err(); err != nil {
					return err
				}

				resolver := NewResolver(session, s.config.Crawl)
				record, err := resolver.Resolve(ctx, pinURL, kw.Keyword, filter.Label, filter.URL)
				_ = bar.Add(1)
				if err != nil {
					s.task.Stats.FailedPins++
					utils.Warnf("解析失败 [%s]: %v", pinURL, err)
					continue
				}

				state.AddRecord(record)
				s.task.Stats.ResolvedPins++
			}
		}
	}

	return nil
}

// fail 标记任务失败
func (s *Scraper) fail(err error) {
	s.task.Status = models.TaskStatusFailed
	s.task.ErrorMessage = err.Error()
	utils.Errorf("任务失败: %v", err)
}
