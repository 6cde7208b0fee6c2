package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/RecoveryAshes/PinHarvest/internal/core"
	"github.com/RecoveryAshes/PinHarvest/internal/models"
	"github.com/RecoveryAshes/PinHarvest/internal/utils"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	verbose    bool
	logLevel   string

	// HTTP头部参数
	headers        []string // 自定义HTTP请求头
	validateConfig bool     // 验证配置文件

	// 抓取参数
	keywords        []string
	keywordFile     string
	limit           int
	scrollDelay     float64
	waitTime        int
	headless        bool
	discoverFilters bool
	outputDir       string
)

var rootCmd = &cobra.Command{
	Use:   "pinharvest",
	Short: "Pinterest搜索结果采集工具",
	Long: `PinHarvest - Pinterest搜索结果采集工具 (Go版本)

按关键词搜索并采集Pin详情,支持:
  • 无限滚动列表页自动收集
  • 多数据源级联解析(内嵌JSON/网络捕获/脚本扫描/DOM兜底)
  • 搜索筛选器自动发现与遍历
  • 结果去重与CSV导出
  • 自定义HTTP请求头

使用示例:
  # 单关键词
  pinharvest -k "vintage posters" -n 50

  # 多关键词
  pinharvest -k "cat memes" -k "dog memes"

  # 从CSV文件批量读取关键词
  pinharvest -f keywords.csv

  # 验证HTTP头部配置
  pinharvest --validate-config

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 加载配置
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		// 初始化日志系统
		logConfig := utils.LogConfig{
			Level:      config.Logging.Level,
			LogDir:     config.Logging.LogDir,
			MaxSize:    config.Logging.Rotation.MaxSize,
			MaxBackups: config.Logging.Rotation.MaxBackups,
			MaxAge:     config.Logging.Rotation.MaxAge,
			Compress:   config.Logging.Rotation.Compress,
		}

		// 命令行参数覆盖配置文件
		if logLevel != "" {
			logConfig.Level = logLevel
		}

		if err := utils.InitLogger(logConfig); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		if verbose {
			utils.Info("详细模式已启用")
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// 加载配置并合并命令行参数
		appConfig, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		appConfig.MergeCLIFlags(limit, scrollDelay, waitTime, headless, discoverFilters, outputDir)

		// 创建HTTP头部管理器
		headerManager, err := core.NewHeaderManager(configFile, headers)
		if err != nil {
			return fmt.Errorf("创建HTTP头部管理器失败: %w", err)
		}

		// 如果用户请求验证配置
		if validateConfig {
			utils.Info("🔍 验证HTTP头部配置...")
			if err := headerManager.LoadConfig(); err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}
			if err := headerManager.Validate(); err != nil {
				return fmt.Errorf("配置验证失败: %w", err)
			}

			// 显示合并后的头部(脱敏)
			safeHeaders := headerManager.GetSafeHeaders()
			utils.Info("✅ 配置验证通过!")
			utils.Infof("当前有效的HTTP头部 (%d个):", len(safeHeaders))
			for name, value := range safeHeaders {
				utils.Infof("  %s: %s", name, value)
			}
			return nil
		}

		// 如果没有提供任何关键词,显示帮助信息
		if len(keywords) == 0 && keywordFile == "" {
			return cmd.Help()
		}

		// 验证参数
		if err := ValidateFlags(appConfig.Crawl.DefaultLimit, appConfig.Crawl.ScrollDelay, appConfig.Crawl.WaitTime); err != nil {
			return err
		}

		// 组装关键词任务列表
		tasks := make([]models.KeywordTask, 0, len(keywords))
		for _, kw := range keywords {
			tasks = append(tasks, models.KeywordTask{Keyword: kw, Limit: appConfig.Crawl.DefaultLimit})
		}
		if keywordFile != "" {
			fileTasks, err := utils.ReadKeywordTasks(keywordFile, appConfig.Crawl.DefaultLimit)
			if err != nil {
				return fmt.Errorf("读取关键词文件失败: %w", err)
			}
			tasks = append(tasks, fileTasks...)
		}

		task, err := models.NewScrapeTask(tasks, appConfig.Crawl)
		if err != nil {
			return fmt.Errorf("创建任务失败: %w", err)
		}
		utils.Infof("任务已创建: %s (%d 个关键词)", task.ID, len(tasks))

		// 信号处理(Ctrl+C优雅退出)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigChan
			utils.Warnf("\n收到中断信号: %v, 正在优雅关闭...", sig)
			cancel()
		}()

		// 执行抓取
		scraper := core.NewScraper(appConfig, headerManager, task)
		if err := scraper.Run(ctx); err != nil {
			return fmt.Errorf("抓取失败: %w", err)
		}

		// 显示统计结果
		stats := task.Stats
		fmt.Println("\n==================================================")
		fmt.Println("📊 采集统计")
		fmt.Println("==================================================")
		fmt.Printf("✅ 关键词数: %d\n", stats.Keywords)
		fmt.Printf("✅ 筛选器数: %d\n", stats.Filters)
		fmt.Printf("✅ 列表发现Pin数: %d\n", stats.ListedPins)
		fmt.Printf("✅ 成功解析Pin数: %d\n", stats.ResolvedPins)
		fmt.Printf("❌ 解析失败Pin数: %d\n", stats.FailedPins)
		fmt.Printf("🔁 去重丢弃记录数: %d\n", stats.DuplicatePins)
		fmt.Printf("⏱️  总耗时: %.2f秒\n", stats.Duration)
		fmt.Println("==================================================")

		utils.Info("✨ 采集任务完成!")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("PinHarvest %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
		fmt.Println("Go实现版本 - Pinterest搜索结果采集工具")
	},
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")

	// HTTP头部参数
	rootCmd.PersistentFlags().StringSliceVarP(&headers, "header", "H", []string{}, "自定义HTTP头部,格式: 'Name: Value',可多次指定")
	rootCmd.PersistentFlags().BoolVar(&validateConfig, "validate-config", false, "验证配置文件正确性")

	// 抓取参数
	rootCmd.Flags().StringArrayVarP(&keywords, "keyword", "k", []string{}, "搜索关键词,可多次指定")
	rootCmd.Flags().StringVarP(&keywordFile, "keyword-file", "f", "", "关键词CSV文件路径 (每行: 关键词,数量)")
	rootCmd.Flags().IntVarP(&limit, "limit", "n", 40, "每个关键词的采集上限")
	rootCmd.Flags().Float64Var(&scrollDelay, "slow", 1.0, "列表页滚动间隔(秒)")
	rootCmd.Flags().IntVarP(&waitTime, "wait", "w", 12, "页面就绪等待上限(秒)")
	rootCmd.Flags().BoolVar(&headless, "headless", true, "无头浏览器模式")
	rootCmd.Flags().BoolVar(&discoverFilters, "filters", false, "发现并遍历搜索筛选器")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "output", "输出目录")

	// 添加子命令
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
