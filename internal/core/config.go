package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/PinHarvest/internal/models"
	"github.com/spf13/viper"
)

// Config 应用程序配置
type Config struct {
	Crawl   models.CrawlConfig `mapstructure:"crawl"`
	Logging LoggingConfig      `mapstructure:"logging"`
	Output  OutputConfig       `mapstructure:"output"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	BaseDir string `mapstructure:"base_dir"`
}

// LoadConfig 加载配置文件
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// 设置配置文件
	if configPath != "" {
		// 使用指定的配置文件
		v.SetConfigFile(configPath)
	} else {
		// 搜索默认位置
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// 添加配置搜索路径
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")

		// 用户主目录
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".pinharvest"))
		}
	}

	// 设置默认值
	setDefaults(v)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// 如果配置文件不存在,使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	// 解析配置
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 抓取配置默认值
	v.SetDefault("crawl.default_limit", 40)
	v.SetDefault("crawl.scroll_delay", 1.0)
	v.SetDefault("crawl.wait_time", 12)
	v.SetDefault("crawl.headless", true)
	v.SetDefault("crawl.discover_filters", false)
	v.SetDefault("crawl.capture_window", 600)

	// 日志配置默认值
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	// 输出配置默认值
	v.SetDefault("output.base_dir", "output")
}

// GetCrawlConfig 从配置中提取抓取配置
func (c *Config) GetCrawlConfig() models.CrawlConfig {
	return c.Crawl
}

// MergeCLIFlags 合并命令行参数到配置,命令行参数优先于配置文件
func (c *Config) MergeCLIFlags(
	limit int,
	scrollDelay float64,
	waitTime int,
	headless bool,
	discoverFilters bool,
	outputDir string,
) {
	if limit > 0 {
		c.Crawl.DefaultLimit = limit
	}
	if scrollDelay > 0 {
		c.Crawl.ScrollDelay = scrollDelay
	}
	if waitTime > 0 {
		c.Crawl.WaitTime = waitTime
	}
	c.Crawl.Headless = headless
	c.Crawl.DiscoverFilters = discoverFilters
	if outputDir != "" {
		c.Output.BaseDir = outputDir
	}
}
