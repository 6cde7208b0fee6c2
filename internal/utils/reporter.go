package utils

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/PinHarvest/internal/models"
	"github.com/schollz/progressbar/v3"
)

// Reporter 结果导出与报告生成器
type Reporter struct {
	outputDir string
}

// NewReporter 创建报告生成器
func NewReporter(outputDir string) *Reporter {
	return &Reporter{outputDir: outputDir}
}

// WriteRecordsCSV 将抓取记录写入CSV文件,返回文件路径
func (r *Reporter) WriteRecordsCSV(records []models.PinRecord) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return "", fmt.Errorf("创建输出目录失败: %w", err)
	}

	path := filepath.Join(r.outputDir, "pins.csv")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("创建CSV文件失败: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(models.RecordColumns); err != nil {
		return "", fmt.Errorf("写入CSV表头失败: %w", err)
	}
	for _, record := range records {
		if err := writer.Write(record.Row()); err != nil {
			return "", fmt.Errorf("写入CSV记录失败: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("刷新CSV失败: %w", err)
	}

	Infof("✅ 已导出 %d 条记录: %s", len(records), path)
	return path, nil
}

// GenerateReport 生成运行报告
func (r *Reporter) GenerateReport(report models.RunReport) error {
	reportsDir := filepath.Join(r.outputDir, "reports")
	if err := os.MkdirAll(reportsDir, 0755); err != nil {
		return fmt.Errorf("创建报告目录失败: %w", err)
	}

	if err := r.saveJSONReport(reportsDir, "run_report.json", report); err != nil {
		return err
	}

	Infof("✅ 报告已生成: %s", reportsDir)
	return nil
}

// saveJSONReport 保存JSON报告
func (r *Reporter) saveJSONReport(dir string, filename string, data interface{}) error {
	path := filepath.Join(dir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("写入报告文件失败: %w", err)
	}

	Debugf("保存报告: %s", path)
	return nil
}

// NewProgressBar 创建进度条
func NewProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
