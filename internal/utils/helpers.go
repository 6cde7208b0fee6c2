package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/RecoveryAshes/PinHarvest/internal/models"
)

// ReadKeywordTasks 从CSV文件读取关键词任务列表
// 文件格式: 每行 "关键词,数量",数量列可省略,省略或非法时使用defaultLimit
func ReadKeywordTasks(path string, defaultLimit int) ([]models.KeywordTask, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开关键词文件失败: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // 允许每行字段数不同

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("读取关键词文件失败: %w", err)
	}

	tasks := make([]models.KeywordTask, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}

		keyword := strings.TrimSpace(row[0])
		// 容忍UTF-8 BOM
		keyword = strings.TrimPrefix(keyword, "\uFEFF")
		if keyword == "" {
			continue
		}
		// 跳过表头行
		if i == 0 && strings.EqualFold(keyword, "keyword") {
			continue
		}

		limit := defaultLimit
		if len(row) > 1 {
			if n, err := strconv.Atoi(strings.TrimSpace(row[1])); err == nil && n > 0 {
				limit = n
			} else if strings.TrimSpace(row[1]) != "" {
				Warnf("关键词 %q 的数量列无效 (行 %d),使用默认值 %d", keyword, i+1, defaultLimit)
			}
		}

		tasks = append(tasks, models.KeywordTask{Keyword: keyword, Limit: limit})
	}

	if len(tasks) == 0 {
		return nil, fmt.Errorf("关键词文件中没有有效的关键词")
	}

	Infof("从文件加载了 %d 个关键词", len(tasks))
	return tasks, nil
}
