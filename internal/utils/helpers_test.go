package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keywords.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写入临时文件失败: %v", err)
	}
	return path
}

func TestReadKeywordTasks(t *testing.T) {
	path := writeTempCSV(t, "keyword,limit\nvintage posters,20\ncat memes\nmodern art,abc\n,30\n")

	tasks, err := ReadKeywordTasks(path, 40)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("任务数量 = %d, 期望 3", len(tasks))
	}
	if tasks[0].Keyword != "vintage posters" || tasks[0].Limit != 20 {
		t.Errorf("第一个任务解析错误: %+v", tasks[0])
	}
	// 数量列省略时使用默认值
	if tasks[1].Keyword != "cat memes" || tasks[1].Limit != 40 {
		t.Errorf("第二个任务解析错误: %+v", tasks[1])
	}
	// 数量列非法时回退默认值
	if tasks[2].Keyword != "modern art" || tasks[2].Limit != 40 {
		t.Errorf("第三个任务解析错误: %+v", tasks[2])
	}
}

func TestReadKeywordTasksBOM(t *testing.T) {
	path := writeTempCSV(t, "\uFEFFsunset photography,15\n")

	tasks, err := ReadKeywordTasks(path, 40)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Keyword != "sunset photography" || tasks[0].Limit != 15 {
		t.Errorf("BOM处理错误: %+v", tasks)
	}
}

func TestReadKeywordTasksEmpty(t *testing.T) {
	path := writeTempCSV(t, "\n\n")
	if _, err := ReadKeywordTasks(path, 40); err == nil {
		t.Error("空文件应当报错")
	}

	if _, err := ReadKeywordTasks(filepath.Join(t.TempDir(), "missing.csv"), 40); err == nil {
		t.Error("文件不存在应当报错")
	}
}
