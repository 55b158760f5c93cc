package normalization

import "testing"

func TestParseRecordType(t *testing.T) {
	tests := []struct {
		name        string
		projectName string
		want        string
	}{
		{"招标公告", "数据中心机房改造项目招标公告", "招标公告"},
		{"中标公告", "数据中心机房改造项目中标公告", "中标公告"},
		{"кандидаты приоритетнее 中标公告", "智算平台项目中标候选人公示", "中标候选人公示"},
		{"成交结果 приоритетнее 结果公示", "询价采购成交结果公示", "成交结果"},
		{"成交公告", "办公设备采购成交公告", "成交公告"},
		{"结果公示", "入围结果公示", "结果公示"},
		{"竞争性谈判", "安防系统竞争性谈判公告", "竞争性谈判"},
		{"竞争性磋商", "咨询服务竞争性磋商公告", "竞争性磋商"},
		{"采购公告", "服务器采购公告", "采购公告"},
		{"询价", "配件询价公告", "询价"},
		{"без ключевых слов", "年度财务审计服务", "其他"},
		{"пустая строка", "", "其他"},
		{"только пробелы", "   ", "其他"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseRecordType(tt.projectName); got != tt.want {
				t.Errorf("ParseRecordType(%q) = %q, want %q", tt.projectName, got, tt.want)
			}
		})
	}
}
