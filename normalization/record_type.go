package normalization

import "strings"

// DefaultRecordType тип записи по умолчанию, когда ни одно правило не сработало
const DefaultRecordType = "其他"

// recordTypeRule правило определения типа записи по ключевому слову
type recordTypeRule struct {
	keyword string
	label   string
}

// recordTypeRules правила определения типа записи, в порядке приоритета.
// Более специфичные ключевые слова стоят раньше: «中标候选人公示» должно
// сработать до «中标公告», «成交结果» до «结果公示» и т.д.
var recordTypeRules = []recordTypeRule{
	{"中标候选人公示", "中标候选人公示"},
	{"中标公告", "中标公告"},
	{"成交结果", "成交结果"},
	{"成交公告", "成交公告"},
	{"结果公示", "结果公示"},
	{"竞争性谈判", "竞争性谈判"},
	{"竞争性磋商", "竞争性磋商"},
	{"招标公告", "招标公告"},
	{"采购公告", "采购公告"},
	{"询价", "询价"},
}

// ParseRecordType определяет тип записи по названию проекта:
// 招标公告 / 中标公告 / 成交结果 и т.д. Возвращает 其他, если ни одно
// ключевое слово не найдено или название пустое.
func ParseRecordType(projectName string) string {
	s := strings.TrimSpace(projectName)
	if s == "" {
		return DefaultRecordType
	}
	for _, rule := range recordTypeRules {
		if strings.Contains(s, rule.keyword) {
			return rule.label
		}
	}
	return DefaultRecordType
}
