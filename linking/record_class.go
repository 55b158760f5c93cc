package linking

// Терминальные статусы связи записи. Каждая запись получает ровно один.
const (
	LinkTypeLinked     = "已关联" //招标 с хотя бы одним 中标, либо 中标 с найденным 招标
	LinkTypeTenderOnly = "仅招标" // 招标 без последующего 中标
	LinkTypeBidOnly    = "仅中标" // 中标 без предшествующего 招标 в проекте
	LinkTypeOther      = "其他"  // не участвует в связывании
)

// tenderRecordTypes типы-приглашения: объявление о закупке, сбор предложений
var tenderRecordTypes = map[string]bool{
	"招标公告":  true,
	"采购公告":  true,
	"竞争性谈判": true,
	"竞争性磋商": true,
	"询价":    true,
}

// bidRecordTypes типы-результаты: объявление победителя, итоги закупки
var bidRecordTypes = map[string]bool{
	"中标公告":    true,
	"中标候选人公示": true,
	"成交结果":    true,
	"成交公告":    true,
	"结果公示":    true,
}

// IsTenderType относится ли тип записи к классу приглашений (招标类)
func IsTenderType(recordType string) bool {
	return tenderRecordTypes[recordType]
}

// IsBidType относится ли тип записи к классу результатов (中标类)
func IsBidType(recordType string) bool {
	return bidRecordTypes[recordType]
}
