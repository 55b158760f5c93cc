package pipeline

// Имена файлов слоев
const (
	CleanedFile   = "tender_cleaned.csv"
	GroupedFile   = "tender_grouped.csv"
	LinkedFile    = "tender_linked.csv"
	AnalysisFile  = "tender_analysis.csv"
	LinkTableFile = "link_table.csv"
	ReportFile    = "report.md"
)

// Колонки, добавляемые слоем очистки
const (
	ColRecordType      = "record_type"
	ColProjectNameCore = "project_name_core"
	ColAmountWanYuan   = "amount_wan_yuan"
	ColAmountUnit      = "amount_unit_detected"
	ColAmountMissing   = "amount_is_missing"
	ColCustomer        = "customer"
	ColSourceFile      = "source_file"
)

// Колонки, добавляемые слоем группировки
const (
	ColProjectID   = "project_id"
	ColTenderRound = "tender_round"
)

// Колонки, добавляемые слоем связывания
const (
	ColRowID           = "row_id"
	ColLinkType        = "link_type"
	ColRelatedTenderID = "related_tender_id"
	ColRelatedBidID    = "related_bid_id"
)

// Колонки, добавляемые слоем анализа
const (
	ColIsAI     = "is_ai"
	ColIsLLM    = "is_llm"
	ColLLMLayer = "llm_layer"
)
