package database

import (
	"database/sql"
	"fmt"
	"strings"

	"tenderlink/analysis"
)

// Overview сводные показатели одного запуска
type Overview struct {
	RecordCount   int `json:"record_count"`
	ProjectCount  int `json:"project_count"`
	CustomerCount int `json:"customer_count"`
	LinkedPairs   int `json:"linked_pairs"`
	AIRecords     int `json:"ai_records"`
	LLMRecords    int `json:"llm_records"`
}

// CountItem пара «значение — количество» для распределений
type CountItem struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// YearCount количество за один год
type YearCount struct {
	Year  string `json:"year"`
	Count int    `json:"count"`
}

// ProjectSummary сводка по одному проекту
type ProjectSummary struct {
	ProjectID   string `json:"project_id"`
	Customer    string `json:"customer"`
	Title       string `json:"title"`
	RecordCount int    `json:"record_count"`
	TenderCount int    `json:"tender_count"`
	BidCount    int    `json:"bid_count"`
	IsLLM       bool   `json:"is_llm"`
	LLMLayer    string `json:"llm_layer"`
}

// countColumns колонки, по которым разрешены распределения
var countColumns = map[string]bool{
	"record_type": true,
	"link_type":   true,
	"llm_layer":   true,
	"customer":    true,
}

// GetOverview сводные показатели запуска
func (s *Store) GetOverview(runID string) (*Overview, error) {
	o := &Overview{}
	err := s.conn.QueryRow(`
		SELECT
			COUNT(*),
			COUNT(DISTINCT project_id),
			COUNT(DISTINCT customer),
			SUM(is_ai),
			SUM(is_llm)
		FROM records WHERE run_id = ?`, runID,
	).Scan(&o.RecordCount, &o.ProjectCount, &o.CustomerCount,
		&nullableInt{&o.AIRecords}, &nullableInt{&o.LLMRecords})
	if err != nil {
		return nil, fmt.Errorf("не удалось получить сводку: %w", err)
	}

	err = s.conn.QueryRow(`SELECT COUNT(*) FROM link_pairs WHERE run_id = ?`, runID).Scan(&o.LinkedPairs)
	if err != nil {
		return nil, fmt.Errorf("не удалось посчитать пары: %w", err)
	}
	return o, nil
}

// CountBy распределение записей запуска по одной из разрешенных колонок
func (s *Store) CountBy(runID, column string) ([]CountItem, error) {
	if !countColumns[column] {
		return nil, fmt.Errorf("распределение по колонке %q не поддерживается", column)
	}
	rows, err := s.conn.Query(fmt.Sprintf(`
		SELECT %s, COUNT(*) FROM records
		WHERE run_id = ?
		GROUP BY %s
		ORDER BY COUNT(*) DESC, %s`, column, column, column), runID)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить распределение по %s: %w", column, err)
	}
	defer rows.Close()

	return scanCountItems(rows)
}

// TopCustomers клиенты по числу записей, не более limit
func (s *Store) TopCustomers(runID string, limit int) ([]CountItem, error) {
	if limit <= 0 {
		limit = 15
	}
	rows, err := s.conn.Query(`
		SELECT customer, COUNT(*) FROM records
		WHERE run_id = ?
		GROUP BY customer
		ORDER BY COUNT(*) DESC, customer
		LIMIT ?`, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить клиентов: %w", err)
	}
	defer rows.Close()

	return scanCountItems(rows)
}

// YearlyTrend количество записей (или уникальных проектов) по годам
// публикации; записи без даты пропускаются
func (s *Store) YearlyTrend(runID string, byProjects bool) ([]YearCount, error) {
	metric := "COUNT(*)"
	if byProjects {
		metric = "COUNT(DISTINCT project_id)"
	}
	rows, err := s.conn.Query(fmt.Sprintf(`
		SELECT substr(publish_date, 1, 4) AS year, %s
		FROM records
		WHERE run_id = ? AND length(publish_date) >= 4
		GROUP BY year
		ORDER BY year`, metric), runID)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить тренд: %w", err)
	}
	defer rows.Close()

	var trend []YearCount
	for rows.Next() {
		var yc YearCount
		if err := rows.Scan(&yc.Year, &yc.Count); err != nil {
			return nil, err
		}
		trend = append(trend, yc)
	}
	return trend, rows.Err()
}

// ListProjects сводки проектов запуска с опциональными фильтрами
func (s *Store) ListProjects(runID, customer string, onlyLLM bool, limit int) ([]ProjectSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT
			project_id,
			customer,
			MAX(title),
			COUNT(*),
			SUM(CASE WHEN record_type IN ('招标公告', '采购公告', '竞争性谈判', '竞争性磋商', '询价') THEN 1 ELSE 0 END),
			SUM(CASE WHEN record_type IN ('中标公告', '中标候选人公示', '成交结果', '成交公告', '结果公示') THEN 1 ELSE 0 END),
			MAX(is_llm),
			GROUP_CONCAT(llm_layer)
		FROM records
		WHERE run_id = ?`
	args := []interface{}{runID}
	if customer != "" {
		query += ` AND customer = ?`
		args = append(args, customer)
	}
	if onlyLLM {
		query += ` AND is_llm = 1`
	}
	query += ` GROUP BY project_id, customer ORDER BY COUNT(*) DESC, project_id LIMIT ?`
	args = append(args, limit)

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить проекты: %w", err)
	}
	defer rows.Close()

	var projects []ProjectSummary
	for rows.Next() {
		var p ProjectSummary
		var isLLM int
		var layers sql.NullString
		if err := rows.Scan(&p.ProjectID, &p.Customer, &p.Title, &p.RecordCount,
			&p.TenderCount, &p.BidCount, &isLLM, &layers); err != nil {
			return nil, err
		}
		p.IsLLM = isLLM != 0
		// Свертка слоя по приоритету 应用>平台>模型>算力; байтовый порядок
		// SQL MAX над метками этому приоритету не соответствует
		p.LLMLayer = analysis.ProjectPrimaryLayer(strings.Split(layers.String, ","))
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ProjectTimeline записи одного проекта в порядке связывания:
// дата публикации (пустые в конец), затем раунд
func (s *Store) ProjectTimeline(runID, projectID string) ([]StoredRecord, error) {
	rows, err := s.conn.Query(`
		SELECT row_id, customer, source_file, title, publish_date, record_type,
			project_name_core, amount_wan_yuan, amount_unit, amount_missing,
			project_id, tender_round, link_type, related_tender_id,
			related_bid_id, awardee, is_ai, is_llm, llm_layer
		FROM records
		WHERE run_id = ? AND project_id = ?
		ORDER BY
			CASE WHEN publish_date = '' THEN 1 ELSE 0 END,
			publish_date,
			tender_round,
			row_id`, runID, projectID)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить хронологию проекта: %w", err)
	}
	defer rows.Close()

	var records []StoredRecord
	for rows.Next() {
		var r StoredRecord
		if err := rows.Scan(&r.RowID, &r.Customer, &r.SourceFile, &r.Title,
			&r.PublishDate, &r.RecordType, &r.ProjectNameCore, &r.AmountWanYuan,
			&r.AmountUnit, &r.AmountMissing, &r.ProjectID, &r.TenderRound,
			&r.LinkType, &r.RelatedTenderID, &r.RelatedBidID, &r.Awardee,
			&r.IsAI, &r.IsLLM, &r.LLMLayer); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ProjectLinkPairs пары 招标→中标 одного проекта
func (s *Store) ProjectLinkPairs(runID, projectID string) ([]StoredLinkPair, error) {
	rows, err := s.conn.Query(`
		SELECT project_id, tender_row_id, bid_row_id, tender_round,
			publish_date, awardee, amount_wan_yuan
		FROM link_pairs
		WHERE run_id = ? AND project_id = ?
		ORDER BY publish_date, bid_row_id`, runID, projectID)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить пары проекта: %w", err)
	}
	defer rows.Close()

	var pairs []StoredLinkPair
	for rows.Next() {
		var p StoredLinkPair
		if err := rows.Scan(&p.ProjectID, &p.TenderRowID, &p.BidRowID,
			&p.TenderRound, &p.PublishDate, &p.Awardee, &p.AmountWanYuan); err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

func scanCountItems(rows *sql.Rows) ([]CountItem, error) {
	var items []CountItem
	for rows.Next() {
		var it CountItem
		if err := rows.Scan(&it.Value, &it.Count); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// nullableInt сканирует NULL-able агрегат в int (SUM над пустым набором дает NULL)
type nullableInt struct {
	dst *int
}

func (n *nullableInt) Scan(value interface{}) error {
	if value == nil {
		*n.dst = 0
		return nil
	}
	switch v := value.(type) {
	case int64:
		*n.dst = int(v)
	case float64:
		*n.dst = int(v)
	default:
		return fmt.Errorf("неожиданный тип агрегата: %T", value)
	}
	return nil
}
