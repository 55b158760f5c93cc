package database

import "fmt"

// migrations схема хранилища; выполняются идемпотентно при каждом открытии
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		record_count INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS records (
		run_id TEXT NOT NULL,
		row_id TEXT NOT NULL,
		customer TEXT NOT NULL,
		source_file TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		publish_date TEXT NOT NULL DEFAULT '',
		record_type TEXT NOT NULL DEFAULT '',
		project_name_core TEXT NOT NULL DEFAULT '',
		amount_wan_yuan REAL,
		amount_unit TEXT NOT NULL DEFAULT '',
		amount_missing INTEGER NOT NULL DEFAULT 1,
		project_id TEXT NOT NULL DEFAULT '',
		tender_round INTEGER NOT NULL DEFAULT 1,
		link_type TEXT NOT NULL DEFAULT '',
		related_tender_id TEXT NOT NULL DEFAULT '',
		related_bid_id TEXT NOT NULL DEFAULT '',
		awardee TEXT NOT NULL DEFAULT '',
		is_ai INTEGER NOT NULL DEFAULT 0,
		is_llm INTEGER NOT NULL DEFAULT 0,
		llm_layer TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, row_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_records_project ON records (run_id, project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_records_customer ON records (run_id, customer)`,
	`CREATE TABLE IF NOT EXISTS link_pairs (
		run_id TEXT NOT NULL,
		project_id TEXT NOT NULL,
		tender_row_id TEXT NOT NULL,
		bid_row_id TEXT NOT NULL,
		tender_round INTEGER NOT NULL DEFAULT 1,
		publish_date TEXT NOT NULL DEFAULT '',
		awardee TEXT NOT NULL DEFAULT '',
		amount_wan_yuan REAL,
		PRIMARY KEY (run_id, tender_row_id, bid_row_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_link_pairs_project ON link_pairs (run_id, project_id)`,
}

// migrate применяет миграции схемы
func (s *Store) migrate() error {
	for i, stmt := range migrations {
		if _, err := s.conn.Exec(stmt); err != nil {
			return fmt.Errorf("миграция %d не применилась: %w", i, err)
		}
	}
	return nil
}
