package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store хранилище результатов конвейера для сервера аналитики.
// Записи перезаписываются целиком на каждый запуск: кластеры и связи не
// хранят состояния между запусками, а project_id воспроизводим по входу.
type Store struct {
	conn *sql.DB
}

// StoredRecord запись конвейера со всеми добавленными слоями
type StoredRecord struct {
	RowID           string
	Customer        string
	SourceFile      string
	Title           string
	PublishDate     string
	RecordType      string
	ProjectNameCore string
	AmountWanYuan   sql.NullFloat64
	AmountUnit      string
	AmountMissing   bool
	ProjectID       string
	TenderRound     int
	LinkType        string
	RelatedTenderID string
	RelatedBidID    string
	Awardee         string
	IsAI            bool
	IsLLM           bool
	LLMLayer        string
}

// StoredLinkPair строка таблицы связей
type StoredLinkPair struct {
	ProjectID     string
	TenderRowID   string
	BidRowID      string
	TenderRound   int
	PublishDate   string
	Awardee       string
	AmountWanYuan sql.NullFloat64
}

// Open открывает хранилище и применяет миграции
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть БД %s: %w", path, err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("БД %s недоступна: %w", path, err)
	}

	store := &Store{conn: conn}
	if err := store.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return store, nil
}

// Close закрывает соединение с БД
func (s *Store) Close() error {
	return s.conn.Close()
}

// SaveRun сохраняет результаты одного запуска конвейера одной транзакцией,
// замещая предыдущие данные этого запуска
func (s *Store) SaveRun(runID string, records []StoredRecord, pairs []StoredLinkPair) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("не удалось начать транзакцию: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM records WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("не удалось очистить записи запуска: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM link_pairs WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("не удалось очистить пары запуска: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO runs (id, created_at, record_count) VALUES (?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339), len(records),
	); err != nil {
		return fmt.Errorf("не удалось сохранить запуск: %w", err)
	}

	insertRecord, err := tx.Prepare(`
		INSERT INTO records (
			run_id, row_id, customer, source_file, title, publish_date,
			record_type, project_name_core, amount_wan_yuan, amount_unit,
			amount_missing, project_id, tender_round, link_type,
			related_tender_id, related_bid_id, awardee, is_ai, is_llm, llm_layer
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("не удалось подготовить вставку записей: %w", err)
	}
	defer insertRecord.Close()

	for _, r := range records {
		if _, err := insertRecord.Exec(
			runID, r.RowID, r.Customer, r.SourceFile, r.Title, r.PublishDate,
			r.RecordType, r.ProjectNameCore, r.AmountWanYuan, r.AmountUnit,
			r.AmountMissing, r.ProjectID, r.TenderRound, r.LinkType,
			r.RelatedTenderID, r.RelatedBidID, r.Awardee, r.IsAI, r.IsLLM, r.LLMLayer,
		); err != nil {
			return fmt.Errorf("не удалось вставить запись %s: %w", r.RowID, err)
		}
	}

	insertPair, err := tx.Prepare(`
		INSERT INTO link_pairs (
			run_id, project_id, tender_row_id, bid_row_id, tender_round,
			publish_date, awardee, amount_wan_yuan
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("не удалось подготовить вставку пар: %w", err)
	}
	defer insertPair.Close()

	for _, p := range pairs {
		if _, err := insertPair.Exec(
			runID, p.ProjectID, p.TenderRowID, p.BidRowID, p.TenderRound,
			p.PublishDate, p.Awardee, p.AmountWanYuan,
		); err != nil {
			return fmt.Errorf("не удалось вставить пару %s->%s: %w", p.TenderRowID, p.BidRowID, err)
		}
	}

	return tx.Commit()
}

// LatestRunID идентификатор последнего запуска; пустая строка, если
// запусков еще не было
func (s *Store) LatestRunID() (string, error) {
	var id string
	err := s.conn.QueryRow(`SELECT id FROM runs ORDER BY created_at DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("не удалось получить последний запуск: %w", err)
	}
	return id, nil
}
