package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"tenderlink/quality"
)

// writeQualityOutputs пишет Markdown-отчет и статистические CSV
// в каталог отчета о качестве
func (p *Pipeline) writeQualityOutputs(rows []quality.Row) error {
	if err := os.MkdirAll(p.cfg.QualityDir, 0o755); err != nil {
		return err
	}

	report := quality.BuildReport(rows)
	if err := os.WriteFile(filepath.Join(p.cfg.QualityDir, ReportFile), []byte(report), 0o644); err != nil {
		return fmt.Errorf("не удалось записать отчет: %w", err)
	}

	type output struct {
		file  string
		table *Table
	}
	balance := quality.ProjectTenderBidBalance(rows)
	outputs := []output{
		{"amount_missing_by_customer.csv", missingStatsTable("customer", quality.AmountMissingByCustomer(rows))},
		{"amount_missing_by_record_type.csv", missingStatsTable("record_type", quality.AmountMissingByRecordType(rows))},
		{"amount_unit_by_customer.csv", unitStatsTable("customer", quality.AmountUnitByCustomer(rows))},
		{"amount_unit_by_record_type.csv", unitStatsTable("record_type", quality.AmountUnitByRecordType(rows))},
		{"project_tender_bid_balance.csv", balanceTable(balance)},
		{"project_balance_summary.csv", balanceSummaryTable(quality.SummarizeBalance(balance))},
		{"core_name_quality_by_customer.csv", coreNameTable(quality.CoreNameQuality(rows))},
	}

	for _, out := range outputs {
		if err := WriteCSV(filepath.Join(p.cfg.QualityDir, out.file), out.table); err != nil {
			return fmt.Errorf("не удалось записать %s: %w", out.file, err)
		}
	}
	return nil
}

func missingStatsTable(keyName string, stats []quality.MissingStat) *Table {
	t := &Table{Columns: []string{keyName, "total", "missing", "missing_rate"}}
	for _, s := range stats {
		t.Rows = append(t.Rows, []string{
			s.Key,
			strconv.Itoa(s.Total),
			strconv.Itoa(s.Missing),
			strconv.FormatFloat(s.MissingRate, 'f', 4, 64),
		})
	}
	return t
}

func unitStatsTable(keyName string, stats []quality.UnitStat) *Table {
	// Длинный формат: ключ, единица, количество
	t := &Table{Columns: []string{keyName, "unit", "count"}}
	for _, s := range stats {
		units := make([]string, 0, len(s.Counts))
		for u := range s.Counts {
			units = append(units, u)
		}
		sort.Strings(units)
		for _, u := range units {
			t.Rows = append(t.Rows, []string{s.Key, u, strconv.Itoa(s.Counts[u])})
		}
	}
	return t
}

func balanceTable(stats []quality.BalanceStat) *Table {
	t := &Table{Columns: []string{"project_id", "tender_count", "bid_count", "other_count", "balance_note"}}
	for _, s := range stats {
		t.Rows = append(t.Rows, []string{
			s.ProjectID,
			strconv.Itoa(s.TenderCount),
			strconv.Itoa(s.BidCount),
			strconv.Itoa(s.OtherCount),
			s.Note,
		})
	}
	return t
}

func balanceSummaryTable(summary []quality.BalanceSummary) *Table {
	t := &Table{Columns: []string{"balance_note", "project_count"}}
	for _, s := range summary {
		t.Rows = append(t.Rows, []string{s.Note, strconv.Itoa(s.ProjectCount)})
	}
	return t
}

func coreNameTable(stats []quality.CoreNameStat) *Table {
	t := &Table{Columns: []string{"customer", "total", "empty", "short", "empty_rate", "short_rate"}}
	for _, s := range stats {
		customer := s.Customer
		if customer == "" {
			customer = "(全部)"
		}
		t.Rows = append(t.Rows, []string{
			customer,
			strconv.Itoa(s.Total),
			strconv.Itoa(s.EmptyCount),
			strconv.Itoa(s.ShortCount),
			strconv.FormatFloat(s.EmptyRate, 'f', 4, 64),
			strconv.FormatFloat(s.ShortRate, 'f', 4, 64),
		})
	}
	return t
}
