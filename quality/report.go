package quality

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"tenderlink/linking"
)

// CoreNameMinLen порог «слишком короткого» ядра названия, в рунах
const CoreNameMinLen = 5

// Итоги баланса 招标/中标 внутри проекта
const (
	BalanceBidOnly    = "仅有中标无招标"
	BalanceTenderOnly = "仅有招标无中标"
	BalanceBoth       = "招标与中标均有"
	BalanceNeither    = "无招无中"
)

// Row минимальный срез записи, нужный для отчета о качестве
type Row struct {
	Customer      string
	RecordType    string
	ProjectID     string
	CoreName      string
	AmountUnit    string
	AmountMissing bool
}

// MissingStat частота отсутствующих сумм в разрезе одного ключа
type MissingStat struct {
	Key         string  // клиент или record_type
	Total       int
	Missing     int
	MissingRate float64 // округлено до 4 знаков
}

// UnitStat распределение обнаруженных единиц суммы в разрезе одного ключа
type UnitStat struct {
	Key    string
	Counts map[string]int // единица -> количество
}

// BalanceStat баланс 招标/中标 одного проекта
type BalanceStat struct {
	ProjectID   string
	TenderCount int
	BidCount    int
	OtherCount  int
	Note        string
}

// BalanceSummary количество проектов на каждый вид баланса
type BalanceSummary struct {
	Note         string
	ProjectCount int
}

// CoreNameStat доля пустых и слишком коротких ядер названий
type CoreNameStat struct {
	Customer   string // пусто для общего итога
	Total      int
	EmptyCount int
	ShortCount int
	EmptyRate  float64
	ShortRate  float64
}

// AmountMissingByCustomer частота отсутствующих сумм по клиентам
func AmountMissingByCustomer(rows []Row) []MissingStat {
	return missingBy(rows, func(r Row) string { return r.Customer })
}

// AmountMissingByRecordType частота отсутствующих сумм по типам записей
func AmountMissingByRecordType(rows []Row) []MissingStat {
	return missingBy(rows, func(r Row) string { return r.RecordType })
}

func missingBy(rows []Row, keyOf func(Row) string) []MissingStat {
	totals := make(map[string]int)
	missing := make(map[string]int)
	for _, r := range rows {
		k := keyOf(r)
		totals[k]++
		if r.AmountMissing {
			missing[k]++
		}
	}

	stats := make([]MissingStat, 0, len(totals))
	for k, total := range totals {
		stats = append(stats, MissingStat{
			Key:         k,
			Total:       total,
			Missing:     missing[k],
			MissingRate: round4(float64(missing[k]) / float64(total)),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Key < stats[j].Key })
	return stats
}

// AmountUnitByCustomer распределение единиц суммы по клиентам
func AmountUnitByCustomer(rows []Row) []UnitStat {
	return unitsBy(rows, func(r Row) string { return r.Customer })
}

// AmountUnitByRecordType распределение единиц суммы по типам записей
func AmountUnitByRecordType(rows []Row) []UnitStat {
	return unitsBy(rows, func(r Row) string { return r.RecordType })
}

func unitsBy(rows []Row, keyOf func(Row) string) []UnitStat {
	byKey := make(map[string]map[string]int)
	for _, r := range rows {
		k := keyOf(r)
		if byKey[k] == nil {
			byKey[k] = make(map[string]int)
		}
		byKey[k][r.AmountUnit]++
	}

	stats := make([]UnitStat, 0, len(byKey))
	for k, counts := range byKey {
		stats = append(stats, UnitStat{Key: k, Counts: counts})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Key < stats[j].Key })
	return stats
}

// ProjectTenderBidBalance число 招标/中标/прочих записей в каждом проекте.
// Дисбаланс (仅有中标无招标 и т.п.) — сигнал для донастройки правил
// кластеризации и порогов схожести.
func ProjectTenderBidBalance(rows []Row) []BalanceStat {
	type counts struct{ tender, bid, total int }
	byProject := make(map[string]*counts)
	for _, r := range rows {
		c := byProject[r.ProjectID]
		if c == nil {
			c = &counts{}
			byProject[r.ProjectID] = c
		}
		c.total++
		if linking.IsTenderType(r.RecordType) {
			c.tender++
		} else if linking.IsBidType(r.RecordType) {
			c.bid++
		}
	}

	stats := make([]BalanceStat, 0, len(byProject))
	for pid, c := range byProject {
		stats = append(stats, BalanceStat{
			ProjectID:   pid,
			TenderCount: c.tender,
			BidCount:    c.bid,
			OtherCount:  c.total - c.tender - c.bid,
			Note:        balanceNote(c.tender, c.bid),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].ProjectID < stats[j].ProjectID })
	return stats
}

func balanceNote(tenderCount, bidCount int) string {
	switch {
	case tenderCount == 0 && bidCount > 0:
		return BalanceBidOnly
	case tenderCount > 0 && bidCount == 0:
		return BalanceTenderOnly
	case tenderCount > 0 && bidCount > 0:
		return BalanceBoth
	default:
		return BalanceNeither
	}
}

// SummarizeBalance сводка: сколько проектов приходится на каждый вид баланса
func SummarizeBalance(stats []BalanceStat) []BalanceSummary {
	counts := make(map[string]int)
	for _, s := range stats {
		counts[s.Note]++
	}
	summary := make([]BalanceSummary, 0, len(counts))
	for note, n := range counts {
		summary = append(summary, BalanceSummary{Note: note, ProjectCount: n})
	}
	sort.Slice(summary, func(i, j int) bool { return summary[i].Note < summary[j].Note })
	return summary
}

// CoreNameQuality общая доля пустых/коротких ядер названий плюс разрез по
// клиентам. Первый элемент — общий итог с пустым Customer.
func CoreNameQuality(rows []Row) []CoreNameStat {
	total := CoreNameStat{}
	byCustomer := make(map[string]*CoreNameStat)

	for _, r := range rows {
		c := byCustomer[r.Customer]
		if c == nil {
			c = &CoreNameStat{Customer: r.Customer}
			byCustomer[r.Customer] = c
		}
		total.Total++
		c.Total++

		core := strings.TrimSpace(r.CoreName)
		switch {
		case core == "":
			total.EmptyCount++
			c.EmptyCount++
		case utf8.RuneCountInString(core) < CoreNameMinLen:
			total.ShortCount++
			c.ShortCount++
		}
	}

	stats := make([]CoreNameStat, 0, len(byCustomer)+1)
	stats = append(stats, finishCoreNameStat(total))
	keys := make([]string, 0, len(byCustomer))
	for k := range byCustomer {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		stats = append(stats, finishCoreNameStat(*byCustomer[k]))
	}
	return stats
}

func finishCoreNameStat(s CoreNameStat) CoreNameStat {
	if s.Total > 0 {
		s.EmptyRate = round4(float64(s.EmptyCount) / float64(s.Total))
		s.ShortRate = round4(float64(s.ShortCount) / float64(s.Total))
	}
	return s
}

// BuildReport собирает краткий отчет о качестве в Markdown
func BuildReport(rows []Row) string {
	var b strings.Builder
	b.WriteString("# 招投标数据质量报告\n\n")

	b.WriteString("## 1. 各客户金额缺失率\n\n")
	for _, s := range AmountMissingByCustomer(rows) {
		fmt.Fprintf(&b, "- %s: %d/%d (%.2f%%)\n", s.Key, s.Missing, s.Total, s.MissingRate*100)
	}

	b.WriteString("\n## 2. 各 record_type 金额缺失率\n\n")
	for _, s := range AmountMissingByRecordType(rows) {
		fmt.Fprintf(&b, "- %s: %d/%d (%.2f%%)\n", s.Key, s.Missing, s.Total, s.MissingRate*100)
	}

	b.WriteString("\n## 3. 各客户 amount_unit_detected 分布\n\n")
	writeUnitStats(&b, AmountUnitByCustomer(rows))

	b.WriteString("\n## 4. 各 record_type amount_unit_detected 分布\n\n")
	writeUnitStats(&b, AmountUnitByRecordType(rows))

	b.WriteString("\n## 5. 同一项目下招标条数 vs 中标条数（汇总）\n\n")
	for _, s := range SummarizeBalance(ProjectTenderBidBalance(rows)) {
		fmt.Fprintf(&b, "- %s: %d 个项目\n", s.Note, s.ProjectCount)
	}

	b.WriteString("\n## 6. project_name_core 空/过短比例\n\n")
	cq := CoreNameQuality(rows)
	if len(cq) > 0 {
		t := cq[0]
		fmt.Fprintf(&b, "- 总记录数: %d\n", t.Total)
		fmt.Fprintf(&b, "- 为空条数: %d，占比: %.2f%%\n", t.EmptyCount, t.EmptyRate*100)
		fmt.Fprintf(&b, "- 过短(<%d字)条数: %d，占比: %.2f%%\n", CoreNameMinLen, t.ShortCount, t.ShortRate*100)
	}

	return b.String()
}

func writeUnitStats(b *strings.Builder, stats []UnitStat) {
	for _, s := range stats {
		units := make([]string, 0, len(s.Counts))
		for u := range s.Counts {
			units = append(units, u)
		}
		sort.Strings(units)
		parts := make([]string, 0, len(units))
		for _, u := range units {
			parts = append(parts, fmt.Sprintf("%s=%d", u, s.Counts[u]))
		}
		fmt.Fprintf(b, "- %s: %s\n", s.Key, strings.Join(parts, ", "))
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
