package linking

import (
	"sort"
	"strconv"
)

// Row вход связывания: запись с уже назначенным project_id
type Row struct {
	ProjectID     string
	RecordType    string
	PublishDate   string // исходный текст даты; неразборчивый сортируется в конец
	TenderRound   int
	Awardee       string  // 中标单位, переносится в таблицу связей
	AmountWanYuan float64 // сумма в 万元, валидна при AmountMissing == false
	AmountMissing bool
}

// LinkResult результат связывания для одной записи
type LinkResult struct {
	RowID           string
	LinkType        string
	RelatedTenderID string // для 中标: row_id парного 招标
	RelatedBidID    string // для 招标: row_id первого парного 中标
}

// AssignLinks назначает каждой записи row_id, link_type, related_tender_id и
// related_bid_id. Внутри одного project_id записи обходятся по порядку
// (дата публикации, затем раунд); каждому 中标 сопоставляется последний
// открытый 招标 проекта.
//
// Машина состояний на проект: openTender — row_id последнего увиденного 招标.
// Новый 招标 замещает открытый; 中标 при открытом 招标 связывается с ним и НЕ
// закрывает его (у одного 招标 может накопиться несколько 中标: кандидаты,
// исправленные публикации); 中标 без открытого 招标 — сирота 仅中标.
// Запись типа 其他 проходит насквозь и открытый 招标 не трогает.
//
// Результаты детерминированы: сортировка стабильна, равные ключи упорядочены
// по исходной позиции записи.
func AssignLinks(rows []Row) []LinkResult {
	n := len(rows)
	results := make([]LinkResult, n)
	for i := range results {
		results[i] = LinkResult{
			RowID:    "R" + strconv.Itoa(i),
			LinkType: LinkTypeOther,
		}
	}

	// Порядок обхода: project_id, дата (неразборчивые в конец), раунд
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	type sortKey struct {
		dateUnix  int64
		dateValid bool
	}
	keys := make([]sortKey, n)
	for i, r := range rows {
		if t, ok := ParsePublishDate(r.PublishDate); ok {
			keys[i] = sortKey{dateUnix: t.Unix(), dateValid: true}
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if rows[ia].ProjectID != rows[ib].ProjectID {
			return rows[ia].ProjectID < rows[ib].ProjectID
		}
		ka, kb := keys[ia], keys[ib]
		if ka.dateValid != kb.dateValid {
			return ka.dateValid // без даты — в конец
		}
		if ka.dateValid && ka.dateUnix != kb.dateUnix {
			return ka.dateUnix < kb.dateUnix
		}
		if rows[ia].TenderRound != rows[ib].TenderRound {
			return rows[ia].TenderRound < rows[ib].TenderRound
		}
		return ia < ib
	})

	// openTender последний 招标 каждого проекта; tenderFirstBid — первый (по
	// порядку обхода) 中标, указавший на данный 招标
	openTender := make(map[string]string)
	tenderHasBid := make(map[string]bool)
	tenderFirstBid := make(map[string]string)

	for _, i := range order {
		r := rows[i]
		switch {
		case IsTenderType(r.RecordType):
			openTender[r.ProjectID] = results[i].RowID
			results[i].LinkType = LinkTypeTenderOnly // может смениться пост-проходом
		case IsBidType(r.RecordType):
			tender, ok := openTender[r.ProjectID]
			if ok && tender != "" {
				results[i].LinkType = LinkTypeLinked
				results[i].RelatedTenderID = tender
				tenderHasBid[tender] = true
				if _, seen := tenderFirstBid[tender]; !seen {
					tenderFirstBid[tender] = results[i].RowID
				}
			} else {
				results[i].LinkType = LinkTypeBidOnly
			}
		default:
			results[i].LinkType = LinkTypeOther
		}
	}

	// Пост-проход: 招标 с хотя бы одним 中标 становится 已关联 и получает
	// related_bid_id первого связавшегося 中标
	for i := range rows {
		if !IsTenderType(rows[i].RecordType) {
			continue
		}
		rid := results[i].RowID
		if tenderHasBid[rid] {
			results[i].LinkType = LinkTypeLinked
			results[i].RelatedBidID = tenderFirstBid[rid]
		}
	}

	return results
}
