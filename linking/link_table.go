package linking

// LinkPair строка таблицы связей «проект — 招标 — 中标»: одна строка на
// каждую связанную пару (tender_row_id, bid_row_id)
type LinkPair struct {
	ProjectID     string
	TenderRowID   string
	BidRowID      string
	TenderRound   int
	PublishDate   string // дата публикации 中标-записи
	Awardee       string
	AmountWanYuan float64
	AmountMissing bool
}

// BuildLinkTable строит таблицу связей из результата AssignLinks: берутся
// только 中标-записи со статусом 已关联. Порядок пар следует порядку входных
// записей. rows и links должны быть одной длины (выход AssignLinks для rows).
func BuildLinkTable(rows []Row, links []LinkResult) []LinkPair {
	pairs := make([]LinkPair, 0)
	for i, l := range links {
		if l.LinkType != LinkTypeLinked || l.RelatedTenderID == "" {
			continue
		}
		pairs = append(pairs, LinkPair{
			ProjectID:     rows[i].ProjectID,
			TenderRowID:   l.RelatedTenderID,
			BidRowID:      l.RowID,
			TenderRound:   rows[i].TenderRound,
			PublishDate:   rows[i].PublishDate,
			Awardee:       rows[i].Awardee,
			AmountWanYuan: rows[i].AmountWanYuan,
			AmountMissing: rows[i].AmountMissing,
		})
	}
	return pairs
}
