package linking

import "testing"

func TestBuildLinkTable(t *testing.T) {
	rows := []Row{
		{ProjectID: "p1", RecordType: "招标公告", PublishDate: "2024-01-01", TenderRound: 1},
		{ProjectID: "p1", RecordType: "中标公告", PublishDate: "2024-02-01", TenderRound: 1,
			Awardee: "华为技术有限公司", AmountWanYuan: 120.5},
		{ProjectID: "p1", RecordType: "其他", PublishDate: "2024-03-01", TenderRound: 1},
		{ProjectID: "p2", RecordType: "中标公告", PublishDate: "2024-02-15", TenderRound: 1},
	}
	links := AssignLinks(rows)
	pairs := BuildLinkTable(rows, links)

	if len(pairs) != 1 {
		t.Fatalf("пар = %d, want 1 (сирота и прочая запись не попадают)", len(pairs))
	}

	p := pairs[0]
	if p.ProjectID != "p1" || p.TenderRowID != "R0" || p.BidRowID != "R1" {
		t.Errorf("пара = %+v, want p1 R0->R1", p)
	}
	if p.Awardee != "华为技术有限公司" || p.AmountWanYuan != 120.5 {
		t.Errorf("атрибуты 中标 не перенесены: %+v", p)
	}
	if p.PublishDate != "2024-02-01" {
		t.Errorf("PublishDate = %q, want дату 中标-записи", p.PublishDate)
	}
}

func TestBuildLinkTable_MultipleBidsOneTender(t *testing.T) {
	rows := []Row{
		{ProjectID: "p1", RecordType: "招标公告", PublishDate: "2024-01-01", TenderRound: 1},
		{ProjectID: "p1", RecordType: "中标候选人公示", PublishDate: "2024-02-01", TenderRound: 1},
		{ProjectID: "p1", RecordType: "中标公告", PublishDate: "2024-03-01", TenderRound: 1},
	}
	pairs := BuildLinkTable(rows, AssignLinks(rows))

	if len(pairs) != 2 {
		t.Fatalf("пар = %d, want 2: оба 中标 указывают на один 招标", len(pairs))
	}
	for _, p := range pairs {
		if p.TenderRowID != "R0" {
			t.Errorf("пара %+v указывает на %q, want R0", p, p.TenderRowID)
		}
	}
}

func TestBuildLinkTable_EmptyWhenNoLinks(t *testing.T) {
	rows := []Row{
		{ProjectID: "p1", RecordType: "招标公告", PublishDate: "2024-01-01", TenderRound: 1},
	}
	pairs := BuildLinkTable(rows, AssignLinks(rows))
	if len(pairs) != 0 {
		t.Errorf("пар = %d, want 0", len(pairs))
	}
}
