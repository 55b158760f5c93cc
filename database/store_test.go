package database

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun() ([]StoredRecord, []StoredLinkPair) {
	records := []StoredRecord{
		{
			RowID: "R0", Customer: "甲客户", SourceFile: "a.xlsx",
			Title: "智算中心算力扩容项目招标公告", PublishDate: "2024-01-10",
			RecordType: "招标公告", ProjectNameCore: "智算中心算力扩容项目",
			ProjectID: "p1", TenderRound: 1, LinkType: "已关联",
			RelatedBidID: "R1", IsAI: true, IsLLM: false, LLMLayer: "未分类",
		},
		{
			RowID: "R1", Customer: "甲客户", SourceFile: "a.xlsx",
			Title: "智算中心算力扩容项目中标公告", PublishDate: "2024-02-20",
			RecordType: "中标公告", ProjectNameCore: "智算中心算力扩容项目",
			AmountWanYuan: sql.NullFloat64{Float64: 120.5, Valid: true}, AmountUnit: "万元",
			ProjectID: "p1", TenderRound: 1, LinkType: "已关联",
			RelatedTenderID: "R0", Awardee: "华为技术有限公司",
			IsAI: true, IsLLM: false, LLMLayer: "未分类",
		},
		{
			RowID: "R2", Customer: "乙客户", SourceFile: "b.xlsx",
			Title: "大模型智能客服系统建设项目招标公告", PublishDate: "2024-03-01",
			RecordType: "招标公告", ProjectNameCore: "大模型智能客服系统建设项目",
			AmountMissing: true, AmountUnit: "未知",
			ProjectID: "p2", TenderRound: 1, LinkType: "仅招标",
			IsAI: true, IsLLM: true, LLMLayer: "应用",
		},
	}
	pairs := []StoredLinkPair{
		{
			ProjectID: "p1", TenderRowID: "R0", BidRowID: "R1", TenderRound: 1,
			PublishDate: "2024-02-20", Awardee: "华为技术有限公司",
			AmountWanYuan: sql.NullFloat64{Float64: 120.5, Valid: true},
		},
	}
	return records, pairs
}

func TestStore_SaveRunAndLatestRunID(t *testing.T) {
	store := openTestStore(t)

	id, err := store.LatestRunID()
	require.NoError(t, err)
	assert.Empty(t, id, "до первого запуска идентификатор пуст")

	records, pairs := sampleRun()
	require.NoError(t, store.SaveRun("run-1", records, pairs))

	id, err = store.LatestRunID()
	require.NoError(t, err)
	assert.Equal(t, "run-1", id)
}

func TestStore_SaveRunIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	records, pairs := sampleRun()

	require.NoError(t, store.SaveRun("run-1", records, pairs))
	require.NoError(t, store.SaveRun("run-1", records, pairs))

	o, err := store.GetOverview("run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, o.RecordCount, "повторное сохранение замещает, а не дублирует")
	assert.Equal(t, 1, o.LinkedPairs)
}

func TestStore_GetOverview(t *testing.T) {
	store := openTestStore(t)
	records, pairs := sampleRun()
	require.NoError(t, store.SaveRun("run-1", records, pairs))

	o, err := store.GetOverview("run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, o.RecordCount)
	assert.Equal(t, 2, o.ProjectCount)
	assert.Equal(t, 2, o.CustomerCount)
	assert.Equal(t, 1, o.LinkedPairs)
	assert.Equal(t, 3, o.AIRecords)
	assert.Equal(t, 1, o.LLMRecords)
}

func TestStore_CountBy(t *testing.T) {
	store := openTestStore(t)
	records, pairs := sampleRun()
	require.NoError(t, store.SaveRun("run-1", records, pairs))

	items, err := store.CountBy("run-1", "record_type")
	require.NoError(t, err)
	counts := make(map[string]int)
	for _, it := range items {
		counts[it.Value] = it.Count
	}
	assert.Equal(t, 2, counts["招标公告"])
	assert.Equal(t, 1, counts["中标公告"])

	_, err = store.CountBy("run-1", "title; DROP TABLE records")
	assert.Error(t, err, "неразрешенная колонка отклоняется")
}

func TestStore_TopCustomers(t *testing.T) {
	store := openTestStore(t)
	records, pairs := sampleRun()
	require.NoError(t, store.SaveRun("run-1", records, pairs))

	items, err := store.TopCustomers("run-1", 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "甲客户", items[0].Value)
	assert.Equal(t, 2, items[0].Count)
}

func TestStore_YearlyTrend(t *testing.T) {
	store := openTestStore(t)
	records, pairs := sampleRun()
	require.NoError(t, store.SaveRun("run-1", records, pairs))

	trend, err := store.YearlyTrend("run-1", false)
	require.NoError(t, err)
	require.Len(t, trend, 1)
	assert.Equal(t, "2024", trend[0].Year)
	assert.Equal(t, 3, trend[0].Count)

	byProjects, err := store.YearlyTrend("run-1", true)
	require.NoError(t, err)
	require.Len(t, byProjects, 1)
	assert.Equal(t, 2, byProjects[0].Count)
}

func TestStore_ListProjects(t *testing.T) {
	store := openTestStore(t)
	records, pairs := sampleRun()
	require.NoError(t, store.SaveRun("run-1", records, pairs))

	projects, err := store.ListProjects("run-1", "", false, 10)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	// Сортировка по числу записей: p1 первым
	assert.Equal(t, "p1", projects[0].ProjectID)
	assert.Equal(t, 1, projects[0].TenderCount)
	assert.Equal(t, 1, projects[0].BidCount)

	llmOnly, err := store.ListProjects("run-1", "", true, 10)
	require.NoError(t, err)
	require.Len(t, llmOnly, 1)
	assert.Equal(t, "p2", llmOnly[0].ProjectID)
	assert.True(t, llmOnly[0].IsLLM)
	assert.Equal(t, "应用", llmOnly[0].LLMLayer)

	byCustomer, err := store.ListProjects("run-1", "乙客户", false, 10)
	require.NoError(t, err)
	require.Len(t, byCustomer, 1)
	assert.Equal(t, "p2", byCustomer[0].ProjectID)
}

func TestStore_ListProjectsLayerPriority(t *testing.T) {
	store := openTestStore(t)
	// Сводный слой проекта берется по приоритету 应用>平台>模型>算力,
	// а не по байтовому порядку меток
	records := []StoredRecord{
		{RowID: "R0", Customer: "甲客户", Title: "大模型客服招标公告",
			RecordType: "招标公告", ProjectID: "p1", TenderRound: 1,
			IsAI: true, IsLLM: true, LLMLayer: "应用"},
		{RowID: "R1", Customer: "甲客户", Title: "大模型客服中标公告",
			RecordType: "中标公告", ProjectID: "p1", TenderRound: 1,
			IsAI: true, IsLLM: false, LLMLayer: "未分类"},
		{RowID: "R2", Customer: "甲客户", Title: "智算中心大模型底座招标公告",
			RecordType: "招标公告", ProjectID: "p2", TenderRound: 1,
			IsAI: true, IsLLM: true, LLMLayer: "算力"},
		{RowID: "R3", Customer: "甲客户", Title: "智算中心大模型应用招标公告",
			RecordType: "招标公告", ProjectID: "p2", TenderRound: 1,
			IsAI: true, IsLLM: true, LLMLayer: "应用"},
	}
	require.NoError(t, store.SaveRun("run-1", records, nil))

	projects, err := store.ListProjects("run-1", "", false, 10)
	require.NoError(t, err)
	require.Len(t, projects, 2)

	layers := make(map[string]string)
	for _, p := range projects {
		layers[p.ProjectID] = p.LLMLayer
	}
	assert.Equal(t, "应用", layers["p1"], "未分类 не должен перекрывать 应用")
	assert.Equal(t, "应用", layers["p2"], "算力 не должен перекрывать 应用")
}

func TestStore_ProjectTimeline(t *testing.T) {
	store := openTestStore(t)
	records, pairs := sampleRun()
	require.NoError(t, store.SaveRun("run-1", records, pairs))

	timeline, err := store.ProjectTimeline("run-1", "p1")
	require.NoError(t, err)
	require.Len(t, timeline, 2)
	assert.Equal(t, "R0", timeline[0].RowID, "записи в порядке даты публикации")
	assert.Equal(t, "R1", timeline[1].RowID)
	assert.True(t, timeline[1].AmountWanYuan.Valid)
	assert.Equal(t, 120.5, timeline[1].AmountWanYuan.Float64)
}

func TestStore_ProjectLinkPairs(t *testing.T) {
	store := openTestStore(t)
	records, pairs := sampleRun()
	require.NoError(t, store.SaveRun("run-1", records, pairs))

	got, err := store.ProjectLinkPairs("run-1", "p1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "R0", got[0].TenderRowID)
	assert.Equal(t, "R1", got[0].BidRowID)
	assert.Equal(t, "华为技术有限公司", got[0].Awardee)
}

func TestStore_RunsAreIsolated(t *testing.T) {
	store := openTestStore(t)
	records, pairs := sampleRun()
	require.NoError(t, store.SaveRun("run-1", records, pairs))
	require.NoError(t, store.SaveRun("run-2", records[:1], nil))

	o1, err := store.GetOverview("run-1")
	require.NoError(t, err)
	o2, err := store.GetOverview("run-2")
	require.NoError(t, err)
	assert.Equal(t, 3, o1.RecordCount)
	assert.Equal(t, 1, o2.RecordCount)
}
