package server

import (
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenderlink/database"
	"tenderlink/internal/config"
)

func newTestServer(t *testing.T, withData bool) *Server {
	t.Helper()

	store, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	if withData {
		records := []database.StoredRecord{
			{
				RowID: "R0", Customer: "甲客户", Title: "智算中心算力扩容项目招标公告",
				PublishDate: "2024-01-10", RecordType: "招标公告",
				ProjectID: "p1", TenderRound: 1, LinkType: "已关联", RelatedBidID: "R1",
				IsAI: true, LLMLayer: "未分类",
			},
			{
				RowID: "R1", Customer: "甲客户", Title: "智算中心算力扩容项目中标公告",
				PublishDate: "2024-02-20", RecordType: "中标公告",
				AmountWanYuan: sql.NullFloat64{Float64: 120.5, Valid: true}, AmountUnit: "万元",
				ProjectID: "p1", TenderRound: 1, LinkType: "已关联", RelatedTenderID: "R0",
				Awardee: "华为技术有限公司", IsAI: true, LLMLayer: "未分类",
			},
			{
				RowID: "R2", Customer: "乙客户", Title: "大模型智能客服系统建设项目招标公告",
				PublishDate: "2024-03-01", RecordType: "招标公告", AmountMissing: true,
				ProjectID: "p2", TenderRound: 1, LinkType: "仅招标",
				IsAI: true, IsLLM: true, LLMLayer: "应用",
			},
		}
		pairs := []database.StoredLinkPair{
			{
				ProjectID: "p1", TenderRowID: "R0", BidRowID: "R1", TenderRound: 1,
				PublishDate: "2024-02-20", Awardee: "华为技术有限公司",
				AmountWanYuan: sql.NullFloat64{Float64: 120.5, Valid: true},
			},
		}
		require.NoError(t, store.SaveRun("run-1", records, pairs))
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(config.Default(), store, logger)
}

func doRequest(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	var body map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, false)
	w, body := doRequest(t, s, "/api/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestServer_Overview(t *testing.T) {
	s := newTestServer(t, true)
	w, body := doRequest(t, s, "/api/stats/overview")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "run-1", body["run_id"])

	overview := body["overview"].(map[string]interface{})
	assert.Equal(t, float64(3), overview["record_count"])
	assert.Equal(t, float64(2), overview["project_count"])
	assert.Equal(t, float64(1), overview["linked_pairs"])
}

func TestServer_OverviewNoRuns(t *testing.T) {
	s := newTestServer(t, false)
	w, body := doRequest(t, s, "/api/stats/overview")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, body["message"], "нет сохраненных запусков")
}

func TestServer_RecordTypes(t *testing.T) {
	s := newTestServer(t, true)
	w, body := doRequest(t, s, "/api/stats/record-types")

	require.Equal(t, http.StatusOK, w.Code)
	items := body["items"].([]interface{})
	assert.Len(t, items, 2)
}

func TestServer_Trend(t *testing.T) {
	s := newTestServer(t, true)
	w, body := doRequest(t, s, "/api/stats/trend?metric=projects")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "projects", body["metric"])
	trend := body["trend"].([]interface{})
	require.Len(t, trend, 1)
	year := trend[0].(map[string]interface{})
	assert.Equal(t, "2024", year["year"])
	assert.Equal(t, float64(2), year["count"])
}

func TestServer_TrendBadMetric(t *testing.T) {
	s := newTestServer(t, true)
	w, _ := doRequest(t, s, "/api/stats/trend?metric=everything")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_Customers(t *testing.T) {
	s := newTestServer(t, true)
	w, body := doRequest(t, s, "/api/stats/customers?limit=1")

	require.Equal(t, http.StatusOK, w.Code)
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	top := items[0].(map[string]interface{})
	assert.Equal(t, "甲客户", top["value"])
}

func TestServer_CustomersBadLimit(t *testing.T) {
	s := newTestServer(t, true)
	w, _ := doRequest(t, s, "/api/stats/customers?limit=много")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_Projects(t *testing.T) {
	s := newTestServer(t, true)
	w, body := doRequest(t, s, "/api/projects")

	require.Equal(t, http.StatusOK, w.Code)
	projects := body["projects"].([]interface{})
	assert.Len(t, projects, 2)
}

func TestServer_ProjectsLLMFilter(t *testing.T) {
	s := newTestServer(t, true)
	w, body := doRequest(t, s, "/api/projects?is_llm=true")

	require.Equal(t, http.StatusOK, w.Code)
	projects := body["projects"].([]interface{})
	require.Len(t, projects, 1)
	p := projects[0].(map[string]interface{})
	assert.Equal(t, "p2", p["project_id"])
	assert.Equal(t, "应用", p["llm_layer"])
}

func TestServer_ProjectTimeline(t *testing.T) {
	s := newTestServer(t, true)
	w, body := doRequest(t, s, "/api/projects/p1/timeline")

	require.Equal(t, http.StatusOK, w.Code)
	timeline := body["timeline"].([]interface{})
	require.Len(t, timeline, 2)

	first := timeline[0].(map[string]interface{})
	assert.Equal(t, "R0", first["row_id"])
	assert.Nil(t, first["amount_wan_yuan"], "招标 без суммы отдает null")

	second := timeline[1].(map[string]interface{})
	assert.Equal(t, 120.5, second["amount_wan_yuan"])
}

func TestServer_ProjectTimelineNotFound(t *testing.T) {
	s := newTestServer(t, true)
	w, _ := doRequest(t, s, "/api/projects/нет-такого/timeline")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_LinkPairs(t *testing.T) {
	s := newTestServer(t, true)
	w, body := doRequest(t, s, "/api/link-pairs?project_id=p1")

	require.Equal(t, http.StatusOK, w.Code)
	pairs := body["pairs"].([]interface{})
	require.Len(t, pairs, 1)
	p := pairs[0].(map[string]interface{})
	assert.Equal(t, "R0", p["tender_row_id"])
	assert.Equal(t, "R1", p["bid_row_id"])
}

func TestServer_LinkPairsRequiresProjectID(t *testing.T) {
	s := newTestServer(t, true)
	w, _ := doRequest(t, s, "/api/link-pairs")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_ExplicitRunID(t *testing.T) {
	s := newTestServer(t, true)
	w, body := doRequest(t, s, "/api/stats/overview?run_id=run-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "run-1", body["run_id"])
}

func TestServer_CORSPreflight(t *testing.T) {
	s := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
